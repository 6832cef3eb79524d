package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"

	"toto-sim-lab/internal/domain"
)

// ComputeSessionID computes a deterministic session_id using SHA256.
// Formula: SHA256(numbers|seed|max_draws|mode|workers)
// Returns hex-encoded hash (64 characters). Re-running identical
// parameters reproduces the same ID, so append-only stores dedupe
// repeated runs through their duplicate-key check.
func ComputeSessionID(
	player domain.NumberSet,
	seed int64,
	maxDraws int64,
	mode string,
	workers int,
) string {
	data := fmt.Sprintf("%s|%d|%d|%s|%d",
		player.String(),
		seed,
		maxDraws,
		mode,
		workers,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// shortIDBytes is how much of the hash the short form keeps.
const shortIDBytes = 8

// ShortSessionID renders the first 8 bytes of a hex session ID in base58
// for compact display and report file names. Returns the input unchanged
// when it is not a hex ID.
func ShortSessionID(sessionID string) string {
	raw, err := hex.DecodeString(sessionID)
	if err != nil || len(raw) < shortIDBytes {
		return sessionID
	}
	return base58.Encode(raw[:shortIDBytes])
}
