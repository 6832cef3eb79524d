// Package rng supplies the entropy behind draw generation. Simulation
// runs use a seeded deterministic stream so any session can be replayed
// from its recorded seed; fresh seeds come from the OS entropy pool.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// Source yields uniform integers in [0, n) for the draw shuffle. math/rand
// *Rand satisfies it; tests substitute scripted sources.
type Source interface {
	Intn(n int) int
}

// NewSource returns a deterministic pseudo-random Source. The same seed
// always produces the same draw sequence.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// workerSeedStride spaces sibling worker seeds far enough apart that
// workers never share a stream.
const workerSeedStride = 1337

// WorkerSeed derives the seed for worker i of a parallel run from the
// session's base seed.
func WorkerSeed(base int64, worker int) int64 {
	return base + int64(worker)*workerSeedStride
}

// EntropySeed returns a seed drawn from the OS entropy pool for runs that
// did not specify one. Falls back to the wall clock if the pool is
// unavailable. The chosen seed is recorded on the session either way, so
// the run stays replayable.
func EntropySeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
