// Package verification replays stored sessions from their recorded seeds
// and checks that the persisted summaries still reproduce.
package verification

import (
	"context"
	"math"

	"toto-sim-lab/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string      // field name
	Expected interface{} // stored value
	Actual   interface{} // replayed value
}

// VerificationResult contains the result of verifying a single session.
type VerificationResult struct {
	SessionID     string            // verified session ID
	Match         bool              // true if all fields match
	Divergences   []FieldDivergence // list of divergent fields
	StoredDraws   int64             // total draws from the stored summary
	ReplayedDraws int64             // total draws from the replayed run
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	TotalSessions     int                  // sessions considered
	MatchedSessions   int                  // sessions that matched exactly
	DivergentSessions int                  // sessions with divergences
	SkippedSessions   int                  // parallel sessions, not replayable
	Results           []VerificationResult // individual results
}

// Verifier interface for session replay verification.
type Verifier interface {
	// VerifySession verifies a single session by ID.
	// It loads the stored summary, re-runs the seed sequentially,
	// and compares all deterministic fields.
	VerifySession(ctx context.Context, sessionID string) (*VerificationResult, error)

	// VerifyAll verifies all stored sessions.
	// Returns a report with individual results.
	VerifyAll(ctx context.Context) (*VerificationReport, error)
}

// CompareSummaries compares a stored summary against its replay and returns
// divergences. ElapsedSeconds and CreatedAt are wall clock, never compared.
func CompareSummaries(stored, replayed *domain.SimulationSummary) []FieldDivergence {
	var divergences []FieldDivergence

	// SessionID must match exactly
	if stored.SessionID != replayed.SessionID {
		divergences = append(divergences, FieldDivergence{
			Field:    "SessionID",
			Expected: stored.SessionID,
			Actual:   replayed.SessionID,
		})
	}

	// Run parameters
	if !stored.Player.Equal(replayed.Player) {
		divergences = append(divergences, FieldDivergence{
			Field:    "Player",
			Expected: stored.Player.String(),
			Actual:   replayed.Player.String(),
		})
	}

	if stored.Seed != replayed.Seed {
		divergences = append(divergences, FieldDivergence{
			Field:    "Seed",
			Expected: stored.Seed,
			Actual:   replayed.Seed,
		})
	}

	if stored.Mode != replayed.Mode {
		divergences = append(divergences, FieldDivergence{
			Field:    "Mode",
			Expected: stored.Mode,
			Actual:   replayed.Mode,
		})
	}

	if stored.Workers != replayed.Workers {
		divergences = append(divergences, FieldDivergence{
			Field:    "Workers",
			Expected: stored.Workers,
			Actual:   replayed.Workers,
		})
	}

	if stored.MaxDraws != replayed.MaxDraws {
		divergences = append(divergences, FieldDivergence{
			Field:    "MaxDraws",
			Expected: stored.MaxDraws,
			Actual:   replayed.MaxDraws,
		})
	}

	// Outcome values (critical for verification)
	if stored.TotalDraws != replayed.TotalDraws {
		divergences = append(divergences, FieldDivergence{
			Field:    "TotalDraws",
			Expected: stored.TotalDraws,
			Actual:   replayed.TotalDraws,
		})
	}

	if stored.JackpotAchieved != replayed.JackpotAchieved {
		divergences = append(divergences, FieldDivergence{
			Field:    "JackpotAchieved",
			Expected: stored.JackpotAchieved,
			Actual:   replayed.JackpotAchieved,
		})
	}

	if stored.JackpotDraw != replayed.JackpotDraw {
		divergences = append(divergences, FieldDivergence{
			Field:    "JackpotDraw",
			Expected: stored.JackpotDraw,
			Actual:   replayed.JackpotDraw,
		})
	}

	if !drawEquals(stored.WinningDraw, replayed.WinningDraw) {
		divergences = append(divergences, FieldDivergence{
			Field:    "WinningDraw",
			Expected: drawValue(stored.WinningDraw),
			Actual:   drawValue(replayed.WinningDraw),
		})
	}

	// Per-tier counts
	for _, tier := range domain.Tiers() {
		if stored.Tally.Count(tier) != replayed.Tally.Count(tier) {
			divergences = append(divergences, FieldDivergence{
				Field:    "Tally." + tier.Code(),
				Expected: stored.Tally.Count(tier),
				Actual:   replayed.Tally.Count(tier),
			})
		}
	}

	// Derived statistics
	if stored.TheoreticalOdds != replayed.TheoreticalOdds {
		divergences = append(divergences, FieldDivergence{
			Field:    "TheoreticalOdds",
			Expected: stored.TheoreticalOdds,
			Actual:   replayed.TheoreticalOdds,
		})
	}

	if !floatEquals(stored.EquivalentYears, replayed.EquivalentYears) {
		divergences = append(divergences, FieldDivergence{
			Field:    "EquivalentYears",
			Expected: stored.EquivalentYears,
			Actual:   replayed.EquivalentYears,
		})
	}

	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}

// drawEquals compares two *domain.Draw values.
// Returns true if both are nil, or both are non-nil and equal.
func drawEquals(a, b *domain.Draw) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Primary.Equal(b.Primary) && a.Supplementary == b.Supplementary
}

// drawValue renders a draw for a divergence entry, nil-safe.
func drawValue(d *domain.Draw) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}
