package domain

import "time"

// SimulationSummary is the outcome of one run-until-jackpot session.
// Corresponds to the sessions table; the tally additionally fans out into
// session_tier_counts rows.
type SimulationSummary struct {
	SessionID string // deterministic hash of the run parameters
	Player    NumberSet
	Seed      int64  // PRNG seed; re-running it reproduces the session
	Mode      string // "sequential" | "parallel"
	Workers   int    // 1 for sequential runs
	MaxDraws  int64  // trial budget

	// Outcome
	TotalDraws      int64 // trials actually performed (<= MaxDraws)
	JackpotAchieved bool
	JackpotDraw     int64 // 1-based trial index of the Group 1 win, 0 if none
	WinningDraw     *Draw // the Group 1 draw itself (nil if none)
	Tally           Tally

	// Derived statistics
	ElapsedSeconds  float64 // wall clock
	TheoreticalOdds int64   // 1-in-N odds of Group 1 on a single draw
	EquivalentYears float64 // TotalDraws / draws-per-year, 1 decimal place

	CreatedAt time.Time
}

// Run mode constants
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// SessionTierCount is one per-tier row of a session's tally.
// Corresponds to the session_tier_counts table.
type SessionTierCount struct {
	SessionID string
	Tier      Tier
	Draws     uint64  // draws that landed on this tier
	Share     float64 // percentage of the session's draws
}

// TierCounts explodes a summary's tally into rows in display order.
func (s *SimulationSummary) TierCounts() []*SessionTierCount {
	out := make([]*SessionTierCount, 0, TierCount)
	for _, tier := range Tiers() {
		out = append(out, &SessionTierCount{
			SessionID: s.SessionID,
			Tier:      tier,
			Draws:     s.Tally.Count(tier),
			Share:     s.Tally.Share(tier),
		})
	}
	return out
}
