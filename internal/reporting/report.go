package reporting

import (
	"time"

	"toto-sim-lab/internal/domain"
)

// Report aggregates stored simulation sessions into one reporting view.
type Report struct {
	// Metadata
	GeneratedAt  time.Time
	SessionCount int

	// Totals across all sessions
	Totals TotalsSummary

	// Per-session rows (newest first)
	Sessions []SessionRow

	// Aggregated prize distribution (Group 1 through Group 6, then no prize)
	TierDistribution []TierDistributionRow
}

// TotalsSummary describes all stored sessions combined.
type TotalsSummary struct {
	TotalDraws      int64
	JackpotSessions int
	TheoreticalOdds int64   // 1 in N per draw
	EquivalentYears float64 // all draws combined, at two draws per week
}

// SessionRow represents one session in the sessions table.
type SessionRow struct {
	SessionID       string
	ShortID         string
	Player          string // "4, 12, 19, 23, 33, 40"
	Seed            int64
	Mode            string
	Workers         int
	MaxDraws        int64
	TotalDraws      int64
	JackpotAchieved bool
	JackpotDraw     int64 // 1-based, 0 when no jackpot
	EquivalentYears float64
	ElapsedSeconds  float64
	CreatedAt       time.Time
}

// TierDistributionRow represents one prize tier aggregated across sessions.
type TierDistributionRow struct {
	Tier  domain.Tier
	Label string
	Draws uint64
	Share float64 // percent of all recorded draws
}
