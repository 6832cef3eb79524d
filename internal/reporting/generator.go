package reporting

import (
	"context"
	"time"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/idhash"
	"toto-sim-lab/internal/odds"
	"toto-sim-lab/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	sessionStore   storage.SessionStore
	tierCountStore storage.SessionTierCountStore
	now            func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(sessionStore storage.SessionStore, tierCountStore storage.SessionTierCountStore) *Generator {
	return &Generator{
		sessionStore:   sessionStore,
		tierCountStore: tierCountStore,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report over all stored sessions.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	// Load all sessions, newest first
	sessions, err := g.sessionStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	// Load the aggregated prize distribution
	totals, err := g.tierCountStore.TierTotals(ctx)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt:      g.now(),
		SessionCount:     len(sessions),
		Totals:           generateTotals(sessions),
		Sessions:         generateSessionRows(sessions),
		TierDistribution: generateTierDistribution(totals),
	}, nil
}

// generateTotals sums per-session counters into the combined summary.
func generateTotals(sessions []*domain.SimulationSummary) TotalsSummary {
	totals := TotalsSummary{
		TheoreticalOdds: odds.Jackpot(domain.StandardRules()),
	}
	for _, s := range sessions {
		totals.TotalDraws += s.TotalDraws
		if s.JackpotAchieved {
			totals.JackpotSessions++
		}
	}
	totals.EquivalentYears = odds.EquivalentYears(totals.TotalDraws, domain.StandardRules())
	return totals
}

// generateSessionRows builds display rows preserving store order.
func generateSessionRows(sessions []*domain.SimulationSummary) []SessionRow {
	rows := make([]SessionRow, len(sessions))
	for i, s := range sessions {
		rows[i] = SessionRow{
			SessionID:       s.SessionID,
			ShortID:         idhash.ShortSessionID(s.SessionID),
			Player:          s.Player.String(),
			Seed:            s.Seed,
			Mode:            s.Mode,
			Workers:         s.Workers,
			MaxDraws:        s.MaxDraws,
			TotalDraws:      s.TotalDraws,
			JackpotAchieved: s.JackpotAchieved,
			JackpotDraw:     s.JackpotDraw,
			EquivalentYears: s.EquivalentYears,
			ElapsedSeconds:  s.ElapsedSeconds,
			CreatedAt:       s.CreatedAt,
		}
	}
	return rows
}

// generateTierDistribution builds rows in display order. Tiers with no
// recorded draws still get a row; shares are percentages of all draws.
func generateTierDistribution(totals domain.Tally) []TierDistributionRow {
	rows := make([]TierDistributionRow, 0, domain.TierCount)
	for _, tier := range domain.Tiers() {
		rows = append(rows, TierDistributionRow{
			Tier:  tier,
			Label: tier.Label(),
			Draws: totals.Count(tier),
			Share: totals.Share(tier),
		})
	}
	return rows
}
