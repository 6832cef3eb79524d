package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderCSV renders session rows as CSV string.
func RenderCSV(sessions []SessionRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("session_id,player_numbers,seed,mode,workers,max_draws,total_draws,")
	sb.WriteString("jackpot_achieved,jackpot_draw,equivalent_years,elapsed_seconds,created_at\n")

	// Rows. Player numbers contain commas, so that field is quoted.
	for _, s := range sessions {
		sb.WriteString(fmt.Sprintf("%s,%q,%d,%s,%d,%d,%d,%t,%d,%.1f,%.6f,%s\n",
			s.SessionID,
			s.Player,
			s.Seed,
			s.Mode,
			s.Workers,
			s.MaxDraws,
			s.TotalDraws,
			s.JackpotAchieved,
			s.JackpotDraw,
			s.EquivalentYears,
			s.ElapsedSeconds,
			s.CreatedAt.Format(time.RFC3339),
		))
	}

	return sb.String()
}

// RenderTierCSV renders the combined tier distribution as CSV string.
func RenderTierCSV(rows []TierDistributionRow) string {
	var sb strings.Builder

	sb.WriteString("tier,label,draws,share_pct\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%q,%d,%.4f\n", r.Tier.Code(), r.Label, r.Draws, r.Share))
	}

	return sb.String()
}
