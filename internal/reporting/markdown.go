package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# TOTO Simulation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Sessions: %d | Total draws: %d | Jackpot sessions: %d\n\n",
		r.SessionCount, r.Totals.TotalDraws, r.Totals.JackpotSessions))

	// Totals
	sb.WriteString("## Totals\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Sessions | %d |\n", r.SessionCount))
	sb.WriteString(fmt.Sprintf("| Total Draws | %d |\n", r.Totals.TotalDraws))
	sb.WriteString(fmt.Sprintf("| Jackpot Sessions | %d |\n", r.Totals.JackpotSessions))
	sb.WriteString(fmt.Sprintf("| Theoretical Jackpot Odds | 1 in %d |\n", r.Totals.TheoreticalOdds))
	sb.WriteString(fmt.Sprintf("| Equivalent Playing Years | %.1f |\n", r.Totals.EquivalentYears))
	sb.WriteString("\n")

	// Sessions
	sb.WriteString("## Sessions\n\n")
	if len(r.Sessions) > 0 {
		sb.WriteString("| Session | Numbers | Seed | Mode | Workers | Draws | Jackpot | At Draw | Years | Elapsed |\n")
		sb.WriteString("|---------|---------|------|------|---------|-------|---------|---------|-------|--------|\n")
		for _, s := range r.Sessions {
			jackpot := "no"
			atDraw := "-"
			if s.JackpotAchieved {
				jackpot = "yes"
				atDraw = fmt.Sprintf("%d", s.JackpotDraw)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %d | %d | %s | %s | %.1f | %.2fs |\n",
				s.ShortID, s.Player, s.Seed, s.Mode, s.Workers,
				s.TotalDraws, jackpot, atDraw, s.EquivalentYears, s.ElapsedSeconds))
		}
	} else {
		sb.WriteString("No sessions recorded.\n")
	}
	sb.WriteString("\n")

	// Prize Distribution
	sb.WriteString("## Prize Distribution\n\n")
	if len(r.TierDistribution) > 0 {
		sb.WriteString("| Tier | Draws | Share |\n")
		sb.WriteString("|------|-------|-------|\n")
		for _, row := range r.TierDistribution {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.4f%% |\n", row.Label, row.Draws, row.Share))
		}
	} else {
		sb.WriteString("No prize distribution available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
