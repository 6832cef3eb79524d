// Package prize maps a ticket and a draw onto the game's prize groups.
package prize

import "toto-sim-lab/internal/domain"

// Classify checks a ticket against one draw. Both inputs are valid by
// construction, so classification cannot fail; every draw lands on
// exactly one tier.
func Classify(player domain.NumberSet, d domain.Draw) domain.Classification {
	matching := player.Intersect(d.Primary)
	suppMatched := player.Contains(d.Supplementary)

	return domain.Classification{
		MatchCount:           len(matching),
		SupplementaryMatched: suppMatched,
		MatchingNumbers:      matching,
		Tier:                 tierFor(len(matching), suppMatched),
	}
}

// tierFor is the ordered decision list; the first matching rule wins.
// Three matches without the supplementary, or fewer, pay nothing.
func tierFor(matches int, supplementary bool) domain.Tier {
	switch {
	case matches == 6:
		return domain.TierGroup1
	case matches == 5 && supplementary:
		return domain.TierGroup2
	case matches == 5:
		return domain.TierGroup3
	case matches == 4 && supplementary:
		return domain.TierGroup4
	case matches == 4:
		return domain.TierGroup5
	case matches == 3 && supplementary:
		return domain.TierGroup6
	default:
		return domain.TierNone
	}
}
