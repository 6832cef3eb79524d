package domain

import "time"

// Classification is the outcome of checking a ticket against one draw.
type Classification struct {
	MatchCount           int   // primary numbers matched (0..6)
	SupplementaryMatched bool  // ticket contains the supplementary number
	MatchingNumbers      []int // sorted intersection with the primary set
	Tier                 Tier  // prize group per the ordered decision list
}

// IsJackpot reports a Group 1 win (all six primary numbers matched).
func (c Classification) IsJackpot() bool {
	return c.Tier == TierGroup1
}

// DrawResult is one played draw: what was drawn, how the ticket fared and
// when it happened.
type DrawResult struct {
	Draw           Draw
	Classification Classification
	DrawnAt        time.Time
}
