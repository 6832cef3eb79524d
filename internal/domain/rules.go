package domain

// Rules is the immutable shape of the game. Values are passed explicitly
// into the functions that need them; nothing mutates a Rules after
// construction.
type Rules struct {
	RangeLow      int // lowest drawable number (inclusive)
	RangeHigh     int // highest drawable number (inclusive)
	PickCount     int // numbers on a ticket / primary numbers per draw
	DrawsPerYear  int // draw frequency used for equivalent-years math
	Supplementary int // supplementary numbers drawn from the remainder
}

// StandardRules returns the fixed 6-of-49 game with one supplementary
// number and two draws per week. The simulator supports no other shape.
func StandardRules() Rules {
	return Rules{
		RangeLow:      1,
		RangeHigh:     49,
		PickCount:     6,
		DrawsPerYear:  104,
		Supplementary: 1,
	}
}

// PoolSize is the count of drawable numbers.
func (r Rules) PoolSize() int {
	return r.RangeHigh - r.RangeLow + 1
}

// Validate checks that the rules describe a playable game: a non-empty
// range and a pick count that leaves room for the supplementary draw.
func (r Rules) Validate() error {
	if r.RangeLow < 1 || r.RangeHigh <= r.RangeLow {
		return ErrInvalidRules
	}
	if r.PickCount < 1 || r.PickCount+r.Supplementary > r.PoolSize() {
		return ErrInvalidRules
	}
	if r.DrawsPerYear < 1 {
		return ErrInvalidRules
	}
	return nil
}
