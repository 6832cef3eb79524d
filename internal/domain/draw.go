package domain

import "fmt"

// Draw is one complete drawing: six primary numbers plus a supplementary
// number taken from the 43 remaining after the primary selection.
type Draw struct {
	Primary       NumberSet
	Supplementary int
}

// Validate checks the compound invariant: valid primary set, supplementary
// in range and not among the primaries. Draws produced by the generator
// always pass; storage round-trips and hand-built test draws go through
// here.
func (d Draw) Validate() error {
	if _, err := NewNumberSet(d.Primary.Slice()); err != nil {
		return fmt.Errorf("%w: primary: %v", ErrInvalidDraw, err)
	}
	rules := StandardRules()
	if d.Supplementary < rules.RangeLow || d.Supplementary > rules.RangeHigh {
		return fmt.Errorf("%w: supplementary %d not in [%d, %d]", ErrInvalidDraw, d.Supplementary, rules.RangeLow, rules.RangeHigh)
	}
	if d.Primary.Contains(d.Supplementary) {
		return fmt.Errorf("%w: supplementary %d repeats a primary number", ErrInvalidDraw, d.Supplementary)
	}
	return nil
}

// String renders "4, 12, 19, 23, 33, 40 + 7".
func (d Draw) String() string {
	return fmt.Sprintf("%s + %d", d.Primary, d.Supplementary)
}
