package domain

import "fmt"

// Tier is the prize group of a classified draw. The enumeration is closed:
// every classification lands on exactly one of these values, and Tally is
// indexed by them, so an unknown prize category cannot occur at runtime.
type Tier int

// Group N wins carry the value N; the zero value means no prize.
const (
	TierNone Tier = iota
	TierGroup1
	TierGroup2
	TierGroup3
	TierGroup4
	TierGroup5
	TierGroup6

	TierCount = 7
)

// Storage codes for serialized tiers
const (
	tierCodeNone   = "NONE"
	tierCodePrefix = "GROUP_"
)

// Tiers returns the display order: Group 1 down to Group 6, then no prize.
func Tiers() []Tier {
	return []Tier{TierGroup1, TierGroup2, TierGroup3, TierGroup4, TierGroup5, TierGroup6, TierNone}
}

// Valid reports whether t is one of the declared values.
func (t Tier) Valid() bool {
	return t >= TierNone && t < TierCount
}

// IsPrize reports whether t pays out (any group win).
func (t Tier) IsPrize() bool {
	return t != TierNone
}

// Label is the human display name: "Group 1 Prize" ... "Group 6 Prize",
// "No prize".
func (t Tier) Label() string {
	if t == TierNone {
		return "No prize"
	}
	if !t.Valid() {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return fmt.Sprintf("Group %d Prize", int(t))
}

// Code is the stable storage form: "GROUP_1" ... "GROUP_6", "NONE".
func (t Tier) Code() string {
	if t == TierNone {
		return tierCodeNone
	}
	if !t.Valid() {
		return fmt.Sprintf("TIER_%d", int(t))
	}
	return fmt.Sprintf("%s%d", tierCodePrefix, int(t))
}

func (t Tier) String() string {
	return t.Code()
}

// ParseTier maps a storage code back to its Tier. Unknown codes return an
// error, never a default tier.
func ParseTier(code string) (Tier, error) {
	if code == tierCodeNone {
		return TierNone, nil
	}
	for g := TierGroup1; g <= TierGroup6; g++ {
		if code == g.Code() {
			return g, nil
		}
	}
	return TierNone, fmt.Errorf("unknown tier code %q", code)
}
