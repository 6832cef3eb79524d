package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PickCount is the size of a ticket under the standard rules. NumberSet is
// sized by it at compile time, so a set with the wrong count is not
// representable.
const PickCount = 6

// NumberSet is a player selection or the primary half of a draw: exactly
// six distinct numbers in [1, 49], held in ascending order. The zero value
// is not valid; construct through NewNumberSet or ParseNumberSet.
type NumberSet [PickCount]int

// NewNumberSet validates and sorts nums into a NumberSet. It rejects wrong
// counts, out-of-range values and duplicates, wrapping the matching
// sentinel so callers can branch with errors.Is.
func NewNumberSet(nums []int) (NumberSet, error) {
	var set NumberSet
	if len(nums) != PickCount {
		return set, fmt.Errorf("%w: got %d, want %d", ErrInvalidCount, len(nums), PickCount)
	}
	rules := StandardRules()
	seen := make(map[int]struct{}, PickCount)
	for _, n := range nums {
		if n < rules.RangeLow || n > rules.RangeHigh {
			return set, fmt.Errorf("%w: %d not in [%d, %d]", ErrNumberOutOfRange, n, rules.RangeLow, rules.RangeHigh)
		}
		if _, dup := seen[n]; dup {
			return set, fmt.Errorf("%w: %d", ErrDuplicateNumber, n)
		}
		seen[n] = struct{}{}
	}
	copy(set[:], nums)
	sort.Ints(set[:])
	return set, nil
}

// ParseNumberSet parses a comma or whitespace separated list such as
// "4, 12, 19, 23, 33, 40" into a NumberSet.
func ParseNumberSet(s string) (NumberSet, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	nums := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return NumberSet{}, fmt.Errorf("%w: %q", ErrMalformedNumbers, f)
		}
		nums = append(nums, n)
	}
	return NewNumberSet(nums)
}

// Contains reports whether n is one of the six numbers.
func (s NumberSet) Contains(n int) bool {
	for _, v := range s {
		if v == n {
			return true
		}
	}
	return false
}

// Intersect returns the sorted numbers present in both sets. The result is
// a fresh slice; an empty intersection returns a non-nil empty slice.
func (s NumberSet) Intersect(other NumberSet) []int {
	out := make([]int, 0, PickCount)
	for _, v := range s {
		if other.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}

// Slice returns the numbers as a fresh ascending slice.
func (s NumberSet) Slice() []int {
	out := make([]int, PickCount)
	copy(out, s[:])
	return out
}

// Equal reports whether both sets hold the same six numbers.
func (s NumberSet) Equal(other NumberSet) bool {
	return s == other
}

// String renders the canonical display form "4, 12, 19, 23, 33, 40".
func (s NumberSet) String() string {
	parts := make([]string, PickCount)
	for i, n := range s {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
