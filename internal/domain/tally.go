package domain

// Tally counts classified draws per prize tier. It is a fixed-size array
// indexed by Tier, so recording can never miss a category and the zero
// value is ready to use.
type Tally [TierCount]uint64

// Record increments the count for t. Invalid tiers are ignored; the
// classifier cannot produce one.
func (t *Tally) Record(tier Tier) {
	if !tier.Valid() {
		return
	}
	t[tier]++
}

// Count returns the draws recorded for tier.
func (t Tally) Count(tier Tier) uint64 {
	if !tier.Valid() {
		return 0
	}
	return t[tier]
}

// Total is the number of draws recorded across all tiers.
func (t Tally) Total() uint64 {
	var sum uint64
	for _, c := range t {
		sum += c
	}
	return sum
}

// Prizes is the number of winning draws (every tier except no prize).
func (t Tally) Prizes() uint64 {
	return t.Total() - t[TierNone]
}

// Merge returns the element-wise sum of both tallies. Merging is
// commutative and associative, so per-worker tallies can be combined in
// any order.
func (t Tally) Merge(other Tally) Tally {
	var out Tally
	for i := range t {
		out[i] = t[i] + other[i]
	}
	return out
}

// Share is tier's percentage of all recorded draws (0 on an empty tally).
func (t Tally) Share(tier Tier) float64 {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return float64(t.Count(tier)) / float64(total) * 100
}
