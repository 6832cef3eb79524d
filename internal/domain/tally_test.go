package domain

import (
	"math"
	"testing"
)

func TestTally_ZeroValueIsUsable(t *testing.T) {
	var tally Tally

	if tally.Total() != 0 {
		t.Errorf("expected empty tally total 0, got %d", tally.Total())
	}
	tally.Record(TierGroup6)
	if tally.Count(TierGroup6) != 1 {
		t.Errorf("expected count 1 after record, got %d", tally.Count(TierGroup6))
	}
}

func TestTally_TotalSpansAllTiers(t *testing.T) {
	var tally Tally
	tally.Record(TierGroup1)
	tally.Record(TierGroup3)
	tally.Record(TierNone)
	tally.Record(TierNone)

	if tally.Total() != 4 {
		t.Errorf("expected total 4, got %d", tally.Total())
	}
	if tally.Prizes() != 2 {
		t.Errorf("expected 2 prize draws, got %d", tally.Prizes())
	}
}

func TestTally_MergeIsCommutative(t *testing.T) {
	var a, b Tally
	a.Record(TierGroup1)
	a.Record(TierNone)
	b.Record(TierGroup5)
	b.Record(TierNone)
	b.Record(TierNone)

	ab := a.Merge(b)
	ba := b.Merge(a)
	for _, tier := range Tiers() {
		if ab.Count(tier) != ba.Count(tier) {
			t.Errorf("tier %v: merge order changed the count (%d vs %d)", tier, ab.Count(tier), ba.Count(tier))
		}
	}
	if ab.Total() != a.Total()+b.Total() {
		t.Errorf("expected merged total %d, got %d", a.Total()+b.Total(), ab.Total())
	}

	// Merging must not mutate the receivers
	if a.Total() != 2 || b.Total() != 3 {
		t.Errorf("merge mutated its inputs: a=%d b=%d", a.Total(), b.Total())
	}
}

func TestTally_Share(t *testing.T) {
	var tally Tally
	for i := 0; i < 3; i++ {
		tally.Record(TierGroup6)
	}
	tally.Record(TierNone)

	// 3 of 4 draws → 75%
	if got := tally.Share(TierGroup6); math.Abs(got-75.0) > 1e-9 {
		t.Errorf("expected share 75.0, got %f", got)
	}
	if got := tally.Share(TierGroup1); got != 0 {
		t.Errorf("expected share 0 for unrecorded tier, got %f", got)
	}

	// Empty tally has no shares, not NaN
	var empty Tally
	if got := empty.Share(TierNone); got != 0 {
		t.Errorf("expected share 0 on empty tally, got %f", got)
	}
}

func TestTally_RecordIgnoresInvalidTier(t *testing.T) {
	var tally Tally
	tally.Record(Tier(99))
	tally.Record(Tier(-1))

	if tally.Total() != 0 {
		t.Errorf("invalid tiers must not be recorded, got total %d", tally.Total())
	}
}
