package domain

import "testing"

func TestTier_Labels(t *testing.T) {
	cases := []struct {
		tier  Tier
		label string
	}{
		{TierGroup1, "Group 1 Prize"},
		{TierGroup2, "Group 2 Prize"},
		{TierGroup3, "Group 3 Prize"},
		{TierGroup4, "Group 4 Prize"},
		{TierGroup5, "Group 5 Prize"},
		{TierGroup6, "Group 6 Prize"},
		{TierNone, "No prize"},
	}
	for _, c := range cases {
		if got := c.tier.Label(); got != c.label {
			t.Errorf("tier %v: expected label %q, got %q", c.tier, c.label, got)
		}
	}
}

func TestTier_CodeRoundTrip(t *testing.T) {
	for _, tier := range Tiers() {
		parsed, err := ParseTier(tier.Code())
		if err != nil {
			t.Errorf("tier %v: unexpected parse error: %v", tier, err)
			continue
		}
		if parsed != tier {
			t.Errorf("expected %v after round trip, got %v", tier, parsed)
		}
	}
}

func TestParseTier_UnknownCode(t *testing.T) {
	if _, err := ParseTier("GROUP_7"); err == nil {
		t.Error("expected error for GROUP_7")
	}
	if _, err := ParseTier(""); err == nil {
		t.Error("expected error for empty code")
	}
}

func TestTiers_DisplayOrder(t *testing.T) {
	// Group 1 down to Group 6, no prize last
	order := Tiers()
	want := []Tier{TierGroup1, TierGroup2, TierGroup3, TierGroup4, TierGroup5, TierGroup6, TierNone}
	if len(order) != TierCount {
		t.Fatalf("expected %d tiers, got %d", TierCount, len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: expected %v, got %v", i, want[i], order[i])
		}
	}
}

func TestTier_IsPrize(t *testing.T) {
	if TierNone.IsPrize() {
		t.Error("no prize must not count as a prize")
	}
	for g := TierGroup1; g <= TierGroup6; g++ {
		if !g.IsPrize() {
			t.Errorf("tier %v should count as a prize", g)
		}
	}
}
