package prize

import (
	"testing"

	"toto-sim-lab/internal/domain"
)

// buildCase returns a ticket and draw with exactly the given number of
// primary matches, plus the supplementary on the ticket when asked. The
// draw is 1..6 with supplementary 7; non-matching ticket numbers come
// from 40..49.
func buildCase(t *testing.T, matches int, supplementary bool) (domain.NumberSet, domain.Draw) {
	t.Helper()

	primary, err := domain.NewNumberSet([]int{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	d := domain.Draw{Primary: primary, Supplementary: 7}

	nums := make([]int, 0, 6)
	for i := 1; i <= matches; i++ {
		nums = append(nums, i)
	}
	if supplementary {
		nums = append(nums, 7)
	}
	for filler := 40; len(nums) < 6; filler++ {
		nums = append(nums, filler)
	}
	player, err := domain.NewNumberSet(nums)
	if err != nil {
		t.Fatal(err)
	}
	return player, d
}

func TestClassify_DecisionTable(t *testing.T) {
	cases := []struct {
		matches       int
		supplementary bool
		want          domain.Tier
	}{
		{6, false, domain.TierGroup1},
		{5, true, domain.TierGroup2},
		{5, false, domain.TierGroup3},
		{4, true, domain.TierGroup4},
		{4, false, domain.TierGroup5},
		{3, true, domain.TierGroup6},
		{3, false, domain.TierNone},
		{2, true, domain.TierNone},
		{2, false, domain.TierNone},
		{1, true, domain.TierNone},
		{1, false, domain.TierNone},
		{0, true, domain.TierNone},
		{0, false, domain.TierNone},
	}

	for _, c := range cases {
		player, d := buildCase(t, c.matches, c.supplementary)
		got := Classify(player, d)

		if got.Tier != c.want {
			t.Errorf("%d matches, supp=%v: expected %v, got %v", c.matches, c.supplementary, c.want, got.Tier)
		}
		if got.MatchCount != c.matches {
			t.Errorf("%d matches, supp=%v: reported match count %d", c.matches, c.supplementary, got.MatchCount)
		}
		if got.SupplementaryMatched != c.supplementary {
			t.Errorf("%d matches, supp=%v: reported supplementary %v", c.matches, c.supplementary, got.SupplementaryMatched)
		}
		if len(got.MatchingNumbers) != c.matches {
			t.Errorf("%d matches: got matching numbers %v", c.matches, got.MatchingNumbers)
		}
	}
}

func TestClassify_Jackpot(t *testing.T) {
	player, _ := domain.NewNumberSet([]int{4, 12, 19, 23, 33, 40})
	d := domain.Draw{Primary: player, Supplementary: 7}

	got := Classify(player, d)
	if got.Tier != domain.TierGroup1 {
		t.Fatalf("expected Group 1, got %v", got.Tier)
	}
	if !got.IsJackpot() {
		t.Error("expected IsJackpot")
	}
	if got.MatchCount != 6 {
		t.Errorf("expected 6 matches, got %d", got.MatchCount)
	}
	// All six primaries matched, so the supplementary cannot be on the ticket
	if got.SupplementaryMatched {
		t.Error("supplementary cannot match a full-house ticket")
	}
}

func TestClassify_MatchingNumbersSorted(t *testing.T) {
	player, _ := domain.NewNumberSet([]int{40, 33, 23, 19, 12, 4})
	primary, _ := domain.NewNumberSet([]int{4, 40, 19, 45, 46, 47})
	d := domain.Draw{Primary: primary, Supplementary: 10}

	got := Classify(player, d)
	want := []int{4, 19, 40}
	if len(got.MatchingNumbers) != len(want) {
		t.Fatalf("expected %v, got %v", want, got.MatchingNumbers)
	}
	for i := range want {
		if got.MatchingNumbers[i] != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], got.MatchingNumbers[i])
		}
	}
	if got.Tier != domain.TierNone {
		t.Errorf("three matches without supplementary pay nothing, got %v", got.Tier)
	}
}

func TestClassify_SupplementaryAloneIsNoPrize(t *testing.T) {
	// Matching only the supplementary number wins nothing
	player, _ := domain.NewNumberSet([]int{7, 41, 42, 43, 44, 45})
	primary, _ := domain.NewNumberSet([]int{1, 2, 3, 4, 5, 6})
	d := domain.Draw{Primary: primary, Supplementary: 7}

	got := Classify(player, d)
	if got.Tier != domain.TierNone {
		t.Errorf("expected no prize, got %v", got.Tier)
	}
	if !got.SupplementaryMatched {
		t.Error("expected supplementary match to be reported")
	}
}
