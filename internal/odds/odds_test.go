package odds

import (
	"testing"

	"toto-sim-lab/internal/domain"
)

func TestBinomial_KnownValues(t *testing.T) {
	cases := []struct {
		n, k, want int64
	}{
		{49, 6, 13983816},
		{43, 1, 43},
		{6, 6, 1},
		{6, 0, 1},
		{0, 0, 1},
		{10, 3, 120},
		{52, 5, 2598960},
	}
	for _, c := range cases {
		got, err := Binomial(c.n, c.k)
		if err != nil {
			t.Errorf("C(%d,%d): unexpected error: %v", c.n, c.k, err)
			continue
		}
		if got != c.want {
			t.Errorf("C(%d,%d): expected %d, got %d", c.n, c.k, c.want, got)
		}
	}
}

func TestBinomial_InvalidArguments(t *testing.T) {
	if _, err := Binomial(5, 6); err == nil {
		t.Error("expected error for k > n")
	}
	if _, err := Binomial(-1, 0); err == nil {
		t.Error("expected error for negative n")
	}
	if _, err := Binomial(5, -1); err == nil {
		t.Error("expected error for negative k")
	}
}

func TestJackpot_StandardRules(t *testing.T) {
	// The published odds of a Group 1 win
	if got := Jackpot(domain.StandardRules()); got != 13983816 {
		t.Errorf("expected 13983816, got %d", got)
	}
}

func TestEquivalentYears_Rounding(t *testing.T) {
	rules := domain.StandardRules()
	cases := []struct {
		draws int64
		want  float64
	}{
		{0, 0},
		{104, 1.0},
		{52, 0.5},
		{1000000, 9615.4}, // 1000000 / 104 = 9615.3846...
		{150, 1.4},        // 1.4423 rounds down
		{151, 1.5},        // 1.4519 rounds up
	}
	for _, c := range cases {
		if got := EquivalentYears(c.draws, rules); got != c.want {
			t.Errorf("draws %d: expected %.1f years, got %.1f", c.draws, c.want, got)
		}
	}
}
