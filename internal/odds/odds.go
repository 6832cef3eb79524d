// Package odds computes the theoretical statistics of the game. The odds
// themselves use exact integer arithmetic: C(49,6) is 13,983,816, not a
// float approximation.
package odds

import (
	"errors"
	"fmt"
	"math"

	"toto-sim-lab/internal/domain"
)

var errInvalidArgs = errors.New("invalid binomial arguments")

// Binomial returns C(n, k) using the multiply-then-divide scheme: the
// running product after step i is C(n-k+i, i), always an integer, so no
// intermediate truncation occurs. Errors on negative arguments or k > n.
func Binomial(n, k int64) (int64, error) {
	if n < 0 || k < 0 || k > n {
		return 0, fmt.Errorf("%w: C(%d, %d)", errInvalidArgs, n, k)
	}
	if k > n-k {
		k = n - k
	}
	var c int64 = 1
	for i := int64(1); i <= k; i++ {
		c = c * (n - k + i) / i
	}
	return c, nil
}

// Jackpot returns the 1-in-N odds of matching all six primary numbers of
// a single draw: C(49, 6) under the standard rules.
func Jackpot(r domain.Rules) int64 {
	n, err := Binomial(int64(r.PoolSize()), int64(r.PickCount))
	if err != nil {
		// Unreachable for rules that pass Validate
		panic(fmt.Sprintf("odds: %v", err))
	}
	return n
}

// EquivalentYears converts a draw count into real-world years at the
// game's draw frequency, rounded half away from zero to one decimal.
func EquivalentYears(draws int64, r domain.Rules) float64 {
	years := float64(draws) / float64(r.DrawsPerYear)
	return math.Round(years*10) / 10
}
