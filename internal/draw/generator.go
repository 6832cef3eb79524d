// Package draw produces complete lottery drawings from an entropy source.
package draw

import (
	"errors"
	"fmt"
	"sort"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/rng"
)

// Generator draws results for one fixed rule set. It holds no mutable
// state of its own; all randomness comes from the source, so a generator
// over a seeded source yields a reproducible draw sequence.
type Generator struct {
	rules domain.Rules
	src   rng.Source
}

// NewGenerator validates the rules against the fixed ticket size and wires
// the entropy source. The source must not be shared across goroutines.
func NewGenerator(rules domain.Rules, src rng.Source) (*Generator, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("draw: %w", err)
	}
	if rules.PickCount != domain.PickCount {
		return nil, fmt.Errorf("draw: %w: pick count %d unsupported", domain.ErrInvalidRules, rules.PickCount)
	}
	if src == nil {
		return nil, errors.New("draw: nil entropy source")
	}
	return &Generator{rules: rules, src: src}, nil
}

// Generate performs one drawing: six distinct primary numbers plus a
// supplementary from the 43 left over. A partial Fisher-Yates over the
// pool selects seven positions; the first six become the sorted primary
// set and the seventh the supplementary, which therefore can never repeat
// a primary number.
func (g *Generator) Generate() domain.Draw {
	pool := make([]int, g.rules.PoolSize())
	for i := range pool {
		pool[i] = g.rules.RangeLow + i
	}

	selections := g.rules.PickCount + g.rules.Supplementary
	for i := 0; i < selections; i++ {
		j := i + g.src.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	var primary domain.NumberSet
	copy(primary[:], pool[:g.rules.PickCount])
	sort.Ints(primary[:])

	return domain.Draw{
		Primary:       primary,
		Supplementary: pool[g.rules.PickCount],
	}
}
