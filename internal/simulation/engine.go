// Package simulation runs draws against a fixed ticket: single plays and
// run-until-jackpot sessions, sequential or across workers.
package simulation

import (
	"errors"
	"fmt"
	"time"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/draw"
	"toto-sim-lab/internal/prize"
	"toto-sim-lab/internal/rng"
)

// Engine errors
var (
	ErrInvalidMaxDraws = errors.New("max draws must be at least 1")
)

// Engine plays draws for one ticket. It wraps a generator over a single
// entropy source and must not be shared across goroutines; parallel runs
// build one engine per worker.
type Engine struct {
	player domain.NumberSet
	gen    *draw.Generator
	now    func() time.Time
}

// NewEngine validates the ticket and builds a generator over src under
// the standard rules.
func NewEngine(player domain.NumberSet, src rng.Source) (*Engine, error) {
	if _, err := domain.NewNumberSet(player.Slice()); err != nil {
		return nil, fmt.Errorf("simulation: ticket: %w", err)
	}
	gen, err := draw.NewGenerator(domain.StandardRules(), src)
	if err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}
	return &Engine{player: player, gen: gen, now: time.Now}, nil
}

// Player returns the ticket the engine plays.
func (e *Engine) Player() domain.NumberSet {
	return e.player
}

// RunOnce plays a single draw: generate, classify, timestamp.
func (e *Engine) RunOnce() domain.DrawResult {
	d := e.gen.Generate()
	return domain.DrawResult{
		Draw:           d,
		Classification: prize.Classify(e.player, d),
		DrawnAt:        e.now(),
	}
}
