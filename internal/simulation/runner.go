package simulation

import (
	"context"
	"fmt"
	"time"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/idhash"
	"toto-sim-lab/internal/odds"
	"toto-sim-lab/internal/rng"
)

// DefaultMaxDraws is the standard trial budget. Command flags default to
// it; the runner itself rejects budgets below 1.
const DefaultMaxDraws = 1000000

// progressIncrements divides the budget into reporting steps, one per 5%.
const progressIncrements = 20

// ProgressFunc receives the completed and total trial counts each time the
// run crosses a reporting increment. Budgets smaller than the increment
// count report every trial.
type ProgressFunc func(completed, total int64)

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Player   domain.NumberSet
	Seed     int64
	MaxDraws int64
	Progress ProgressFunc // optional
	Source   rng.Source   // optional override of the seed-derived stream; tests script draws through it
}

// Runner plays draws for one ticket until the jackpot lands or the budget
// runs out, folding every outcome into a per-tier tally as it goes.
type Runner struct {
	player   domain.NumberSet
	seed     int64
	maxDraws int64
	progress ProgressFunc
	source   rng.Source
}

// NewRunner creates a sequential run-until-jackpot runner.
func NewRunner(opts RunnerOptions) *Runner {
	return &Runner{
		player:   opts.Player,
		seed:     opts.Seed,
		maxDraws: opts.MaxDraws,
		progress: opts.Progress,
		source:   opts.Source,
	}
}

// Run executes the session.
// Steps:
//  1. Validate ticket and budget
//  2. Build an engine over the seeded source
//  3. Fold trials: generate, classify, tally; stop early on Group 1
//  4. Assemble the summary with exact odds and equivalent years
//
// The context is checked at each progress increment; cancellation
// abandons the run without a summary.
func (r *Runner) Run(ctx context.Context) (*domain.SimulationSummary, error) {
	// 1. Validate ticket and budget
	if r.maxDraws < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxDraws, r.maxDraws)
	}

	// 2. Build an engine over the seeded source
	src := r.source
	if src == nil {
		src = rng.NewSource(r.seed)
	}
	engine, err := NewEngine(r.player, src)
	if err != nil {
		return nil, err
	}

	interval := r.maxDraws / progressIncrements
	if interval == 0 {
		interval = 1
	}
	nextProgress := interval

	// 3. Fold trials with early termination
	var (
		tally       domain.Tally
		completed   int64
		jackpotDraw int64
		winning     *domain.Draw
	)
	start := time.Now()
	for trial := int64(1); trial <= r.maxDraws; trial++ {
		result := engine.RunOnce()
		tally.Record(result.Classification.Tier)
		completed = trial

		if trial >= nextProgress {
			if r.progress != nil {
				r.progress(trial, r.maxDraws)
			}
			nextProgress += interval
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if result.Classification.IsJackpot() {
			jackpotDraw = trial
			d := result.Draw
			winning = &d
			break
		}
	}
	elapsed := time.Since(start).Seconds()

	// 4. Assemble the summary
	rules := domain.StandardRules()
	return &domain.SimulationSummary{
		SessionID:       idhash.ComputeSessionID(r.player, r.seed, r.maxDraws, domain.ModeSequential, 1),
		Player:          r.player,
		Seed:            r.seed,
		Mode:            domain.ModeSequential,
		Workers:         1,
		MaxDraws:        r.maxDraws,
		TotalDraws:      completed,
		JackpotAchieved: jackpotDraw != 0,
		JackpotDraw:     jackpotDraw,
		WinningDraw:     winning,
		Tally:           tally,
		ElapsedSeconds:  elapsed,
		TheoreticalOdds: odds.Jackpot(rules),
		EquivalentYears: odds.EquivalentYears(completed, rules),
		CreatedAt:       time.Now().UTC(),
	}, nil
}
