package simulation

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/idhash"
	"toto-sim-lab/internal/odds"
	"toto-sim-lab/internal/rng"
)

// trialChunk is how many trials a worker claims from the shared budget at
// a time. Small enough that workers stop promptly after a jackpot, large
// enough that the counter is not contended every draw.
const trialChunk = 1024

// ParallelRunnerOptions contains configuration for creating a
// ParallelRunner.
type ParallelRunnerOptions struct {
	Player   domain.NumberSet
	Seed     int64
	MaxDraws int64
	Workers  int          // 0 uses one worker per CPU
	Progress ProgressFunc // optional; may be called from several goroutines

	// Sources overrides the per-worker seed-derived streams; tests script
	// draws through it.
	Sources func(worker int) rng.Source
}

// ParallelRunner spreads a run-until-jackpot session across workers.
// Worker i draws from its own source seeded off the session seed, folds a
// private tally, and the tallies merge after the run. The first worker to
// land a Group 1 win stops the others.
//
// Unlike the sequential runner the stop point depends on goroutine
// scheduling, so two runs with the same seed agree on the draw streams
// but not on the exact trial the session ends; parallel sessions are
// therefore not replay-verifiable.
type ParallelRunner struct {
	player   domain.NumberSet
	seed     int64
	maxDraws int64
	workers  int
	progress ProgressFunc
	sources  func(worker int) rng.Source
}

// NewParallelRunner creates a worker-pool run-until-jackpot runner.
func NewParallelRunner(opts ParallelRunnerOptions) *ParallelRunner {
	return &ParallelRunner{
		player:   opts.Player,
		seed:     opts.Seed,
		maxDraws: opts.MaxDraws,
		workers:  opts.Workers,
		progress: opts.Progress,
		sources:  opts.Sources,
	}
}

// Run executes the session across the worker pool. The shared budget is
// handed out in chunks; TotalDraws is the number of trials all workers
// actually performed, and JackpotDraw is the global trial count at the
// moment the winning draw was recorded.
func (r *ParallelRunner) Run(ctx context.Context) (*domain.SimulationSummary, error) {
	if r.maxDraws < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxDraws, r.maxDraws)
	}
	workers := r.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if int64(workers) > r.maxDraws {
		workers = int(r.maxDraws)
	}

	// Build all engines up front so worker goroutines cannot fail.
	newSource := r.sources
	if newSource == nil {
		newSource = func(worker int) rng.Source {
			return rng.NewSource(rng.WorkerSeed(r.seed, worker))
		}
	}
	engines := make([]*Engine, workers)
	for i := range engines {
		engine, err := NewEngine(r.player, newSource(i))
		if err != nil {
			return nil, err
		}
		engines[i] = engine
	}

	interval := r.maxDraws / progressIncrements
	if interval == 0 {
		interval = 1
	}

	var (
		claimed   atomic.Int64
		completed atomic.Int64
		stop      atomic.Bool

		// Written only by the CompareAndSwap winner; wg.Wait orders the
		// read below.
		winningDraw *domain.Draw
		jackpotDraw int64
	)

	// completed.Add hands each progress increment to exactly one worker;
	// the mutex keeps reports monotonic for the callback.
	var progressMu sync.Mutex
	var lastReported int64
	report := func(done int64) {
		if r.progress == nil {
			return
		}
		progressMu.Lock()
		defer progressMu.Unlock()
		if done <= lastReported {
			return
		}
		lastReported = done
		r.progress(done, r.maxDraws)
	}

	tallies := make([]domain.Tally, workers)
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			engine := engines[worker]
			var local domain.Tally
			for !stop.Load() && ctx.Err() == nil {
				first := claimed.Add(trialChunk) - trialChunk
				if first >= r.maxDraws {
					break
				}
				last := first + trialChunk
				if last > r.maxDraws {
					last = r.maxDraws
				}
				for t := first; t < last && !stop.Load(); t++ {
					result := engine.RunOnce()
					local.Record(result.Classification.Tier)
					done := completed.Add(1)
					if done%interval == 0 {
						report(done)
					}
					if result.Classification.IsJackpot() {
						if stop.CompareAndSwap(false, true) {
							d := result.Draw
							winningDraw = &d
							jackpotDraw = done
						}
						break
					}
				}
			}
			tallies[worker] = local
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start).Seconds()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tally domain.Tally
	for _, t := range tallies {
		tally = tally.Merge(t)
	}

	rules := domain.StandardRules()
	return &domain.SimulationSummary{
		SessionID:       idhash.ComputeSessionID(r.player, r.seed, r.maxDraws, domain.ModeParallel, workers),
		Player:          r.player,
		Seed:            r.seed,
		Mode:            domain.ModeParallel,
		Workers:         workers,
		MaxDraws:        r.maxDraws,
		TotalDraws:      completed.Load(),
		JackpotAchieved: winningDraw != nil,
		JackpotDraw:     jackpotDraw,
		WinningDraw:     winningDraw,
		Tally:           tally,
		ElapsedSeconds:  elapsed,
		TheoreticalOdds: odds.Jackpot(rules),
		EquivalentYears: odds.EquivalentYears(completed.Load(), rules),
		CreatedAt:       time.Now().UTC(),
	}, nil
}
