// Package orchestrator provides seed-sweep orchestration.
// It coordinates: simulation → session persistence → tier count fan-out
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/observability"
	"toto-sim-lab/internal/simulation"
	"toto-sim-lab/internal/storage"
)

// ErrNoSeeds is returned when the sweep has nothing to run.
var ErrNoSeeds = errors.New("no seeds to sweep")

// Orchestrator runs one ticket across a list of seeds.
// Flow per seed: simulate → persist session → persist tier counts
type Orchestrator struct {
	player   domain.NumberSet
	seeds    []int64
	maxDraws int64
	workers  int

	sessionStore   storage.SessionStore
	tierCountStore storage.SessionTierCountStore

	progress simulation.ProgressFunc
	verbose  bool
}

// Options for creating Orchestrator.
type Options struct {
	Player   domain.NumberSet
	Seeds    []int64
	MaxDraws int64 // 0 means simulation.DefaultMaxDraws
	Workers  int   // >1 routes every seed through the parallel runner

	// Required stores
	SessionStore   storage.SessionStore
	TierCountStore storage.SessionTierCountStore

	// Options
	Progress simulation.ProgressFunc // optional, forwarded to every run
	Verbose  bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	maxDraws := opts.MaxDraws
	if maxDraws == 0 {
		maxDraws = simulation.DefaultMaxDraws
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		player:         opts.Player,
		seeds:          opts.Seeds,
		maxDraws:       maxDraws,
		workers:        workers,
		sessionStore:   opts.SessionStore,
		tierCountStore: opts.TierCountStore,
		progress:       opts.Progress,
		verbose:        opts.Verbose,
	}
}

// RunSummary contains results from a sweep execution.
type RunSummary struct {
	SessionsRun       int
	SessionsPersisted int
	DuplicateSessions int
	JackpotSessions   int
	TotalDraws        int64
	ElapsedSeconds    float64
	Errors            []string
}

// Run executes the sweep.
// Phases:
//  1. Validate ticket and seed list
//  2. Per seed: simulate, persist the summary, fan out tier counts
//  3. Record sweep metrics
//
// A failing seed is recorded and the sweep moves on; only validation or
// context cancellation abort the whole run.
func (o *Orchestrator) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()

	// Phase 1: Validate
	if _, err := domain.NewNumberSet(o.player.Slice()); err != nil {
		return nil, fmt.Errorf("invalid ticket: %w", err)
	}
	if len(o.seeds) == 0 {
		return nil, ErrNoSeeds
	}

	o.log("Phase 1: Sweeping %d seeds (max draws %d, workers %d)",
		len(o.seeds), o.maxDraws, o.workers)

	summary := &RunSummary{}

	// Phase 2: Per-seed runs
	for i, seed := range o.seeds {
		if ctx.Err() != nil {
			observability.RecordSweepRun("aborted", time.Since(start).Seconds())
			return nil, ctx.Err()
		}

		sum, err := o.runSeed(ctx, seed)
		if err != nil {
			if ctx.Err() != nil {
				observability.RecordSweepRun("aborted", time.Since(start).Seconds())
				return nil, ctx.Err()
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("seed %d: %v", seed, err))
			continue
		}

		summary.SessionsRun++
		summary.TotalDraws += sum.TotalDraws
		if sum.JackpotAchieved {
			summary.JackpotSessions++
		}
		recordRunMetrics(sum)

		persisted, err := o.persist(ctx, sum)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("persist %s: %v", sum.SessionID, err))
			continue
		}
		if persisted {
			summary.SessionsPersisted++
			observability.RecordSessionPersisted()
			o.log("  Seed %d (%d/%d): %d draws, persisted", seed, i+1, len(o.seeds), sum.TotalDraws)
		} else {
			summary.DuplicateSessions++
			observability.RecordDuplicateSession()
			o.log("  Seed %d (%d/%d): duplicate session, skipped", seed, i+1, len(o.seeds))
		}
	}

	summary.ElapsedSeconds = time.Since(start).Seconds()

	// Phase 3: Sweep metrics
	status := "ok"
	if len(summary.Errors) > 0 {
		status = "partial"
	}
	observability.RecordSweepRun(status, summary.ElapsedSeconds)
	if len(summary.Errors) == 0 {
		observability.MarkSweepSuccess()
	}

	o.log("Sweep completed: %d run, %d persisted, %d duplicates, %d jackpots (%d errors)",
		summary.SessionsRun, summary.SessionsPersisted, summary.DuplicateSessions,
		summary.JackpotSessions, len(summary.Errors))

	return summary, nil
}

// runSeed executes one session, sequential or parallel per worker count.
func (o *Orchestrator) runSeed(ctx context.Context, seed int64) (*domain.SimulationSummary, error) {
	if o.workers > 1 {
		runner := simulation.NewParallelRunner(simulation.ParallelRunnerOptions{
			Player:   o.player,
			Seed:     seed,
			MaxDraws: o.maxDraws,
			Workers:  o.workers,
			Progress: o.progress,
		})
		return runner.Run(ctx)
	}
	runner := simulation.NewRunner(simulation.RunnerOptions{
		Player:   o.player,
		Seed:     seed,
		MaxDraws: o.maxDraws,
		Progress: o.progress,
	})
	return runner.Run(ctx)
}

// persist writes the session and its tier counts. Returns false when the
// session already exists; the existing rows are left untouched.
func (o *Orchestrator) persist(ctx context.Context, sum *domain.SimulationSummary) (bool, error) {
	if err := o.sessionStore.Insert(ctx, sum); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return false, nil
		}
		return false, err
	}

	if err := o.tierCountStore.InsertBulk(ctx, sum.TierCounts()); err != nil {
		// Tier rows from an earlier partial write are fine to keep
		if errors.Is(err, storage.ErrDuplicateKey) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// recordRunMetrics feeds one finished session into the process counters.
func recordRunMetrics(sum *domain.SimulationSummary) {
	observability.RecordSessionRun(sum.Mode, sum.TotalDraws, sum.JackpotAchieved, sum.ElapsedSeconds)
	for _, tier := range domain.Tiers() {
		if tier.IsPrize() {
			observability.RecordPrizeDraws(tier.Code(), sum.Tally.Count(tier))
		}
	}
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
