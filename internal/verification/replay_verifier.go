package verification

import (
	"context"
	"errors"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/simulation"
	"toto-sim-lab/internal/storage"
)

var (
	// ErrSessionNotFound is returned when the session ID doesn't exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotReplayable is returned for parallel sessions. Worker scheduling
	// decides which trial lands the jackpot, so the stored outcome is not a
	// pure function of the seed.
	ErrNotReplayable = errors.New("session is not replayable")
)

// ReplayVerifier implements Verifier by re-running stored sessions through
// the sequential runner.
type ReplayVerifier struct {
	sessionStore storage.SessionStore
}

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(sessionStore storage.SessionStore) *ReplayVerifier {
	return &ReplayVerifier{sessionStore: sessionStore}
}

// VerifySession verifies a single session by replaying it from its seed.
func (v *ReplayVerifier) VerifySession(ctx context.Context, sessionID string) (*VerificationResult, error) {
	// 1. Load stored session
	stored, err := v.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	// 2. Replay from the recorded parameters
	replayed, err := v.replaySession(ctx, stored)
	if err != nil {
		return nil, err
	}

	// 3. Compare results
	divergences := CompareSummaries(stored, replayed)

	return &VerificationResult{
		SessionID:     sessionID,
		Match:         len(divergences) == 0,
		Divergences:   divergences,
		StoredDraws:   stored.TotalDraws,
		ReplayedDraws: replayed.TotalDraws,
	}, nil
}

// VerifyAll verifies all stored sessions. Parallel sessions count as
// skipped, not divergent.
func (v *ReplayVerifier) VerifyAll(ctx context.Context) (*VerificationReport, error) {
	// Load all sessions
	sessions, err := v.sessionStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{
		TotalSessions: len(sessions),
		Results:       make([]VerificationResult, 0, len(sessions)),
	}

	for _, stored := range sessions {
		result, err := v.VerifySession(ctx, stored.SessionID)
		if err != nil {
			if errors.Is(err, ErrNotReplayable) {
				report.SkippedSessions++
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Record error as divergence
			report.Results = append(report.Results, VerificationResult{
				SessionID:   stored.SessionID,
				Match:       false,
				StoredDraws: stored.TotalDraws,
				Divergences: []FieldDivergence{
					{Field: "Error", Expected: nil, Actual: err.Error()},
				},
			})
			report.DivergentSessions++
			continue
		}

		report.Results = append(report.Results, *result)
		if result.Match {
			report.MatchedSessions++
		} else {
			report.DivergentSessions++
		}
	}

	return report, nil
}

// replaySession re-runs the stored parameters sequentially.
func (v *ReplayVerifier) replaySession(ctx context.Context, stored *domain.SimulationSummary) (*domain.SimulationSummary, error) {
	if stored.Mode != domain.ModeSequential {
		return nil, ErrNotReplayable
	}

	runner := simulation.NewRunner(simulation.RunnerOptions{
		Player:   stored.Player,
		Seed:     stored.Seed,
		MaxDraws: stored.MaxDraws,
	})
	return runner.Run(ctx)
}
