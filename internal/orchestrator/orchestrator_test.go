// Package orchestrator provides seed-sweep orchestration tests.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/storage/memory"
)

func mustNumbers(t *testing.T, nums []int) domain.NumberSet {
	t.Helper()
	set, err := domain.NewNumberSet(nums)
	if err != nil {
		t.Fatalf("NewNumberSet(%v) failed: %v", nums, err)
	}
	return set
}

func TestOrchestrator_Run_NoSeeds(t *testing.T) {
	ctx := context.Background()

	orch := New(Options{
		Player:         mustNumbers(t, []int{4, 12, 19, 23, 33, 40}),
		Seeds:          nil,
		MaxDraws:       1000,
		SessionStore:   memory.NewSessionStore(),
		TierCountStore: memory.NewSessionTierCountStore(),
	})

	_, err := orch.Run(ctx)
	if !errors.Is(err, ErrNoSeeds) {
		t.Errorf("expected ErrNoSeeds, got: %v", err)
	}
}

func TestOrchestrator_Run_InvalidTicket(t *testing.T) {
	ctx := context.Background()

	var empty domain.NumberSet
	orch := New(Options{
		Player:         empty,
		Seeds:          []int64{1},
		MaxDraws:       1000,
		SessionStore:   memory.NewSessionStore(),
		TierCountStore: memory.NewSessionTierCountStore(),
	})

	_, err := orch.Run(ctx)
	if err == nil {
		t.Fatal("expected error for invalid ticket")
	}
	if !strings.Contains(err.Error(), "invalid ticket") {
		t.Errorf("expected invalid ticket error, got: %v", err)
	}
}

func TestOrchestrator_Run_SweepsSeeds(t *testing.T) {
	ctx := context.Background()
	sessionStore := memory.NewSessionStore()
	tierCountStore := memory.NewSessionTierCountStore()

	orch := New(Options{
		Player:         mustNumbers(t, []int{4, 12, 19, 23, 33, 40}),
		Seeds:          []int64{101, 202, 303},
		MaxDraws:       1000,
		SessionStore:   sessionStore,
		TierCountStore: tierCountStore,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.SessionsRun != 3 {
		t.Errorf("expected 3 sessions run, got %d", result.SessionsRun)
	}
	if result.SessionsPersisted != 3 {
		t.Errorf("expected 3 sessions persisted, got %d", result.SessionsPersisted)
	}
	if result.DuplicateSessions != 0 {
		t.Errorf("expected 0 duplicates, got %d", result.DuplicateSessions)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %v", result.Errors)
	}

	// Every session landed in the store with its tier rows
	sessions, err := sessionStore.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 stored sessions, got %d", len(sessions))
	}

	var storedDraws int64
	for _, s := range sessions {
		storedDraws += s.TotalDraws

		counts, err := tierCountStore.GetBySessionID(ctx, s.SessionID)
		if err != nil {
			t.Fatalf("GetBySessionID(%s) failed: %v", s.SessionID, err)
		}
		if len(counts) != domain.TierCount {
			t.Errorf("session %s: expected %d tier rows, got %d", s.SessionID, domain.TierCount, len(counts))
		}
	}
	if result.TotalDraws != storedDraws {
		t.Errorf("expected TotalDraws %d to match stored sum %d", result.TotalDraws, storedDraws)
	}
	if result.TotalDraws <= 0 || result.TotalDraws > 3000 {
		t.Errorf("TotalDraws %d outside the 3x1000 budget", result.TotalDraws)
	}
}

func TestOrchestrator_Run_SkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	sessionStore := memory.NewSessionStore()
	tierCountStore := memory.NewSessionTierCountStore()

	opts := Options{
		Player:         mustNumbers(t, []int{4, 12, 19, 23, 33, 40}),
		Seeds:          []int64{101, 202, 303},
		MaxDraws:       1000,
		SessionStore:   sessionStore,
		TierCountStore: tierCountStore,
	}

	if _, err := New(opts).Run(ctx); err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}

	// Identical parameters reproduce identical session IDs
	result, err := New(opts).Run(ctx)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}

	if result.SessionsRun != 3 {
		t.Errorf("expected 3 sessions run, got %d", result.SessionsRun)
	}
	if result.SessionsPersisted != 0 {
		t.Errorf("expected 0 sessions persisted, got %d", result.SessionsPersisted)
	}
	if result.DuplicateSessions != 3 {
		t.Errorf("expected 3 duplicates, got %d", result.DuplicateSessions)
	}

	count, err := sessionStore.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 stored sessions after rerun, got %d", count)
	}
}

func TestOrchestrator_Run_Parallel(t *testing.T) {
	ctx := context.Background()
	sessionStore := memory.NewSessionStore()
	tierCountStore := memory.NewSessionTierCountStore()

	orch := New(Options{
		Player:         mustNumbers(t, []int{4, 12, 19, 23, 33, 40}),
		Seeds:          []int64{7},
		MaxDraws:       2000,
		Workers:        2,
		SessionStore:   sessionStore,
		TierCountStore: tierCountStore,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.SessionsPersisted != 1 {
		t.Fatalf("expected 1 session persisted, got %d", result.SessionsPersisted)
	}

	sessions, err := sessionStore.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 stored session, got %d", len(sessions))
	}
	if sessions[0].Mode != domain.ModeParallel {
		t.Errorf("expected parallel mode, got %s", sessions[0].Mode)
	}
	if sessions[0].Workers != 2 {
		t.Errorf("expected 2 workers, got %d", sessions[0].Workers)
	}
}

func TestOrchestrator_Run_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := New(Options{
		Player:         mustNumbers(t, []int{4, 12, 19, 23, 33, 40}),
		Seeds:          []int64{101},
		MaxDraws:       1000,
		SessionStore:   memory.NewSessionStore(),
		TierCountStore: memory.NewSessionTierCountStore(),
	})

	_, err := orch.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}
