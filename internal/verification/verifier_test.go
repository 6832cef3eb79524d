package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/simulation"
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

// storedSummary builds a fixed jackpot summary. Each call returns a fresh
// value so tests can tamper with one side.
func storedSummary(t *testing.T) *domain.SimulationSummary {
	t.Helper()
	player := mustNumbers(t, []int{4, 12, 19, 23, 33, 40})
	return &domain.SimulationSummary{
		SessionID:       "abc123",
		Player:          player,
		Seed:            42,
		Mode:            domain.ModeSequential,
		Workers:         1,
		MaxDraws:        1000000,
		TotalDraws:      250000,
		JackpotAchieved: true,
		JackpotDraw:     250000,
		WinningDraw:     &domain.Draw{Primary: player, Supplementary: 7},
		Tally:           domain.Tally{249000, 1, 0, 4, 45, 700, 250},
		ElapsedSeconds:  1.25,
		TheoreticalOdds: 13983816,
		EquivalentYears: 2403.8,
		CreatedAt:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// runSession produces a real summary through the sequential runner.
func runSession(t *testing.T, seed, maxDraws int64) *domain.SimulationSummary {
	t.Helper()
	runner := simulation.NewRunner(simulation.RunnerOptions{
		Player:   mustNumbers(t, []int{4, 12, 19, 23, 33, 40}),
		Seed:     seed,
		MaxDraws: maxDraws,
	})
	sum, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return sum
}

func TestCompareSummaries_ExactMatch(t *testing.T) {
	stored := storedSummary(t)
	replayed := storedSummary(t)

	// Wall-clock fields never participate in the comparison
	replayed.ElapsedSeconds = 99.9
	replayed.CreatedAt = replayed.CreatedAt.Add(48 * time.Hour)

	divergences := CompareSummaries(stored, replayed)

	if len(divergences) != 0 {
		t.Errorf("Expected 0 divergences, got %d: %v", len(divergences), divergences)
	}
}

func TestCompareSummaries_TotalDrawsDivergence(t *testing.T) {
	stored := storedSummary(t)
	replayed := storedSummary(t)
	replayed.TotalDraws = 250001

	divergences := CompareSummaries(stored, replayed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d: %v", len(divergences), divergences)
	}
	if divergences[0].Field != "TotalDraws" {
		t.Errorf("Expected TotalDraws divergence, got %s", divergences[0].Field)
	}
}

func TestCompareSummaries_TallyDivergence(t *testing.T) {
	stored := storedSummary(t)
	replayed := storedSummary(t)
	replayed.Tally[domain.TierGroup5] = 699

	divergences := CompareSummaries(stored, replayed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d: %v", len(divergences), divergences)
	}
	if divergences[0].Field != "Tally.GROUP_5" {
		t.Errorf("Expected Tally.GROUP_5 divergence, got %s", divergences[0].Field)
	}
}

func TestCompareSummaries_WinningDrawDivergence(t *testing.T) {
	stored := storedSummary(t)
	replayed := storedSummary(t)
	replayed.WinningDraw = nil

	divergences := CompareSummaries(stored, replayed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d: %v", len(divergences), divergences)
	}
	if divergences[0].Field != "WinningDraw" {
		t.Errorf("Expected WinningDraw divergence, got %s", divergences[0].Field)
	}
	if divergences[0].Actual != nil {
		t.Errorf("Expected nil actual for missing draw, got %v", divergences[0].Actual)
	}

	// Same supplementary check with both draws present
	replayed = storedSummary(t)
	replayed.WinningDraw.Supplementary = 8

	divergences = CompareSummaries(stored, replayed)
	if len(divergences) != 1 || divergences[0].Field != "WinningDraw" {
		t.Errorf("Expected WinningDraw divergence, got %v", divergences)
	}
}

func TestCompareSummaries_WithinTolerance(t *testing.T) {
	stored := storedSummary(t)
	replayed := storedSummary(t)
	replayed.EquivalentYears = stored.EquivalentYears + FloatTolerance/2

	divergences := CompareSummaries(stored, replayed)

	if len(divergences) != 0 {
		t.Errorf("Expected 0 divergences within tolerance, got %d: %v", len(divergences), divergences)
	}
}

func TestReplayVerifier_VerifySession_ExactMatch(t *testing.T) {
	ctx := context.Background()

	store := memory.NewSessionStore()
	sum := runSession(t, 42, 2000)
	if err := store.Insert(ctx, sum); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	verifier := NewReplayVerifier(store)
	result, err := verifier.VerifySession(ctx, sum.SessionID)
	if err != nil {
		t.Fatalf("VerifySession failed: %v", err)
	}

	if !result.Match {
		t.Errorf("Expected match, got divergences: %v", result.Divergences)
	}
	if result.SessionID != sum.SessionID {
		t.Errorf("Expected SessionID %s, got %s", sum.SessionID, result.SessionID)
	}
	if result.StoredDraws != result.ReplayedDraws {
		t.Errorf("Expected equal draw counts, got stored %d replayed %d",
			result.StoredDraws, result.ReplayedDraws)
	}
}

func TestReplayVerifier_VerifySession_Tampered(t *testing.T) {
	ctx := context.Background()

	store := memory.NewSessionStore()
	sum := runSession(t, 7, 1500)

	// Corrupt the outcome before persisting
	sum.TotalDraws++
	sum.Tally[domain.TierNone]++

	if err := store.Insert(ctx, sum); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	verifier := NewReplayVerifier(store)
	result, err := verifier.VerifySession(ctx, sum.SessionID)
	if err != nil {
		t.Fatalf("VerifySession failed: %v", err)
	}

	if result.Match {
		t.Fatal("Expected mismatch for tampered session")
	}
	if len(result.Divergences) != 2 {
		t.Fatalf("Expected 2 divergences, got %d: %v", len(result.Divergences), result.Divergences)
	}
	if result.Divergences[0].Field != "TotalDraws" {
		t.Errorf("Expected first divergence TotalDraws, got %s", result.Divergences[0].Field)
	}
	if result.Divergences[1].Field != "Tally.NONE" {
		t.Errorf("Expected second divergence Tally.NONE, got %s", result.Divergences[1].Field)
	}
}

func TestReplayVerifier_VerifySession_NotFound(t *testing.T) {
	ctx := context.Background()

	verifier := NewReplayVerifier(memory.NewSessionStore())
	_, err := verifier.VerifySession(ctx, "missing")

	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestReplayVerifier_VerifySession_ParallelNotReplayable(t *testing.T) {
	ctx := context.Background()

	store := memory.NewSessionStore()
	sum := storedSummary(t)
	sum.SessionID = "parallel1"
	sum.Mode = domain.ModeParallel
	sum.Workers = 4
	if err := store.Insert(ctx, sum); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	verifier := NewReplayVerifier(store)
	_, err := verifier.VerifySession(ctx, "parallel1")

	if !errors.Is(err, ErrNotReplayable) {
		t.Errorf("Expected ErrNotReplayable, got %v", err)
	}
}

func TestReplayVerifier_VerifyAll(t *testing.T) {
	ctx := context.Background()

	store := memory.NewSessionStore()
	for seed := int64(1); seed <= 2; seed++ {
		if err := store.Insert(ctx, runSession(t, seed, 1000)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	parallel := storedSummary(t)
	parallel.SessionID = "parallel1"
	parallel.Mode = domain.ModeParallel
	parallel.Workers = 4
	if err := store.Insert(ctx, parallel); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	verifier := NewReplayVerifier(store)
	report, err := verifier.VerifyAll(ctx)
	if err != nil {
		t.Fatalf("VerifyAll failed: %v", err)
	}

	if report.TotalSessions != 3 {
		t.Errorf("Expected 3 total sessions, got %d", report.TotalSessions)
	}
	if report.MatchedSessions != 2 {
		t.Errorf("Expected 2 matched sessions, got %d", report.MatchedSessions)
	}
	if report.SkippedSessions != 1 {
		t.Errorf("Expected 1 skipped session, got %d", report.SkippedSessions)
	}
	if report.DivergentSessions != 0 {
		t.Errorf("Expected 0 divergent sessions, got %d", report.DivergentSessions)
	}
	if len(report.Results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(report.Results))
	}
}

func TestFloatEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want bool
	}{
		{"exact match", 1.0, 1.0, true},
		{"within tolerance", 1.0, 1.0 + FloatTolerance/2, true},
		{"at tolerance boundary", 0.0, FloatTolerance, true},
		{"beyond tolerance", 1.0, 1.0 + FloatTolerance*2, false},
		{"zeros", 0.0, 0.0, true},
		{"small values", 1e-10, 1e-10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := floatEquals(tt.a, tt.b); got != tt.want {
				t.Errorf("floatEquals(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
