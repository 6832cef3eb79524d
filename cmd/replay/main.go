package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"toto-sim-lab/internal/idhash"
	"toto-sim-lab/internal/storage"
	"toto-sim-lab/internal/storage/memory"
	"toto-sim-lab/internal/storage/migrations"
	pgstore "toto-sim-lab/internal/storage/postgres"
	"toto-sim-lab/internal/verification"
)

func main() {
	// Parse flags
	sessionID := flag.String("session-id", "", "Session ID to replay and verify (full or short form)")
	verifyAll := flag.Bool("all", false, "Replay and verify every stored session")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	// Setup structured logger
	logger := log.New(os.Stderr, "[replay] ", log.LstdFlags)

	// Validate required flags
	if *sessionID == "" && !*verifyAll {
		logger.Fatal("--session-id or --all is required")
	}
	if *sessionID != "" && *verifyAll {
		logger.Fatal("--session-id and --all are mutually exclusive")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Create stores
	var sessionStore storage.SessionStore = memory.NewSessionStore()

	if !*useMemory && *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("apply postgres migrations: %v", err)
		}

		sessionStore = pgstore.NewSessionStore(pool)
	}

	verifier := verification.NewReplayVerifier(sessionStore)

	if *verifyAll {
		logger.Printf("Replaying all stored sessions")
		report, err := verifier.VerifyAll(ctx)
		if err != nil {
			logger.Fatalf("verification failed: %v", err)
		}

		if *outputJSON {
			output, _ := json.MarshalIndent(report, "", "  ")
			fmt.Println(string(output))
		} else {
			printReport(report)
		}

		if report.DivergentSessions > 0 {
			os.Exit(1)
		}
		return
	}

	id, err := resolveSessionID(ctx, sessionStore, *sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Fatalf("session %s not found", *sessionID)
		}
		logger.Fatalf("resolve session id: %v", err)
	}

	logger.Printf("Replaying session %s", idhash.ShortSessionID(id))
	result, err := verifier.VerifySession(ctx, id)
	if err != nil {
		if errors.Is(err, verification.ErrSessionNotFound) {
			logger.Fatalf("session %s not found", *sessionID)
		}
		logger.Fatalf("verification failed: %v", err)
	}

	if *outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	} else {
		printResult(result)
	}

	if !result.Match {
		os.Exit(1)
	}
}

// resolveSessionID accepts a full session ID or its short display form.
// Full IDs hit the store directly; short ones are matched by scanning.
func resolveSessionID(ctx context.Context, store storage.SessionStore, id string) (string, error) {
	_, err := store.GetByID(ctx, id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	sessions, err := store.GetAll(ctx)
	if err != nil {
		return "", err
	}
	for _, s := range sessions {
		if idhash.ShortSessionID(s.SessionID) == id {
			return s.SessionID, nil
		}
	}
	return "", storage.ErrNotFound
}

// printResult outputs a human-readable verification result.
func printResult(r *verification.VerificationResult) {
	fmt.Printf("\n=== Verification Result ===\n")
	fmt.Printf("Session ID:        %s\n", r.SessionID)
	fmt.Printf("Stored Draws:      %d\n", r.StoredDraws)
	fmt.Printf("Replayed Draws:    %d\n", r.ReplayedDraws)
	if r.Match {
		fmt.Printf("Match:             yes\n")
		return
	}
	fmt.Printf("Match:             no\n")
	printDivergences(r.Divergences)
}

// printReport outputs a human-readable verification report.
func printReport(rep *verification.VerificationReport) {
	fmt.Printf("\n=== Verification Report ===\n")
	fmt.Printf("Total Sessions:    %d\n", rep.TotalSessions)
	fmt.Printf("Matched:           %d\n", rep.MatchedSessions)
	fmt.Printf("Divergent:         %d\n", rep.DivergentSessions)
	fmt.Printf("Skipped:           %d\n", rep.SkippedSessions)

	for _, r := range rep.Results {
		if r.Match {
			continue
		}
		fmt.Printf("\nSession %s diverged:\n", idhash.ShortSessionID(r.SessionID))
		printDivergences(r.Divergences)
	}
}

func printDivergences(divs []verification.FieldDivergence) {
	fmt.Println("\nDivergences:")
	for _, d := range divs {
		fmt.Printf("  %-18s stored=%v replayed=%v\n", d.Field+":", d.Expected, d.Actual)
	}
}
