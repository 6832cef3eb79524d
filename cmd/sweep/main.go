package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/orchestrator"
	"toto-sim-lab/internal/reporting"
	"toto-sim-lab/internal/simulation"
	"toto-sim-lab/internal/storage"
	chstore "toto-sim-lab/internal/storage/clickhouse"
	"toto-sim-lab/internal/storage/memory"
	"toto-sim-lab/internal/storage/migrations"
	pgstore "toto-sim-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	numbersFlag := flag.String("numbers", "", "Six ticket numbers, comma or space separated (required)")
	seedsFlag := flag.String("seeds", "", "Comma-separated seed list")
	sessions := flag.Int("sessions", 0, "Number of consecutive seeds to sweep, starting at --seed-start")
	seedStart := flag.Int64("seed-start", 1, "First seed when --sessions is used")
	maxDraws := flag.Int64("max-draws", simulation.DefaultMaxDraws, "Trial budget per session")
	workers := flag.Int("workers", 1, "Workers per session; >1 uses the parallel runner")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	reportDir := flag.String("report-dir", "", "Directory for post-sweep reports (markdown + CSV); empty disables")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[sweep] ", log.LstdFlags)

	// Validate required flags
	if *numbersFlag == "" {
		logger.Fatal("--numbers is required")
	}
	player, err := domain.ParseNumberSet(*numbersFlag)
	if err != nil {
		logger.Fatalf("invalid --numbers: %v", err)
	}

	seeds, err := buildSeeds(*seedsFlag, *sessions, *seedStart)
	if err != nil {
		logger.Fatalf("invalid seeds: %v", err)
	}
	if len(seeds) == 0 {
		logger.Fatal("--seeds or --sessions is required")
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
	var tierCountStore storage.SessionTierCountStore = memory.NewSessionTierCountStore()

	if !*useMemory {
		// Require DSNs when not using memory
		if *postgresDSN == "" {
			logger.Fatal("--postgres-dsn is required when not using --use-memory (session summaries)")
		}
		if *clickhouseDSN == "" {
			logger.Fatal("--clickhouse-dsn is required when not using --use-memory (tier counts)")
		}

		// PostgreSQL for session summaries
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("apply postgres migrations: %v", err)
		}
		sessionStore = pgstore.NewSessionStore(pool)

		// ClickHouse for tier counts
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		tierCountStore = chstore.NewSessionTierCountStore(conn)
	}

	// Run sweep
	logger.Printf("Running sweep: numbers=%s seeds=%d max-draws=%d workers=%d",
		player, len(seeds), *maxDraws, *workers)

	orch := orchestrator.New(orchestrator.Options{
		Player:         player,
		Seeds:          seeds,
		MaxDraws:       *maxDraws,
		Workers:        *workers,
		SessionStore:   sessionStore,
		TierCountStore: tierCountStore,
		Verbose:        *verbose,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		logger.Fatalf("sweep failed: %v", err)
	}

	// Output result
	if *outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	} else {
		printRunSummary(result)
	}

	// Render reports over everything the stores now hold
	if *reportDir != "" {
		if err := writeReports(ctx, sessionStore, tierCountStore, *reportDir); err != nil {
			logger.Fatalf("generate reports: %v", err)
		}
		logger.Printf("Reports written to %s/", *reportDir)
	}

	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

// writeReports renders the stored sessions into markdown and CSV files.
func writeReports(ctx context.Context, sessionStore storage.SessionStore, tierCountStore storage.SessionTierCountStore, dir string) error {
	report, err := reporting.NewGenerator(sessionStore, tierCountStore).Generate(ctx)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "SIMULATION_REPORT.md"), []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "SESSIONS.csv"), []byte(reporting.RenderCSV(report.Sessions)), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "TIER_DISTRIBUTION.csv"), []byte(reporting.RenderTierCSV(report.TierDistribution)), 0o644)
}

// buildSeeds merges the explicit seed list with a consecutive block.
func buildSeeds(seedsFlag string, sessions int, seedStart int64) ([]int64, error) {
	var seeds []int64
	if seedsFlag != "" {
		for _, part := range strings.Split(seedsFlag, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			seed, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse seed %q: %w", part, err)
			}
			seeds = append(seeds, seed)
		}
	}
	for i := 0; i < sessions; i++ {
		seeds = append(seeds, seedStart+int64(i))
	}
	return seeds, nil
}

// printRunSummary outputs human-readable sweep totals.
func printRunSummary(r *orchestrator.RunSummary) {
	fmt.Println()
	fmt.Println("=== Sweep Result ===")
	fmt.Printf("Sessions Run:       %d\n", r.SessionsRun)
	fmt.Printf("Persisted:          %d\n", r.SessionsPersisted)
	fmt.Printf("Duplicates:         %d\n", r.DuplicateSessions)
	fmt.Printf("Jackpot Sessions:   %d\n", r.JackpotSessions)
	fmt.Printf("Total Draws:        %d\n", r.TotalDraws)
	fmt.Printf("Elapsed:            %.2fs\n", r.ElapsedSeconds)

	if len(r.Errors) > 0 {
		fmt.Println()
		fmt.Println("Errors:")
		for _, e := range r.Errors {
			fmt.Printf("  %s\n", e)
		}
	}
}
