package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/rng"
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
	seed := flag.Int64("seed", 0, "PRNG seed (0 draws one from the entropy pool)")
	maxDraws := flag.Int64("max-draws", simulation.DefaultMaxDraws, "Trial budget for run-until-jackpot")
	workers := flag.Int("workers", 1, "Worker count; >1 uses the parallel runner")
	once := flag.Bool("once", false, "Simulate a single draw instead of running until jackpot")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	persistResult := flag.Bool("persist", false, "Persist the session summary to storage (ignored with --once)")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)

	// Validate required flags
	if *numbersFlag == "" {
		logger.Fatal("--numbers is required")
	}
	player, err := domain.ParseNumberSet(*numbersFlag)
	if err != nil {
		logger.Fatalf("invalid --numbers: %v", err)
	}

	if *seed == 0 {
		*seed = rng.EntropySeed()
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

	// Single draw mode needs no stores
	if *once {
		engine, err := simulation.NewEngine(player, rng.NewSource(*seed))
		if err != nil {
			logger.Fatalf("create engine: %v", err)
		}
		result := engine.RunOnce()

		if *outputJSON {
			output, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(output))
		} else {
			printDrawResult(player, result)
		}
		return
	}

	// Create stores
	var sessionStore storage.SessionStore = memory.NewSessionStore()
	var tierCountStore storage.SessionTierCountStore = memory.NewSessionTierCountStore()

	if *persistResult && !*useMemory {
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

	if *verbose {
		logger.Printf("Running: numbers=%s seed=%d max-draws=%d workers=%d",
			player, *seed, *maxDraws, *workers)
	}

	// Progress bar goes to stdout like the rest of the human output
	var progress simulation.ProgressFunc
	if !*outputJSON {
		fmt.Println("\nSimulating draws... (This might take a while)")
		fmt.Print("[" + strings.Repeat("-", 20) + "]\r")
		progress = printProgress
	}

	sum, err := runSession(ctx, player, *seed, *maxDraws, *workers, progress)
	if err != nil {
		logger.Fatalf("simulation failed: %v", err)
	}

	// Output result
	if *outputJSON {
		output, _ := json.MarshalIndent(sum, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Println()
		printSummary(sum)
	}

	// Persist if requested
	if *persistResult {
		if err := sessionStore.Insert(ctx, sum); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				logger.Printf("session %s already stored", sum.SessionID)
			} else {
				logger.Fatalf("persist session: %v", err)
			}
		} else if *verbose {
			logger.Printf("session %s persisted", sum.SessionID)
		}
		if err := tierCountStore.InsertBulk(ctx, sum.TierCounts()); err != nil &&
			!errors.Is(err, storage.ErrDuplicateKey) {
			logger.Fatalf("persist tier counts: %v", err)
		}
	}
}

// runSession routes to the sequential or parallel runner.
func runSession(
	ctx context.Context,
	player domain.NumberSet,
	seed, maxDraws int64,
	workers int,
	progress simulation.ProgressFunc,
) (*domain.SimulationSummary, error) {
	if workers > 1 {
		runner := simulation.NewParallelRunner(simulation.ParallelRunnerOptions{
			Player:   player,
			Seed:     seed,
			MaxDraws: maxDraws,
			Workers:  workers,
			Progress: progress,
		})
		return runner.Run(ctx)
	}
	runner := simulation.NewRunner(simulation.RunnerOptions{
		Player:   player,
		Seed:     seed,
		MaxDraws: maxDraws,
		Progress: progress,
	})
	return runner.Run(ctx)
}

// printProgress redraws the 20-segment bar in place.
func printProgress(completed, total int64) {
	filled := int(completed * 20 / total)
	if filled > 20 {
		filled = 20
	}
	fmt.Printf("\r[%s%s]", strings.Repeat("=", filled), strings.Repeat("-", 20-filled))
}

// printDrawResult outputs a human-readable single draw result.
func printDrawResult(player domain.NumberSet, res domain.DrawResult) {
	line := strings.Repeat("=", 50)

	fmt.Println()
	fmt.Println(line)
	fmt.Printf("Draw Date: %s\n", res.DrawnAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Your Numbers: %s\n", player)
	fmt.Printf("Winning Numbers: %s\n", res.Draw.Primary)
	fmt.Printf("Additional Number: %d\n", res.Draw.Supplementary)
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("Prize Category: %s\n", res.Classification.Tier.Label())
	if len(res.Classification.MatchingNumbers) > 0 {
		fmt.Printf("Matching Numbers: %s\n", joinInts(res.Classification.MatchingNumbers))
	}
	fmt.Printf("Total Matches: %d\n", res.Classification.MatchCount)
	if res.Classification.SupplementaryMatched {
		fmt.Println("You matched the additional number!")
	}
	fmt.Println(line)
}

// printSummary outputs a human-readable session summary.
func printSummary(sum *domain.SimulationSummary) {
	line := strings.Repeat("=", 60)
	dash := strings.Repeat("-", 60)

	fmt.Println()
	fmt.Println(line)
	fmt.Println("TOTO Simulation Results")
	fmt.Println(line)
	fmt.Printf("Numbers played: %s\n", sum.Player)

	if sum.JackpotAchieved {
		fmt.Printf("\n🎉 JACKPOT achieved after %s draws!\n", formatCount(sum.TotalDraws))
		if sum.WinningDraw != nil {
			fmt.Printf("Winning draw: %s\n", sum.WinningDraw)
		}
	} else {
		fmt.Printf("\n❌ No jackpot after %s draws\n", formatCount(sum.TotalDraws))
	}

	fmt.Printf("\nTime taken: %.2f seconds\n", sum.ElapsedSeconds)
	fmt.Printf("Equivalent to %s years of playing twice a week\n", formatYears(sum.EquivalentYears))

	fmt.Println("\nPrize Distribution:")
	fmt.Println(dash)
	for _, tier := range domain.Tiers() {
		fmt.Printf("%-15s: %8s (%6.2f%%)\n",
			tier.Label(), formatCount(int64(sum.Tally.Count(tier))), sum.Tally.Share(tier))
	}

	fmt.Println("\nTheoretical Odds:")
	fmt.Println(dash)
	fmt.Printf("Odds of Group 1 Prize: 1 in %s\n", formatCount(sum.TheoreticalOdds))
	fmt.Println(line)
}

// formatCount renders n with thousands separators: 13983816 -> "13,983,816".
func formatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// formatYears renders a 1-decimal year count with separators: "2,403.8".
func formatYears(y float64) string {
	whole := int64(y)
	frac := int64(math.Round((y - float64(whole)) * 10))
	if frac >= 10 {
		whole++
		frac = 0
	}
	return fmt.Sprintf("%s.%d", formatCount(whole), frac)
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
