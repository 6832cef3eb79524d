package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
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
)

func main() {
	// Parse flags
	seed := flag.Int64("seed", 0, "PRNG seed (0 draws one from the entropy pool)")
	maxDraws := flag.Int64("max-draws", simulation.DefaultMaxDraws, "Trial budget for run-until-jackpot")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[play] ", log.LstdFlags)

	baseSeed := *seed
	if baseSeed == 0 {
		baseSeed = rng.EntropySeed()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First signal aborts an in-flight simulation; a second one while
	// blocked on input exits immediately.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		<-sigCh
		os.Exit(1)
	}()

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Welcome to Singapore TOTO Lottery Simulator!")
	fmt.Println("-------------------------------------------")

	player, err := promptNumbers(scanner)
	if err != nil {
		exitOnInput(logger, err)
	}

	// Single draws share one stream for the whole sitting, so repeat plays
	// with the same ticket see fresh draws.
	src := rng.NewSource(baseSeed)
	engine, err := simulation.NewEngine(player, src)
	if err != nil {
		logger.Fatalf("create engine: %v", err)
	}

	var runs int64
	for {
		if ctx.Err() != nil {
			fmt.Println("\nThank you for playing! Goodbye!")
			return
		}

		choice, err := promptChoice(scanner)
		if err != nil {
			exitOnInput(logger, err)
		}

		switch choice {
		case "1":
			printDrawResult(player, engine.RunOnce())

		case "2":
			// Each session gets its own seed so repeats are distinct but
			// still reproducible from a pinned base.
			runs++
			sum, err := runUntilJackpot(ctx, player, baseSeed+runs, *maxDraws)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					fmt.Println("\nSimulation interrupted.")
					fmt.Println("Thank you for playing! Goodbye!")
					return
				}
				logger.Fatalf("simulation failed: %v", err)
			}
			printSummary(sum)

		case "3":
			fmt.Println("Thank you for playing! Goodbye!")
			return
		}

		again, newNumbers, err := promptPlayAgain(scanner)
		if err != nil {
			exitOnInput(logger, err)
		}
		if !again {
			fmt.Println("Thank you for playing! Goodbye!")
			return
		}
		if newNumbers {
			player, err = promptNumbers(scanner)
			if err != nil {
				exitOnInput(logger, err)
			}
			engine, err = simulation.NewEngine(player, src)
			if err != nil {
				logger.Fatalf("create engine: %v", err)
			}
		}
	}
}

// exitOnInput ends the program when stdin closes mid-prompt.
func exitOnInput(logger *log.Logger, err error) {
	if errors.Is(err, io.EOF) {
		fmt.Println("\nThank you for playing! Goodbye!")
		os.Exit(0)
	}
	logger.Fatalf("read input: %v", err)
}

func runUntilJackpot(
	ctx context.Context,
	player domain.NumberSet,
	seed, maxDraws int64,
) (*domain.SimulationSummary, error) {
	fmt.Println("\nSimulating draws... (This might take a while)")
	fmt.Print("[" + strings.Repeat("-", 20) + "]\r")

	runner := simulation.NewRunner(simulation.RunnerOptions{
		Player:   player,
		Seed:     seed,
		MaxDraws: maxDraws,
		Progress: printProgress,
	})
	sum, err := runner.Run(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Println()
	return sum, nil
}

func readLine(scanner *bufio.Scanner) (string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return scanner.Text(), nil
}

// promptNumbers reads a ticket from stdin, re-prompting until six distinct
// in-range numbers arrive.
func promptNumbers(scanner *bufio.Scanner) (domain.NumberSet, error) {
	for {
		fmt.Println("\nEnter 6 different numbers between 1 and 49, separated by spaces:")
		line, err := readLine(scanner)
		if err != nil {
			return domain.NumberSet{}, err
		}

		fields := strings.Fields(line)
		nums := make([]int, 0, len(fields))
		parsed := true
		for _, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				fmt.Println("Error: Please enter valid numbers.")
				parsed = false
				break
			}
			nums = append(nums, n)
		}
		if !parsed {
			continue
		}

		if len(nums) != 6 {
			fmt.Println("Error: Please enter exactly 6 numbers.")
			continue
		}
		seen := make(map[int]bool, len(nums))
		unique := true
		for _, n := range nums {
			if seen[n] {
				unique = false
				break
			}
			seen[n] = true
		}
		if !unique {
			fmt.Println("Error: Numbers must be unique.")
			continue
		}
		inRange := true
		for _, n := range nums {
			if n < 1 || n > 49 {
				inRange = false
				break
			}
		}
		if !inRange {
			fmt.Println("Error: All numbers must be between 1 and 49.")
			continue
		}

		set, err := domain.NewNumberSet(nums)
		if err != nil {
			fmt.Println("Error: Please enter valid numbers.")
			continue
		}
		return set, nil
	}
}

func promptChoice(scanner *bufio.Scanner) (string, error) {
	for {
		fmt.Println("\nWhat would you like to do?")
		fmt.Println("1. Simulate a single draw")
		fmt.Println("2. Simulate until jackpot (or max attempts)")
		fmt.Println("3. Exit program")
		fmt.Print("Enter your choice (1, 2, or 3): ")

		line, err := readLine(scanner)
		if err != nil {
			return "", err
		}
		switch choice := strings.TrimSpace(line); choice {
		case "1", "2", "3":
			return choice, nil
		}
		fmt.Println("Invalid choice. Please enter 1, 2, or 3.")
	}
}

// promptPlayAgain asks whether to keep playing and, if so, whether to
// enter a fresh ticket.
func promptPlayAgain(scanner *bufio.Scanner) (again, newNumbers bool, err error) {
	for {
		fmt.Print("\nWould you like to play again? (yes/no): ")
		line, err := readLine(scanner)
		if err != nil {
			return false, false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "no", "n":
			return false, false, nil
		case "yes", "y":
			for {
				fmt.Print("Would you like to enter new numbers? (yes/no): ")
				line, err := readLine(scanner)
				if err != nil {
					return false, false, err
				}
				switch strings.ToLower(strings.TrimSpace(line)) {
				case "yes", "y":
					return true, true, nil
				case "no", "n":
					return true, false, nil
				}
				fmt.Println("Please enter 'yes' or 'no'")
			}
		}
		fmt.Println("Please enter 'yes' or 'no'")
	}
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
