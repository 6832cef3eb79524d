// Package main provides the unified server that runs all components together:
// - Simulation API (on demand): HTTP and WebSocket session runs
// - Sweep (scheduled): orchestrated multi-seed sessions
// - Reporting (scheduled): SIMULATION_REPORT.md, SESSIONS.csv, TIER_DISTRIBUTION.csv
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/observability"
	"toto-sim-lab/internal/orchestrator"
	"toto-sim-lab/internal/reporting"
	"toto-sim-lab/internal/rng"
	"toto-sim-lab/internal/simulation"
	"toto-sim-lab/internal/storage"
	chstore "toto-sim-lab/internal/storage/clickhouse"
	"toto-sim-lab/internal/storage/memory"
	"toto-sim-lab/internal/storage/migrations"
	pgstore "toto-sim-lab/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	// Configuration
	useMemory      bool
	outputDir      string
	sweepEnabled   bool
	sweepNumbers   domain.NumberSet
	sweepSessions  int
	sweepMaxDraws  int64
	sweepInterval  time.Duration
	reportInterval time.Duration
	maxDrawsCap    int64

	// Stores
	stores *allStores

	// Components
	logger *log.Logger

	// State
	mu            sync.Mutex
	started       time.Time
	lastSweepRun  time.Time
	lastReportRun time.Time
	sweepRunning  bool
	reportRunning bool

	// Stats
	sweepRuns  int
	reportRuns int
}

// allStores holds all storage implementations.
type allStores struct {
	sessionStore   storage.SessionStore
	tierCountStore storage.SessionTierCountStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	httpAddr := flag.String("http-addr", envOr("HTTP_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	outputDir := flag.String("output-dir", "output", "Output directory for reports")
	sweepNumbers := flag.String("sweep-numbers", os.Getenv("SWEEP_NUMBERS"), "Ticket for scheduled sweeps (empty disables them)")
	sweepSessions := flag.Int("sweep-sessions", 4, "Sessions per scheduled sweep")
	sweepMaxDraws := flag.Int64("sweep-max-draws", simulation.DefaultMaxDraws, "Trial budget per scheduled session")
	sweepInterval := flag.Duration("sweep-interval", 1*time.Hour, "Sweep run interval")
	reportInterval := flag.Duration("report-interval", 6*time.Hour, "Report generation interval")
	maxDrawsCap := flag.Int64("max-draws-cap", 10*simulation.DefaultMaxDraws, "Largest trial budget the API accepts")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Resolve the scheduled sweep ticket
	var player domain.NumberSet
	if *sweepNumbers != "" {
		var err error
		player, err = domain.ParseNumberSet(*sweepNumbers)
		if err != nil {
			logger.Fatalf("invalid --sweep-numbers: %v", err)
		}
		logger.Printf("Scheduled sweeps enabled: ticket %s, %d sessions every %v",
			player, *sweepSessions, *sweepInterval)
	} else {
		logger.Println("Scheduled sweeps disabled (no --sweep-numbers)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create server
	server := &Server{
		useMemory:      *useMemory,
		outputDir:      *outputDir,
		sweepEnabled:   *sweepNumbers != "",
		sweepNumbers:   player,
		sweepSessions:  *sweepSessions,
		sweepMaxDraws:  *sweepMaxDraws,
		sweepInterval:  *sweepInterval,
		reportInterval: *reportInterval,
		maxDrawsCap:    *maxDrawsCap,
		stores:         stores,
		logger:         logger,
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go server.startHTTPServer(*httpAddr)

	// Run the unified server
	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			sessionStore:   memory.NewSessionStore(),
			tierCountStore: memory.NewSessionTierCountStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	stores := &allStores{
		// PostgreSQL store (session summaries)
		sessionStore: pgstore.NewSessionStore(pool),

		// ClickHouse store (per-tier counts)
		tierCountStore: chstore.NewSessionTierCountStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// Run starts the unified server with all components.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting unified server...")

	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()

	// Create error channel for goroutines
	errCh := make(chan error, 2)

	// Start sweep scheduler in background
	if s.sweepEnabled {
		go func() {
			err := s.runSweepScheduler(ctx)
			if err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("sweep scheduler: %w", err)
			}
		}()
	}

	// Start report scheduler in background
	go func() {
		err := s.runReportScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("report scheduler: %w", err)
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runSweepScheduler runs sweeps on schedule.
func (s *Server) runSweepScheduler(ctx context.Context) error {
	s.logger.Printf("Starting sweep scheduler (interval: %v)...", s.sweepInterval)

	// Run immediately on start
	s.runSweep(ctx)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

// runSweep executes one orchestrated sweep round.
func (s *Server) runSweep(ctx context.Context) {
	s.mu.Lock()
	if s.sweepRunning {
		s.mu.Unlock()
		s.logger.Println("Sweep already running, skipping...")
		return
	}
	s.sweepRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sweepRunning = false
		s.lastSweepRun = time.Now()
		s.sweepRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Running sweep...")
	start := time.Now()

	// Fresh entropy seeds each round; every session records its own seed,
	// so any of them can still be replayed later.
	seeds := make([]int64, s.sweepSessions)
	for i := range seeds {
		seeds[i] = rng.EntropySeed()
	}

	orch := orchestrator.New(orchestrator.Options{
		Player:         s.sweepNumbers,
		Seeds:          seeds,
		MaxDraws:       s.sweepMaxDraws,
		SessionStore:   s.stores.sessionStore,
		TierCountStore: s.stores.tierCountStore,
		Verbose:        true,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		s.logger.Printf("Sweep error: %v", err)
		return
	}

	s.logger.Printf("Sweep completed in %v: %d sessions, %d persisted, %d jackpots",
		time.Since(start), result.SessionsRun, result.SessionsPersisted, result.JackpotSessions)
}

// runReportScheduler runs report generation on schedule.
func (s *Server) runReportScheduler(ctx context.Context) error {
	s.logger.Printf("Starting report scheduler (interval: %v)...", s.reportInterval)

	// Give the first sweep a head start so the report has data
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(1 * time.Minute):
	}

	// Run immediately after the head start
	s.runReport(ctx)

	ticker := time.NewTicker(s.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runReport(ctx)
		}
	}
}

// runReport generates reports.
func (s *Server) runReport(ctx context.Context) {
	s.mu.Lock()
	if s.reportRunning {
		s.mu.Unlock()
		s.logger.Println("Report generation already running, skipping...")
		return
	}
	s.reportRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.reportRunning = false
		s.lastReportRun = time.Now()
		s.reportRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Generating reports...")
	start := time.Now()

	// Ensure output directory exists
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		s.logger.Printf("Failed to create output directory: %v", err)
		return
	}

	generator := reporting.NewGenerator(s.stores.sessionStore, s.stores.tierCountStore)
	report, err := generator.Generate(ctx)
	if err != nil {
		s.logger.Printf("Report generation error: %v", err)
		return
	}

	mdPath := filepath.Join(s.outputDir, "SIMULATION_REPORT.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0644); err != nil {
		s.logger.Printf("Failed to write markdown report: %v", err)
		return
	}
	csvPath := filepath.Join(s.outputDir, "SESSIONS.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.Sessions)), 0644); err != nil {
		s.logger.Printf("Failed to write CSV export: %v", err)
		return
	}
	tierPath := filepath.Join(s.outputDir, "TIER_DISTRIBUTION.csv")
	if err := os.WriteFile(tierPath, []byte(reporting.RenderTierCSV(report.TierDistribution)), 0644); err != nil {
		s.logger.Printf("Failed to write tier distribution export: %v", err)
		return
	}

	s.logger.Printf("Reports generated in %v to %s/", time.Since(start), s.outputDir)
}

// startHTTPServer starts the HTTP server for the API plus health/metrics/status.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	// Simulation API
	mux.HandleFunc("/simulate", s.handleSimulate)
	mux.HandleFunc("/simulate/ws", s.handleSimulateWS)
	mux.HandleFunc("/sessions", s.handleSessions)
	mux.HandleFunc("/sessions/", s.handleSession)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status        string    `json:"status"`
	Uptime        string    `json:"uptime"`
	Storage       string    `json:"storage"`
	SweepEnabled  bool      `json:"sweep_enabled"`
	LastSweepRun  time.Time `json:"last_sweep_run,omitempty"`
	LastReportRun time.Time `json:"last_report_run,omitempty"`
	SweepRuns     int       `json:"sweep_runs"`
	ReportRuns    int       `json:"report_runs"`
	SweepRunning  bool      `json:"sweep_running"`
	ReportRunning bool      `json:"report_running"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	storageMode := "postgres+clickhouse"
	if s.useMemory {
		storageMode = "memory"
	}

	resp := StatusResponse{
		Status:        "running",
		Uptime:        time.Since(s.started).String(),
		Storage:       storageMode,
		SweepEnabled:  s.sweepEnabled,
		LastSweepRun:  s.lastSweepRun,
		LastReportRun: s.lastReportRun,
		SweepRuns:     s.sweepRuns,
		ReportRuns:    s.reportRuns,
		SweepRunning:  s.sweepRunning,
		ReportRunning: s.reportRunning,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// SimulateRequest is the JSON body for POST /simulate and the first
// frame on the /simulate/ws stream.
type SimulateRequest struct {
	Numbers  []int `json:"numbers"`
	Seed     int64 `json:"seed,omitempty"`
	MaxDraws int64 `json:"max_draws,omitempty"`
	Workers  int   `json:"workers,omitempty"`
}

// runConfig is a resolved, validated simulation request.
type runConfig struct {
	player   domain.NumberSet
	seed     int64
	maxDraws int64
	workers  int
}

// resolveRequest validates a request and fills in defaults.
func (s *Server) resolveRequest(req SimulateRequest) (runConfig, error) {
	player, err := domain.NewNumberSet(req.Numbers)
	if err != nil {
		return runConfig{}, fmt.Errorf("invalid numbers: %w", err)
	}

	seed := req.Seed
	if seed == 0 {
		seed = rng.EntropySeed()
	}

	maxDraws := req.MaxDraws
	if maxDraws == 0 {
		maxDraws = simulation.DefaultMaxDraws
	}
	if maxDraws < 1 {
		return runConfig{}, fmt.Errorf("max_draws must be at least 1")
	}
	if maxDraws > s.maxDrawsCap {
		return runConfig{}, fmt.Errorf("max_draws exceeds server cap of %d", s.maxDrawsCap)
	}

	workers := req.Workers
	if workers < 1 {
		workers = 1
	}

	return runConfig{player: player, seed: seed, maxDraws: maxDraws, workers: workers}, nil
}

// runSession executes a resolved request and records run metrics.
func (s *Server) runSession(ctx context.Context, cfg runConfig, progress simulation.ProgressFunc) (*domain.SimulationSummary, error) {
	var (
		sum *domain.SimulationSummary
		err error
	)
	if cfg.workers > 1 {
		runner := simulation.NewParallelRunner(simulation.ParallelRunnerOptions{
			Player:   cfg.player,
			Seed:     cfg.seed,
			MaxDraws: cfg.maxDraws,
			Workers:  cfg.workers,
			Progress: progress,
		})
		sum, err = runner.Run(ctx)
	} else {
		runner := simulation.NewRunner(simulation.RunnerOptions{
			Player:   cfg.player,
			Seed:     cfg.seed,
			MaxDraws: cfg.maxDraws,
			Progress: progress,
		})
		sum, err = runner.Run(ctx)
	}
	if err != nil {
		return nil, err
	}

	observability.RecordSessionRun(sum.Mode, sum.TotalDraws, sum.JackpotAchieved, sum.ElapsedSeconds)
	for _, tier := range domain.Tiers() {
		if tier.IsPrize() {
			observability.RecordPrizeDraws(tier.Code(), sum.Tally.Count(tier))
		}
	}
	return sum, nil
}

// persistSession stores the summary and its tier counts. Duplicate
// sessions are tolerated; the identical summary is already stored.
func (s *Server) persistSession(ctx context.Context, sum *domain.SimulationSummary) error {
	if err := s.stores.sessionStore.Insert(ctx, sum); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			observability.RecordDuplicateSession()
			return nil
		}
		observability.RecordDBError("postgres", "insert_session")
		return fmt.Errorf("persist session: %w", err)
	}
	observability.RecordSessionPersisted()

	if err := s.stores.tierCountStore.InsertBulk(ctx, sum.TierCounts()); err != nil &&
		!errors.Is(err, storage.ErrDuplicateKey) {
		observability.RecordDBError("clickhouse", "insert_tier_counts")
		return fmt.Errorf("persist tier counts: %w", err)
	}
	return nil
}

// handleSimulate runs a session synchronously and returns the summary.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}

	cfg, err := s.resolveRequest(req)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	sum, err := s.runSession(r.Context(), cfg, nil)
	if err != nil {
		httpError(w, http.StatusInternalServerError, fmt.Sprintf("simulation failed: %v", err))
		return
	}

	if err := s.persistSession(r.Context(), sum); err != nil {
		s.logger.Printf("Persist error: %v", err)
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sum)
}

// handleSessions lists recent sessions, newest first.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httpError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	sessions, err := s.stores.sessionStore.GetRecent(r.Context(), limit)
	if err != nil {
		observability.RecordDBError("postgres", "get_recent")
		httpError(w, http.StatusInternalServerError, fmt.Sprintf("list sessions: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

// handleSession returns one session by ID.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if id == "" || strings.Contains(id, "/") {
		httpError(w, http.StatusNotFound, "not found")
		return
	}

	sum, err := s.stores.sessionStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "session not found")
			return
		}
		observability.RecordDBError("postgres", "get_by_id")
		httpError(w, http.StatusInternalServerError, fmt.Sprintf("load session: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, sum)
}

// WSFrame is a single message on the simulate stream.
type WSFrame struct {
	Type      string                    `json:"type"` // "progress", "summary", "error"
	Completed int64                     `json:"completed,omitempty"`
	Total     int64                     `json:"total,omitempty"`
	Summary   *domain.SimulationSummary `json:"summary,omitempty"`
	Error     string                    `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleSimulateWS runs a session over a WebSocket, streaming progress
// frames as the run advances and the summary as the final frame. The
// client sends one SimulateRequest frame to start.
func (s *Server) handleSimulateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	observability.WSClientConnected()
	defer observability.WSClientDisconnected()

	var req SimulateRequest
	if err := conn.ReadJSON(&req); err != nil {
		writeWSError(conn, fmt.Sprintf("decode request: %v", err))
		return
	}

	cfg, err := s.resolveRequest(req)
	if err != nil {
		writeWSError(conn, err.Error())
		return
	}

	// Both runners serialize progress calls, so writing to the
	// connection here needs no extra locking.
	progress := func(completed, total int64) {
		conn.WriteJSON(WSFrame{Type: "progress", Completed: completed, Total: total})
	}

	sum, err := s.runSession(r.Context(), cfg, progress)
	if err != nil {
		writeWSError(conn, fmt.Sprintf("simulation failed: %v", err))
		return
	}

	if err := s.persistSession(r.Context(), sum); err != nil {
		s.logger.Printf("Persist error: %v", err)
		writeWSError(conn, err.Error())
		return
	}

	if err := conn.WriteJSON(WSFrame{Type: "summary", Summary: sum}); err != nil {
		s.logger.Printf("WebSocket write error: %v", err)
		return
	}
	observability.RecordRunStreamed()
}

func writeWSError(conn *websocket.Conn, msg string) {
	conn.WriteJSON(WSFrame{Type: "error", Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
