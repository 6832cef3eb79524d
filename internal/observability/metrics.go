// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Simulation metrics
	DrawsSimulated    prometheus.Counter
	SessionsCompleted *prometheus.CounterVec
	JackpotsFound     prometheus.Counter
	PrizeDraws        *prometheus.CounterVec
	SessionDuration   *prometheus.HistogramVec

	// Sweep metrics
	SweepRunsTotal *prometheus.CounterVec
	SweepDuration  prometheus.Histogram

	// Storage metrics
	SessionsPersisted prometheus.Counter
	DuplicateSessions prometheus.Counter
	DBQueryErrors     *prometheus.CounterVec

	// Server metrics
	WSClientsActive prometheus.Gauge
	WSRunsStreamed  prometheus.Counter

	// Health metrics
	LastSuccessfulSweep prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "toto"
	}

	return &Metrics{
		// Simulation metrics
		DrawsSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "draws_simulated_total",
			Help:      "Total number of draws simulated",
		}),
		SessionsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "sessions_completed_total",
			Help:      "Total number of completed simulation sessions by mode",
		}, []string{"mode"}),
		JackpotsFound: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "jackpots_found_total",
			Help:      "Total number of sessions that reached a Group 1 win",
		}),
		PrizeDraws: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "prize_draws_total",
			Help:      "Total number of simulated draws by prize tier",
		}, []string{"tier"}),
		SessionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "session_duration_seconds",
			Help:      "Simulation session duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"mode"}),

		// Sweep metrics
		SweepRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Total number of sweep seed runs by status",
		}, []string{"status"}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Sweep execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),

		// Storage metrics
		SessionsPersisted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "sessions_persisted_total",
			Help:      "Total number of sessions written to storage",
		}),
		DuplicateSessions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "duplicate_sessions_total",
			Help:      "Total number of session inserts skipped as duplicates",
		}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Server metrics
		WSClientsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "ws_clients_active",
			Help:      "Current number of connected WebSocket clients",
		}),
		WSRunsStreamed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "ws_runs_streamed_total",
			Help:      "Total number of simulations streamed over WebSocket",
		}),

		// Health metrics
		LastSuccessfulSweep: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_sweep_timestamp",
			Help:      "Unix timestamp of last successful sweep",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSessionRun records a completed simulation session.
func RecordSessionRun(mode string, draws int64, jackpot bool, durationSeconds float64) {
	DefaultMetrics.DrawsSimulated.Add(float64(draws))
	DefaultMetrics.SessionsCompleted.WithLabelValues(mode).Inc()
	DefaultMetrics.SessionDuration.WithLabelValues(mode).Observe(durationSeconds)
	if jackpot {
		DefaultMetrics.JackpotsFound.Inc()
	}
}

// RecordPrizeDraws adds draws to the per-tier counter.
func RecordPrizeDraws(tier string, draws uint64) {
	DefaultMetrics.PrizeDraws.WithLabelValues(tier).Add(float64(draws))
}

// RecordSweepRun records a sweep seed run.
func RecordSweepRun(status string, durationSeconds float64) {
	DefaultMetrics.SweepRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.SweepDuration.Observe(durationSeconds)
}

// RecordSessionPersisted increments the persisted sessions counter.
func RecordSessionPersisted() {
	DefaultMetrics.SessionsPersisted.Inc()
}

// RecordDuplicateSession increments the duplicate sessions counter.
func RecordDuplicateSession() {
	DefaultMetrics.DuplicateSessions.Inc()
}

// RecordDBError records a database query error.
func RecordDBError(database, operation string) {
	DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
}

// WSClientConnected increments the active WebSocket client gauge.
func WSClientConnected() {
	DefaultMetrics.WSClientsActive.Inc()
}

// WSClientDisconnected decrements the active WebSocket client gauge.
func WSClientDisconnected() {
	DefaultMetrics.WSClientsActive.Dec()
}

// RecordRunStreamed increments the streamed simulations counter.
func RecordRunStreamed() {
	DefaultMetrics.WSRunsStreamed.Inc()
}

// MarkSweepSuccess updates the last successful sweep timestamp.
func MarkSweepSuccess() {
	DefaultMetrics.LastSuccessfulSweep.SetToCurrentTime()
}
