package storage

import (
	"context"

	"toto-sim-lab/internal/domain"
)

// SessionStore provides access to sessions storage.
type SessionStore interface {
	// Insert adds a new session summary. Returns ErrDuplicateKey if session_id exists.
	Insert(ctx context.Context, s *domain.SimulationSummary) error

	// GetByID retrieves a session by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, sessionID string) (*domain.SimulationSummary, error)

	// GetRecent retrieves the most recent sessions, newest first. limit <= 0 means no limit.
	GetRecent(ctx context.Context, limit int) ([]*domain.SimulationSummary, error)

	// GetAll retrieves all sessions, newest first.
	GetAll(ctx context.Context) ([]*domain.SimulationSummary, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int64, error)
}

// SessionTierCountStore provides access to session_tier_counts storage.
type SessionTierCountStore interface {
	// InsertBulk adds the per-tier rows of one session atomically.
	// Fails the entire batch if any row for the session already exists.
	InsertBulk(ctx context.Context, counts []*domain.SessionTierCount) error

	// GetBySessionID retrieves a session's rows in tier display order.
	// Returns ErrNotFound if the session has no rows.
	GetBySessionID(ctx context.Context, sessionID string) ([]*domain.SessionTierCount, error)

	// TierTotals aggregates draw counts per tier across all sessions.
	TierTotals(ctx context.Context) (domain.Tally, error)
}
