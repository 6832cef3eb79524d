package memory

import (
	"context"
	"sort"
	"sync"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/storage"
)

// SessionStore is an in-memory implementation of storage.SessionStore.
type SessionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SimulationSummary // keyed by session_id
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		data: make(map[string]*domain.SimulationSummary),
	}
}

// copySummary clones a summary including the pointed-to winning draw, so
// callers can never mutate stored state.
func copySummary(s *domain.SimulationSummary) *domain.SimulationSummary {
	copy := *s
	if s.WinningDraw != nil {
		d := *s.WinningDraw
		copy.WinningDraw = &d
	}
	return &copy
}

// Insert adds a new session summary. Returns ErrDuplicateKey if session_id exists.
func (s *SessionStore) Insert(_ context.Context, summary *domain.SimulationSummary) error {
	if summary == nil || summary.SessionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[summary.SessionID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[summary.SessionID] = copySummary(summary)
	return nil
}

// GetByID retrieves a session by its ID. Returns ErrNotFound if not exists.
func (s *SessionStore) GetByID(_ context.Context, sessionID string) (*domain.SimulationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, exists := s.data[sessionID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return copySummary(summary), nil
}

// GetRecent retrieves the most recent sessions, newest first. limit <= 0 means no limit.
func (s *SessionStore) GetRecent(_ context.Context, limit int) ([]*domain.SimulationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SimulationSummary, 0, len(s.data))
	for _, summary := range s.data {
		result = append(result, copySummary(summary))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].SessionID < result[j].SessionID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetAll retrieves all sessions, newest first.
func (s *SessionStore) GetAll(ctx context.Context) ([]*domain.SimulationSummary, error) {
	return s.GetRecent(ctx, 0)
}

// Count returns the number of stored sessions.
func (s *SessionStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.data)), nil
}

var _ storage.SessionStore = (*SessionStore)(nil)
