package memory

import (
	"context"
	"sync"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/storage"
)

// SessionTierCountStore is an in-memory implementation of
// storage.SessionTierCountStore.
type SessionTierCountStore struct {
	mu   sync.RWMutex
	data map[string]map[domain.Tier]*domain.SessionTierCount // keyed by session_id, then tier
}

// NewSessionTierCountStore creates a new in-memory tier count store.
func NewSessionTierCountStore() *SessionTierCountStore {
	return &SessionTierCountStore{
		data: make(map[string]map[domain.Tier]*domain.SessionTierCount),
	}
}

// InsertBulk adds the per-tier rows of one session atomically.
// Fails the entire batch if any row for the session already exists.
func (s *SessionTierCountStore) InsertBulk(_ context.Context, counts []*domain.SessionTierCount) error {
	if len(counts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	type key struct {
		sessionID string
		tier      domain.Tier
	}
	batchKeys := make(map[key]struct{}, len(counts))

	// First pass: validate and check duplicates (existing + intra-batch)
	for _, c := range counts {
		if c == nil || c.SessionID == "" || !c.Tier.Valid() {
			return storage.ErrInvalidInput
		}

		if _, exists := s.data[c.SessionID][c.Tier]; exists {
			return storage.ErrDuplicateKey
		}
		k := key{c.SessionID, c.Tier}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	// Second pass: insert all
	for _, c := range counts {
		rows, ok := s.data[c.SessionID]
		if !ok {
			rows = make(map[domain.Tier]*domain.SessionTierCount, domain.TierCount)
			s.data[c.SessionID] = rows
		}
		copy := *c
		rows[c.Tier] = &copy
	}

	return nil
}

// GetBySessionID retrieves a session's rows in tier display order.
// Returns ErrNotFound if the session has no rows.
func (s *SessionTierCountStore) GetBySessionID(_ context.Context, sessionID string) ([]*domain.SessionTierCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, exists := s.data[sessionID]
	if !exists || len(rows) == 0 {
		return nil, storage.ErrNotFound
	}

	result := make([]*domain.SessionTierCount, 0, len(rows))
	for _, tier := range domain.Tiers() {
		if row, ok := rows[tier]; ok {
			copy := *row
			result = append(result, &copy)
		}
	}
	return result, nil
}

// TierTotals aggregates draw counts per tier across all sessions.
func (s *SessionTierCountStore) TierTotals(_ context.Context) (domain.Tally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals domain.Tally
	for _, rows := range s.data {
		for tier, row := range rows {
			totals[tier] += row.Draws
		}
	}
	return totals, nil
}

var _ storage.SessionTierCountStore = (*SessionTierCountStore)(nil)
