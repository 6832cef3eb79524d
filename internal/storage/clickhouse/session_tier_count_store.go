package clickhouse

import (
	"context"
	"fmt"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/storage"
)

// SessionTierCountStore implements storage.SessionTierCountStore using ClickHouse.
type SessionTierCountStore struct {
	conn *Conn
}

// NewSessionTierCountStore creates a new SessionTierCountStore.
func NewSessionTierCountStore(conn *Conn) *SessionTierCountStore {
	return &SessionTierCountStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SessionTierCountStore = (*SessionTierCountStore)(nil)

// InsertBulk adds the per-tier rows of one session. Fails the entire batch
// on any malformed row or duplicate (session_id, tier) key.
func (s *SessionTierCountStore) InsertBulk(ctx context.Context, counts []*domain.SessionTierCount) error {
	if len(counts) == 0 {
		return nil
	}

	// Check for malformed rows and intra-batch duplicates
	seen := make(map[string]struct{}, len(counts))
	for _, c := range counts {
		if c == nil || c.SessionID == "" || !c.Tier.Valid() {
			return storage.ErrInvalidInput
		}
		key := c.SessionID + "|" + c.Tier.Code()
		if _, exists := seen[key]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, c := range counts {
		exists, err := s.exists(ctx, c.SessionID, c.Tier)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	// Use batch insert
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO session_tier_counts (session_id, tier, draws, share)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range counts {
		if err := batch.Append(c.SessionID, c.Tier.Code(), c.Draws, c.Share); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySessionID retrieves a session's rows ordered Group 1 through Group 6,
// then no prize. Returns ErrNotFound if the session has no rows.
func (s *SessionTierCountStore) GetBySessionID(ctx context.Context, sessionID string) ([]*domain.SessionTierCount, error) {
	query := `
		SELECT session_id, tier, draws, share
		FROM session_tier_counts FINAL
		WHERE session_id = ?
	`

	rows, err := s.conn.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query by session id: %w", err)
	}
	defer rows.Close()

	byTier := make(map[domain.Tier]*domain.SessionTierCount, domain.TierCount)
	for rows.Next() {
		var (
			c    domain.SessionTierCount
			code string
		)
		if err := rows.Scan(&c.SessionID, &code, &c.Draws, &c.Share); err != nil {
			return nil, fmt.Errorf("scan tier count row: %w", err)
		}
		tier, err := domain.ParseTier(code)
		if err != nil {
			return nil, fmt.Errorf("tier count row: %w", err)
		}
		c.Tier = tier
		byTier[tier] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tier count rows: %w", err)
	}

	if len(byTier) == 0 {
		return nil, storage.ErrNotFound
	}

	result := make([]*domain.SessionTierCount, 0, len(byTier))
	for _, tier := range domain.Tiers() {
		if c, ok := byTier[tier]; ok {
			result = append(result, c)
		}
	}
	return result, nil
}

// TierTotals aggregates draw counts per tier across all sessions.
func (s *SessionTierCountStore) TierTotals(ctx context.Context) (domain.Tally, error) {
	query := `
		SELECT tier, sum(draws)
		FROM session_tier_counts FINAL
		GROUP BY tier
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("query tier totals: %w", err)
	}
	defer rows.Close()

	var totals domain.Tally
	for rows.Next() {
		var (
			code  string
			draws uint64
		)
		if err := rows.Scan(&code, &draws); err != nil {
			return domain.Tally{}, fmt.Errorf("scan tier total row: %w", err)
		}
		tier, err := domain.ParseTier(code)
		if err != nil {
			return domain.Tally{}, fmt.Errorf("tier total row: %w", err)
		}
		totals[tier] += draws
	}
	if err := rows.Err(); err != nil {
		return domain.Tally{}, fmt.Errorf("iterate tier total rows: %w", err)
	}

	return totals, nil
}

// exists checks if a row with the given key exists.
func (s *SessionTierCountStore) exists(ctx context.Context, sessionID string, tier domain.Tier) (bool, error) {
	query := `
		SELECT count(*) FROM session_tier_counts FINAL
		WHERE session_id = ? AND tier = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, sessionID, tier.Code()).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
