package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"toto-sim-lab/internal/domain"
	"toto-sim-lab/internal/storage"
)

// SessionStore implements storage.SessionStore using PostgreSQL.
type SessionStore struct {
	pool *Pool
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(pool *Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SessionStore = (*SessionStore)(nil)

const sessionColumns = `
	session_id, player_numbers, seed, mode, workers, max_draws,
	total_draws, jackpot_achieved, jackpot_draw,
	winning_numbers, winning_supplementary,
	tally_none, tally_group1, tally_group2, tally_group3,
	tally_group4, tally_group5, tally_group6,
	elapsed_seconds, theoretical_odds, equivalent_years,
	created_at
`

// Insert adds a new session. Returns ErrDuplicateKey if session_id exists.
func (s *SessionStore) Insert(ctx context.Context, sum *domain.SimulationSummary) error {
	query := `
		INSERT INTO sessions (` + sessionColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11,
			$12, $13, $14, $15,
			$16, $17, $18,
			$19, $20, $21,
			$22
		)
	`

	var winNumbers []int32
	var winSupplementary *int32
	if sum.WinningDraw != nil {
		winNumbers = numbersToInt32(sum.WinningDraw.Primary)
		supp := int32(sum.WinningDraw.Supplementary)
		winSupplementary = &supp
	}

	_, err := s.pool.Exec(ctx, query,
		sum.SessionID, numbersToInt32(sum.Player), sum.Seed, sum.Mode, sum.Workers, sum.MaxDraws,
		sum.TotalDraws, sum.JackpotAchieved, sum.JackpotDraw,
		winNumbers, winSupplementary,
		int64(sum.Tally[domain.TierNone]), int64(sum.Tally[domain.TierGroup1]), int64(sum.Tally[domain.TierGroup2]), int64(sum.Tally[domain.TierGroup3]),
		int64(sum.Tally[domain.TierGroup4]), int64(sum.Tally[domain.TierGroup5]), int64(sum.Tally[domain.TierGroup6]),
		sum.ElapsedSeconds, sum.TheoreticalOdds, sum.EquivalentYears,
		sum.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by its ID. Returns ErrNotFound if not exists.
func (s *SessionStore) GetByID(ctx context.Context, sessionID string) (*domain.SimulationSummary, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE session_id = $1
	`

	row := s.pool.QueryRow(ctx, query, sessionID)
	sum, err := scanSession(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}
	return sum, nil
}

// GetRecent retrieves the most recently created sessions, newest first.
// A limit <= 0 returns all sessions.
func (s *SessionStore) GetRecent(ctx context.Context, limit int) ([]*domain.SimulationSummary, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		ORDER BY created_at DESC, session_id ASC
	`

	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.pool.Query(ctx, query+" LIMIT $1", limit)
	} else {
		rows, err = s.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("get recent sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// GetAll retrieves all sessions, newest first.
func (s *SessionStore) GetAll(ctx context.Context) ([]*domain.SimulationSummary, error) {
	return s.GetRecent(ctx, 0)
}

// Count returns the number of stored sessions.
func (s *SessionStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

// scanSession scans a single row into a SimulationSummary.
func scanSession(row pgx.Row) (*domain.SimulationSummary, error) {
	var (
		sum              domain.SimulationSummary
		playerNumbers    []int32
		winNumbers       []int32
		winSupplementary *int32
		tally            [domain.TierCount]int64
	)

	err := row.Scan(
		&sum.SessionID, &playerNumbers, &sum.Seed, &sum.Mode, &sum.Workers, &sum.MaxDraws,
		&sum.TotalDraws, &sum.JackpotAchieved, &sum.JackpotDraw,
		&winNumbers, &winSupplementary,
		&tally[domain.TierNone], &tally[domain.TierGroup1], &tally[domain.TierGroup2], &tally[domain.TierGroup3],
		&tally[domain.TierGroup4], &tally[domain.TierGroup5], &tally[domain.TierGroup6],
		&sum.ElapsedSeconds, &sum.TheoreticalOdds, &sum.EquivalentYears,
		&sum.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := restoreSession(&sum, playerNumbers, winNumbers, winSupplementary, tally); err != nil {
		return nil, err
	}
	return &sum, nil
}

// scanSessions scans multiple rows into a slice of SimulationSummary.
func scanSessions(rows pgx.Rows) ([]*domain.SimulationSummary, error) {
	var sessions []*domain.SimulationSummary

	for rows.Next() {
		var (
			sum              domain.SimulationSummary
			playerNumbers    []int32
			winNumbers       []int32
			winSupplementary *int32
			tally            [domain.TierCount]int64
		)

		err := rows.Scan(
			&sum.SessionID, &playerNumbers, &sum.Seed, &sum.Mode, &sum.Workers, &sum.MaxDraws,
			&sum.TotalDraws, &sum.JackpotAchieved, &sum.JackpotDraw,
			&winNumbers, &winSupplementary,
			&tally[domain.TierNone], &tally[domain.TierGroup1], &tally[domain.TierGroup2], &tally[domain.TierGroup3],
			&tally[domain.TierGroup4], &tally[domain.TierGroup5], &tally[domain.TierGroup6],
			&sum.ElapsedSeconds, &sum.TheoreticalOdds, &sum.EquivalentYears,
			&sum.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}

		if err := restoreSession(&sum, playerNumbers, winNumbers, winSupplementary, tally); err != nil {
			return nil, fmt.Errorf("restore session row: %w", err)
		}
		sessions = append(sessions, &sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}

	return sessions, nil
}

// restoreSession rebuilds the in-memory fields that are stored in
// column-expanded form: the ticket, the optional winning draw, and the tally.
func restoreSession(sum *domain.SimulationSummary, playerNumbers, winNumbers []int32, winSupplementary *int32, tally [domain.TierCount]int64) error {
	player, err := int32ToNumbers(playerNumbers)
	if err != nil {
		return fmt.Errorf("player numbers: %w", err)
	}
	sum.Player = player

	if winNumbers != nil && winSupplementary != nil {
		primary, err := int32ToNumbers(winNumbers)
		if err != nil {
			return fmt.Errorf("winning numbers: %w", err)
		}
		sum.WinningDraw = &domain.Draw{
			Primary:       primary,
			Supplementary: int(*winSupplementary),
		}
	}

	for tier, count := range tally {
		if count < 0 {
			return fmt.Errorf("negative tally for tier %d", tier)
		}
		sum.Tally[tier] = uint64(count)
	}
	return nil
}

// numbersToInt32 converts a NumberSet to an int32 slice for array columns.
func numbersToInt32(n domain.NumberSet) []int32 {
	out := make([]int32, len(n))
	for i, v := range n {
		out[i] = int32(v)
	}
	return out
}

// int32ToNumbers converts an array column back into a validated NumberSet.
func int32ToNumbers(vals []int32) (domain.NumberSet, error) {
	ints := make([]int, len(vals))
	for i, v := range vals {
		ints[i] = int(v)
	}
	return domain.NewNumberSet(ints)
}
