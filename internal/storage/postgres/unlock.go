package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/progress"
)

// UnlockRepository stores the unlock list in the level_unlocks table.
type UnlockRepository struct {
	db *pgxpool.Pool
}

// NewUnlockRepository creates an UnlockRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the
// level_unlocks migration applied.
func NewUnlockRepository(db *pgxpool.Pool) *UnlockRepository {
	return &UnlockRepository{db: db}
}

// Unlock implements progress.Store.
//
// Postcondition: n is recorded; an existing row is left unchanged.
func (r *UnlockRepository) Unlock(ctx context.Context, n int) error {
	if err := progress.CheckRange(n); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO level_unlocks (level) VALUES ($1) ON CONFLICT (level) DO NOTHING`, n)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("level %d: %w", n, progress.ErrLevelOutOfRange)
		}
		return fmt.Errorf("inserting unlock: %w", err)
	}
	return nil
}

// IsUnlocked implements progress.Store. Level 1 reports true even when its
// row is missing.
func (r *UnlockRepository) IsUnlocked(ctx context.Context, n int) (bool, error) {
	if err := progress.CheckRange(n); err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	var got int
	err := r.db.QueryRow(ctx, `SELECT level FROM level_unlocks WHERE level = $1`, n).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying unlock: %w", err)
	}
	return true, nil
}

// Unlocked implements progress.Store.
func (r *UnlockRepository) Unlocked(ctx context.Context) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT level FROM level_unlocks ORDER BY level`)
	if err != nil {
		return nil, fmt.Errorf("listing unlocks: %w", err)
	}
	levels, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("scanning unlocks: %w", err)
	}
	if len(levels) == 0 || levels[0] != 1 {
		levels = append([]int{1}, levels...)
	}
	return levels, nil
}

// isCheckViolation reports SQLSTATE 23514 (check_violation).
func isCheckViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23514"
	}
	return false
}

var _ progress.Store = (*UnlockRepository)(nil)
