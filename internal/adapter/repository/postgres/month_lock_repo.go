package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/kakeibo/internal/domain"
)

// MonthLockRepository implements usecase.MonthLockRepository.
type MonthLockRepository struct {
	db querier
}

// NewMonthLockRepository creates a new MonthLockRepository.
func NewMonthLockRepository(pool *pgxpool.Pool) *MonthLockRepository {
	return &MonthLockRepository{db: pool}
}

// Get returns the lock row of a period, or nil when none was ever written.
func (r *MonthLockRepository) Get(ctx context.Context, ownerID string, period domain.Period) (*domain.MonthlyLock, error) {
	query := `
		SELECT id, user_id, year, month, is_locked, created_at, updated_at
		FROM monthly_locks
		WHERE user_id = $1 AND year = $2 AND month = $3
	`

	var l domain.MonthlyLock
	err := r.db.QueryRow(ctx, query, ownerID, period.Year, period.Month).Scan(
		&l.ID,
		&l.OwnerID,
		&l.Year,
		&l.Month,
		&l.IsLocked,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// Upsert sets the lock flag of a period.
func (r *MonthLockRepository) Upsert(ctx context.Context, l *domain.MonthlyLock) error {
	query := `
		INSERT INTO monthly_locks (id, user_id, year, month, is_locked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, year, month) DO UPDATE
		SET is_locked = EXCLUDED.is_locked, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(ctx, query,
		l.ID,
		l.OwnerID,
		l.Year,
		l.Month,
		l.IsLocked,
		l.CreatedAt,
		l.UpdatedAt,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}
