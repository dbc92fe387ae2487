package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

// MonthlyBalanceRepository implements usecase.MonthlyBalanceRepository.
type MonthlyBalanceRepository struct {
	db querier
}

// NewMonthlyBalanceRepository creates a new MonthlyBalanceRepository.
func NewMonthlyBalanceRepository(pool *pgxpool.Pool) *MonthlyBalanceRepository {
	return &MonthlyBalanceRepository{db: pool}
}

// List returns the opening balances recorded for a period.
func (r *MonthlyBalanceRepository) List(ctx context.Context, ownerID string, period domain.Period) ([]*domain.MonthlyBalance, error) {
	query := `
		SELECT id, user_id, account_id, year, month, opening_balance, note, created_at, updated_at
		FROM monthly_balances
		WHERE user_id = $1 AND year = $2 AND month = $3
		ORDER BY account_id
	`

	rows, err := r.db.Query(ctx, query, ownerID, period.Year, period.Month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []*domain.MonthlyBalance
	for rows.Next() {
		var b domain.MonthlyBalance
		if err := rows.Scan(
			&b.ID,
			&b.OwnerID,
			&b.AccountID,
			&b.Year,
			&b.Month,
			&b.OpeningBalance,
			&b.Note,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		balances = append(balances, &b)
	}

	return balances, rows.Err()
}

// Upsert writes the balance for (owner, period, account). An existing row
// keeps its id and created_at.
func (r *MonthlyBalanceRepository) Upsert(ctx context.Context, tx usecase.Tx, b *domain.MonthlyBalance) error {
	query := `
		INSERT INTO monthly_balances (id, user_id, account_id, year, month, opening_balance, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, year, month, account_id) DO UPDATE
		SET opening_balance = EXCLUDED.opening_balance,
			note = EXCLUDED.note,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`

	err := conn(r.db, tx).QueryRow(ctx, query,
		b.ID,
		b.OwnerID,
		b.AccountID,
		b.Year,
		b.Month,
		b.OpeningBalance,
		b.Note,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)

	return mapError(err, nil, domain.ErrAccountNotFound)
}

// DeleteByAccount removes every balance recorded for an account.
func (r *MonthlyBalanceRepository) DeleteByAccount(ctx context.Context, tx usecase.Tx, ownerID, accountID string) error {
	_, err := conn(r.db, tx).Exec(ctx, `DELETE FROM monthly_balances WHERE user_id = $1 AND account_id = $2`, ownerID, accountID)
	return err
}
