package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/kakeibo/internal/domain"
)

// SummaryRepository implements usecase.SummaryRepository with SQL
// aggregates, so sums are exact regardless of row count.
type SummaryRepository struct {
	db querier
}

// NewSummaryRepository creates a new SummaryRepository.
func NewSummaryRepository(pool *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{db: pool}
}

// TotalsByType sums amounts per type for a year, or a single month when
// month is non-zero.
func (r *SummaryRepository) TotalsByType(ctx context.Context, ownerID string, year, month int) (domain.TypeTotals, error) {
	query := `
		SELECT type, COALESCE(SUM(amount), 0)::bigint
		FROM transactions
		WHERE user_id = $1 AND year = $2 AND ($3::int = 0 OR month = $3)
		GROUP BY type
	`

	rows, err := r.db.Query(ctx, query, ownerID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := domain.TypeTotals{}
	for rows.Next() {
		var (
			t   domain.TransactionType
			sum int64
		)
		if err := rows.Scan(&t, &sum); err != nil {
			return nil, err
		}
		totals[t] = sum
	}

	return totals, rows.Err()
}

// OpeningBalanceTotal sums the opening balances of every account for a
// period.
func (r *SummaryRepository) OpeningBalanceTotal(ctx context.Context, ownerID string, period domain.Period) (int64, error) {
	query := `
		SELECT COALESCE(SUM(opening_balance), 0)::bigint
		FROM monthly_balances
		WHERE user_id = $1 AND year = $2 AND month = $3
	`

	var total int64
	err := r.db.QueryRow(ctx, query, ownerID, period.Year, period.Month).Scan(&total)
	return total, err
}
