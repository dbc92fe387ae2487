package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/kakeibo/internal/domain"
)

const liabilityColumns = `id, user_id, name, balance, monthly_payment, payment_day,
	start_date, end_date, fee_amount, note, is_active, created_at, updated_at`

// LiabilityRepository implements usecase.LiabilityRepository.
type LiabilityRepository struct {
	db querier
}

// NewLiabilityRepository creates a new LiabilityRepository.
func NewLiabilityRepository(pool *pgxpool.Pool) *LiabilityRepository {
	return &LiabilityRepository{db: pool}
}

// Create creates a new liability.
func (r *LiabilityRepository) Create(ctx context.Context, l *domain.Liability) error {
	query := `
		INSERT INTO liabilities (id, user_id, name, balance, monthly_payment, payment_day,
			start_date, end_date, fee_amount, note, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		l.ID,
		l.OwnerID,
		l.Name,
		l.Balance,
		l.MonthlyPayment,
		l.PaymentDay,
		l.StartDate,
		l.EndDate,
		l.FeeAmount,
		l.Note,
		l.IsActive,
		l.CreatedAt,
		l.UpdatedAt,
	)

	return mapError(err, domain.ErrLiabilityNameTaken, nil)
}

// GetByID retrieves a liability by ID.
func (r *LiabilityRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Liability, error) {
	query := `SELECT ` + liabilityColumns + ` FROM liabilities WHERE user_id = $1 AND id = $2`

	l, err := scanLiability(r.db.QueryRow(ctx, query, ownerID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLiabilityNotFound
	}
	if err != nil {
		return nil, err
	}

	return l, nil
}

// List lists liabilities, active first, then by name.
func (r *LiabilityRepository) List(ctx context.Context, ownerID string) ([]*domain.Liability, error) {
	query := `SELECT ` + liabilityColumns + ` FROM liabilities WHERE user_id = $1 ORDER BY is_active DESC, name ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var liabilities []*domain.Liability
	for rows.Next() {
		l, err := scanLiability(rows)
		if err != nil {
			return nil, err
		}
		liabilities = append(liabilities, l)
	}

	return liabilities, rows.Err()
}

// Update overwrites the mutable liability columns.
func (r *LiabilityRepository) Update(ctx context.Context, l *domain.Liability) error {
	query := `
		UPDATE liabilities
		SET name = $3, balance = $4, monthly_payment = $5, payment_day = $6,
			start_date = $7, end_date = $8, fee_amount = $9, note = $10,
			is_active = $11, updated_at = $12
		WHERE user_id = $1 AND id = $2
	`

	tag, err := r.db.Exec(ctx, query,
		l.OwnerID,
		l.ID,
		l.Name,
		l.Balance,
		l.MonthlyPayment,
		l.PaymentDay,
		l.StartDate,
		l.EndDate,
		l.FeeAmount,
		l.Note,
		l.IsActive,
		l.UpdatedAt,
	)

	return mustAffect(tag, mapError(err, domain.ErrLiabilityNameTaken, nil), domain.ErrLiabilityNotFound)
}

// Delete removes a liability.
func (r *LiabilityRepository) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM liabilities WHERE user_id = $1 AND id = $2`, ownerID, id)
	return mustAffect(tag, err, domain.ErrLiabilityNotFound)
}

func scanLiability(row pgx.Row) (*domain.Liability, error) {
	var l domain.Liability
	if err := row.Scan(
		&l.ID,
		&l.OwnerID,
		&l.Name,
		&l.Balance,
		&l.MonthlyPayment,
		&l.PaymentDay,
		&l.StartDate,
		&l.EndDate,
		&l.FeeAmount,
		&l.Note,
		&l.IsActive,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}
