package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

const transactionColumns = `t.id, t.user_id, t.date, t.year, t.month, t.type, t.amount,
	t.account_id, t.to_account_id, t.category_id, t.category_free, t.description, t.note,
	t.created_at, t.updated_at`

// Foreign keys of the transactions table, named by PostgreSQL's default
// <table>_<column>_fkey scheme.
const (
	fkTransactionAccount   = "transactions_account_id_fkey"
	fkTransactionToAccount = "transactions_to_account_id_fkey"
	fkTransactionCategory  = "transactions_category_id_fkey"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	db querier
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: pool}
}

// Create inserts a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Tx, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, date, year, month, type, amount,
			account_id, to_account_id, category_id, category_free, description, note,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := conn(r.db, tx).Exec(ctx, query,
		t.ID,
		t.OwnerID,
		t.Date,
		t.Year,
		t.Month,
		t.Type,
		t.Amount,
		t.AccountID,
		t.ToAccountID,
		t.CategoryID,
		t.CategoryFree,
		t.Description,
		t.Note,
		t.CreatedAt,
		t.UpdatedAt,
	)

	return mapReferenceError(err)
}

// GetByID retrieves a transaction of the owner.
func (r *TransactionRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.user_id = $1 AND t.id = $2`

	t, err := scanTransaction(r.db.QueryRow(ctx, query, ownerID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	return t, nil
}

// Update overwrites every mutable column of a transaction.
func (r *TransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET date = $3, year = $4, month = $5, type = $6, amount = $7,
			account_id = $8, to_account_id = $9, category_id = $10,
			category_free = $11, description = $12, note = $13, updated_at = $14
		WHERE user_id = $1 AND id = $2
	`

	tag, err := r.db.Exec(ctx, query,
		t.OwnerID,
		t.ID,
		t.Date,
		t.Year,
		t.Month,
		t.Type,
		t.Amount,
		t.AccountID,
		t.ToAccountID,
		t.CategoryID,
		t.CategoryFree,
		t.Description,
		t.Note,
		t.UpdatedAt,
	)

	return mustAffect(tag, mapReferenceError(err), domain.ErrTransactionNotFound)
}

// Delete removes a transaction.
func (r *TransactionRepository) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1 AND id = $2`, ownerID, id)
	return mustAffect(tag, err, domain.ErrTransactionNotFound)
}

// List returns transactions ordered by date then id, newest first. The
// query matches description, note, category_free, and the referenced
// account and category names case-insensitively.
func (r *TransactionRepository) List(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		LEFT JOIN accounts a ON a.id = t.account_id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1
			AND ($2::int = 0 OR t.year = $2)
			AND ($3::int = 0 OR t.month = $3)
			AND ($4::text = '' OR t.description ILIKE $5 OR t.note ILIKE $5
				OR t.category_free ILIKE $5 OR a.name ILIKE $5 OR c.name ILIKE $5)
		ORDER BY t.date DESC, t.id DESC
		LIMIT NULLIF($6::int, 0) OFFSET $7
	`

	rows, err := r.db.Query(ctx, query,
		ownerID,
		filter.Year,
		filter.Month,
		filter.Query,
		containsPattern(filter.Query),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

// DetachAccount clears the account from both reference columns.
func (r *TransactionRepository) DetachAccount(ctx context.Context, tx usecase.Tx, ownerID, accountID string) error {
	query := `
		UPDATE transactions
		SET account_id = CASE WHEN account_id = $2 THEN NULL ELSE account_id END,
			to_account_id = CASE WHEN to_account_id = $2 THEN NULL ELSE to_account_id END
		WHERE user_id = $1 AND (account_id = $2 OR to_account_id = $2)
	`
	_, err := conn(r.db, tx).Exec(ctx, query, ownerID, accountID)
	return err
}

// DetachCategory clears the category reference.
func (r *TransactionRepository) DetachCategory(ctx context.Context, tx usecase.Tx, ownerID, categoryID string) error {
	query := `UPDATE transactions SET category_id = NULL WHERE user_id = $1 AND category_id = $2`
	_, err := conn(r.db, tx).Exec(ctx, query, ownerID, categoryID)
	return err
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Date,
		&t.Year,
		&t.Month,
		&t.Type,
		&t.Amount,
		&t.AccountID,
		&t.ToAccountID,
		&t.CategoryID,
		&t.CategoryFree,
		&t.Description,
		&t.Note,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// mapReferenceError reports which reference a foreign-key violation hit.
func mapReferenceError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgErrForeignKeyViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case fkTransactionAccount, fkTransactionToAccount:
		return domain.ErrAccountNotFound
	case fkTransactionCategory:
		return domain.ErrCategoryNotFound
	default:
		return domain.ErrNotFound
	}
}
