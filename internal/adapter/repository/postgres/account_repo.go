package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

const accountColumns = `id, user_id, name, kind, is_active, note, created_at, updated_at`

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	db querier
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: pool}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Tx, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, name, kind, is_active, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := conn(r.db, tx).Exec(ctx, query,
		account.ID,
		account.OwnerID,
		account.Name,
		account.Kind,
		account.IsActive,
		account.Note,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return mapError(err, domain.ErrAccountNameTaken, nil)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND id = $2`
	return r.getOne(ctx, r.db, query, ownerID, id)
}

// GetByName retrieves an account by exact name.
func (r *AccountRepository) GetByName(ctx context.Context, tx usecase.Tx, ownerID, name string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND name = $2`
	return r.getOne(ctx, conn(r.db, tx), query, ownerID, name)
}

func (r *AccountRepository) getOne(ctx context.Context, q querier, query string, args ...any) (*domain.Account, error) {
	account, err := scanAccount(q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// List lists accounts, active first, then by name.
func (r *AccountRepository) List(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY is_active DESC, name ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

// Update overwrites the mutable account columns.
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $3, kind = $4, is_active = $5, note = $6, updated_at = $7
		WHERE user_id = $1 AND id = $2
	`

	tag, err := r.db.Exec(ctx, query,
		account.OwnerID,
		account.ID,
		account.Name,
		account.Kind,
		account.IsActive,
		account.Note,
		account.UpdatedAt,
	)

	return mustAffect(tag, mapError(err, domain.ErrAccountNameTaken, nil), domain.ErrAccountNotFound)
}

// Delete removes an account. References to it must be cleared first.
func (r *AccountRepository) Delete(ctx context.Context, tx usecase.Tx, ownerID, id string) error {
	tag, err := conn(r.db, tx).Exec(ctx, `DELETE FROM accounts WHERE user_id = $1 AND id = $2`, ownerID, id)
	return mustAffect(tag, err, domain.ErrAccountNotFound)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.Name,
		&a.Kind,
		&a.IsActive,
		&a.Note,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
