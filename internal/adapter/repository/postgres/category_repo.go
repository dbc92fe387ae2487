package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

const categoryColumns = `id, user_id, name, is_fixed, is_active, created_at, updated_at`

// CategoryRepository implements usecase.CategoryRepository.
type CategoryRepository struct {
	db querier
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: pool}
}

// Create creates a new category.
func (r *CategoryRepository) Create(ctx context.Context, tx usecase.Tx, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, is_fixed, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := conn(r.db, tx).Exec(ctx, query,
		category.ID,
		category.OwnerID,
		category.Name,
		category.IsFixed,
		category.IsActive,
		category.CreatedAt,
		category.UpdatedAt,
	)

	return mapError(err, domain.ErrCategoryNameTaken, nil)
}

// GetByID retrieves a category by ID.
func (r *CategoryRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1 AND id = $2`
	return getCategory(ctx, r.db, query, ownerID, id)
}

// GetByName retrieves a category by exact name.
func (r *CategoryRepository) GetByName(ctx context.Context, tx usecase.Tx, ownerID, name string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1 AND name = $2`
	return getCategory(ctx, conn(r.db, tx), query, ownerID, name)
}

func getCategory(ctx context.Context, q querier, query string, args ...any) (*domain.Category, error) {
	c, err := scanCategory(q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	return c, err
}

// List lists categories, active first, then by name.
func (r *CategoryRepository) List(ctx context.Context, ownerID string) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1 ORDER BY is_active DESC, name ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// Update overwrites the mutable category columns.
func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $3, is_fixed = $4, is_active = $5, updated_at = $6
		WHERE user_id = $1 AND id = $2
	`

	tag, err := r.db.Exec(ctx, query,
		category.OwnerID,
		category.ID,
		category.Name,
		category.IsFixed,
		category.IsActive,
		category.UpdatedAt,
	)

	return mustAffect(tag, mapError(err, domain.ErrCategoryNameTaken, nil), domain.ErrCategoryNotFound)
}

// Delete removes a category.
func (r *CategoryRepository) Delete(ctx context.Context, tx usecase.Tx, ownerID, id string) error {
	tag, err := conn(r.db, tx).Exec(ctx, `DELETE FROM categories WHERE user_id = $1 AND id = $2`, ownerID, id)
	return mustAffect(tag, err, domain.ErrCategoryNotFound)
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Name,
		&c.IsFixed,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
