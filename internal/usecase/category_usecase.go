package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/iho/kakeibo/internal/domain"
)

// CategoryUseCase handles category business logic.
type CategoryUseCase struct {
	txManager    TxManager
	categoryRepo CategoryRepository
	txRepo       TransactionRepository
	idGen        IDGenerator
	clock        Clock
}

// NewCategoryUseCase creates a new CategoryUseCase.
func NewCategoryUseCase(txManager TxManager, categoryRepo CategoryRepository, txRepo TransactionRepository, idGen IDGenerator) *CategoryUseCase {
	return &CategoryUseCase{
		txManager:    txManager,
		categoryRepo: categoryRepo,
		txRepo:       txRepo,
		idGen:        idGen,
		clock:        SystemClock{},
	}
}

// CreateCategoryInput represents input for creating a category.
type CreateCategoryInput struct {
	IsActive *bool
	Name     string
	IsFixed  bool
}

// CreateCategory creates a new category.
func (uc *CategoryUseCase) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	category := &domain.Category{
		ID:        uc.idGen.Generate(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(input.Name),
		IsFixed:   input.IsFixed,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := domain.ValidateName(category.Name); err != nil {
		return nil, err
	}

	if err := uc.categoryRepo.Create(ctx, nil, category); err != nil {
		return nil, err
	}

	return category, nil
}

// GetCategory retrieves a category by ID.
func (uc *CategoryUseCase) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return uc.categoryRepo.GetByID(ctx, ownerID, id)
}

// ListCategories lists categories, active ones first, then by name.
func (uc *CategoryUseCase) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return uc.categoryRepo.List(ctx, ownerID)
}

// UpdateCategory applies a patch to a category.
func (uc *CategoryUseCase) UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	category, err := uc.categoryRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	category.Apply(patch)
	if err := domain.ValidateName(category.Name); err != nil {
		return nil, err
	}
	category.UpdatedAt = uc.clock.Now().UTC()

	if err := uc.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory removes a category and clears it from transactions.
func (uc *CategoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := uc.categoryRepo.GetByID(ctx, ownerID, id); err != nil {
		return err
	}

	return inTx(ctx, uc.txManager, func(tx Tx) error {
		if err := uc.txRepo.DetachCategory(ctx, tx, ownerID, id); err != nil {
			return err
		}
		return uc.categoryRepo.Delete(ctx, tx, ownerID, id)
	})
}

// SeedDefaults creates the fixed default categories the owner does not have
// yet. It returns the number created.
func (uc *CategoryUseCase) SeedDefaults(ctx context.Context) (int, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	err = inTx(ctx, uc.txManager, func(tx Tx) error {
		created = 0
		for _, name := range domain.DefaultCategories {
			_, err := uc.categoryRepo.GetByName(ctx, tx, ownerID, name)
			if err == nil {
				continue
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}

			now := uc.clock.Now().UTC()
			category := &domain.Category{
				ID:        uc.idGen.Generate(),
				OwnerID:   ownerID,
				Name:      name,
				IsFixed:   true,
				IsActive:  true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := uc.categoryRepo.Create(ctx, tx, category); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}
