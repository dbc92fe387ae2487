package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/iho/kakeibo/internal/domain"
)

// LiabilityUseCase handles liability records.
type LiabilityUseCase struct {
	liabilityRepo LiabilityRepository
	idGen         IDGenerator
	clock         Clock
}

// NewLiabilityUseCase creates a new LiabilityUseCase.
func NewLiabilityUseCase(liabilityRepo LiabilityRepository, idGen IDGenerator) *LiabilityUseCase {
	return &LiabilityUseCase{
		liabilityRepo: liabilityRepo,
		idGen:         idGen,
		clock:         SystemClock{},
	}
}

// CreateLiabilityInput represents input for creating a liability.
type CreateLiabilityInput struct {
	MonthlyPayment *int64
	PaymentDay     *int
	StartDate      *time.Time
	EndDate        *time.Time
	FeeAmount      *int64
	Note           *string
	IsActive       *bool
	Name           string
	Balance        int64
}

// CreateLiability creates a new liability.
func (uc *LiabilityUseCase) CreateLiability(ctx context.Context, input CreateLiabilityInput) (*domain.Liability, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	l := &domain.Liability{
		ID:             uc.idGen.Generate(),
		OwnerID:        ownerID,
		Name:           strings.TrimSpace(input.Name),
		Balance:        input.Balance,
		MonthlyPayment: input.MonthlyPayment,
		PaymentDay:     input.PaymentDay,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		FeeAmount:      input.FeeAmount,
		Note:           input.Note,
		IsActive:       active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}

	if err := uc.liabilityRepo.Create(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

// GetLiability retrieves a liability by ID.
func (uc *LiabilityUseCase) GetLiability(ctx context.Context, id string) (*domain.Liability, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return uc.liabilityRepo.GetByID(ctx, ownerID, id)
}

// ListLiabilities lists liabilities, active ones first, then by name.
func (uc *LiabilityUseCase) ListLiabilities(ctx context.Context) ([]*domain.Liability, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return uc.liabilityRepo.List(ctx, ownerID)
}

// UpdateLiability applies a patch to a liability.
func (uc *LiabilityUseCase) UpdateLiability(ctx context.Context, id string, patch domain.LiabilityPatch) (*domain.Liability, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	l, err := uc.liabilityRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	l.Apply(patch)
	if err := l.Validate(); err != nil {
		return nil, err
	}
	l.UpdatedAt = uc.clock.Now().UTC()

	if err := uc.liabilityRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

// DeleteLiability removes a liability.
func (uc *LiabilityUseCase) DeleteLiability(ctx context.Context, id string) error {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return err
	}
	return uc.liabilityRepo.Delete(ctx, ownerID, id)
}
