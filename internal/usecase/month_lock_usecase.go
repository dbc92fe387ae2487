package usecase

import (
	"context"

	"github.com/iho/kakeibo/internal/domain"
)

// MonthLockUseCase answers whether a period accepts writes and toggles locks.
type MonthLockUseCase struct {
	lockRepo MonthLockRepository
	idGen    IDGenerator
	clock    Clock
	metrics  Metrics
}

// NewMonthLockUseCase creates a new MonthLockUseCase.
func NewMonthLockUseCase(lockRepo MonthLockRepository, idGen IDGenerator, clock Clock, metrics Metrics) *MonthLockUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MonthLockUseCase{
		lockRepo: lockRepo,
		idGen:    idGen,
		clock:    clock,
		metrics:  metricsOrDefault(metrics),
	}
}

// IsLocked reports whether the period is closed. A period without a lock
// row is open.
func (uc *MonthLockUseCase) IsLocked(ctx context.Context, period domain.Period) (bool, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return false, err
	}
	if err := period.Validate(); err != nil {
		return false, err
	}

	lock, err := uc.lockRepo.Get(ctx, ownerID, period)
	if err != nil {
		return false, err
	}

	return lock != nil && lock.IsLocked, nil
}

// GetLock returns the lock state of a period, synthesizing an unlocked state
// when no row exists.
func (uc *MonthLockUseCase) GetLock(ctx context.Context, period domain.Period) (*domain.MonthlyLock, error) {
	locked, err := uc.IsLocked(ctx, period)
	if err != nil {
		return nil, err
	}
	return &domain.MonthlyLock{Year: period.Year, Month: period.Month, IsLocked: locked}, nil
}

// SetLock creates or updates the lock row for the period. Setting the same
// value twice leaves the row unchanged.
func (uc *MonthLockUseCase) SetLock(ctx context.Context, period domain.Period, locked bool) (*domain.MonthlyLock, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	lock := &domain.MonthlyLock{
		ID:        uc.idGen.Generate(),
		OwnerID:   ownerID,
		Year:      period.Year,
		Month:     period.Month,
		IsLocked:  locked,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.lockRepo.Upsert(ctx, lock); err != nil {
		return nil, err
	}

	uc.metrics.MonthLockChanged(locked)

	return lock, nil
}

// EnsureUnlocked returns a PeriodLockedError for the first locked period.
func (uc *MonthLockUseCase) EnsureUnlocked(ctx context.Context, periods ...domain.Period) error {
	seen := make(map[domain.Period]struct{}, len(periods))
	for _, p := range periods {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}

		locked, err := uc.IsLocked(ctx, p)
		if err != nil {
			return err
		}
		if locked {
			return domain.PeriodLockedError(p)
		}
	}
	return nil
}
