package usecase

import (
	"context"

	"github.com/iho/kakeibo/internal/domain"
)

// MonthlyBalanceUseCase manages per-account opening balances.
type MonthlyBalanceUseCase struct {
	txManager   TxManager
	balanceRepo MonthlyBalanceRepository
	accountRepo AccountRepository
	locks       *MonthLockUseCase
	idGen       IDGenerator
	clock       Clock
	retrier     Retrier
	cache       *SummaryCache
}

// NewMonthlyBalanceUseCase creates a new MonthlyBalanceUseCase.
func NewMonthlyBalanceUseCase(
	txManager TxManager,
	balanceRepo MonthlyBalanceRepository,
	accountRepo AccountRepository,
	locks *MonthLockUseCase,
	idGen IDGenerator,
	retrier Retrier,
	cache *SummaryCache,
) *MonthlyBalanceUseCase {
	return &MonthlyBalanceUseCase{
		txManager:   txManager,
		balanceRepo: balanceRepo,
		accountRepo: accountRepo,
		locks:       locks,
		idGen:       idGen,
		clock:       SystemClock{},
		retrier:     retrierOrDefault(retrier),
		cache:       cache,
	}
}

// BalanceInput is the opening balance of one account.
type BalanceInput struct {
	Note           *string
	AccountID      string
	OpeningBalance int64
}

// ListBalances lists a period's opening balances.
func (uc *MonthlyBalanceUseCase) ListBalances(ctx context.Context, period domain.Period) ([]*domain.MonthlyBalance, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	return uc.balanceRepo.List(ctx, ownerID, period)
}

// UpsertBalance sets one account's opening balance for an open period.
func (uc *MonthlyBalanceUseCase) UpsertBalance(ctx context.Context, period domain.Period, input BalanceInput) (*domain.MonthlyBalance, error) {
	balances, err := uc.SaveAll(ctx, period, []BalanceInput{input})
	if err != nil {
		return nil, err
	}
	return balances[0], nil
}

// SaveAll sets several opening balances of one period atomically.
func (uc *MonthlyBalanceUseCase) SaveAll(ctx context.Context, period domain.Period, inputs []BalanceInput) ([]*domain.MonthlyBalance, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if err := uc.locks.EnsureUnlocked(ctx, period); err != nil {
		return nil, err
	}

	for _, in := range inputs {
		if _, err := uc.accountRepo.GetByID(ctx, ownerID, in.AccountID); err != nil {
			return nil, err
		}
	}

	var balances []*domain.MonthlyBalance
	err = uc.retrier.Retry(ctx, func() error {
		balances = make([]*domain.MonthlyBalance, 0, len(inputs))
		return inTx(ctx, uc.txManager, func(tx Tx) error {
			now := uc.clock.Now().UTC()
			for _, in := range inputs {
				b := &domain.MonthlyBalance{
					ID:             uc.idGen.Generate(),
					OwnerID:        ownerID,
					AccountID:      in.AccountID,
					Year:           period.Year,
					Month:          period.Month,
					OpeningBalance: in.OpeningBalance,
					Note:           in.Note,
					CreatedAt:      now,
					UpdatedAt:      now,
				}
				if err := uc.balanceRepo.Upsert(ctx, tx, b); err != nil {
					return err
				}
				balances = append(balances, b)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, ownerID)

	return balances, nil
}
