package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iho/kakeibo/internal/domain"
)

// TransactionUseCaseConfig holds the dependencies of TransactionUseCase.
type TransactionUseCaseConfig struct {
	TransactionRepo TransactionRepository
	AccountRepo     AccountRepository
	CategoryRepo    CategoryRepository
	Locks           *MonthLockUseCase
	IDGen           IDGenerator
	Clock           Clock
	Retrier         Retrier
	Cache           *SummaryCache
	Metrics         Metrics
}

// TransactionUseCase handles transaction business logic.
type TransactionUseCase struct {
	txRepo       TransactionRepository
	accountRepo  AccountRepository
	categoryRepo CategoryRepository
	locks        *MonthLockUseCase
	idGen        IDGenerator
	clock        Clock
	retrier      Retrier
	cache        *SummaryCache
	metrics      Metrics
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(cfg TransactionUseCaseConfig) *TransactionUseCase {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	return &TransactionUseCase{
		txRepo:       cfg.TransactionRepo,
		accountRepo:  cfg.AccountRepo,
		categoryRepo: cfg.CategoryRepo,
		locks:        cfg.Locks,
		idGen:        cfg.IDGen,
		clock:        cfg.Clock,
		retrier:      retrierOrDefault(cfg.Retrier),
		cache:        cfg.Cache,
		metrics:      metricsOrDefault(cfg.Metrics),
	}
}

// CreateTransactionInput represents input for creating a transaction.
type CreateTransactionInput struct {
	Date         time.Time
	AccountID    *string
	ToAccountID  *string
	CategoryID   *string
	CategoryFree *string
	Description  *string
	Note         *string
	Type         domain.TransactionType
	Amount       int64
}

// CreateTransaction validates and stores a new transaction.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	t := &domain.Transaction{
		ID:           uc.idGen.Generate(),
		OwnerID:      ownerID,
		Type:         input.Type,
		Amount:       input.Amount,
		AccountID:    input.AccountID,
		ToAccountID:  input.ToAccountID,
		CategoryID:   input.CategoryID,
		CategoryFree: input.CategoryFree,
		Description:  input.Description,
		Note:         input.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	t.SetDate(input.Date)

	if err := uc.checkWritable(ctx, t, t.Period()); err != nil {
		return nil, err
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.txRepo.Create(ctx, nil, t)
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, ownerID)
	uc.metrics.TransactionWritten("create")

	return t, nil
}

// UpdateTransaction applies a patch to an existing transaction. When the
// date moves the transaction to another period, both periods must be open.
func (uc *TransactionUseCase) UpdateTransaction(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	current, err := uc.txRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	merged := current.Clone()
	merged.Apply(patch)
	merged.UpdatedAt = uc.clock.Now().UTC()

	if err := uc.checkWritable(ctx, merged, current.Period()); err != nil {
		return nil, err
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.txRepo.Update(ctx, merged)
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, ownerID)
	uc.metrics.TransactionWritten("update")

	return merged, nil
}

// DeleteTransaction removes a transaction from an open period.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, id string) error {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return err
	}

	current, err := uc.txRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := uc.locks.EnsureUnlocked(ctx, current.Period()); err != nil {
		return err
	}

	if err := uc.txRepo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	uc.cache.Invalidate(ctx, ownerID)
	uc.metrics.TransactionWritten("delete")

	return nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return uc.txRepo.GetByID(ctx, ownerID, id)
}

// ListTransactionsInput represents input for listing a period's transactions.
type ListTransactionsInput struct {
	Query  string
	Period domain.Period
	Limit  int
	Offset int
}

// ListTransactions lists a period's transactions, newest first.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.Period.Validate(); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.txRepo.List(ctx, ownerID, domain.TransactionFilter{
		Year:   input.Period.Year,
		Month:  input.Period.Month,
		Query:  input.Query,
		Limit:  limit,
		Offset: offset,
	})
}

// checkWritable runs every precondition for persisting t. original is the
// period the transaction currently lives in, equal to t's own on create.
func (uc *TransactionUseCase) checkWritable(ctx context.Context, t *domain.Transaction, original domain.Period) error {
	t.AccountID = blankToNil(t.AccountID)
	t.ToAccountID = blankToNil(t.ToAccountID)
	t.CategoryID = blankToNil(t.CategoryID)

	if err := t.Validate(); err != nil && !isRuleViolation(err) {
		return err
	}

	today := domain.DateOnly(uc.clock.Now())
	if t.Date.After(today) {
		return domain.ErrFutureDate
	}

	if err := uc.locks.EnsureUnlocked(ctx, original, t.Period()); err != nil {
		return err
	}

	if err := domain.ValidateTransactionRules(t.Type, t.AccountID, t.ToAccountID); err != nil {
		return err
	}

	return uc.checkReferences(ctx, t)
}

func (uc *TransactionUseCase) checkReferences(ctx context.Context, t *domain.Transaction) error {
	if t.AccountID != nil {
		if _, err := uc.accountRepo.GetByID(ctx, t.OwnerID, *t.AccountID); err != nil {
			return err
		}
	}
	if t.ToAccountID != nil {
		if _, err := uc.accountRepo.GetByID(ctx, t.OwnerID, *t.ToAccountID); err != nil {
			return err
		}
	}
	if t.CategoryID != nil {
		if _, err := uc.categoryRepo.GetByID(ctx, t.OwnerID, *t.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

// isRuleViolation reports whether err comes from the account rules, which
// are evaluated after the date and lock checks.
func isRuleViolation(err error) bool {
	return errors.Is(err, domain.ErrMissingAccount) ||
		errors.Is(err, domain.ErrMissingDestinationAccount) ||
		errors.Is(err, domain.ErrSameAccountTransfer) ||
		errors.Is(err, domain.ErrUnexpectedDestinationAccount)
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
