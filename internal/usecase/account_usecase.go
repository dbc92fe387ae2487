package usecase

import (
	"context"
	"strings"

	"github.com/iho/kakeibo/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TxManager
	accountRepo AccountRepository
	txRepo      TransactionRepository
	balanceRepo MonthlyBalanceRepository
	idGen       IDGenerator
	clock       Clock
	cache       *SummaryCache
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TxManager,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	balanceRepo MonthlyBalanceRepository,
	idGen IDGenerator,
	cache *SummaryCache,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		balanceRepo: balanceRepo,
		idGen:       idGen,
		clock:       SystemClock{},
		cache:       cache,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Note     *string
	IsActive *bool
	Name     string
	Kind     string
}

// CreateAccount creates a new account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	account := uc.newAccount(ownerID, input)
	if err := account.Validate(); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Create(ctx, nil, account); err != nil {
		return nil, err
	}

	return account, nil
}

func (uc *AccountUseCase) newAccount(ownerID string, input CreateAccountInput) *domain.Account {
	now := uc.clock.Now().UTC()

	kind := strings.TrimSpace(input.Kind)
	if kind == "" {
		kind = domain.AccountKindOther
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	return &domain.Account{
		ID:        uc.idGen.Generate(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(input.Name),
		Kind:      kind,
		IsActive:  active,
		Note:      input.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return uc.accountRepo.GetByID(ctx, ownerID, id)
}

// ListAccounts lists accounts, active ones first, then by name.
func (uc *AccountUseCase) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return uc.accountRepo.List(ctx, ownerID)
}

// UpdateAccount applies a patch to an account.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	account.Apply(patch)
	if err := account.Validate(); err != nil {
		return nil, err
	}
	account.UpdatedAt = uc.clock.Now().UTC()

	if err := uc.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// DeleteAccount removes an account. Transactions referencing it keep their
// other fields with the reference cleared; its opening balances go with it.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, id string) error {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := uc.accountRepo.GetByID(ctx, ownerID, id); err != nil {
		return err
	}

	err = inTx(ctx, uc.txManager, func(tx Tx) error {
		if err := uc.txRepo.DetachAccount(ctx, tx, ownerID, id); err != nil {
			return err
		}
		if err := uc.balanceRepo.DeleteByAccount(ctx, tx, ownerID, id); err != nil {
			return err
		}
		return uc.accountRepo.Delete(ctx, tx, ownerID, id)
	})
	if err != nil {
		return err
	}

	uc.cache.Invalidate(ctx, ownerID)
	return nil
}

// ImportAccountsJSON creates accounts from a bulk payload. Blank names and
// names that already exist, in the store or earlier in the payload, are
// skipped. It returns the number of accounts created.
func (uc *AccountUseCase) ImportAccountsJSON(ctx context.Context, items []CreateAccountInput) (int, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return 0, err
	}

	existing, err := uc.accountRepo.List(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing)+len(items))
	for _, a := range existing {
		seen[a.Name] = true
	}

	var accounts []*domain.Account
	for _, item := range items {
		account := uc.newAccount(ownerID, item)
		if account.Name == "" || seen[account.Name] {
			continue
		}
		if err := account.Validate(); err != nil {
			return 0, err
		}
		seen[account.Name] = true
		accounts = append(accounts, account)
	}

	if len(accounts) == 0 {
		return 0, nil
	}

	err = inTx(ctx, uc.txManager, func(tx Tx) error {
		for _, a := range accounts {
			if err := uc.accountRepo.Create(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(accounts), nil
}
