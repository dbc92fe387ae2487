package dto

import (
	"encoding/json"
	"fmt"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

// CreateTransactionRequest represents a request to create a transaction.
type CreateTransactionRequest struct {
	Date         Date    `json:"date"`
	Type         string  `json:"type"`
	Amount       int64   `json:"amount"`
	AccountID    *string `json:"account_id,omitempty"`
	ToAccountID  *string `json:"to_account_id,omitempty"`
	CategoryID   *string `json:"category_id,omitempty"`
	CategoryFree *string `json:"category_free,omitempty"`
	Description  *string `json:"description,omitempty"`
	Note         *string `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput() usecase.CreateTransactionInput {
	return usecase.CreateTransactionInput{
		Date:         r.Date.Time,
		Type:         domain.TransactionType(r.Type),
		Amount:       r.Amount,
		AccountID:    r.AccountID,
		ToAccountID:  r.ToAccountID,
		CategoryID:   r.CategoryID,
		CategoryFree: r.CategoryFree,
		Description:  r.Description,
		Note:         r.Note,
	}
}

// UpdateTransactionRequest is a partial update. Absent fields are left
// unchanged; null clears a nullable field.
type UpdateTransactionRequest struct {
	Date         Optional[Date]   `json:"date"`
	Type         Optional[string] `json:"type"`
	Amount       Optional[int64]  `json:"amount"`
	AccountID    Optional[string] `json:"account_id"`
	ToAccountID  Optional[string] `json:"to_account_id"`
	CategoryID   Optional[string] `json:"category_id"`
	CategoryFree Optional[string] `json:"category_free"`
	Description  Optional[string] `json:"description"`
	Note         Optional[string] `json:"note"`
}

// ToPatch converts to a domain patch.
func (r *UpdateTransactionRequest) ToPatch() (domain.TransactionPatch, error) {
	date, err := r.Date.Required("date")
	if err != nil {
		return domain.TransactionPatch{}, err
	}
	typ, err := r.Type.Required("type")
	if err != nil {
		return domain.TransactionPatch{}, err
	}
	amount, err := r.Amount.Required("amount")
	if err != nil {
		return domain.TransactionPatch{}, err
	}

	patch := domain.TransactionPatch{
		Amount:       amount,
		AccountID:    r.AccountID.Nullable(),
		ToAccountID:  r.ToAccountID.Nullable(),
		CategoryID:   r.CategoryID.Nullable(),
		CategoryFree: r.CategoryFree.Nullable(),
		Description:  r.Description.Nullable(),
		Note:         r.Note.Nullable(),
	}
	if date != nil {
		patch.Date = &date.Time
	}
	if typ != nil {
		t := domain.TransactionType(*typ)
		patch.Type = &t
	}
	return patch, nil
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	Note     *string `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:     r.Name,
		Kind:     r.Kind,
		IsActive: r.IsActive,
		Note:     r.Note,
	}
}

// UpdateAccountRequest is a partial account update.
type UpdateAccountRequest struct {
	Name     Optional[string] `json:"name"`
	Kind     Optional[string] `json:"kind"`
	IsActive Optional[bool]   `json:"is_active"`
	Note     Optional[string] `json:"note"`
}

// ToPatch converts to a domain patch.
func (r *UpdateAccountRequest) ToPatch() (domain.AccountPatch, error) {
	name, err := r.Name.Required("name")
	if err != nil {
		return domain.AccountPatch{}, err
	}
	kind, err := r.Kind.Required("kind")
	if err != nil {
		return domain.AccountPatch{}, err
	}
	active, err := r.IsActive.Required("is_active")
	if err != nil {
		return domain.AccountPatch{}, err
	}
	return domain.AccountPatch{
		Name:     name,
		Kind:     kind,
		IsActive: active,
		Note:     r.Note.Nullable(),
	}, nil
}

// ImportAccountsRequest accepts either a bare array of accounts or an
// object with an "accounts" array.
type ImportAccountsRequest struct {
	Accounts []CreateAccountRequest
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ImportAccountsRequest) UnmarshalJSON(data []byte) error {
	var list []CreateAccountRequest
	if err := json.Unmarshal(data, &list); err == nil {
		r.Accounts = list
		return nil
	}

	var wrapped struct {
		Accounts []CreateAccountRequest `json:"accounts"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("accounts must be a list: %w", err)
	}
	r.Accounts = wrapped.Accounts
	return nil
}

// ToUseCaseInput converts to use case input.
func (r *ImportAccountsRequest) ToUseCaseInput() []usecase.CreateAccountInput {
	items := make([]usecase.CreateAccountInput, len(r.Accounts))
	for i := range r.Accounts {
		items[i] = r.Accounts[i].ToUseCaseInput()
	}
	return items
}

// CreateCategoryRequest represents a request to create a category.
type CreateCategoryRequest struct {
	Name     string `json:"name"`
	IsFixed  bool   `json:"is_fixed"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCategoryRequest) ToUseCaseInput() usecase.CreateCategoryInput {
	return usecase.CreateCategoryInput{
		Name:     r.Name,
		IsFixed:  r.IsFixed,
		IsActive: r.IsActive,
	}
}

// UpdateCategoryRequest is a partial category update.
type UpdateCategoryRequest struct {
	Name     Optional[string] `json:"name"`
	IsFixed  Optional[bool]   `json:"is_fixed"`
	IsActive Optional[bool]   `json:"is_active"`
}

// ToPatch converts to a domain patch.
func (r *UpdateCategoryRequest) ToPatch() (domain.CategoryPatch, error) {
	name, err := r.Name.Required("name")
	if err != nil {
		return domain.CategoryPatch{}, err
	}
	fixed, err := r.IsFixed.Required("is_fixed")
	if err != nil {
		return domain.CategoryPatch{}, err
	}
	active, err := r.IsActive.Required("is_active")
	if err != nil {
		return domain.CategoryPatch{}, err
	}
	return domain.CategoryPatch{Name: name, IsFixed: fixed, IsActive: active}, nil
}

// MonthlyBalanceRequest sets the opening balance of one account.
type MonthlyBalanceRequest struct {
	AccountID      string  `json:"account_id"`
	OpeningBalance int64   `json:"opening_balance"`
	Note           *string `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *MonthlyBalanceRequest) ToUseCaseInput() usecase.BalanceInput {
	return usecase.BalanceInput{
		AccountID:      r.AccountID,
		OpeningBalance: r.OpeningBalance,
		Note:           r.Note,
	}
}

// SaveBalancesRequest sets several opening balances at once.
type SaveBalancesRequest struct {
	Balances []MonthlyBalanceRequest `json:"balances"`
}

// ToUseCaseInput converts to use case input.
func (r *SaveBalancesRequest) ToUseCaseInput() []usecase.BalanceInput {
	inputs := make([]usecase.BalanceInput, len(r.Balances))
	for i := range r.Balances {
		inputs[i] = r.Balances[i].ToUseCaseInput()
	}
	return inputs
}

// MonthLockRequest sets the lock flag of a month.
type MonthLockRequest struct {
	IsLocked bool `json:"is_locked"`
}

// CreateLiabilityRequest represents a request to create a liability.
type CreateLiabilityRequest struct {
	Name           string  `json:"name"`
	Balance        int64   `json:"balance"`
	MonthlyPayment *int64  `json:"monthly_payment,omitempty"`
	PaymentDay     *int    `json:"payment_day,omitempty"`
	StartDate      *Date   `json:"start_date,omitempty"`
	EndDate        *Date   `json:"end_date,omitempty"`
	FeeAmount      *int64  `json:"fee_amount,omitempty"`
	Note           *string `json:"note,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLiabilityRequest) ToUseCaseInput() usecase.CreateLiabilityInput {
	return usecase.CreateLiabilityInput{
		Name:           r.Name,
		Balance:        r.Balance,
		MonthlyPayment: r.MonthlyPayment,
		PaymentDay:     r.PaymentDay,
		StartDate:      timePtr(r.StartDate),
		EndDate:        timePtr(r.EndDate),
		FeeAmount:      r.FeeAmount,
		Note:           r.Note,
		IsActive:       r.IsActive,
	}
}

// UpdateLiabilityRequest is a partial liability update.
type UpdateLiabilityRequest struct {
	Name           Optional[string] `json:"name"`
	Balance        Optional[int64]  `json:"balance"`
	MonthlyPayment Optional[int64]  `json:"monthly_payment"`
	PaymentDay     Optional[int]    `json:"payment_day"`
	StartDate      Optional[Date]   `json:"start_date"`
	EndDate        Optional[Date]   `json:"end_date"`
	FeeAmount      Optional[int64]  `json:"fee_amount"`
	Note           Optional[string] `json:"note"`
	IsActive       Optional[bool]   `json:"is_active"`
}

// ToPatch converts to a domain patch.
func (r *UpdateLiabilityRequest) ToPatch() (domain.LiabilityPatch, error) {
	name, err := r.Name.Required("name")
	if err != nil {
		return domain.LiabilityPatch{}, err
	}
	balance, err := r.Balance.Required("balance")
	if err != nil {
		return domain.LiabilityPatch{}, err
	}
	active, err := r.IsActive.Required("is_active")
	if err != nil {
		return domain.LiabilityPatch{}, err
	}
	return domain.LiabilityPatch{
		Name:           name,
		Balance:        balance,
		IsActive:       active,
		MonthlyPayment: r.MonthlyPayment.Nullable(),
		PaymentDay:     r.PaymentDay.Nullable(),
		StartDate:      dateNullable(r.StartDate),
		EndDate:        dateNullable(r.EndDate),
		FeeAmount:      r.FeeAmount.Nullable(),
		Note:           r.Note.Nullable(),
	}, nil
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}
