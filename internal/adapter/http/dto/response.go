package dto

import (
	"time"

	"github.com/iho/kakeibo/internal/domain"
)

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID           string                 `json:"id"`
	Date         Date                   `json:"date"`
	Year         int                    `json:"year"`
	Month        int                    `json:"month"`
	Type         domain.TransactionType `json:"type"`
	Amount       int64                  `json:"amount"`
	AccountID    *string                `json:"account_id"`
	ToAccountID  *string                `json:"to_account_id"`
	CategoryID   *string                `json:"category_id"`
	CategoryFree *string                `json:"category_free"`
	Description  *string                `json:"description"`
	Note         *string                `json:"note"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:           t.ID,
		Date:         NewDate(t.Date),
		Year:         t.Year,
		Month:        t.Month,
		Type:         t.Type,
		Amount:       t.Amount,
		AccountID:    t.AccountID,
		ToAccountID:  t.ToAccountID,
		CategoryID:   t.CategoryID,
		CategoryFree: t.CategoryFree,
		Description:  t.Description,
		Note:         t.Note,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	IsActive  bool      `json:"is_active"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Kind:      a.Kind,
		IsActive:  a.IsActive,
		Note:      a.Note,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsFixed   bool      `json:"is_fixed"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryFromDomain converts a domain category to a response.
func CategoryFromDomain(c *domain.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		IsFixed:   c.IsFixed,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CategoriesFromDomain converts domain categories to responses.
func CategoriesFromDomain(categories []*domain.Category) []*CategoryResponse {
	result := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		result[i] = CategoryFromDomain(c)
	}
	return result
}

// MonthlyBalanceResponse represents an opening balance in API responses.
type MonthlyBalanceResponse struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	Year           int       `json:"year"`
	Month          int       `json:"month"`
	OpeningBalance int64     `json:"opening_balance"`
	Note           *string   `json:"note"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MonthlyBalanceFromDomain converts a domain balance to a response.
func MonthlyBalanceFromDomain(b *domain.MonthlyBalance) *MonthlyBalanceResponse {
	return &MonthlyBalanceResponse{
		ID:             b.ID,
		AccountID:      b.AccountID,
		Year:           b.Year,
		Month:          b.Month,
		OpeningBalance: b.OpeningBalance,
		Note:           b.Note,
		UpdatedAt:      b.UpdatedAt,
	}
}

// MonthlyBalancesFromDomain converts domain balances to responses.
func MonthlyBalancesFromDomain(balances []*domain.MonthlyBalance) []*MonthlyBalanceResponse {
	result := make([]*MonthlyBalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = MonthlyBalanceFromDomain(b)
	}
	return result
}

// MonthLockResponse reports the lock state of a month.
type MonthLockResponse struct {
	Year     int  `json:"year"`
	Month    int  `json:"month"`
	IsLocked bool `json:"is_locked"`
}

// LiabilityResponse represents a liability in API responses.
type LiabilityResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Balance        int64     `json:"balance"`
	MonthlyPayment *int64    `json:"monthly_payment"`
	PaymentDay     *int      `json:"payment_day"`
	StartDate      *Date     `json:"start_date"`
	EndDate        *Date     `json:"end_date"`
	FeeAmount      *int64    `json:"fee_amount"`
	Note           *string   `json:"note"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LiabilityFromDomain converts a domain liability to a response.
func LiabilityFromDomain(l *domain.Liability) *LiabilityResponse {
	return &LiabilityResponse{
		ID:             l.ID,
		Name:           l.Name,
		Balance:        l.Balance,
		MonthlyPayment: l.MonthlyPayment,
		PaymentDay:     l.PaymentDay,
		StartDate:      datePtr(l.StartDate),
		EndDate:        datePtr(l.EndDate),
		FeeAmount:      l.FeeAmount,
		Note:           l.Note,
		IsActive:       l.IsActive,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

// LiabilitiesFromDomain converts domain liabilities to responses.
func LiabilitiesFromDomain(liabilities []*domain.Liability) []*LiabilityResponse {
	result := make([]*LiabilityResponse, len(liabilities))
	for i, l := range liabilities {
		result[i] = LiabilityFromDomain(l)
	}
	return result
}

// YearSummaryResponse is the yearly summary.
type YearSummaryResponse struct {
	Year int `json:"year"`
	domain.YearSummary
}

// MonthSummaryResponse is the monthly summary.
type MonthSummaryResponse struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	domain.MonthSummary
}

// ImportResponse reports how many rows an import created.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// CreatedResponse reports how many records a bulk create added.
type CreatedResponse struct {
	Created int `json:"created"`
}

// LoginResponse carries a session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// UserInfo represents user information.
type UserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StatusResponse is a bare acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
