package domain

import (
	"time"
	"unicode/utf8"
)

// TransactionType classifies a ledger transaction.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
	TransactionTypeAdjust   TransactionType = "adjust"
)

// TransactionTypes lists every valid type in display order.
var TransactionTypes = []TransactionType{
	TransactionTypeIncome,
	TransactionTypeExpense,
	TransactionTypeTransfer,
	TransactionTypeAdjust,
}

// IsValid reports whether t is one of the known types.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer, TransactionTypeAdjust:
		return true
	}
	return false
}

// ParseTransactionType converts a wire value into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.IsValid() {
		return "", ErrInvalidTransactionType
	}
	return t, nil
}

// MaxCategoryFreeLength bounds the free-text category.
const MaxCategoryFreeLength = 120

// Transaction is a single dated movement of money. Year and Month mirror
// Date and are only ever written through SetDate.
type Transaction struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Date         time.Time
	AccountID    *string
	ToAccountID  *string
	CategoryID   *string
	CategoryFree *string
	Description  *string
	Note         *string
	ID           string
	OwnerID      string
	Type         TransactionType
	Amount       int64
	Year         int
	Month        int
}

// SetDate sets the calendar date and recomputes the denormalized period.
func (t *Transaction) SetDate(date time.Time) {
	t.Date = DateOnly(date)
	p := PeriodOf(t.Date)
	t.Year = p.Year
	t.Month = p.Month
}

// Period returns the period the transaction is booked in.
func (t *Transaction) Period() Period {
	return Period{Year: t.Year, Month: t.Month}
}

// Validate checks field constraints and the type-dependent account rules.
func (t *Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if err := t.Period().Validate(); err != nil {
		return err
	}
	if t.CategoryFree != nil && utf8.RuneCountInString(*t.CategoryFree) > MaxCategoryFreeLength {
		return ErrInvalidName
	}
	return ValidateTransactionRules(t.Type, t.AccountID, t.ToAccountID)
}

// Clone returns a copy that shares no pointers with t.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.AccountID = cloneString(t.AccountID)
	c.ToAccountID = cloneString(t.ToAccountID)
	c.CategoryID = cloneString(t.CategoryID)
	c.CategoryFree = cloneString(t.CategoryFree)
	c.Description = cloneString(t.Description)
	c.Note = cloneString(t.Note)
	return &c
}

// TransactionPatch lists the fields a partial update may change.
type TransactionPatch struct {
	Date         *time.Time
	Type         *TransactionType
	Amount       *int64
	AccountID    Nullable[string]
	ToAccountID  Nullable[string]
	CategoryID   Nullable[string]
	CategoryFree Nullable[string]
	Description  Nullable[string]
	Note         Nullable[string]
}

// Apply merges the patch into t field by field.
func (t *Transaction) Apply(p TransactionPatch) {
	if p.Date != nil {
		t.SetDate(*p.Date)
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	p.AccountID.ApplyTo(&t.AccountID)
	p.ToAccountID.ApplyTo(&t.ToAccountID)
	p.CategoryID.ApplyTo(&t.CategoryID)
	p.CategoryFree.ApplyTo(&t.CategoryFree)
	p.Description.ApplyTo(&t.Description)
	p.Note.ApplyTo(&t.Note)
}

// TransactionFilter selects transactions for listing and export.
// Zero Year or Month means "any"; zero Limit means no limit.
type TransactionFilter struct {
	Query  string
	Year   int
	Month  int
	Limit  int
	Offset int
}

// TypeTotals maps a transaction type to the exact sum of its amounts.
type TypeTotals map[TransactionType]int64

// Of returns the total for t, zero when absent.
func (tt TypeTotals) Of(t TransactionType) int64 {
	return tt[t]
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
