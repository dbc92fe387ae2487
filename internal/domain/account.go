package domain

import (
	"strings"
	"time"
)

// Account kinds used by the application. Kind is otherwise a free-form tag.
const (
	AccountKindOther = "other"
	AccountKindCash  = "cash"
	AccountKindBank  = "bank"
	AccountKindCard  = "card"
)

// Account is a place money is held: a wallet, a bank account, a card.
type Account struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Note      *string
	ID        string
	OwnerID   string
	Name      string
	Kind      string
	IsActive  bool
}

// Validate checks the account fields.
func (a *Account) Validate() error {
	if err := ValidateName(a.Name); err != nil {
		return err
	}
	return ValidateKind(a.Kind)
}

// AccountPatch lists the fields a partial update may change.
type AccountPatch struct {
	Name     *string
	Kind     *string
	IsActive *bool
	Note     Nullable[string]
}

// Apply merges the patch into a.
func (a *Account) Apply(p AccountPatch) {
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Kind != nil {
		a.Kind = *p.Kind
	}
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}
	p.Note.ApplyTo(&a.Note)
}

// HoldsOpeningBalance reports whether the account takes part in the
// monthly opening-balance sheet. Cards are settled through other accounts.
func (a *Account) HoldsOpeningBalance() bool {
	return a.IsActive && a.Kind != AccountKindCard
}
