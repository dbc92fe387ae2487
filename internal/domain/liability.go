package domain

import (
	"strings"
	"time"
)

// Liability is a standalone debt record such as a loan or instalment plan.
type Liability struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	MonthlyPayment *int64
	PaymentDay     *int
	StartDate      *time.Time
	EndDate        *time.Time
	FeeAmount      *int64
	Note           *string
	ID             string
	OwnerID        string
	Name           string
	Balance        int64
	IsActive       bool
}

// Validate checks the liability fields.
func (l *Liability) Validate() error {
	if err := ValidateName(l.Name); err != nil {
		return err
	}
	if l.PaymentDay != nil && (*l.PaymentDay < 1 || *l.PaymentDay > 31) {
		return ErrInvalidPaymentDay
	}
	return nil
}

// LiabilityPatch lists the fields a partial update may change.
type LiabilityPatch struct {
	Name           *string
	Balance        *int64
	IsActive       *bool
	MonthlyPayment Nullable[int64]
	PaymentDay     Nullable[int]
	StartDate      Nullable[time.Time]
	EndDate        Nullable[time.Time]
	FeeAmount      Nullable[int64]
	Note           Nullable[string]
}

// Apply merges the patch into l.
func (l *Liability) Apply(p LiabilityPatch) {
	if p.Name != nil {
		l.Name = strings.TrimSpace(*p.Name)
	}
	if p.Balance != nil {
		l.Balance = *p.Balance
	}
	if p.IsActive != nil {
		l.IsActive = *p.IsActive
	}
	p.MonthlyPayment.ApplyTo(&l.MonthlyPayment)
	p.PaymentDay.ApplyTo(&l.PaymentDay)
	p.StartDate.ApplyTo(&l.StartDate)
	p.EndDate.ApplyTo(&l.EndDate)
	p.FeeAmount.ApplyTo(&l.FeeAmount)
	p.Note.ApplyTo(&l.Note)
}
