package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validation constants
const (
	MaxNameLength     = 120
	MinNameLength     = 1
	MaxKindLength     = 50
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxPageSize       = 500
	DefaultPageSize   = 100
)

// ValidateTransactionRules enforces the type-dependent account references.
// Rules are checked in order and the first violation is returned. It performs
// no I/O; referential existence is the caller's concern.
func ValidateTransactionRules(t TransactionType, accountID, toAccountID *string) error {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		if !present(accountID) {
			return ErrMissingAccount
		}
	}

	if t == TransactionTypeTransfer {
		if !present(toAccountID) {
			return ErrMissingDestinationAccount
		}
		if *accountID == *toAccountID {
			return ErrSameAccountTransfer
		}
	}

	if (t == TransactionTypeIncome || t == TransactionTypeExpense) && present(toAccountID) {
		return ErrUnexpectedDestinationAccount
	}

	return nil
}

func present(id *string) bool {
	return id != nil && *id != ""
}

// ValidateName validates an entity name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)

	if n < MinNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if n > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}

	return nil
}

// ValidateKind validates an account kind tag.
func ValidateKind(kind string) error {
	if utf8.RuneCountInString(kind) > MaxKindLength {
		return fmt.Errorf("%w: kind exceeds %d characters", ErrInvalidName, MaxKindLength)
	}
	return nil
}

// ValidatePassword validates password length
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
