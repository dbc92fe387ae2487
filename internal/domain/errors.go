package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the domain and use case layers
// wraps exactly one of these so transports can map them without knowing the
// specific failure.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrPeriodLocked   = errors.New("month is locked")
	ErrMalformedInput = errors.New("malformed input")
	ErrUnauthorized   = errors.New("unauthorized")
)

var (
	// Transaction rule errors
	ErrInvalidTransactionType       = fmt.Errorf("%w: invalid transaction type", ErrValidation)
	ErrMissingAccount               = fmt.Errorf("%w: account_id is required for income/expense/transfer", ErrValidation)
	ErrMissingDestinationAccount    = fmt.Errorf("%w: to_account_id is required for transfer", ErrValidation)
	ErrSameAccountTransfer          = fmt.Errorf("%w: account_id and to_account_id must be different", ErrValidation)
	ErrUnexpectedDestinationAccount = fmt.Errorf("%w: to_account_id must be null for income/expense", ErrValidation)

	// Field errors
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrFutureDate        = fmt.Errorf("%w: future date is not allowed", ErrValidation)
	ErrInvalidMonth      = fmt.Errorf("%w: month must be 1-12", ErrValidation)
	ErrInvalidName       = fmt.Errorf("%w: invalid name", ErrValidation)
	ErrInvalidPaymentDay = fmt.Errorf("%w: payment_day must be 1-31", ErrValidation)
	ErrPasswordTooWeak   = fmt.Errorf("%w: password does not meet requirements", ErrValidation)

	// Lookup errors
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrAccountNotFound     = fmt.Errorf("account %w", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("category %w", ErrNotFound)
	ErrLiabilityNotFound   = fmt.Errorf("liability %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)

	// Uniqueness errors
	ErrAccountNameTaken   = fmt.Errorf("%w: account name must be unique", ErrConflict)
	ErrCategoryNameTaken  = fmt.Errorf("%w: category name must be unique", ErrConflict)
	ErrLiabilityNameTaken = fmt.Errorf("%w: liability name must be unique", ErrConflict)
	ErrUserNameTaken      = fmt.Errorf("%w: user name must be unique", ErrConflict)

	// Session errors
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrExpiredToken       = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid name or password", ErrUnauthorized)

	// CSV errors
	ErrInvalidHeader = fmt.Errorf("%w: invalid CSV header", ErrMalformedInput)
	ErrInvalidDate   = fmt.Errorf("%w: invalid date", ErrMalformedInput)
	ErrInvalidRecord = fmt.Errorf("%w: invalid CSV record", ErrMalformedInput)
)

// PeriodLockedError reports a write attempted against a locked month.
func PeriodLockedError(p Period) error {
	return fmt.Errorf("%w: %s", ErrPeriodLocked, p)
}
