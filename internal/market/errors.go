// Package market holds the error taxonomy shared by the enrollment core.
package market

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors for domain failures.
var (
	ErrInsufficientFunds = errors.New("market: insufficient funds")
	ErrAlreadyEnrolled   = errors.New("market: already enrolled")
	ErrNoGroupAvailable  = errors.New("market: no group available")
	ErrNotFound          = errors.New("market: not found")
	ErrNegativeBalance   = errors.New("market: balance cannot be negative")
	ErrTransactionFailed = errors.New("market: transaction failed")
	ErrInvalidInput      = errors.New("market: invalid input")
	ErrEmailTaken        = errors.New("market: email already registered")
)

// InsufficientFundsError reports a balance that cannot cover a charge.
type InsufficientFundsError struct {
	UserID   uint64
	Balance  decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("market: insufficient funds for user %d: balance %s, required %s",
		e.UserID, e.Balance.StringFixed(2), e.Required.StringFixed(2))
}

// Is matches ErrInsufficientFunds.
func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     uint64
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("market: %s not found", e.Entity)
	}
	return fmt.Sprintf("market: %s %d not found", e.Entity, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound builds a NotFoundError.
func NewNotFound(entity string, id uint64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// TransactionFailedError wraps an unexpected failure that aborted a transaction.
type TransactionFailedError struct {
	Op  string
	Err error
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("market: %s: transaction failed: %v", e.Op, e.Err)
}

// Is matches ErrTransactionFailed.
func (e *TransactionFailedError) Is(target error) bool { return target == ErrTransactionFailed }

// Unwrap returns the underlying cause.
func (e *TransactionFailedError) Unwrap() error { return e.Err }

// ValidationError reports an invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("market: validation failed for %s: %s", e.Field, e.Message)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsDomainError reports whether err belongs to the domain taxonomy and must reach
// the caller unchanged.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrAlreadyEnrolled) ||
		errors.Is(err, ErrNoGroupAvailable) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNegativeBalance) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrTransactionFailed)
}

// WrapTx passes domain errors through and wraps anything else as a
// TransactionFailedError.
func WrapTx(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &TransactionFailedError{Op: op, Err: err}
}
