package services

import (
	"errors"
)

// Business errors. All are synchronous and non-retryable except
// ErrLockTimeout and ErrWriteConflict, which signal transient contention
// with no side effects applied.
var (
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrStockpileNotFound = errors.New("stockpile not found")
	ErrMovementNotFound  = errors.New("stock movement not found")
	ErrAlertNotFound     = errors.New("alert not found")
	ErrOrderNotFound     = errors.New("order not found")

	ErrInvalidStateTransition = errors.New("invalid ticket state transition")
	ErrIncompleteWeighing     = errors.New("ticket is missing a weighing")
	ErrValidation             = errors.New("validation failed")
	ErrBalanceViolation       = errors.New("stock balance cannot go negative")
	ErrDuplicate              = errors.New("resource already exists")

	ErrLockTimeout   = errors.New("entity is locked by another operation")
	ErrWriteConflict = errors.New("concurrent write conflict")
)

// IsRetryable reports whether the caller may safely retry the operation
// without risking duplicate side effects.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout) || errors.Is(err, ErrWriteConflict)
}
