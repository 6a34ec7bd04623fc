package account

import (
	"errors"
)

var (
	// ErrInvalidAmount is returned when a withdrawal or deposit amount is zero or negative.
	ErrInvalidAmount = errors.New("transaction amount must be positive")

	// ErrInsufficientFunds is returned when a withdrawal exceeds the balance at check time.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPersistenceFailure is returned when the durable balance write did not confirm.
	// The in-memory balance has already been restored when this error is returned.
	ErrPersistenceFailure = errors.New("balance write not confirmed, change rolled back")

	// ErrInterrupted is returned when the caller's context ends while waiting for
	// or inside the critical section. No state change escapes.
	ErrInterrupted = errors.New("transaction interrupted")

	// ErrUnknownOperation is returned for an operation kind that is neither withdraw nor deposit.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrNilWriter is returned when an account is built without a balance writer.
	ErrNilWriter = errors.New("balance writer is required")

	// ErrEmptyID is returned when an account is built without an identifier.
	ErrEmptyID = errors.New("account id is required")

	// ErrNegativeBalance is returned when an account is hydrated with a negative balance.
	ErrNegativeBalance = errors.New("initial balance cannot be negative")
)

// Outcome reasons reported alongside every attempt.
const (
	ReasonOK                 = "ok"
	ReasonInvalidAmount      = "invalid_amount"
	ReasonInsufficientFunds  = "insufficient_funds"
	ReasonPersistenceFailure = "persistence_failure"
	ReasonInterrupted        = "interrupted"
	ReasonUnknownOperation   = "unknown_operation"
	ReasonUnexpected         = "unexpected"
)

// Reason classifies err into a stable outcome string.
func Reason(err error) string {
	switch {
	case err == nil:
		return ReasonOK
	case errors.Is(err, ErrInvalidAmount):
		return ReasonInvalidAmount
	case errors.Is(err, ErrInsufficientFunds):
		return ReasonInsufficientFunds
	case errors.Is(err, ErrInterrupted):
		return ReasonInterrupted
	case errors.Is(err, ErrPersistenceFailure):
		return ReasonPersistenceFailure
	case errors.Is(err, ErrUnknownOperation):
		return ReasonUnknownOperation
	default:
		return ReasonUnexpected
	}
}
