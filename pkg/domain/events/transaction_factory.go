package events

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionCompletedOpt configures a TransactionCompleted.
type TransactionCompletedOpt func(*TransactionCompleted)

// WithTransactionID sets the id of the stored transaction.
func WithTransactionID(id uuid.UUID) TransactionCompletedOpt {
	return func(e *TransactionCompleted) { e.TransactionID = id }
}

// WithBalances sets the balance before and after the change.
func WithBalances(previous, current decimal.Decimal) TransactionCompletedOpt {
	return func(e *TransactionCompleted) {
		e.PreviousBalance = previous
		e.Balance = current
	}
}

// NewTransactionCompleted creates a TransactionCompleted for the given flow.
func NewTransactionCompleted(flow FlowEvent, opts ...TransactionCompletedOpt) *TransactionCompleted {
	e := &TransactionCompleted{FlowEvent: flow}
	e.ID = uuid.New()
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewTransactionFailed creates a TransactionFailed. err may be nil when
// reason alone describes the failure.
func NewTransactionFailed(flow FlowEvent, reason string, err error) *TransactionFailed {
	e := &TransactionFailed{FlowEvent: flow, Reason: reason}
	e.ID = uuid.New()
	if err != nil {
		e.Error = err.Error()
	}
	return e
}
