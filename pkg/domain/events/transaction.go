package events

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionCompleted is emitted after a balance change has been stored.
type TransactionCompleted struct {
	FlowEvent
	TransactionID   uuid.UUID
	PreviousBalance decimal.Decimal
	Balance         decimal.Decimal
}

// TransactionFailed is emitted when an operation was rejected or rolled back.
type TransactionFailed struct {
	FlowEvent
	Reason string
	Error  string
}

func (e TransactionCompleted) Type() string { return EventTypeTransactionCompleted.String() }
func (e TransactionFailed) Type() string    { return EventTypeTransactionFailed.String() }
