package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRead is a read-optimized DTO for journal queries and API responses.
type TransactionRead struct {
	ID              uuid.UUID // Unique transaction identifier
	AccountID       string
	Actor           string // Who drove the change
	Operation       string // deposit or withdraw
	Amount          decimal.Decimal
	PreviousBalance decimal.Decimal
	Balance         decimal.Decimal // Balance after the change
	CreatedAt       time.Time
}

// TransactionCreate is a DTO for appending a confirmed transaction to the journal.
type TransactionCreate struct {
	ID              uuid.UUID
	AccountID       string
	Actor           string
	Operation       string
	Amount          decimal.Decimal
	PreviousBalance decimal.Decimal
	Balance         decimal.Decimal
	CreatedAt       time.Time
}
