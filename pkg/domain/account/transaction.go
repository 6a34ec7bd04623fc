package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction records one confirmed balance change.
type Transaction struct {
	ID              uuid.UUID
	AccountID       string
	Operation       Operation
	Amount          decimal.Decimal
	PreviousBalance decimal.Decimal
	Balance         decimal.Decimal // Account balance snapshot after the change
	CreatedAt       time.Time
}

func newTransaction(
	accountID string,
	op Operation,
	amount, previous, balance decimal.Decimal,
	at time.Time,
) *Transaction {
	return &Transaction{
		ID:              uuid.New(),
		AccountID:       accountID,
		Operation:       op,
		Amount:          amount,
		PreviousBalance: previous,
		Balance:         balance,
		CreatedAt:       at,
	}
}
