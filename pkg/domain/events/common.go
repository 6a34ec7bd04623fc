package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is anything that can travel on the event bus.
type Event interface {
	Type() string
}

// FlowEvent carries the fields shared by every transaction event.
type FlowEvent struct {
	ID        uuid.UUID
	FlowType  string // operation kind: "withdraw" or "deposit"
	AccountID string
	Actor     string
	Amount    decimal.Decimal
	Timestamp time.Time
}
