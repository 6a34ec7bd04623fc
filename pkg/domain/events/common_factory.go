package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FlowEventOpt adjusts a FlowEvent under construction.
type FlowEventOpt func(*FlowEvent)

// NewFlowEvent returns a FlowEvent with a fresh id, a zero amount and the
// current time, then applies opts in order.
func NewFlowEvent(opts ...FlowEventOpt) *FlowEvent {
	e := &FlowEvent{ID: uuid.New(), Amount: decimal.Zero, Timestamp: time.Now()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithAccountID sets the account number and returns e.
func (e *FlowEvent) WithAccountID(id string) *FlowEvent {
	e.AccountID = id
	return e
}

// WithActor sets who drove the operation and returns e.
func (e *FlowEvent) WithActor(actor string) *FlowEvent {
	e.Actor = actor
	return e
}

// WithFlowType sets the operation kind ("withdraw" or "deposit") and returns e.
func (e *FlowEvent) WithFlowType(op string) *FlowEvent {
	e.FlowType = op
	return e
}

// WithAmount sets the requested amount and returns e.
func (e *FlowEvent) WithAmount(amount decimal.Decimal) *FlowEvent {
	e.Amount = amount
	return e
}
