package events

// EventType represents the type of an event in the system.
type EventType string

// Event type constants
const (
	EventTypeTransactionCompleted EventType = "Transaction.Completed"
	EventTypeTransactionFailed    EventType = "Transaction.Failed"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}
