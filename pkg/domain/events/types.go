package events

// EventTypes maps every event type to a constructor, for decoding events
// that crossed a process boundary.
var EventTypes = map[string]func() Event{
	EventTypeTransactionCompleted.String(): func() Event { return &TransactionCompleted{} },
	EventTypeTransactionFailed.String():    func() Event { return &TransactionFailed{} },
}
