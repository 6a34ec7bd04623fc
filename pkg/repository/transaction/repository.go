package transaction

import (
	"context"

	"github.com/amirasaad/banksim/pkg/dto"
)

// Repository is the journal of confirmed transactions. The journal is fed
// from TransactionCompleted events after the balance write has been
// confirmed, so it trails the account balance and never gates it.
type Repository interface {
	// Create appends a transaction. Appending an ID that is already present
	// is a no-op, so redelivered events are harmless.
	Create(ctx context.Context, create dto.TransactionCreate) error

	// ListByAccount returns up to limit transactions of the account, newest
	// first. limit <= 0 returns all of them.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*dto.TransactionRead, error)
}
