package account

import (
	"context"

	"github.com/amirasaad/banksim/pkg/dto"
	"github.com/shopspring/decimal"
)

// Repository is the persistence gateway for account balances, keyed by account number.
type Repository interface {
	// Create inserts a new account record.
	Create(ctx context.Context, create dto.AccountCreate) error

	// Get returns the stored account, or repository.ErrNotFound when id is unknown.
	// Connectivity failures are returned as other errors.
	Get(ctx context.Context, id string) (*dto.AccountRead, error)

	// WriteBalance stores balance for id. It returns nil only when the stored
	// record now holds balance; an unknown id is repository.ErrNotFound.
	WriteBalance(ctx context.Context, id string, balance decimal.Decimal) error
}
