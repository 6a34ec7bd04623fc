package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountRead is a read-optimized DTO for account queries and API responses.
type AccountRead struct {
	ID        string          // Account number
	Owner     string          // Display name of the holder
	Balance   decimal.Decimal // Durable balance
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountCreate is a DTO for seeding a new account.
type AccountCreate struct {
	ID      string
	Owner   string
	Balance decimal.Decimal // Initial balance
}
