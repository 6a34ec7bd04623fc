package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction represents a journaled balance change.
type Transaction struct {
	ID              uuid.UUID       `gorm:"type:varchar(36);primaryKey"`
	AccountID       string          `gorm:"type:varchar(64);not null;index:idx_transactions_account_created,priority:1"`
	Actor           string          `gorm:"type:varchar(64);not null"`
	Operation       string          `gorm:"type:varchar(16);not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(38,8);not null"`
	PreviousBalance decimal.Decimal `gorm:"type:numeric(38,8);not null"`
	Balance         decimal.Decimal `gorm:"type:numeric(38,8);not null"`
	CreatedAt       time.Time       `gorm:"index:idx_transactions_account_created,priority:2"`
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}
