package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents an account record in the database.
type Account struct {
	ID        string          `gorm:"type:varchar(64);primaryKey"`
	Owner     string          `gorm:"type:varchar(255);not null"`
	Balance   decimal.Decimal `gorm:"type:numeric(38,8);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}
