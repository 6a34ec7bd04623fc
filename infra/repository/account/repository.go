package account

import (
	"context"
	"fmt"
	"time"

	infrarepo "github.com/amirasaad/banksim/infra/repository"
	"github.com/amirasaad/banksim/pkg/dto"
	pkgrepo "github.com/amirasaad/banksim/pkg/repository"
	repo "github.com/amirasaad/banksim/pkg/repository/account"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db  *gorm.DB
	now func() time.Time
}

// New creates a gorm-backed account repository.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db, now: time.Now}
}

// Migrate creates or updates the accounts table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Account{})
}

// Create implements account.Repository.
func (r *repository) Create(ctx context.Context, create dto.AccountCreate) error {
	acct := Account{
		ID:      create.ID,
		Owner:   create.Owner,
		Balance: create.Balance,
	}
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&acct).Error
	})
}

// Get implements account.Repository.
func (r *repository) Get(ctx context.Context, id string) (*dto.AccountRead, error) {
	var acct Account
	err := infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).First(&acct, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return mapModelToDTO(&acct), nil
}

// WriteBalance implements account.Repository. A write that matches no row is
// ErrNotFound, so only a confirmed update returns nil.
func (r *repository) WriteBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", id).
		Updates(map[string]any{"balance": balance, "updated_at": r.now()})
	if res.Error != nil {
		return fmt.Errorf("write balance %s: %w", id, infrarepo.MapGormErrorToDomain(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("write balance %s: %w", id, pkgrepo.ErrNotFound)
	}
	return nil
}

func mapModelToDTO(acct *Account) *dto.AccountRead {
	return &dto.AccountRead{
		ID:        acct.ID,
		Owner:     acct.Owner,
		Balance:   acct.Balance,
		CreatedAt: acct.CreatedAt,
		UpdatedAt: acct.UpdatedAt,
	}
}
