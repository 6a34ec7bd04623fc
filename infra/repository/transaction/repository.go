package transaction

import (
	"context"

	infrarepo "github.com/amirasaad/banksim/infra/repository"
	"github.com/amirasaad/banksim/pkg/dto"
	repo "github.com/amirasaad/banksim/pkg/repository/transaction"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New creates a gorm-backed transaction journal.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Migrate creates or updates the transactions table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Transaction{})
}

// Create implements transaction.Repository.
func (r *repository) Create(ctx context.Context, create dto.TransactionCreate) error {
	tx := Transaction{
		ID:              create.ID,
		AccountID:       create.AccountID,
		Actor:           create.Actor,
		Operation:       create.Operation,
		Amount:          create.Amount,
		PreviousBalance: create.PreviousBalance,
		Balance:         create.Balance,
		CreatedAt:       create.CreatedAt,
	}
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
			Create(&tx).Error
	})
}

// ListByAccount implements transaction.Repository.
func (r *repository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*dto.TransactionRead, error) {
	var txs []Transaction
	q := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := infrarepo.WrapError(func() error { return q.Find(&txs).Error }); err != nil {
		return nil, err
	}
	result := make([]*dto.TransactionRead, 0, len(txs))
	for i := range txs {
		result = append(result, mapModelToDTO(&txs[i]))
	}
	return result, nil
}

func mapModelToDTO(tx *Transaction) *dto.TransactionRead {
	return &dto.TransactionRead{
		ID:              tx.ID,
		AccountID:       tx.AccountID,
		Actor:           tx.Actor,
		Operation:       tx.Operation,
		Amount:          tx.Amount,
		PreviousBalance: tx.PreviousBalance,
		Balance:         tx.Balance,
		CreatedAt:       tx.CreatedAt,
	}
}
