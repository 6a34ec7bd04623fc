package mocks

import (
	"context"

	"github.com/amirasaad/banksim/pkg/dto"
	"github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a testify mock of the transaction journal.
type MockTransactionRepository struct {
	mock.Mock
}

// NewMockTransactionRepository creates a mock and asserts its expectations when the test ends.
func NewMockTransactionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create provides a mock function with given fields: ctx, create
func (m *MockTransactionRepository) Create(ctx context.Context, create dto.TransactionCreate) error {
	args := m.Called(ctx, create)
	return args.Error(0)
}

// ListByAccount provides a mock function with given fields: ctx, accountID, limit
func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*dto.TransactionRead, error) {
	args := m.Called(ctx, accountID, limit)
	var out []*dto.TransactionRead
	if v := args.Get(0); v != nil {
		out = v.([]*dto.TransactionRead)
	}
	return out, args.Error(1)
}
