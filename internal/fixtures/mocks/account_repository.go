package mocks

import (
	"context"

	"github.com/amirasaad/banksim/pkg/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a testify mock of the account persistence gateway.
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a mock and asserts its expectations when the test ends.
func NewMockAccountRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create provides a mock function with given fields: ctx, create
func (m *MockAccountRepository) Create(ctx context.Context, create dto.AccountCreate) error {
	args := m.Called(ctx, create)
	return args.Error(0)
}

// Get provides a mock function with given fields: ctx, id
func (m *MockAccountRepository) Get(ctx context.Context, id string) (*dto.AccountRead, error) {
	args := m.Called(ctx, id)
	var read *dto.AccountRead
	if v := args.Get(0); v != nil {
		read = v.(*dto.AccountRead)
	}
	return read, args.Error(1)
}

// WriteBalance provides a mock function with given fields: ctx, id, balance
func (m *MockAccountRepository) WriteBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	args := m.Called(ctx, id, balance)
	return args.Error(0)
}
