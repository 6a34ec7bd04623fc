package mocks

import (
	"context"

	"github.com/amirasaad/banksim/pkg/domain/account"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockRunner is a testify mock of the account surface a task drives.
type MockRunner struct {
	mock.Mock
}

// NewMockRunner creates a mock and asserts its expectations when the test ends.
func NewMockRunner(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRunner {
	m := &MockRunner{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// ID provides a mock function with no fields
func (m *MockRunner) ID() string {
	return m.Called().String(0)
}

// Withdraw provides a mock function with given fields: ctx, amount
func (m *MockRunner) Withdraw(ctx context.Context, amount decimal.Decimal) (*account.Transaction, error) {
	args := m.Called(ctx, amount)
	var tx *account.Transaction
	if v := args.Get(0); v != nil {
		tx = v.(*account.Transaction)
	}
	return tx, args.Error(1)
}

// Deposit provides a mock function with given fields: ctx, amount
func (m *MockRunner) Deposit(ctx context.Context, amount decimal.Decimal) (*account.Transaction, error) {
	args := m.Called(ctx, amount)
	var tx *account.Transaction
	if v := args.Get(0); v != nil {
		tx = v.(*account.Transaction)
	}
	return tx, args.Error(1)
}
