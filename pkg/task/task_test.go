package task_test

import (
	"context"
	"errors"
	"testing"

	"github.com/amirasaad/banksim/internal/fixtures/mocks"
	"github.com/amirasaad/banksim/pkg/domain/account"
	"github.com/amirasaad/banksim/pkg/task"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func actorIs(name string) any {
	return mock.MatchedBy(func(ctx context.Context) bool {
		return account.ActorFrom(ctx) == name
	})
}

func TestRunWithdraw(t *testing.T) {
	t.Parallel()
	runner := mocks.NewMockRunner(t)
	amount := decimal.NewFromInt(800_000)
	tx := &account.Transaction{AccountID: "111", Operation: account.OperationWithdraw, Amount: amount}

	runner.On("ID").Return("111")
	runner.On("Withdraw", actorIs("Adi"), amount).Return(tx, nil).Once()

	res := task.New("Adi", runner, account.OperationWithdraw, amount).Run(context.Background())

	require.True(t, res.Succeeded())
	assert.Equal(t, "Adi", res.Label)
	assert.Equal(t, "111", res.AccountID)
	assert.Same(t, tx, res.Transaction)
	assert.Equal(t, account.ReasonOK, res.Reason)
}

func TestRunDeposit(t *testing.T) {
	t.Parallel()
	runner := mocks.NewMockRunner(t)
	amount := decimal.NewFromInt(50)

	runner.On("ID").Return("111")
	runner.On("Deposit", actorIs("Caca"), amount).Return(nil, account.ErrPersistenceFailure).Once()

	res := task.New("Caca", runner, account.OperationDeposit, amount).Run(context.Background())

	assert.False(t, res.Succeeded())
	assert.ErrorIs(t, res.Err, account.ErrPersistenceFailure)
	assert.Equal(t, account.ReasonPersistenceFailure, res.Reason)
}

func TestRunUnknownOperation(t *testing.T) {
	t.Parallel()
	runner := mocks.NewMockRunner(t)
	runner.On("ID").Return("111")

	res := task.New("Adi", runner, account.ParseOperation("transfer"), decimal.NewFromInt(10)).
		Run(context.Background())

	assert.ErrorIs(t, res.Err, account.ErrUnknownOperation)
	assert.Equal(t, account.ReasonUnknownOperation, res.Reason)
	runner.AssertNotCalled(t, "Withdraw", mock.Anything, mock.Anything)
	runner.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything)
}

func TestRunTwice(t *testing.T) {
	t.Parallel()
	runner := mocks.NewMockRunner(t)
	amount := decimal.NewFromInt(10)
	runner.On("ID").Return("111")
	runner.On("Deposit", mock.Anything, amount).Return(&account.Transaction{}, nil).Once()

	tk := task.New("Adi", runner, account.OperationDeposit, amount)
	first := tk.Run(context.Background())
	second := tk.Run(context.Background())

	assert.True(t, first.Succeeded())
	assert.True(t, errors.Is(second.Err, task.ErrTaskAlreadyRun))
	runner.AssertNumberOfCalls(t, "Deposit", 1)
}

func TestAccessors(t *testing.T) {
	t.Parallel()
	tk := task.New("Adi", mocks.NewMockRunner(t), account.OperationWithdraw, decimal.NewFromInt(3))
	assert.Equal(t, "Adi", tk.Label())
	assert.Equal(t, account.OperationWithdraw, tk.Operation())
	assert.True(t, tk.Amount().Equal(decimal.NewFromInt(3)))
}
