package account_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/banksim/infra/eventbus"
	"github.com/amirasaad/banksim/internal/fixtures/mocks"
	"github.com/amirasaad/banksim/pkg/config"
	"github.com/amirasaad/banksim/pkg/domain/account"
	"github.com/amirasaad/banksim/pkg/domain/events"
	"github.com/amirasaad/banksim/pkg/dto"
	"github.com/amirasaad/banksim/pkg/metrics"
	"github.com/amirasaad/banksim/pkg/repository"
	accountsvc "github.com/amirasaad/banksim/pkg/service/account"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decimalEq(v int64) any {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(v)) })
}

func record(id string, balance int64) *dto.AccountRead {
	return &dto.AccountRead{ID: id, Owner: "Budi", Balance: amount(balance), CreatedAt: time.Now()}
}

type fixture struct {
	repo *mocks.MockAccountRepository
	bus  *eventbus.MemoryEventBus
	svc  *accountsvc.Service
}

func setup(t *testing.T, delay time.Duration) fixture {
	t.Helper()
	repo := mocks.NewMockAccountRepository(t)
	bus := eventbus.NewWithMemory(discard())
	svc := accountsvc.NewService(config.Deps{
		AccountRepository: repo,
		EventBus:          bus,
		Logger:            discard(),
		Config: &config.App{
			ProcessingDelay: delay,
			Dispatcher:      &config.Dispatcher{Workers: 0},
			LoadRetry: &config.LoadRetry{
				InitialInterval: time.Millisecond,
				MaxInterval:     5 * time.Millisecond,
				MaxElapsed:      time.Second,
			},
		},
	})
	return fixture{repo: repo, bus: bus, svc: svc}
}

func published[T events.Event](bus *eventbus.MemoryEventBus) []T {
	var out []T
	for _, e := range bus.Published() {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestCreateAccount(t *testing.T) {
	f := setup(t, 0)
	create := dto.AccountCreate{ID: "111", Owner: "Budi", Balance: amount(1_000_000)}
	f.repo.On("Create", mock.Anything, create).Return(nil).Once()
	f.repo.On("Get", mock.Anything, "111").Return(record("111", 1_000_000), nil).Once()

	read, err := f.svc.CreateAccount(context.Background(), create)

	require.NoError(t, err)
	assert.Equal(t, "111", read.ID)
	assert.True(t, read.Balance.Equal(amount(1_000_000)))
}

func TestCreateAccountValidation(t *testing.T) {
	f := setup(t, 0)

	_, err := f.svc.CreateAccount(context.Background(), dto.AccountCreate{Owner: "Budi"})
	assert.ErrorIs(t, err, account.ErrEmptyID)

	_, err = f.svc.CreateAccount(context.Background(), dto.AccountCreate{ID: "111", Balance: amount(-1)})
	assert.ErrorIs(t, err, account.ErrNegativeBalance)

	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateAccountRepoError(t *testing.T) {
	f := setup(t, 0)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrAlreadyExists).Once()

	read, err := f.svc.CreateAccount(context.Background(), dto.AccountCreate{ID: "111"})

	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
	assert.Nil(t, read)
}

func TestGetAccountNotFoundIsNotRetried(t *testing.T) {
	f := setup(t, 0)
	f.repo.On("Get", mock.Anything, "404").Return(nil, repository.ErrNotFound).Once()

	_, err := f.svc.GetAccount(context.Background(), "404")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	f.repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestLoadRetriesTransientErrors(t *testing.T) {
	f := setup(t, 0)
	f.repo.On("Get", mock.Anything, "111").Return(nil, errors.New("connection refused")).Twice()
	f.repo.On("Get", mock.Anything, "111").Return(record("111", 10), nil).Once()

	read, err := f.svc.GetAccount(context.Background(), "111")

	require.NoError(t, err)
	assert.True(t, read.Balance.Equal(amount(10)))
	f.repo.AssertNumberOfCalls(t, "Get", 3)
}

func TestSingleInstancePerAccount(t *testing.T) {
	f := setup(t, 0)
	f.repo.On("Get", mock.Anything, "111").
		After(10*time.Millisecond).
		Return(record("111", 10), nil).Once()

	const callers = 16
	got := make([]*account.Account, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc, err := f.svc.Account(context.Background(), "111")
			assert.NoError(t, err)
			got[i] = acc
		}()
	}
	wg.Wait()

	for _, acc := range got {
		assert.Same(t, got[0], acc)
	}

	f.svc.Forget("111")
	f.repo.On("Get", mock.Anything, "111").Return(record("111", 10), nil).Once()
	reloaded, err := f.svc.Account(context.Background(), "111")
	require.NoError(t, err)
	assert.NotSame(t, got[0], reloaded)
}

func TestSharedLoadSurvivesCancelledCaller(t *testing.T) {
	f := setup(t, 0)
	entered := make(chan struct{})
	release := make(chan struct{})
	var loadCtxErr error
	f.repo.On("Get", mock.Anything, "111").
		Run(func(args mock.Arguments) {
			close(entered)
			<-release
			loadCtxErr = args.Get(0).(context.Context).Err()
		}).
		Return(record("111", 10), nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := f.svc.Account(ctx, "111")
		first <- err
	}()
	<-entered

	second := make(chan *account.Account, 1)
	go func() {
		acc, err := f.svc.Account(context.Background(), "111")
		assert.NoError(t, err)
		second <- acc
	}()

	cancel()
	select {
	case err := <-first:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting on the shared load")
	}

	close(release)
	select {
	case acc := <-second:
		require.NotNil(t, acc)
		assert.True(t, acc.Balance().Equal(amount(10)))
	case <-time.After(time.Second):
		t.Fatal("second caller never got the account")
	}
	assert.NoError(t, loadCtxErr)
	f.repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestWithdrawEmitsCompleted(t *testing.T) {
	f := setup(t, 0)
	f.repo.On("Get", mock.Anything, "111").Return(record("111", 1_000), nil).Once()
	f.repo.On("WriteBalance", mock.Anything, "111", decimalEq(400)).Return(nil).Once()

	tx, err := f.svc.Withdraw(context.Background(), "111", "Adi", amount(600))

	require.NoError(t, err)
	assert.True(t, tx.Balance.Equal(amount(400)))

	completed := published[*events.TransactionCompleted](f.bus)
	require.Len(t, completed, 1)
	assert.Equal(t, "Adi", completed[0].Actor)
	assert.Equal(t, tx.ID, completed[0].TransactionID)
	assert.True(t, completed[0].PreviousBalance.Equal(amount(1_000)))
}

func TestDepositRejectedEmitsFailed(t *testing.T) {
	f := setup(t, 0)
	f.repo.On("Get", mock.Anything, "111").Return(record("111", 1_000), nil).Once()

	tx, err := f.svc.Deposit(context.Background(), "111", "Adi", amount(0))

	assert.Nil(t, tx)
	assert.ErrorIs(t, err, account.ErrInvalidAmount)
	failed := published[*events.TransactionFailed](f.bus)
	require.Len(t, failed, 1)
	assert.Equal(t, account.ReasonInvalidAmount, failed[0].Reason)
	f.repo.AssertNotCalled(t, "WriteBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestPersistenceFailureKeepsCommittedBalance(t *testing.T) {
	f := setup(t, 0)
	f.repo.On("Get", mock.Anything, "111").Return(record("111", 500), nil).Once()
	f.repo.On("WriteBalance", mock.Anything, "111", decimalEq(0)).Return(errors.New("disk full")).Once()

	_, err := f.svc.Withdraw(context.Background(), "111", "Adi", amount(500))

	assert.ErrorIs(t, err, account.ErrPersistenceFailure)
	read, err := f.svc.GetAccount(context.Background(), "111")
	require.NoError(t, err)
	assert.True(t, read.Balance.Equal(amount(500)))

	failed := published[*events.TransactionFailed](f.bus)
	require.Len(t, failed, 1)
	assert.Equal(t, account.ReasonPersistenceFailure, failed[0].Reason)
	assert.Contains(t, failed[0].Error, "disk full")
}

func TestSimulateOverlappingWithdrawals(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	rec, err := metrics.NewRecorder(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	repo := mocks.NewMockAccountRepository(t)
	bus := eventbus.NewWithMemory(discard())
	svc := accountsvc.NewService(config.Deps{
		AccountRepository: repo,
		EventBus:          bus,
		Metrics:           rec,
		Logger:            discard(),
		Config:            &config.App{ProcessingDelay: 20 * time.Millisecond},
	})
	repo.On("Get", mock.Anything, "111").Return(record("111", 1_000_000), nil).Once()
	repo.On("WriteBalance", mock.Anything, "111", mock.Anything).Return(nil).Once()

	report, err := svc.Simulate(context.Background(), "111", 0, []accountsvc.TransactionRequest{
		{Actor: "Adi", Operation: account.OperationWithdraw, Amount: amount(800_000)},
		{Actor: "Caca", Operation: account.OperationWithdraw, Amount: amount(700_000)},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	final := report.FinalBalance
	assert.True(t, final.Equal(amount(200_000)) || final.Equal(amount(300_000)))

	assert.Len(t, published[*events.TransactionCompleted](bus), 1)
	failed := published[*events.TransactionFailed](bus)
	require.Len(t, failed, 1)
	assert.Equal(t, account.ReasonInsufficientFunds, failed[0].Reason)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var attempts int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok && m.Name == "banksim.transactions" {
				for _, dp := range sum.DataPoints {
					attempts += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), attempts)
}

func TestSimulateRequiresTransactions(t *testing.T) {
	f := setup(t, 0)
	_, err := f.svc.Simulate(context.Background(), "111", 0, nil)
	assert.ErrorIs(t, err, accountsvc.ErrNoTransactions)
}

func TestSimulateUnknownAccount(t *testing.T) {
	f := setup(t, 0)
	f.repo.On("Get", mock.Anything, "404").Return(nil, repository.ErrNotFound).Once()

	_, err := f.svc.Simulate(context.Background(), "404", 2, []accountsvc.TransactionRequest{
		{Actor: "Adi", Operation: account.OperationDeposit, Amount: amount(1)},
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListTransactions(t *testing.T) {
	f := setup(t, 0)
	_, err := f.svc.ListTransactions(context.Background(), "111", 10)
	assert.ErrorIs(t, err, accountsvc.ErrJournalDisabled)

	repo := mocks.NewMockAccountRepository(t)
	journal := mocks.NewMockTransactionRepository(t)
	svc := accountsvc.NewService(config.Deps{
		AccountRepository:     repo,
		TransactionRepository: journal,
		Logger:                discard(),
	})
	repo.On("Get", mock.Anything, "111").Return(record("111", 10), nil).Once()
	repo.On("Get", mock.Anything, "404").Return(nil, repository.ErrNotFound).Once()
	entries := []*dto.TransactionRead{{AccountID: "111", Actor: "Adi", Operation: "deposit", Amount: amount(10)}}
	journal.On("ListByAccount", mock.Anything, "111", 10).Return(entries, nil).Once()

	got, err := svc.ListTransactions(context.Background(), "111", 10)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	_, err = svc.ListTransactions(context.Background(), "404", 10)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
