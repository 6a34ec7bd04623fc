// Package account provides the business operations on shared accounts: seeding,
// balance inquiries, single deposits and withdrawals, and concurrent simulations
// driven by the dispatcher.
//
// The service keeps exactly one in-memory Account per account number so every
// caller in the process contends on the same per-account lock. After every
// attempt it records metrics and emits a TransactionCompleted or
// TransactionFailed event.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/banksim/pkg/config"
	"github.com/amirasaad/banksim/pkg/dispatcher"
	"github.com/amirasaad/banksim/pkg/domain/account"
	"github.com/amirasaad/banksim/pkg/dto"
	"github.com/amirasaad/banksim/pkg/eventbus"
	"github.com/amirasaad/banksim/pkg/metrics"
	repoaccount "github.com/amirasaad/banksim/pkg/repository/account"
	repotransaction "github.com/amirasaad/banksim/pkg/repository/transaction"
	"github.com/amirasaad/banksim/pkg/task"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// TransactionRequest describes one task of a simulation.
type TransactionRequest struct {
	Actor     string
	Operation account.Operation
	Amount    decimal.Decimal
}

// Service provides account operations over a persistence gateway.
type Service struct {
	repo    repoaccount.Repository
	journal repotransaction.Repository
	bus     eventbus.Bus
	metrics *metrics.Recorder
	logger  *slog.Logger

	delay   time.Duration
	workers int
	retry   config.LoadRetry

	mu       sync.Mutex
	accounts map[string]*account.Account
	loads    singleflight.Group
}

// NewService creates a new Service with the provided dependencies.
func NewService(deps config.Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:     deps.AccountRepository,
		journal:  deps.TransactionRepository,
		bus:      deps.EventBus,
		metrics:  deps.Metrics,
		logger:   logger.With("service", "account"),
		accounts: make(map[string]*account.Account),
		retry: config.LoadRetry{
			InitialInterval: 50 * time.Millisecond,
			MaxInterval:     time.Second,
			MaxElapsed:      5 * time.Second,
		},
	}
	if cfg := deps.Config; cfg != nil {
		s.delay = cfg.ProcessingDelay
		if cfg.Dispatcher != nil {
			s.workers = cfg.Dispatcher.Workers
		}
		if cfg.LoadRetry != nil {
			s.retry = *cfg.LoadRetry
		}
	}
	return s
}

// CreateAccount seeds a new account in the store.
func (s *Service) CreateAccount(ctx context.Context, create dto.AccountCreate) (*dto.AccountRead, error) {
	if create.ID == "" {
		return nil, account.ErrEmptyID
	}
	if create.Balance.IsNegative() {
		return nil, account.ErrNegativeBalance
	}
	if err := s.repo.Create(ctx, create); err != nil {
		s.logger.Error("failed to create account", "account", create.ID, "error", err)
		return nil, fmt.Errorf("create account %s: %w", create.ID, err)
	}
	s.logger.Info("account created", "account", create.ID, "owner", create.Owner, "balance", create.Balance.String())
	return s.GetAccount(ctx, create.ID)
}

// GetAccount returns the committed state of an account. The balance is the
// last persisted value, never a value an in-flight operation is working on.
func (s *Service) GetAccount(ctx context.Context, id string) (*dto.AccountRead, error) {
	acc, err := s.Account(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.AccountRead{
		ID:        acc.ID(),
		Owner:     acc.Owner(),
		Balance:   acc.Balance(),
		CreatedAt: acc.CreatedAt(),
		UpdatedAt: acc.UpdatedAt(),
	}, nil
}

// ListTransactions returns up to limit journaled transactions of the account,
// newest first. The journal is fed by events, so it can trail the balance.
func (s *Service) ListTransactions(ctx context.Context, id string, limit int) ([]*dto.TransactionRead, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	if _, err := s.Account(ctx, id); err != nil {
		return nil, err
	}
	txs, err := s.journal.ListByAccount(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions %s: %w", id, err)
	}
	return txs, nil
}

// Deposit adds amount to the account on behalf of actor.
func (s *Service) Deposit(ctx context.Context, id, actor string, amount decimal.Decimal) (*account.Transaction, error) {
	res, err := s.Execute(ctx, id, TransactionRequest{Actor: actor, Operation: account.OperationDeposit, Amount: amount})
	if err != nil {
		return nil, err
	}
	return res.Transaction, res.Err
}

// Withdraw removes amount from the account on behalf of actor.
func (s *Service) Withdraw(ctx context.Context, id, actor string, amount decimal.Decimal) (*account.Transaction, error) {
	res, err := s.Execute(ctx, id, TransactionRequest{Actor: actor, Operation: account.OperationWithdraw, Amount: amount})
	if err != nil {
		return nil, err
	}
	return res.Transaction, res.Err
}

// Execute runs one request as a single task. The returned error reports a
// failure to load the account; the outcome of the operation is in the result.
func (s *Service) Execute(ctx context.Context, id string, req TransactionRequest) (task.Result, error) {
	acc, err := s.Account(ctx, id)
	if err != nil {
		return task.Result{}, err
	}
	res := task.New(req.Actor, acc, req.Operation, req.Amount).Run(ctx)
	s.observe(ctx, acc, res)
	return res, nil
}

// Simulate runs every request concurrently against one account on at most
// workers goroutines, waits for all of them, and reports the final committed
// balance. workers < 0 uses the configured default; 0 starts one goroutine
// per request.
func (s *Service) Simulate(ctx context.Context, id string, workers int, reqs []TransactionRequest) (dispatcher.Report, error) {
	if len(reqs) == 0 {
		return dispatcher.Report{}, ErrNoTransactions
	}
	acc, err := s.Account(ctx, id)
	if err != nil {
		return dispatcher.Report{}, err
	}
	if workers < 0 {
		workers = s.workers
	}

	tasks := make([]*task.Task, len(reqs))
	for i, req := range reqs {
		tasks[i] = task.New(req.Actor, acc, req.Operation, req.Amount)
	}

	report := dispatcher.New(workers, s.logger).Dispatch(ctx, acc, tasks)
	for _, res := range report.Results {
		s.observe(ctx, acc, res)
	}
	return report, nil
}

var (
	// ErrNoTransactions is returned by Simulate when there is nothing to run.
	ErrNoTransactions = errors.New("no transactions to simulate")

	// ErrJournalDisabled is returned by ListTransactions when no journal is configured.
	ErrJournalDisabled = errors.New("transaction journal is not configured")
)
