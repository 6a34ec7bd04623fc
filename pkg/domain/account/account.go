package account

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"
)

// BalanceWriter is the durable side of an account. WriteBalance must return nil
// only when the stored balance for id now equals balance; any doubt is an error.
type BalanceWriter interface {
	WriteBalance(ctx context.Context, id string, balance decimal.Decimal) error
}

// Account is a single bank account shared by every task that operates on it.
//
// Invariants:
//   - ID and Owner never change after Build.
//   - The balance changes only through Withdraw and Deposit.
//   - Validation, mutation, the durable write and any rollback run as one
//     critical section; at most one caller is inside it at a time.
//   - When no operation is in progress the balance equals the last value
//     confirmed by the BalanceWriter, and it is never negative.
type Account struct {
	id        string
	owner     string
	createdAt time.Time

	writer BalanceWriter
	delay  time.Duration
	logger *slog.Logger
	now    func() time.Time

	// sem is the account's exclusive lock. A weighted semaphore of size one is
	// used instead of sync.Mutex so waiters can give up when their context ends.
	sem     *semaphore.Weighted
	balance decimal.Decimal // guarded by sem

	viewMu    sync.RWMutex
	committed decimal.Decimal
	updatedAt time.Time
}

// Builder provides a fluent API for constructing Account instances.
type Builder struct {
	id        string
	owner     string
	balance   decimal.Decimal
	writer    BalanceWriter
	delay     time.Duration
	logger    *slog.Logger
	createdAt time.Time
	updatedAt time.Time
	now       func() time.Time
}

// New creates a new Builder with a zero balance and the default logger.
func New() *Builder {
	return &Builder{
		balance:   decimal.Zero,
		createdAt: time.Now().UTC(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithID sets the account number.
func (b *Builder) WithID(id string) *Builder {
	b.id = id
	return b
}

// WithOwner sets the display name of the account holder.
func (b *Builder) WithOwner(owner string) *Builder {
	b.owner = owner
	return b
}

// WithBalance sets the initial balance. It should only be used when hydrating
// an account from the store or in tests.
func (b *Builder) WithBalance(balance decimal.Decimal) *Builder {
	b.balance = balance
	return b
}

// WithWriter sets the store every balance change is mirrored to.
func (b *Builder) WithWriter(w BalanceWriter) *Builder {
	b.writer = w
	return b
}

// WithProcessingDelay adds a pause inside the critical section, after validation
// and before the balance is touched. Zero disables it.
func (b *Builder) WithProcessingDelay(d time.Duration) *Builder {
	b.delay = d
	return b
}

// WithLogger sets the logger used for per-attempt records.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithCreatedAt sets the creation timestamp when hydrating from the store.
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// WithUpdatedAt sets the last-updated timestamp when hydrating from the store.
func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// WithClock overrides the time source used for transaction timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	if now != nil {
		b.now = now
	}
	return b
}

// Build validates the collected fields and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if b.id == "" {
		return nil, ErrEmptyID
	}
	if b.writer == nil {
		return nil, ErrNilWriter
	}
	if b.balance.IsNegative() {
		return nil, ErrNegativeBalance
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Account{
		id:        b.id,
		owner:     b.owner,
		createdAt: b.createdAt,
		writer:    b.writer,
		delay:     b.delay,
		logger:    logger.With("account", b.id),
		now:       b.now,
		sem:       semaphore.NewWeighted(1),
		balance:   b.balance,
		committed: b.balance,
		updatedAt: b.updatedAt,
	}, nil
}

// ID returns the account number.
func (a *Account) ID() string { return a.id }

// Owner returns the account holder's display name.
func (a *Account) Owner() string { return a.owner }

// CreatedAt returns the creation timestamp.
func (a *Account) CreatedAt() time.Time { return a.createdAt }

// Balance returns the last persisted balance. It does not wait for an
// operation in progress and never exposes an unconfirmed value.
func (a *Account) Balance() decimal.Decimal {
	a.viewMu.RLock()
	defer a.viewMu.RUnlock()
	return a.committed
}

// UpdatedAt returns the time of the last confirmed balance change.
func (a *Account) UpdatedAt() time.Time {
	a.viewMu.RLock()
	defer a.viewMu.RUnlock()
	return a.updatedAt
}

// Withdraw removes amount from the account and mirrors the new balance to the store.
// It returns ErrInvalidAmount, ErrInsufficientFunds, ErrPersistenceFailure or
// ErrInterrupted when the withdrawal does not take effect.
func (a *Account) Withdraw(ctx context.Context, amount decimal.Decimal) (*Transaction, error) {
	return a.apply(ctx, OperationWithdraw, amount)
}

// Deposit adds amount to the account and mirrors the new balance to the store.
// It returns ErrInvalidAmount, ErrPersistenceFailure or ErrInterrupted when the
// deposit does not take effect.
func (a *Account) Deposit(ctx context.Context, amount decimal.Decimal) (*Transaction, error) {
	return a.apply(ctx, OperationDeposit, amount)
}

func (a *Account) apply(ctx context.Context, op Operation, amount decimal.Decimal) (*Transaction, error) {
	log := a.logger.With("actor", ActorFrom(ctx), "operation", op.String(), "amount", amount.String())

	if err := a.lock(ctx); err != nil {
		log.Warn("gave up waiting for the account", "error", err)
		return nil, err
	}
	defer a.sem.Release(1)

	log.Info("attempting transaction", "balance", a.balance.String())

	if !amount.IsPositive() {
		log.Warn("rejected", "reason", ReasonInvalidAmount)
		return nil, ErrInvalidAmount
	}
	if op == OperationWithdraw && amount.GreaterThan(a.balance) {
		log.Warn("rejected", "reason", ReasonInsufficientFunds, "balance", a.balance.String())
		return nil, ErrInsufficientFunds
	}

	if err := a.pause(ctx); err != nil {
		log.Warn("interrupted before applying", "error", err)
		return nil, err
	}

	previous := a.balance
	if op == OperationWithdraw {
		a.balance = previous.Sub(amount)
	} else {
		a.balance = previous.Add(amount)
	}

	if err := a.write(ctx); err != nil {
		a.balance = previous
		log.Error("balance write failed, rolled back", "error", err, "balance", previous.String())
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	at := a.now()
	a.commit(a.balance, at)
	log.Info("transaction applied", "from", previous.String(), "to", a.balance.String())

	return newTransaction(a.id, op, amount, previous, a.balance, at), nil
}

// write mirrors the working balance to the store. A panicking writer is
// reported as an error so the caller still rolls back.
func (a *Account) write(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("balance writer panicked: %v", r)
		}
	}()
	return a.writer.WriteBalance(ctx, a.id, a.balance)
}

// lock acquires the account or reports ErrInterrupted. Acquire may succeed on an
// already-cancelled context, so the context is checked again once held.
func (a *Account) lock(ctx context.Context) error {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	if err := ctx.Err(); err != nil {
		a.sem.Release(1)
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	return nil
}

func (a *Account) pause(ctx context.Context) error {
	if a.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(a.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
}

func (a *Account) commit(balance decimal.Decimal, at time.Time) {
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	a.committed = balance
	a.updatedAt = at
}
