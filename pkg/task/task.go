// Package task binds one account, one amount and one operation kind into a
// unit of work that can be handed to any goroutine and run exactly once.
package task

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/amirasaad/banksim/pkg/domain/account"
	"github.com/shopspring/decimal"
)

// ErrTaskAlreadyRun is returned when Run is called a second time on the same task.
var ErrTaskAlreadyRun = errors.New("task already run")

// Runner is the part of an account a task drives.
type Runner interface {
	ID() string
	Withdraw(ctx context.Context, amount decimal.Decimal) (*account.Transaction, error)
	Deposit(ctx context.Context, amount decimal.Decimal) (*account.Transaction, error)
}

// Task is an immutable (account, amount, operation) binding. The account is
// shared with other tasks; the task never owns it.
type Task struct {
	label     string
	account   Runner
	amount    decimal.Decimal
	operation account.Operation
	ran       atomic.Bool
}

// Result is the structured outcome of one Run.
type Result struct {
	Label       string
	AccountID   string
	Operation   account.Operation
	Amount      decimal.Decimal
	Transaction *account.Transaction
	Err         error
	Reason      string
	Duration    time.Duration
}

// Succeeded reports whether the operation took effect.
func (r Result) Succeeded() bool {
	return r.Err == nil
}

// New creates a task. The operation kind is not validated here; an unknown
// kind is rejected when the task runs.
func New(label string, acc Runner, op account.Operation, amount decimal.Decimal) *Task {
	return &Task{
		label:     label,
		account:   acc,
		amount:    amount,
		operation: op,
	}
}

// Label returns the name the task logs under.
func (t *Task) Label() string { return t.label }

// Operation returns the bound operation kind.
func (t *Task) Operation() account.Operation { return t.operation }

// Amount returns the bound amount.
func (t *Task) Amount() decimal.Decimal { return t.amount }

// Run performs the bound operation against the account.
func (t *Task) Run(ctx context.Context) Result {
	res := Result{
		Label:     t.label,
		AccountID: t.account.ID(),
		Operation: t.operation,
		Amount:    t.amount,
	}
	if !t.ran.CompareAndSwap(false, true) {
		res.Err = ErrTaskAlreadyRun
		res.Reason = "already_run"
		return res
	}

	ctx = account.WithActor(ctx, t.label)
	start := time.Now()
	switch t.operation {
	case account.OperationWithdraw:
		res.Transaction, res.Err = t.account.Withdraw(ctx, t.amount)
	case account.OperationDeposit:
		res.Transaction, res.Err = t.account.Deposit(ctx, t.amount)
	default:
		res.Err = fmt.Errorf("%w: %q", account.ErrUnknownOperation, t.operation)
	}
	res.Duration = time.Since(start)
	res.Reason = account.Reason(res.Err)
	return res
}
