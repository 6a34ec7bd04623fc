// Package dispatcher runs transaction tasks concurrently and waits for all of
// them before reporting the final state of the account they share.
package dispatcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/banksim/pkg/task"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// BalanceReader exposes the committed balance of an account.
type BalanceReader interface {
	ID() string
	Balance() decimal.Decimal
}

// Report summarizes one dispatch.
type Report struct {
	AccountID      string
	InitialBalance decimal.Decimal
	FinalBalance   decimal.Decimal
	Results        []task.Result // in submission order
	Succeeded      int
	Failed         int
	Elapsed        time.Duration
}

// Dispatcher runs tasks on a bounded set of goroutines.
type Dispatcher struct {
	workers int
	logger  *slog.Logger
}

// New creates a Dispatcher. workers <= 0 starts one goroutine per task.
func New(workers int, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{workers: workers, logger: logger.With("component", "dispatcher")}
}

// Dispatch starts every task, waits for all of them to finish, then reads the
// account's final balance. Tasks that never got a worker because ctx ended
// still run and report ErrInterrupted from the account.
func (d *Dispatcher) Dispatch(ctx context.Context, acc BalanceReader, tasks []*task.Task) Report {
	report := Report{
		AccountID:      acc.ID(),
		InitialBalance: acc.Balance(),
		Results:        make([]task.Result, len(tasks)),
	}
	d.logger.Info("dispatching tasks",
		"account", report.AccountID,
		"tasks", len(tasks),
		"workers", d.workers,
		"balance", report.InitialBalance.String(),
	)

	start := time.Now()
	var g errgroup.Group
	if d.workers > 0 {
		g.SetLimit(d.workers)
	}
	for i, t := range tasks {
		g.Go(func() error {
			report.Results[i] = t.Run(ctx)
			return nil
		})
	}
	_ = g.Wait()
	report.Elapsed = time.Since(start)

	for _, res := range report.Results {
		if res.Succeeded() {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	report.FinalBalance = acc.Balance()

	d.logger.Info("dispatch finished",
		"account", report.AccountID,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"final_balance", report.FinalBalance.String(),
		"elapsed", report.Elapsed,
	)
	return report
}
