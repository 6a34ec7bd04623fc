package config

import (
	"errors"
	"log/slog"

	"github.com/amirasaad/banksim/pkg/eventbus"
	"github.com/amirasaad/banksim/pkg/metrics"
	"github.com/amirasaad/banksim/pkg/repository/account"
	"github.com/amirasaad/banksim/pkg/repository/transaction"
)

// Deps holds all infrastructure dependencies for building the app and services.
type Deps struct {
	AccountRepository     account.Repository
	TransactionRepository transaction.Repository // optional journal
	EventBus              eventbus.Bus
	Metrics               *metrics.Recorder
	Logger                *slog.Logger
	Config                *App

	closers []func() error
}

// OnClose registers fn to run on Close, in reverse registration order.
func (d *Deps) OnClose(fn func() error) {
	d.closers = append(d.closers, fn)
}

// Close releases every registered resource and joins their errors.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
