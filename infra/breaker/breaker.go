// Package breaker guards an account repository with a circuit breaker so a
// dead store fails writes immediately instead of on every timeout.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/banksim/pkg/config"
	"github.com/amirasaad/banksim/pkg/dto"
	"github.com/amirasaad/banksim/pkg/repository"
	repo "github.com/amirasaad/banksim/pkg/repository/account"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned while the breaker rejects calls.
var ErrUnavailable = errors.New("account store unavailable")

// Repository decorates an account repository with a circuit breaker.
type Repository struct {
	next    repo.Repository
	breaker *gobreaker.CircuitBreaker
}

// New wraps next. The breaker opens after cfg.MaxFailures consecutive
// failures and probes again after cfg.OpenTimeout. Lookups of unknown or
// duplicate ids are answers from a healthy store and never count as failures.
func New(next repo.Repository, cfg config.Breaker, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	settings := gobreaker.Settings{
		Name:        "account-store",
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, repository.ErrNotFound) ||
				errors.Is(err, repository.ErrAlreadyExists)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &Repository{next: next, breaker: gobreaker.NewCircuitBreaker(settings)}
}

// State reports the breaker state.
func (r *Repository) State() gobreaker.State {
	return r.breaker.State()
}

func (r *Repository) execute(fn func() (any, error)) (any, error) {
	v, err := r.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return v, err
}

// Create implements account.Repository.
func (r *Repository) Create(ctx context.Context, create dto.AccountCreate) error {
	_, err := r.execute(func() (any, error) {
		return nil, r.next.Create(ctx, create)
	})
	return err
}

// Get implements account.Repository.
func (r *Repository) Get(ctx context.Context, id string) (*dto.AccountRead, error) {
	v, err := r.execute(func() (any, error) {
		return r.next.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.AccountRead), nil
}

// WriteBalance implements account.Repository.
func (r *Repository) WriteBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	_, err := r.execute(func() (any, error) {
		return nil, r.next.WriteBalance(ctx, id, balance)
	})
	return err
}

var _ repo.Repository = (*Repository)(nil)
