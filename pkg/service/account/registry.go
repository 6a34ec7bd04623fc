package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/banksim/pkg/domain/account"
	"github.com/amirasaad/banksim/pkg/dto"
	"github.com/amirasaad/banksim/pkg/repository"
	"github.com/cenkalti/backoff/v4"
)

// Account returns the single in-memory instance for id, loading it from the
// store on first use. Concurrent first loads of the same id share one fetch.
func (s *Service) Account(ctx context.Context, id string) (*account.Account, error) {
	if id == "" {
		return nil, account.ErrEmptyID
	}
	if acc := s.cached(id); acc != nil {
		return acc, nil
	}

	// The load is shared by every caller waiting on id, so it must not die
	// with whichever caller started it. Each caller still stops waiting when
	// its own ctx ends.
	ch := s.loads.DoChan(id, func() (any, error) {
		if acc := s.cached(id); acc != nil {
			return acc, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout())
		defer cancel()
		rec, err := s.load(loadCtx, id)
		if err != nil {
			return nil, err
		}
		acc, err := account.New().
			WithID(rec.ID).
			WithOwner(rec.Owner).
			WithBalance(rec.Balance).
			WithCreatedAt(rec.CreatedAt).
			WithUpdatedAt(rec.UpdatedAt).
			WithWriter(s.repo).
			WithProcessingDelay(s.delay).
			WithLogger(s.logger.With("account", rec.ID)).
			Build()
		if err != nil {
			return nil, fmt.Errorf("load account %s: %w", id, err)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.accounts[id]; ok {
			return existing, nil
		}
		s.accounts[id] = acc
		s.logger.Debug("account loaded", "account", id, "balance", rec.Balance.String())
		return acc, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*account.Account), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("load account %s: %w", id, ctx.Err())
	}
}

// defaultLoadTimeout caps a shared load when retries have no elapsed limit.
const defaultLoadTimeout = 30 * time.Second

// loadTimeout bounds one shared load: the retry budget plus one backoff
// interval for the final attempt to finish.
func (s *Service) loadTimeout() time.Duration {
	if s.retry.MaxElapsed <= 0 {
		return defaultLoadTimeout
	}
	return s.retry.MaxElapsed + s.retry.MaxInterval
}

// Forget drops the in-memory instance for id so the next use reloads it.
// Callers must not hold operations in flight on the dropped instance.
func (s *Service) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
}

func (s *Service) cached(id string) *account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id]
}

// load fetches the record with exponential backoff. Unknown ids fail at once.
func (s *Service) load(ctx context.Context, id string) (*dto.AccountRead, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retry.InitialInterval
	b.MaxInterval = s.retry.MaxInterval
	b.MaxElapsedTime = s.retry.MaxElapsed

	var rec *dto.AccountRead
	op := func() error {
		var err error
		rec, err = s.repo.Get(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		s.logger.Warn("retrying account load", "account", id, "error", err, "next", next)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, fmt.Errorf("load account %s: %w", id, err)
	}
	return rec, nil
}
