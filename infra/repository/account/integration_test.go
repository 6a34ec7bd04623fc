//go:build integration

package account_test

import (
	"context"
	"sync"
	"testing"

	infraaccount "github.com/amirasaad/banksim/infra/repository/account"
	"github.com/amirasaad/banksim/pkg/domain/account"
	"github.com/amirasaad/banksim/pkg/dto"
	"github.com/amirasaad/banksim/pkg/repository"
	"github.com/amirasaad/banksim/pkg/testutils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository(t *testing.T) {
	repo := infraaccount.New(testutils.StartPostgres(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, dto.AccountCreate{ID: "111", Owner: "Budi", Balance: decimal.NewFromInt(1_000_000)}))
	assert.ErrorIs(t, repo.Create(ctx, dto.AccountCreate{ID: "111"}), repository.ErrAlreadyExists)

	rec, err := repo.Get(ctx, "111")
	require.NoError(t, err)

	acc, err := account.New().
		WithID(rec.ID).
		WithOwner(rec.Owner).
		WithBalance(rec.Balance).
		WithWriter(repo).
		Build()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, amount := range []int64{800_000, 700_000} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = acc.Withdraw(ctx, decimal.NewFromInt(amount))
		}()
	}
	wg.Wait()

	stored, err := repo.Get(ctx, "111")
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(acc.Balance()), "store %s, memory %s", stored.Balance, acc.Balance())
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(200_000)) || stored.Balance.Equal(decimal.NewFromInt(300_000)))
}
