package account_test

import (
	"context"
	"errors"
	"testing"

	domainaccount "github.com/amirasaad/banksim/pkg/domain/account"
	"github.com/shopspring/decimal"
)

// FuzzAccountOperations checks the balance invariants for arbitrary amounts
// and write outcomes.
func FuzzAccountOperations(f *testing.F) {
	f.Add("800000", "700000", false)
	f.Add("-50", "0", false)
	f.Add("0.00000001", "1000000", true)
	f.Add("1e12", "999999.99", false)
	f.Fuzz(func(t *testing.T, depositIn, withdrawIn string, failWrites bool) {
		deposit, err := decimal.NewFromString(depositIn)
		if err != nil {
			t.Skip()
		}
		withdraw, err := decimal.NewFromString(withdrawIn)
		if err != nil {
			t.Skip()
		}

		w := newRecordingWriter()
		if failWrites {
			w.failIf = func(int) bool { return true }
		}
		acc := newAccount(t, 1_000_000, w)
		ctx := context.Background()

		before := acc.Balance()
		tx, err := acc.Deposit(ctx, deposit)
		switch {
		case err == nil:
			if !tx.Balance.Equal(before.Add(deposit)) || !acc.Balance().Equal(tx.Balance) {
				t.Errorf("deposit %s: balance %s, want %s", deposit, acc.Balance(), before.Add(deposit))
			}
		case !acc.Balance().Equal(before):
			t.Errorf("failed deposit %s changed balance %s -> %s", deposit, before, acc.Balance())
		}

		before = acc.Balance()
		tx, err = acc.Withdraw(ctx, withdraw)
		switch {
		case err == nil:
			if !tx.Balance.Equal(before.Sub(withdraw)) {
				t.Errorf("withdraw %s: balance %s, want %s", withdraw, tx.Balance, before.Sub(withdraw))
			}
		case errors.Is(err, domainaccount.ErrInsufficientFunds):
			if withdraw.LessThanOrEqual(before) {
				t.Errorf("withdraw %s rejected with balance %s", withdraw, before)
			}
			fallthrough
		default:
			if !acc.Balance().Equal(before) {
				t.Errorf("failed withdraw %s changed balance %s -> %s", withdraw, before, acc.Balance())
			}
		}

		if acc.Balance().IsNegative() {
			t.Errorf("balance went negative: %s", acc.Balance())
		}
		if stored, ok := w.Stored("111"); ok && !stored.Equal(acc.Balance()) {
			t.Errorf("store holds %s, account holds %s", stored, acc.Balance())
		} else if !ok && !acc.Balance().Equal(decimal.NewFromInt(1_000_000)) {
			t.Errorf("balance changed to %s without a confirmed write", acc.Balance())
		}
	})
}
