package transaction

import (
	"context"
	"log/slog"

	"github.com/amirasaad/banksim/pkg/domain/events"
	"github.com/amirasaad/banksim/pkg/dto"
	"github.com/amirasaad/banksim/pkg/eventbus"
	"github.com/amirasaad/banksim/pkg/repository/transaction"
)

// Journal handles TransactionCompleted events by appending the confirmed
// change to the transaction journal. The journal store deduplicates by
// transaction ID, so redelivered events are safe.
func Journal(repo transaction.Repository, logger *slog.Logger) eventbus.HandlerFunc {
	logger = logger.With("handler", "Journal")
	return func(ctx context.Context, e events.Event) error {
		var evt *events.TransactionCompleted
		switch v := e.(type) {
		case *events.TransactionCompleted:
			evt = v
		case events.TransactionCompleted:
			evt = &v
		default:
			logger.Error("unexpected event type for journal", "type", e.Type())
			return nil
		}

		err := repo.Create(ctx, dto.TransactionCreate{
			ID:              evt.TransactionID,
			AccountID:       evt.AccountID,
			Actor:           evt.Actor,
			Operation:       evt.FlowType,
			Amount:          evt.Amount,
			PreviousBalance: evt.PreviousBalance,
			Balance:         evt.Balance,
			CreatedAt:       evt.Timestamp,
		})
		if err != nil {
			logger.Error("failed to journal transaction",
				"transaction_id", evt.TransactionID,
				"account", evt.AccountID,
				"error", err,
			)
			return err
		}
		logger.Debug("transaction journaled", "transaction_id", evt.TransactionID, "account", evt.AccountID)
		return nil
	}
}
