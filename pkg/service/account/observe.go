package account

import (
	"context"

	"github.com/amirasaad/banksim/pkg/domain/account"
	"github.com/amirasaad/banksim/pkg/domain/events"
	"github.com/amirasaad/banksim/pkg/task"
)

// observe records metrics for one result and emits the matching event. Bus
// errors are logged; they never change the outcome of the operation.
func (s *Service) observe(ctx context.Context, acc *account.Account, res task.Result) {
	s.metrics.Record(ctx, res)
	if res.Succeeded() {
		s.metrics.RecordBalance(ctx, acc.ID(), acc.Balance().InexactFloat64())
	}
	if s.bus == nil {
		return
	}

	flow := events.NewFlowEvent().
		WithAccountID(res.AccountID).
		WithActor(res.Label).
		WithFlowType(res.Operation.String()).
		WithAmount(res.Amount)

	var evt events.Event
	if res.Succeeded() && res.Transaction != nil {
		tx := res.Transaction
		evt = events.NewTransactionCompleted(*flow,
			events.WithTransactionID(tx.ID),
			events.WithBalances(tx.PreviousBalance, tx.Balance),
		)
	} else {
		evt = events.NewTransactionFailed(*flow, res.Reason, res.Err)
	}

	// The caller's ctx may already be cancelled; the event still describes a
	// finished attempt.
	if err := s.bus.Emit(context.WithoutCancel(ctx), evt); err != nil {
		s.logger.Error("failed to emit event", "type", evt.Type(), "account", res.AccountID, "error", err)
	}
}
