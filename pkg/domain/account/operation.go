package account

import (
	"context"
	"strings"
)

// Operation is the kind of balance change a task performs.
type Operation string

// Supported operations.
const (
	OperationWithdraw Operation = "withdraw"
	OperationDeposit  Operation = "deposit"
)

// ParseOperation normalizes s. Unknown values are returned as-is so the task
// running them rejects them with ErrUnknownOperation.
func ParseOperation(s string) Operation {
	switch op := Operation(strings.ToLower(strings.TrimSpace(s))); op {
	case OperationWithdraw, OperationDeposit:
		return op
	default:
		return Operation(s)
	}
}

// Valid reports whether op is withdraw or deposit.
func (op Operation) Valid() bool {
	return op == OperationWithdraw || op == OperationDeposit
}

func (op Operation) String() string {
	return string(op)
}

type actorKey struct{}

// WithActor labels ctx with the name of whoever is driving the operation,
// used in attempt logs.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by WithActor, or "anonymous".
func ActorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return "anonymous"
}
