// Package metrics records transaction outcomes as OpenTelemetry instruments.
package metrics

import (
	"context"
	"fmt"

	"github.com/amirasaad/banksim/pkg/task"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/amirasaad/banksim"

// Recorder holds the transaction instruments.
type Recorder struct {
	transactions metric.Int64Counter
	duration     metric.Float64Histogram
	balance      metric.Float64Gauge
}

// NewRecorder creates the instruments on provider, or on the global provider when nil.
func NewRecorder(provider metric.MeterProvider) (*Recorder, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName)

	var (
		r   Recorder
		err error
	)

	r.transactions, err = meter.Int64Counter(
		"banksim.transactions",
		metric.WithDescription("Number of transaction attempts by operation and outcome"),
		metric.WithUnit("{transaction}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create banksim.transactions counter: %w", err)
	}

	r.duration, err = meter.Float64Histogram(
		"banksim.transaction.duration",
		metric.WithDescription("Time from lock request to outcome"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create banksim.transaction.duration histogram: %w", err)
	}

	r.balance, err = meter.Float64Gauge(
		"banksim.account.balance",
		metric.WithDescription("Last committed balance per account"),
	)
	if err != nil {
		return nil, fmt.Errorf("create banksim.account.balance gauge: %w", err)
	}

	return &r, nil
}

// Record adds one task outcome. A nil Recorder records nothing.
func (r *Recorder) Record(ctx context.Context, res task.Result) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", res.Operation.String()),
		attribute.String("outcome", res.Reason),
	)
	r.transactions.Add(ctx, 1, attrs)
	r.duration.Record(ctx, res.Duration.Seconds(), attrs)
}

// RecordBalance sets the balance gauge for an account.
func (r *Recorder) RecordBalance(ctx context.Context, accountID string, balance float64) {
	if r == nil {
		return
	}
	r.balance.Record(ctx, balance, metric.WithAttributes(attribute.String("account", accountID)))
}
