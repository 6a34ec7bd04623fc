package metrics_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/banksim/pkg/domain/account"
	"github.com/amirasaad/banksim/pkg/metrics"
	"github.com/amirasaad/banksim/pkg/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRecorder(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	rec, err := metrics.NewRecorder(provider)
	require.NoError(t, err)

	ctx := context.Background()
	rec.Record(ctx, task.Result{Operation: account.OperationWithdraw, Reason: account.ReasonOK, Duration: 20 * time.Millisecond})
	rec.Record(ctx, task.Result{Operation: account.OperationWithdraw, Reason: account.ReasonInsufficientFunds})
	rec.Record(ctx, task.Result{Operation: account.OperationWithdraw, Reason: account.ReasonOK})
	rec.RecordBalance(ctx, "111", 200_000)

	got := collect(t, reader)

	sum, ok := got["banksim.transactions"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("outcome"))
		counts[v.AsString()] = dp.Value
	}
	assert.Equal(t, int64(2), counts[account.ReasonOK])
	assert.Equal(t, int64(1), counts[account.ReasonInsufficientFunds])

	hist, ok := got["banksim.transaction.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var total uint64
	for _, dp := range hist.DataPoints {
		total += dp.Count
	}
	assert.Equal(t, uint64(3), total)

	gauge, ok := got["banksim.account.balance"].Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, 200_000.0, gauge.DataPoints[0].Value)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var rec *metrics.Recorder
	assert.NotPanics(t, func() {
		rec.Record(context.Background(), task.Result{})
		rec.RecordBalance(context.Background(), "111", 1)
	})
}

func TestDefaultProvider(t *testing.T) {
	rec, err := metrics.NewRecorder(nil)
	require.NoError(t, err)
	assert.NotNil(t, rec)
}
