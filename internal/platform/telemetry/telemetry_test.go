package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewMetrics_Noop(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics(noop.NewMeterProvider())
	require.NoError(t, err)

	// Recording on noop instruments must be safe.
	m.OutboxPublished.Add(context.Background(), 1)
	m.OutboxCycleDuration.Record(context.Background(), 0.25)
}

func TestNewMetrics_RecordsOutboxCounters(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.OutboxPublished.Add(ctx, 2)
	m.OutboxDeliveryFailed.Add(ctx, 1)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, InstrumentationName, rm.ScopeMetrics[0].Scope.Name)

	totals := map[string]int64{}
	for _, metric := range rm.ScopeMetrics[0].Metrics {
		if sum, ok := metric.Data.(metricdata.Sum[int64]); ok {
			for _, dp := range sum.DataPoints {
				totals[metric.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), totals["outbox.events.published"])
	assert.Equal(t, int64(1), totals["outbox.events.delivery_failed"])
}

func TestHostPort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		endpoint string
		want     string
		https    bool
	}{
		{endpoint: "http://otel-collector:4318", want: "otel-collector:4318"},
		{endpoint: "https://collector.example.com", want: "collector.example.com", https: true},
		{endpoint: "collector:4318", want: "collector:4318"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, hostPort(tc.endpoint), tc.endpoint)
		assert.Equal(t, tc.https, isHTTPS(tc.endpoint), tc.endpoint)
	}
}
