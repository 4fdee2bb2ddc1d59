package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/carrier-transport/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    60 * time.Second,
		ServiceName:       "carrier-transport-test",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, mp)

	assert.False(t, mp.IsEnabled())

	// Get a meter even when disabled (should return no-op meter)
	assert.NotNil(t, mp.Meter("test-meter"))

	// Shutdown with a cancelled context should still succeed for disabled provider
	cancelledCtx, cancel := context.WithCancel(ctx)
	cancel()
	assert.NoError(t, mp.Shutdown(cancelledCtx))
}

func TestNewMeterProvider_Enabled(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "carrier-transport-test",
		Insecure:          true,
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())

	_ = mp.Shutdown(ctx)
}

// ============================================================================
// Instrument helpers
// ============================================================================

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum for %s", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestCounter_AddAndInc(t *testing.T) {
	reader, provider := newManualMeter(t)
	ctx := context.Background()

	counter, err := telemetry.NewCounter(provider.Meter("test"), "test_counter", "Test counter", "1")
	require.NoError(t, err)

	counter.Add(ctx, 5, attribute.String("kind", "a"))
	counter.Inc(ctx, attribute.String("kind", "b"))
	counter.Inc(ctx)

	metrics := collect(t, reader)
	require.Contains(t, metrics, "test_counter")
	assert.Equal(t, int64(7), sumOf(t, metrics["test_counter"]))
}

func TestHistogram_RecordDuration(t *testing.T) {
	reader, provider := newManualMeter(t)
	ctx := context.Background()

	histogram, err := telemetry.NewHistogram(provider.Meter("test"), telemetry.HistogramOpts{
		Name:        "carrier_call_seconds",
		Description: "Carrier call duration",
		Unit:        "s",
		Boundaries:  telemetry.CarrierDurationBuckets,
	})
	require.NoError(t, err)

	histogram.RecordDuration(ctx, 250*time.Millisecond)
	histogram.Record(ctx, 2.0)

	metrics := collect(t, reader)
	require.Contains(t, metrics, "carrier_call_seconds")
	hist, ok := metrics["carrier_call_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.InDelta(t, 2.25, hist.DataPoints[0].Sum, 0.0001)
	assert.Equal(t, telemetry.CarrierDurationBuckets, hist.DataPoints[0].Bounds)
}

func TestHistogram_NoBoundaries(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	histogram, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{Name: "plain_seconds"})
	require.NoError(t, err)
	histogram.Record(context.Background(), 1)
}

// ============================================================================
// Label metrics
// ============================================================================

func TestNewLabelMetrics_NilMeter(t *testing.T) {
	lm, err := telemetry.NewLabelMetrics(telemetry.LabelMetricsConfig{})

	require.Error(t, err)
	assert.Nil(t, lm)
	assert.Equal(t, "NewLabelMetrics: meter cannot be nil", err.Error())
}

func TestLabelMetrics_Record(t *testing.T) {
	reader, provider := newManualMeter(t)
	ctx := context.Background()

	lm, err := telemetry.NewLabelMetrics(telemetry.LabelMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	lm.RecordRequest(ctx, "Postnord", telemetry.LabelOutcomeLabelled)
	lm.RecordRequest(ctx, "Postnord", telemetry.LabelOutcomeRejected)
	lm.RecordWrite(ctx, telemetry.WriteKindAttachment, nil)
	lm.RecordWrite(ctx, telemetry.WriteKindTrackingNumber, nil)
	lm.RecordWrite(ctx, telemetry.WriteKindTrackingNumber, errors.New("boom"))
	lm.RecordCarrierCall(ctx, "Postnord", time.Second, nil)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, metrics["transport_label_requests_total"]))
	assert.Equal(t, int64(3), sumOf(t, metrics["transport_inventory_writes_total"]))
	assert.Contains(t, metrics, "transport_carrier_request_duration_seconds")

	writes := metrics["transport_inventory_writes_total"].Data.(metricdata.Sum[int64])
	var failed int64
	for _, dp := range writes.DataPoints {
		if v, ok := dp.Attributes.Value(telemetry.AttrResult); ok && v.AsString() == "error" {
			failed += dp.Value
		}
	}
	assert.Equal(t, int64(1), failed)
}
