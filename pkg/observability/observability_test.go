package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Mindburn-Labs/spp/pkg/observability"
)

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

func TestProvider_Disabled(t *testing.T) {
	p, err := observability.New(context.Background(), observability.DefaultConfig())
	require.NoError(t, err)

	// records into no-op providers without panicking
	p.RecordValidation(context.Background(), "JSON", 2, time.Millisecond)
	p.RecordTrustScore(context.Background(), 0.5, "display_with_warning")
	_, done := p.TrackOperation(context.Background(), "noop")
	done(nil)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestProvider_RecordsInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	p, err := observability.New(context.Background(), observability.DefaultConfig(), observability.WithMeterProvider(mp))
	require.NoError(t, err)

	ctx := context.Background()
	p.RecordValidation(ctx, "JSON", 0, 2*time.Millisecond)
	p.RecordValidation(ctx, "JSON", 3, 2*time.Millisecond)
	p.RecordTrustScore(ctx, 0.78, "display")

	metrics := collect(t, reader)

	total, ok := metrics["spp.validations.total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var files int64
	for _, dp := range total.DataPoints {
		files += dp.Value
	}
	assert.Equal(t, int64(2), files)

	errs, ok := metrics["spp.validation.errors"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errs.DataPoints, 1)
	assert.Equal(t, int64(3), errs.DataPoints[0].Value)

	score, ok := metrics["spp.trust.score"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, score.DataPoints, 1)
	assert.Equal(t, uint64(1), score.DataPoints[0].Count)

	_, ok = metrics["spp.validation.duration"]
	assert.True(t, ok)
}

func TestTrackOperation_RecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	p, err := observability.New(context.Background(), observability.DefaultConfig(), observability.WithTracerProvider(tp))
	require.NoError(t, err)

	_, done := p.TrackOperation(context.Background(), "spp.validate")
	done(errors.New("boom"))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "spp.validate", spans[0].Name())
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}
