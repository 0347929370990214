package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/hms/backend/internal/infrastructure/telemetry"
)

func newDisabledTracerProvider(t *testing.T) *telemetry.TracerProvider {
	t.Helper()
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "hms-backend",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return tp
}

func TestTracerProviderDisabled(t *testing.T) {
	ctx := context.Background()
	tp := newDisabledTracerProvider(t)

	assert.False(t, tp.IsEnabled())
	assert.Equal(t, "hms-backend", tp.GetConfig().ServiceName)
	assert.False(t, tp.GetConfig().Enabled)

	t.Run("still hands out a usable tracer", func(t *testing.T) {
		tracer := tp.Tracer("billing")
		require.NotNil(t, tracer)

		_, span := tracer.Start(ctx, "billing.calculate_charges")
		span.End()
	})

	t.Run("force flush is a no-op", func(t *testing.T) {
		assert.NoError(t, tp.ForceFlush(ctx))
	})

	t.Run("shutdown succeeds even with a cancelled context", func(t *testing.T) {
		cancelledCtx, cancel := context.WithCancel(ctx)
		cancel()
		assert.NoError(t, tp.Shutdown(cancelledCtx))
	})
}

func TestTracerProviderSamplingRatios(t *testing.T) {
	// Sampler construction is exercised for each ratio branch; the provider
	// stays disabled so no exporter connection is attempted.
	for _, ratio := range []float64{1.0, 0.0, 0.5} {
		tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
			Enabled:           false,
			CollectorEndpoint: "localhost:14317",
			SamplingRatio:     ratio,
			ServiceName:       "hms-backend",
		}, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.False(t, tp.IsEnabled())
		assert.NoError(t, tp.Shutdown(context.Background()))
	}
}

func TestTracerProviderEnabled(t *testing.T) {
	// Needs a reachable OTLP collector, so only runs outside -short.
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "hms-backend",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.True(t, tp.IsEnabled())

	_, span := tp.Tracer("billing").Start(ctx, "billing.record_payment")
	span.End()

	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestTracerProviderInvalidEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	logger := zaptest.NewLogger(t, zaptest.Level(zap.ErrorLevel))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// The OTLP exporter defers connection errors, so either outcome is fine
	// as long as shutdown still works.
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "invalid-host:99999",
		SamplingRatio:     1.0,
		ServiceName:       "hms-backend",
	}, logger)
	if err != nil {
		t.Logf("connection error surfaced at construction: %v", err)
		return
	}
	_ = tp.Shutdown(context.Background())
}

func TestTracingConfigZeroValue(t *testing.T) {
	cfg := telemetry.Config{}

	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.CollectorEndpoint)
	assert.Zero(t, cfg.SamplingRatio)
	assert.Empty(t, cfg.ServiceName)
}
