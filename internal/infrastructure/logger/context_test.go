package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newDevLogger(t *testing.T) *zap.Logger {
	t.Helper()
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)
	return logger
}

func newCapturedLogger(buf *bytes.Buffer) *zap.Logger {
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(buf), zapcore.DebugLevel))
}

func newNoopSpanContext(t *testing.T) (context.Context, trace.Span) {
	t.Helper()
	tracer := noop.NewTracerProvider().Tracer("billing")
	return tracer.Start(context.Background(), "settle-and-discharge")
}

func TestLoggerContextRoundTrip(t *testing.T) {
	t.Run("stored logger is retrievable", func(t *testing.T) {
		logger := newDevLogger(t)
		ctx := WithContext(context.Background(), logger)
		assert.NotNil(t, FromContext(ctx))
	})

	t.Run("missing logger yields a usable nop", func(t *testing.T) {
		logger := FromContext(context.Background())
		require.NotNil(t, logger)
		assert.NotPanics(t, func() {
			logger.Info("discharge recorded")
			logger.With(zap.String("ward", "icu")).Warn("bed shortage")
		})
	})

	t.Run("wrong value type yields a usable nop", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
		logger := FromContext(ctx)
		require.NotNil(t, logger)
		assert.NotPanics(t, func() { logger.Info("still fine") })
	})
}

func TestRequestAndUserIDs(t *testing.T) {
	logger := newDevLogger(t)

	t.Run("request id round trips", func(t *testing.T) {
		ctx, enriched := WithRequestID(context.Background(), logger, "req-admit-42")
		assert.NotNil(t, enriched)
		assert.Equal(t, "req-admit-42", GetRequestID(ctx))
	})

	t.Run("user id round trips", func(t *testing.T) {
		ctx, enriched := WithUserID(context.Background(), logger, "cashier-7")
		assert.NotNil(t, enriched)
		assert.Equal(t, "cashier-7", GetUserID(ctx))
	})

	t.Run("empty without enrichment", func(t *testing.T) {
		assert.Empty(t, GetRequestID(context.Background()))
		assert.Empty(t, GetUserID(context.Background()))
	})

	t.Run("enrichments chain", func(t *testing.T) {
		ctx := context.Background()
		ctx, chained := WithRequestID(ctx, logger, "req-1")
		ctx, chained = WithUserID(ctx, chained, "cashier-1")

		assert.Equal(t, "req-1", GetRequestID(ctx))
		assert.Equal(t, "cashier-1", GetUserID(ctx))
		assert.NotNil(t, chained)
	})

	t.Run("later request id wins", func(t *testing.T) {
		ctx := context.Background()
		ctx, _ = WithRequestID(ctx, logger, "first")
		ctx, _ = WithRequestID(ctx, logger, "second")
		assert.Equal(t, "second", GetRequestID(ctx))
	})

	t.Run("enriched logger lands in the context", func(t *testing.T) {
		ctx, enriched := WithRequestID(context.Background(), logger, "req-enriched")
		assert.NotEqual(t, logger, enriched)
		assert.NotNil(t, FromContext(ctx))
	})
}

func TestContextKeysAreDistinct(t *testing.T) {
	assert.NotEqual(t, LoggerKey, RequestIDKey)
	assert.NotEqual(t, RequestIDKey, UserIDKey)
	assert.NotEqual(t, LoggerKey, UserIDKey)
}

func TestTraceCorrelation(t *testing.T) {
	t.Run("no span means empty ids", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
		assert.Empty(t, GetSpanID(context.Background()))
	})

	t.Run("noop span has an invalid context and empty ids", func(t *testing.T) {
		ctx, span := newNoopSpanContext(t)
		defer span.End()

		assert.False(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
		assert.Empty(t, GetTraceID(ctx))
		assert.Empty(t, GetSpanID(ctx))
	})

	t.Run("WithTraceContext leaves the logger alone without a recording span", func(t *testing.T) {
		base := zap.NewNop()

		assert.Equal(t, base, WithTraceContext(context.Background(), base))

		ctx, span := newNoopSpanContext(t)
		defer span.End()
		assert.Equal(t, base, WithTraceContext(ctx, base))
	})
}

func TestL(t *testing.T) {
	t.Run("always returns a ready ContextLogger", func(t *testing.T) {
		cl := L(context.Background())
		require.NotNil(t, cl)
		assert.NotNil(t, cl.ctx)
		assert.NotNil(t, cl.logger)
	})

	t.Run("picks the logger up from the context", func(t *testing.T) {
		ctx := WithContext(context.Background(), newDevLogger(t))
		cl := L(ctx)
		require.NotNil(t, cl)
		assert.NotNil(t, cl.logger)
	})
}

func TestWithLogger(t *testing.T) {
	base := newDevLogger(t)
	cl := WithLogger(context.Background(), base)

	require.NotNil(t, cl)
	assert.Equal(t, base, cl.logger)
}

func TestContextLogger(t *testing.T) {
	t.Run("With produces a child logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := newCapturedLogger(&buf)
		ctx := context.Background()

		child := WithLogger(ctx, base).With(zap.String("ward", "general"))

		require.NotNil(t, child)
		assert.Equal(t, ctx, child.ctx)
		assert.NotEqual(t, base, child.logger)
	})

	t.Run("With calls chain", func(t *testing.T) {
		cl := WithLogger(context.Background(), zap.NewNop()).
			With(zap.String("ward", "icu")).
			With(zap.String("bed", "icu-03"))

		require.NotNil(t, cl)
		assert.NotPanics(t, func() { cl.Info("bed assigned") })
	})

	t.Run("all levels are safe", func(t *testing.T) {
		cl := WithLogger(context.Background(), zap.NewNop())
		assert.NotPanics(t, func() {
			cl.Debug("admission detail")
			cl.Info("admission recorded")
			cl.Warn("ward nearly full")
			cl.Error("payment rejected")
		})
	})

	t.Run("nil logger is safe", func(t *testing.T) {
		cl := &ContextLogger{ctx: context.Background()}
		assert.NotPanics(t, func() { cl.Info("still safe") })
	})

	t.Run("Zap and Sugar expose working loggers", func(t *testing.T) {
		cl := WithLogger(context.Background(), zap.NewNop())

		require.NotNil(t, cl.Zap())
		require.NotNil(t, cl.Sugar())
		assert.NotPanics(t, func() {
			cl.Zap().Info("direct")
			cl.Sugar().Infof("sugared %s", "entry")
		})
	})
}

func TestContextLoggerEnrichment(t *testing.T) {
	t.Run("context ids flow into the log line", func(t *testing.T) {
		var buf bytes.Buffer
		base := newCapturedLogger(&buf)

		ctx := context.Background()
		ctx, _ = WithRequestID(ctx, base, "req-admit-9")
		ctx, _ = WithUserID(ctx, base, "cashier-3")
		ctx = WithContext(ctx, base)

		L(ctx).Info("payment recorded", zap.String("bill_number", "HOSP-0042"))

		output := buf.String()
		assert.Contains(t, output, `"request_id":"req-admit-9"`)
		assert.Contains(t, output, `"user_id":"cashier-3"`)
		assert.Contains(t, output, `"bill_number":"HOSP-0042"`)
		assert.Contains(t, output, `"msg":"payment recorded"`)
	})

	t.Run("raw context values are picked up too", func(t *testing.T) {
		var buf bytes.Buffer
		base := newCapturedLogger(&buf)

		ctx := context.WithValue(context.Background(), RequestIDKey, "req-raw")
		ctx = context.WithValue(ctx, UserIDKey, "cashier-raw")

		WithLogger(ctx, base).Info("bed released")

		output := buf.String()
		assert.Contains(t, output, `"request_id":"req-raw"`)
		assert.Contains(t, output, `"user_id":"cashier-raw"`)
	})

	t.Run("empty ids stay out of the log line", func(t *testing.T) {
		var buf bytes.Buffer
		base := newCapturedLogger(&buf)

		WithLogger(context.Background(), base).Info("bed released")

		output := buf.String()
		assert.Contains(t, output, `"msg":"bed released"`)
		assert.NotContains(t, output, `"request_id":""`)
		assert.NotContains(t, output, `"user_id":""`)
	})
}
