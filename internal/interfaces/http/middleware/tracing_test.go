package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

// setupTestTracer installs a recorder-backed tracer provider globally so
// otelgin picks it up, and restores the previous one afterwards.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

// serverSpan finds the span otelgin named after the route, for example
// "GET /beds".
func serverSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()

	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	t.Fatalf("span %q not found", name)
	return nil
}

func spanStringAttr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.AsString(), true
		}
	}
	return "", false
}

func newTracedRouter(cfg TracingConfig, handler gin.HandlerFunc, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(TracingWithConfig(cfg))
	for _, mw := range extra {
		router.Use(mw)
	}
	router.GET("/beds", handler)
	return router
}

func okBedsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func TestTracingWithConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := TracingConfig{Enabled: true, ServiceName: "hms-backend"}

	t.Run("disabled passes through without spans", func(t *testing.T) {
		router := newTracedRouter(TracingConfig{Enabled: false, ServiceName: "hms-backend"}, okBedsHandler)

		w := serveJSON(router, http.MethodGet, "/beds")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("enabled records a server span per request", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := newTracedRouter(cfg, okBedsHandler)

		w := serveJSON(router, http.MethodGet, "/beds")
		assert.Equal(t, http.StatusOK, w.Code)

		require.GreaterOrEqual(t, len(sr.Ended()), 1)
		serverSpan(t, sr, "GET /beds")
	})

	t.Run("request id lands on the span", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := gin.New()
		router.Use(RequestID())
		router.Use(TracingWithConfig(cfg))
		router.Use(TracingAttributeInjector())
		router.GET("/beds", okBedsHandler)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/beds", nil)
		req.Header.Set("X-Request-ID", "req-admit-123")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		span := serverSpan(t, sr, "GET /beds")
		value, ok := spanStringAttr(span, "request_id")
		require.True(t, ok, "request_id attribute not found in span")
		assert.Equal(t, "req-admit-123", value)
	})

	t.Run("authenticated user id lands on the span", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := newTracedRouter(cfg, okBedsHandler,
			func(c *gin.Context) {
				c.Set(JWTUserIDKey, "cashier-12")
				c.Next()
			},
			TracingAttributeInjector(),
		)

		w := serveJSON(router, http.MethodGet, "/beds")
		assert.Equal(t, http.StatusOK, w.Code)

		span := serverSpan(t, sr, "GET /beds")
		value, ok := spanStringAttr(span, "user_id")
		require.True(t, ok, "user_id attribute not found in span")
		assert.Equal(t, "cashier-12", value)
	})
}

func TestTracingDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("config defaults", func(t *testing.T) {
		cfg := DefaultTracingConfig()
		assert.Equal(t, "hms-backend", cfg.ServiceName)
		assert.True(t, cfg.Enabled)
	})

	t.Run("Tracing uses the defaults", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := gin.New()
		router.Use(Tracing())
		router.GET("/beds", okBedsHandler)

		w := serveJSON(router, http.MethodGet, "/beds")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.GreaterOrEqual(t, len(sr.Ended()), 1)
	})
}

func TestSpanErrorMarker(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := TracingConfig{Enabled: true, ServiceName: "hms-backend"}

	statusHandler := func(status int, body gin.H) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.JSON(status, body)
		}
	}

	tests := []struct {
		name            string
		status          int
		wantDescription string
	}{
		{"404 maps to Not Found", http.StatusNotFound, "Not Found"},
		{"401 maps to Unauthorized", http.StatusUnauthorized, "Unauthorized"},
		{"403 maps to Forbidden", http.StatusForbidden, "Forbidden"},
		{"400 maps to Client Error", http.StatusBadRequest, "Client Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := setupTestTracer(t)
			router := newTracedRouter(cfg, statusHandler(tt.status, gin.H{"error": "refused"}), SpanErrorMarker())

			w := serveJSON(router, http.MethodGet, "/beds")
			assert.Equal(t, tt.status, w.Code)

			span := serverSpan(t, sr, "GET /beds")
			assert.Equal(t, codes.Error, span.Status().Code)
			assert.Equal(t, tt.wantDescription, span.Status().Description)
		})
	}

	t.Run("500 is marked error", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := newTracedRouter(cfg, statusHandler(http.StatusInternalServerError, gin.H{"error": "boom"}), SpanErrorMarker())

		w := serveJSON(router, http.MethodGet, "/beds")
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		// otelgin may set its own description for 5xx, so only the code is
		// asserted here.
		span := serverSpan(t, sr, "GET /beds")
		assert.Equal(t, codes.Error, span.Status().Code)
	})

	t.Run("2xx stays unset", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := newTracedRouter(cfg, okBedsHandler, SpanErrorMarker())

		w := serveJSON(router, http.MethodGet, "/beds")
		assert.Equal(t, http.StatusOK, w.Code)

		span := serverSpan(t, sr, "GET /beds")
		assert.NotEqual(t, codes.Error, span.Status().Code)
	})

	t.Run("no recording span is harmless", func(t *testing.T) {
		original := otel.GetTracerProvider()
		otel.SetTracerProvider(noop.NewTracerProvider())
		t.Cleanup(func() {
			otel.SetTracerProvider(original)
		})

		router := gin.New()
		router.Use(SpanErrorMarker())
		router.GET("/beds", statusHandler(http.StatusInternalServerError, gin.H{"error": "boom"}))

		w := serveJSON(router, http.MethodGet, "/beds")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestTracingAttributeInjectorWithoutSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingAttributeInjector())
	router.GET("/beds", okBedsHandler)

	w := serveJSON(router, http.MethodGet, "/beds")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracingGetRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("prefers the context value", func(t *testing.T) {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set("request_id", "req-from-context")
			c.Next()
		})
		router.GET("/beds", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
		})

		w := serveJSON(router, http.MethodGet, "/beds")
		assert.Contains(t, w.Body.String(), "req-from-context")
	})

	t.Run("falls back to the header", func(t *testing.T) {
		router := gin.New()
		router.GET("/beds", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/beds", nil)
		req.Header.Set("X-Request-ID", "req-from-header")
		router.ServeHTTP(w, req)

		assert.Contains(t, w.Body.String(), "req-from-header")
	})

	t.Run("truncates oversized headers", func(t *testing.T) {
		router := gin.New()
		router.GET("/beds", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"length": len(getRequestID(c))})
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/beds", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("x", 300))
		router.ServeHTTP(w, req)

		assert.Contains(t, w.Body.String(), `"length":128`)
	})
}

func TestTracingGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("reads the JWT identity", func(t *testing.T) {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(JWTUserIDKey, "cashier-7")
			c.Next()
		})
		router.GET("/beds", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"user_id": getUserID(c)})
		})

		w := serveJSON(router, http.MethodGet, "/beds")
		assert.Contains(t, w.Body.String(), "cashier-7")
	})

	t.Run("anonymous requests yield empty", func(t *testing.T) {
		router := gin.New()
		router.GET("/beds", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"user_id": getUserID(c)})
		})

		w := serveJSON(router, http.MethodGet, "/beds")
		assert.Contains(t, w.Body.String(), `"user_id":""`)
	})
}
