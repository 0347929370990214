package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type wardRow struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100"`
	CreatedAt time.Time
}

func newTracingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&wardRow{}))
	return db
}

func newSpanRecorder() (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)), recorder
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL, "SQL text must stay out of spans unless opted in")
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPluginRegisterOtelGorm(t *testing.T) {
	t.Run("disabled config registers nothing", func(t *testing.T) {
		db := newTracingTestDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: false}, zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))

		// otelgorm was never installed, queries still work
		require.NoError(t, db.Create(&wardRow{Name: "General"}).Error)
	})

	t.Run("enabled config installs otelgorm and timing callbacks", func(t *testing.T) {
		db := newTracingTestDB(t)
		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true

		require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))
		require.NoError(t, db.Create(&wardRow{Name: "ICU"}).Error)
	})

	t.Run("full SQL mode registers without error", func(t *testing.T) {
		db := newTracingTestDB(t)
		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true
		cfg.LogFullSQL = true

		require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))
	})

	t.Run("double registration fails on duplicate callback names", func(t *testing.T) {
		db := newTracingTestDB(t)
		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true
		plugin := NewDBTracingPlugin(cfg, zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.Error(t, plugin.RegisterOtelGorm(db))
	})
}

func TestDBTracingPluginStartClock(t *testing.T) {
	db := newTracingTestDB(t)
	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

	session := db.Session(&gorm.Session{})
	session.Statement.Context = context.Background()

	plugin.StartClock(session)

	_, ok := session.Statement.Context.Value(queryStartTimeKey).(time.Time)
	assert.True(t, ok, "start time should be stamped into the statement context")
}

func TestDBTracingPluginAnnotateSpan(t *testing.T) {
	startSpan := func(t *testing.T) (context.Context, *tracetest.SpanRecorder, func()) {
		t.Helper()
		tp, recorder := newSpanRecorder()
		ctx, span := tp.Tracer("db_tracing_test").Start(context.Background(), "admissions.query")
		return ctx, recorder, func() { span.End() }
	}

	t.Run("records table and rows affected", func(t *testing.T) {
		db := newTracingTestDB(t)
		require.NoError(t, db.Create(&wardRow{Name: "General"}).Error)

		ctx, recorder, end := startSpan(t)
		plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

		result := db.Session(&gorm.Session{Context: ctx}).Model(&wardRow{}).Where("name = ?", "General").Find(&[]wardRow{})
		require.NoError(t, result.Error)
		plugin.AnnotateSpan(result)
		end()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		attrs := spans[0].Attributes()
		var sawRows, sawTable bool
		for _, a := range attrs {
			switch string(a.Key) {
			case "db.rows_affected":
				sawRows = true
				assert.Equal(t, int64(1), a.Value.AsInt64())
			case "db.sql.table":
				sawTable = true
				assert.Equal(t, "ward_rows", a.Value.AsString())
			}
		}
		assert.True(t, sawRows, "rows affected attribute missing")
		assert.True(t, sawTable, "table attribute missing")
	})

	t.Run("flags slow queries with an event", func(t *testing.T) {
		db := newTracingTestDB(t)

		ctx, recorder, end := startSpan(t)
		ctx = WithQueryStartTime(ctx)
		time.Sleep(2 * time.Millisecond)

		plugin := NewDBTracingPlugin(DBTracingConfig{SlowQueryThresh: time.Nanosecond}, zap.NewNop())
		session := db.Session(&gorm.Session{Context: ctx})
		session.Statement.Context = ctx
		plugin.AnnotateSpan(session)
		end()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		var slowEvent bool
		for _, ev := range spans[0].Events() {
			if ev.Name == "slow_query_warning" {
				slowEvent = true
			}
		}
		assert.True(t, slowEvent, "slow query event should be recorded")
	})

	t.Run("marks span on error but not on record-not-found", func(t *testing.T) {
		db := newTracingTestDB(t)

		ctx, recorder, end := startSpan(t)
		plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

		session := db.Session(&gorm.Session{Context: ctx})
		session.Statement.Context = ctx
		session.Error = assert.AnError
		plugin.AnnotateSpan(session)
		end()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)

		ctx2, recorder2, end2 := startSpan(t)
		session2 := db.Session(&gorm.Session{Context: ctx2})
		session2.Statement.Context = ctx2
		session2.Error = gorm.ErrRecordNotFound
		plugin.AnnotateSpan(session2)
		end2()

		spans2 := recorder2.Ended()
		require.Len(t, spans2, 1)
		assert.NotEqual(t, codes.Error, spans2[0].Status().Code, "missing rows are not span errors")
	})

	t.Run("no-op without a recording span", func(t *testing.T) {
		db := newTracingTestDB(t)
		plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

		session := db.Session(&gorm.Session{Context: context.Background()})
		session.Statement.Context = context.Background()

		assert.NotPanics(t, func() { plugin.AnnotateSpan(session) })
	})
}

func TestWithQueryStartTime(t *testing.T) {
	ctx := WithQueryStartTime(context.Background())

	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), start, time.Second)
}
