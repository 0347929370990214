// Package telemetry provides OpenTelemetry integration for distributed tracing.
package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls span generation for database queries.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include SQL text with bind variables in spans, dev only
	SlowQueryThresh time.Duration // queries above this get a slow_query_warning event
	DBSystem        string        // reported as the db name attribute, default "postgresql"
}

// DefaultDBTracingConfig returns the defaults used when config values are absent.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:         false,
		LogFullSQL:      false,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin layers slow query detection and error marking on top of
// the otelgorm plugin. Patient data may appear in bind variables, so SQL
// text stays out of spans unless LogFullSQL is set.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates the tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// RegisterOtelGorm installs otelgorm on the given GORM instance and hooks
// every operation with a timing pair: a before callback stamping the start
// time and an after callback annotating the active span.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := p.registerTimingCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)

	return nil
}

// registerTimingCallbacks pairs StartClock/AnnotateSpan around each of the
// six GORM operation kinds. The callbacks run inside the span otelgorm
// opened for the statement.
func (p *DBTracingPlugin) registerTimingCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("hms_trace:clock_create", p.StartClock) },
		func() error { return cb.Query().Before("gorm:query").Register("hms_trace:clock_query", p.StartClock) },
		func() error { return cb.Update().Before("gorm:update").Register("hms_trace:clock_update", p.StartClock) },
		func() error { return cb.Delete().Before("gorm:delete").Register("hms_trace:clock_delete", p.StartClock) },
		func() error { return cb.Row().Before("gorm:row").Register("hms_trace:clock_row", p.StartClock) },
		func() error { return cb.Raw().Before("gorm:raw").Register("hms_trace:clock_raw", p.StartClock) },
		func() error { return cb.Create().After("gorm:create").Register("hms_trace:span_create", p.AnnotateSpan) },
		func() error { return cb.Query().After("gorm:query").Register("hms_trace:span_query", p.AnnotateSpan) },
		func() error { return cb.Update().After("gorm:update").Register("hms_trace:span_update", p.AnnotateSpan) },
		func() error { return cb.Delete().After("gorm:delete").Register("hms_trace:span_delete", p.AnnotateSpan) },
		func() error { return cb.Row().After("gorm:row").Register("hms_trace:span_row", p.AnnotateSpan) },
		func() error { return cb.Raw().After("gorm:raw").Register("hms_trace:span_raw", p.AnnotateSpan) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

// StartClock stamps the query start time into the statement context.
func (p *DBTracingPlugin) StartClock(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// AnnotateSpan adds table and row-count attributes to the active span,
// records non-not-found errors and flags queries slower than the threshold.
func (p *DBTracingPlugin) AnnotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// A missing record is an ordinary outcome for lookups, not a span error.
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	startTime, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(startTime)
	if elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}

type contextKey string

const queryStartTimeKey contextKey = "hms_query_start_time"

// WithQueryStartTime returns a context carrying an explicit query start
// time, letting callers pre-stamp the clock outside the GORM callbacks.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}
