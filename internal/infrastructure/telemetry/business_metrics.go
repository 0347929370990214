// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the hospital system.
// It tracks admissions, discharge outcomes and payment activity.
// All record methods are safe on a nil receiver so services can run
// without metrics wired (tests, local tooling).
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	admissionCreatedTotal   *Counter
	dischargeCompletedTotal *Counter
	dischargeBlockedTotal   *Counter
	paymentTotal            *Counter
	paymentAmountPaiseTotal *Counter
}

// MetricsError describes a metrics initialization failure
type MetricsError struct {
	Message string
}

// Error implements the error interface
func (e *MetricsError) Error() string {
	return e.Message
}

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = &MetricsError{Message: "meter cannot be nil"}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	bm.admissionCreatedTotal, err = NewCounter(
		cfg.Meter,
		"hms_admission_created_total",
		"Total number of admissions created",
		"{admissions}",
	)
	if err != nil {
		return nil, err
	}

	bm.dischargeCompletedTotal, err = NewCounter(
		cfg.Meter,
		"hms_discharge_completed_total",
		"Total number of completed discharges",
		"{discharges}",
	)
	if err != nil {
		return nil, err
	}

	bm.dischargeBlockedTotal, err = NewCounter(
		cfg.Meter,
		"hms_discharge_blocked_total",
		"Total number of discharges blocked by a pending balance",
		"{discharges}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"hms_payment_total",
		"Total number of payments recorded",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentAmountPaiseTotal, err = NewCounter(
		cfg.Meter,
		"hms_payment_amount_paise_total",
		"Total payment amount in paise",
		"{paise}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordAdmissionCreated records a patient intake
func (bm *BusinessMetrics) RecordAdmissionCreated(ctx context.Context) {
	if bm == nil {
		return
	}
	bm.admissionCreatedTotal.Inc(ctx)
}

// RecordDischargeCompleted records a successful discharge
func (bm *BusinessMetrics) RecordDischargeCompleted(ctx context.Context) {
	if bm == nil {
		return
	}
	bm.dischargeCompletedTotal.Inc(ctx)
}

// RecordDischargeBlocked records a discharge blocked by a pending balance
func (bm *BusinessMetrics) RecordDischargeBlocked(ctx context.Context) {
	if bm == nil {
		return
	}
	bm.dischargeBlockedTotal.Inc(ctx)
}

// RecordPayment records one payment transaction labeled by method
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, method string) {
	if bm == nil {
		return
	}
	bm.paymentTotal.Inc(ctx, attribute.String("payment_method", method))
}

// RecordPaymentAmount records the payment amount converted to paise,
// the smallest currency unit, so the counter stays integral.
func (bm *BusinessMetrics) RecordPaymentAmount(ctx context.Context, amount decimal.Decimal) {
	if bm == nil {
		return
	}
	paise := amount.Mul(decimal.NewFromInt(100)).IntPart()
	if paise <= 0 {
		return
	}
	bm.paymentAmountPaiseTotal.Add(ctx, paise)
}
