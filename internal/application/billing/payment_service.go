package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/hms/backend/internal/infrastructure/telemetry"
)

// PaymentService records payments against bills
type PaymentService struct {
	billRepo       billing.BillRepository
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	metrics        *telemetry.BusinessMetrics
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	billRepo billing.BillRepository,
	idempotency shared.IdempotencyStore,
	metrics *telemetry.BusinessMetrics,
) *PaymentService {
	return &PaymentService{
		billRepo:       billRepo,
		idempotency:    idempotency,
		idempotencyTTL: shared.DefaultIdempotencyConfig().TTL,
		metrics:        metrics,
	}
}

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	BillID            uuid.UUID
	Amount            decimal.Decimal
	PaymentMethod     billing.PaymentMethod
	PaymentDate       time.Time
	TransactionID     string
	ReceivedBy        string
	ReceiptNo         string
	BankName          string
	CardLast4         string
	AuthorizationCode string
	Notes             string
	IdempotencyKey    string
}

// Validate rejects malformed requests before any repository call
func (r RecordPaymentRequest) Validate() error {
	if r.BillID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Bill ID is required")
	}
	if !r.Amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	if !r.PaymentMethod.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	return nil
}

// RecordPayment validates and appends a payment to a bill.
//
// When an idempotency key is supplied, a second submission with the same key
// within the TTL is rejected with DUPLICATE_REQUEST instead of double
// charging, which protects the settle-and-discharge flow against replays.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*billing.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record_payment")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBillID, req.BillID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrPaymentMethod, string(req.PaymentMethod),
	)

	if err := req.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		fresh, err := s.idempotency.MarkProcessed(ctx, "payment:"+req.IdempotencyKey, s.idempotencyTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !fresh {
			err := shared.NewDomainError("DUPLICATE_REQUEST", "Payment with this idempotency key was already recorded")
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	bill, err := s.billRepo.FindByID(ctx, req.BillID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	payment, err := billing.NewPayment(
		valueobject.NewMoneyINR(req.Amount),
		req.PaymentMethod,
		req.PaymentDate,
		req.TransactionID,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	payment.ReceivedBy = req.ReceivedBy
	payment.ReceiptNo = req.ReceiptNo
	payment.BankName = req.BankName
	payment.CardLast4 = req.CardLast4
	payment.AuthorizationCode = req.AuthorizationCode
	payment.Notes = req.Notes

	if err := bill.AddPayment(payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}

	s.metrics.RecordPayment(ctx, string(req.PaymentMethod))
	s.metrics.RecordPaymentAmount(ctx, req.Amount)
	telemetry.SetOK(span)

	return payment, nil
}

// GetPayment returns a single payment by ID together with its bill
func (s *PaymentService) GetPayment(ctx context.Context, billID, paymentID uuid.UUID) (*billing.Payment, *billing.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, nil, err
	}
	for i := range bill.Payments {
		if bill.Payments[i].ID == paymentID {
			return &bill.Payments[i], bill, nil
		}
	}
	return nil, nil, shared.ErrNotFound
}
