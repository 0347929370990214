package admission

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billingapp "github.com/hms/backend/internal/application/billing"
	admissiondomain "github.com/hms/backend/internal/domain/admission"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/telemetry"
)

// settleTolerance is the largest remaining balance still treated as settled.
// Amounts are stored to two decimals, so anything at or below one paisa is
// rounding noise, not debt.
var settleTolerance = decimal.NewFromFloat(0.01)

// DischargeService gates patient discharge on a settled balance
type DischargeService struct {
	admissionRepo  admissiondomain.AdmissionRepository
	bedRepo        admissiondomain.BedRepository
	billRepo       billing.BillRepository
	paymentService *billingapp.PaymentService
	metrics        *telemetry.BusinessMetrics
}

// NewDischargeService creates a new DischargeService
func NewDischargeService(
	admissionRepo admissiondomain.AdmissionRepository,
	bedRepo admissiondomain.BedRepository,
	billRepo billing.BillRepository,
	paymentService *billingapp.PaymentService,
	metrics *telemetry.BusinessMetrics,
) *DischargeService {
	return &DischargeService{
		admissionRepo:  admissionRepo,
		bedRepo:        bedRepo,
		billRepo:       billRepo,
		paymentService: paymentService,
		metrics:        metrics,
	}
}

// DischargeResult carries the discharged admission and the materialized bed bill
type DischargeResult struct {
	Admission *admissiondomain.Admission `json:"admission"`
	BedBill   *billing.Bill              `json:"bed_bill,omitempty"`
}

// Discharge settles an admission out of the hospital.
//
// The remaining balance is recomputed from a freshly loaded entity graph at
// the discharge instant. A balance above the tolerance blocks the discharge
// with a PendingBalanceError carrying the exact amount owed, and leaves no
// side effects. A settled balance fixes the discharge date (freezing the
// bed-charge proration), materializes the bed bill, marks the admission's
// bills paid and frees the bed.
func (s *DischargeService) Discharge(ctx context.Context, admissionID uuid.UUID, at *time.Time) (*DischargeResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "discharge", "discharge")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrAdmissionID, admissionID.String())

	adm, err := s.admissionRepo.FindByID(ctx, admissionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !adm.IsActive() {
		err := shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot discharge admission in %s status", adm.Status))
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := time.Now()
	if at != nil {
		now = *at
	}

	bills, bed, err := s.loadBillingGraph(ctx, adm)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	breakdown := billing.CalculateCharges(adm, bed, bills, now)
	summary := billing.AggregatePayments(bills)
	remaining := billing.RemainingBalance(breakdown.Total, summary.TotalPaid)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAmount, breakdown.Total.String(),
		"remaining", remaining.String(),
	)

	if remaining.GreaterThan(settleTolerance) {
		s.metrics.RecordDischargeBlocked(ctx)
		err := billing.NewPendingBalanceError(remaining)
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := adm.Discharge(now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var bedBill *billing.Bill
	if bed != nil {
		bedBill, err = s.upsertBedBill(ctx, adm, bed, now)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	for i := range bills {
		if bills[i].Status != billing.BillStatusPending {
			continue
		}
		if err := bills[i].MarkPaid(); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := s.billRepo.Save(ctx, &bills[i]); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to save bill: %w", err)
		}
	}

	if bed != nil {
		bed.Release()
		if err := s.bedRepo.Save(ctx, bed); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to save bed: %w", err)
		}
	}
	if err := s.admissionRepo.Save(ctx, adm); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save admission: %w", err)
	}

	s.metrics.RecordDischargeCompleted(ctx)
	telemetry.SetOK(span)

	return &DischargeResult{Admission: adm, BedBill: bedBill}, nil
}

// OutstandingBill is one unsettled bill of an admission
type OutstandingBill struct {
	BillID     uuid.UUID       `json:"bill_id"`
	BillNumber string          `json:"bill_number"`
	Total      decimal.Decimal `json:"total"`
	Paid       decimal.Decimal `json:"paid"`
	Remaining  decimal.Decimal `json:"remaining"`
	DueDate    *time.Time      `json:"due_date,omitempty"`
}

// OutstandingResult lists unsettled bills plus the admission-level balance
// used to pre-fill the settlement dialog.
type OutstandingResult struct {
	Bills          []OutstandingBill `json:"bills"`
	TotalRemaining decimal.Decimal   `json:"total_remaining"`
}

// OutstandingBills returns the admission's bills that still carry a
// positive balance, largest remaining first, together with the
// admission-level remaining balance.
func (s *DischargeService) OutstandingBills(ctx context.Context, admissionID uuid.UUID) (*OutstandingResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "discharge", "outstanding_bills")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrAdmissionID, admissionID.String())

	adm, err := s.admissionRepo.FindByID(ctx, admissionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	bills, bed, err := s.loadBillingGraph(ctx, adm)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := time.Now()
	breakdown := billing.CalculateCharges(adm, bed, bills, now)
	summary := billing.AggregatePayments(bills)

	result := &OutstandingResult{
		Bills:          make([]OutstandingBill, 0, len(bills)),
		TotalRemaining: billing.RemainingBalance(breakdown.Total, summary.TotalPaid),
	}

	for i := range bills {
		bill := &bills[i]
		if bill.Status == billing.BillStatusCancelled {
			continue
		}
		paid := bill.PaidAmount()
		remaining := billing.RemainingBalance(bill.TotalAmount, paid)
		if !remaining.IsPositive() {
			continue
		}
		result.Bills = append(result.Bills, OutstandingBill{
			BillID:     bill.ID,
			BillNumber: bill.BillNumber,
			Total:      bill.TotalAmount,
			Paid:       paid,
			Remaining:  remaining,
			DueDate:    bill.DueDate,
		})
	}

	sort.Slice(result.Bills, func(a, b int) bool {
		return result.Bills[a].Remaining.GreaterThan(result.Bills[b].Remaining)
	})

	return result, nil
}

// SettleAndDischargeRequest represents the settle-then-discharge operation
type SettleAndDischargeRequest struct {
	AdmissionID    uuid.UUID
	BillID         uuid.UUID
	Amount         decimal.Decimal
	PaymentMethod  billing.PaymentMethod
	TransactionID  string
	ReceivedBy     string
	ReceiptNo      string
	Notes          string
	IdempotencyKey string
}

// SettleAndDischargeResult carries the committed payment and the discharge outcome
type SettleAndDischargeResult struct {
	Payment    *billing.Payment           `json:"payment"`
	Discharged bool                       `json:"discharged"`
	Remaining  decimal.Decimal            `json:"remaining"`
	Admission  *admissiondomain.Admission `json:"admission,omitempty"`
	BedBill    *billing.Bill              `json:"bed_bill,omitempty"`
}

// SettleAndDischarge records a payment and then retries the discharge
// exactly once.
//
// Validation happens before any write. The payment, once committed, stays
// committed regardless of the retry outcome. When the balance is still
// positive after the payment the admission remains admitted and the result
// reports the updated remaining amount; the operator repeats the flow if
// needed, there is no automatic retry loop.
func (s *DischargeService) SettleAndDischarge(ctx context.Context, req SettleAndDischargeRequest) (*SettleAndDischargeResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "discharge", "settle_and_discharge")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAdmissionID, req.AdmissionID.String(),
		telemetry.SpanAttrBillID, req.BillID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if req.AdmissionID == uuid.Nil {
		err := shared.NewDomainError("INVALID_INPUT", "Admission ID is required")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.BillID == uuid.Nil {
		err := shared.NewDomainError("INVALID_INPUT", "A bill must be selected for the settlement payment")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !req.Amount.IsPositive() {
		telemetry.RecordError(span, shared.ErrInvalidAmount)
		return nil, shared.ErrInvalidAmount
	}

	payment, err := s.paymentService.RecordPayment(ctx, billingapp.RecordPaymentRequest{
		BillID:         req.BillID,
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		TransactionID:  req.TransactionID,
		ReceivedBy:     req.ReceivedBy,
		ReceiptNo:      req.ReceiptNo,
		Notes:          req.Notes,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// One discharge retry. The payment above is already durable.
	result, err := s.Discharge(ctx, req.AdmissionID, nil)
	if err != nil {
		var pending *billing.PendingBalanceError
		if errors.As(err, &pending) {
			telemetry.SetAttributes(span, "remaining", pending.Remaining.String())
			return &SettleAndDischargeResult{
				Payment:    payment,
				Discharged: false,
				Remaining:  pending.Remaining,
			}, nil
		}
		telemetry.RecordError(span, err)
		return &SettleAndDischargeResult{Payment: payment, Discharged: false}, err
	}

	telemetry.SetOK(span)
	return &SettleAndDischargeResult{
		Payment:    payment,
		Discharged: true,
		Remaining:  decimal.Zero,
		Admission:  result.Admission,
		BedBill:    result.BedBill,
	}, nil
}

// loadBillingGraph loads the bills and bed of an admission. A dangling bed
// reference degrades to nil rather than failing the whole operation.
func (s *DischargeService) loadBillingGraph(ctx context.Context, adm *admissiondomain.Admission) ([]billing.Bill, *admissiondomain.Bed, error) {
	bills, err := s.billRepo.FindByAdmission(ctx, adm.ID)
	if err != nil {
		return nil, nil, err
	}

	var bed *admissiondomain.Bed
	if adm.BedID != nil {
		bed, err = s.bedRepo.FindByID(ctx, *adm.BedID)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return nil, nil, err
			}
			bed = nil
		}
	}
	return bills, bed, nil
}

// upsertBedBill materializes the frozen bed charge into the dedicated
// BED-<admission prefix> bill so the ledger itemizes what the stay cost.
// The bill is regenerated, not appended, if a previous discharge attempt
// already created it.
func (s *DischargeService) upsertBedBill(ctx context.Context, adm *admissiondomain.Admission, bed *admissiondomain.Bed, dischargedAt time.Time) (*billing.Bill, error) {
	days := billing.StayDays(adm.AdmissionDate, dischargedAt)
	item, err := billing.NewBillItem(
		fmt.Sprintf("Bed Charge (%d day(s))", days),
		int(days),
		bed.GetPricePerDayMoney(),
	)
	if err != nil {
		return nil, err
	}

	billNumber := billing.BedBillPrefix + shortID(adm.ID)
	existing, err := s.billRepo.FindByBillNumber(ctx, billNumber)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if err := existing.ReplaceItems([]billing.BillItem{*item}); err != nil {
			return nil, err
		}
		if err := existing.MarkPaid(); err != nil {
			return nil, err
		}
		if err := s.billRepo.Save(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to save bed bill: %w", err)
		}
		return existing, nil
	}

	admissionID := adm.ID
	bedBill, err := billing.NewBill(billNumber, adm.PatientID, &admissionID, []billing.BillItem{*item}, nil)
	if err != nil {
		return nil, err
	}
	if err := bedBill.MarkPaid(); err != nil {
		return nil, err
	}
	if err := s.billRepo.Save(ctx, bedBill); err != nil {
		return nil, fmt.Errorf("failed to save bed bill: %w", err)
	}
	return bedBill, nil
}
