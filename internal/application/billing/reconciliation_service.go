package billing

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/admission"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/telemetry"
)

// ReconciliationService is the read-side composition of the charge
// calculator and the payment aggregator. Every surface that shows a
// financial figure goes through it, so list rows, statements and bill
// detail can never disagree about a balance.
type ReconciliationService struct {
	admissionRepo admission.AdmissionRepository
	bedRepo       admission.BedRepository
	billRepo      billing.BillRepository
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	admissionRepo admission.AdmissionRepository,
	bedRepo admission.BedRepository,
	billRepo billing.BillRepository,
) *ReconciliationService {
	return &ReconciliationService{
		admissionRepo: admissionRepo,
		bedRepo:       bedRepo,
		billRepo:      billRepo,
	}
}

// AdmissionFinancials is the reconciled financial picture of one admission
type AdmissionFinancials struct {
	Breakdown billing.ChargeBreakdown `json:"breakdown"`
	Paid      decimal.Decimal         `json:"paid"`
	Remaining decimal.Decimal         `json:"remaining"`
}

// AdmissionRow is one admission-list row with its financials
type AdmissionRow struct {
	Admission  admission.Admission `json:"admission"`
	Financials AdmissionFinancials `json:"financials"`
}

// AdmissionStatement is the detail view of one admission
type AdmissionStatement struct {
	Admission  *admission.Admission         `json:"admission"`
	Bed        *admission.Bed               `json:"bed,omitempty"`
	Financials AdmissionFinancials          `json:"financials"`
	PerBill    []billing.BillPaymentSummary `json:"per_bill"`
	Payments   []billing.Payment            `json:"payments"`
}

// BillDetail is the consolidated view of one bill. For admission-linked
// bills the lines and payments span all bills of the admission.
type BillDetail struct {
	Bill       *billing.Bill        `json:"bill"`
	Lines      []billing.BillItem   `json:"lines"`
	Payments   []billing.Payment    `json:"payments"`
	Paid       decimal.Decimal      `json:"paid"`
	Remaining  decimal.Decimal      `json:"remaining"`
	Financials *AdmissionFinancials `json:"financials,omitempty"`
}

// PaymentRow is one consolidated payment-list row per bill
type PaymentRow struct {
	billing.BillPaymentSummary
	Remaining decimal.Decimal `json:"remaining"`
}

// FinancialsFor reconciles one admission against its bills at the given
// reference instant. It also returns the loaded entity graph so callers
// avoid a second round trip.
func (s *ReconciliationService) FinancialsFor(ctx context.Context, adm *admission.Admission, now time.Time) (AdmissionFinancials, []billing.Bill, *admission.Bed, error) {
	bills, err := s.billRepo.FindByAdmission(ctx, adm.ID)
	if err != nil {
		return AdmissionFinancials{}, nil, nil, err
	}

	var bed *admission.Bed
	if adm.BedID != nil {
		bed, err = s.bedRepo.FindByID(ctx, *adm.BedID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return AdmissionFinancials{}, nil, nil, err
		}
	}

	breakdown := billing.CalculateCharges(adm, bed, bills, now)
	summary := billing.AggregatePayments(bills)

	return AdmissionFinancials{
		Breakdown: breakdown,
		Paid:      summary.TotalPaid,
		Remaining: billing.RemainingBalance(breakdown.Total, summary.TotalPaid),
	}, bills, bed, nil
}

// AdmissionRows returns admission-list rows with reconciled financials
func (s *ReconciliationService) AdmissionRows(ctx context.Context, filter admission.AdmissionFilter) ([]AdmissionRow, int64, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "admission_rows")
	defer span.End()

	admissions, err := s.admissionRepo.FindAll(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, 0, err
	}
	total, err := s.admissionRepo.Count(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, 0, err
	}

	now := time.Now()
	rows := make([]AdmissionRow, 0, len(admissions))
	for i := range admissions {
		fin, _, _, err := s.FinancialsFor(ctx, &admissions[i], now)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, 0, err
		}
		rows = append(rows, AdmissionRow{Admission: admissions[i], Financials: fin})
	}

	return rows, total, nil
}

// Statement returns the full financial statement of one admission
func (s *ReconciliationService) Statement(ctx context.Context, admissionID uuid.UUID) (*AdmissionStatement, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "statement")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrAdmissionID, admissionID.String())

	adm, err := s.admissionRepo.FindByID(ctx, admissionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	fin, bills, bed, err := s.FinancialsFor(ctx, adm, time.Now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	summary := billing.AggregatePayments(bills)
	payments := collectPayments(bills)

	return &AdmissionStatement{
		Admission:  adm,
		Bed:        bed,
		Financials: fin,
		PerBill:    summary.PerBill,
		Payments:   payments,
	}, nil
}

// BillDetail returns the consolidated detail of one bill
func (s *ReconciliationService) BillDetail(ctx context.Context, billID uuid.UUID) (*BillDetail, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "bill_detail")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBillID, billID.String())

	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if bill.AdmissionID == nil {
		paid := bill.PaidAmount()
		return &BillDetail{
			Bill:      bill,
			Lines:     bill.Items,
			Payments:  bill.Payments,
			Paid:      paid,
			Remaining: billing.RemainingBalance(bill.TotalAmount, paid),
		}, nil
	}

	adm, err := s.admissionRepo.FindByID(ctx, *bill.AdmissionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	fin, bills, _, err := s.FinancialsFor(ctx, adm, time.Now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	lines := make([]billing.BillItem, 0)
	for i := range bills {
		if bills[i].Status == billing.BillStatusCancelled {
			continue
		}
		for _, item := range bills[i].Items {
			if billing.IsBedChargeLine(bills[i].BillNumber, item.Description) {
				continue
			}
			lines = append(lines, item)
		}
	}

	return &BillDetail{
		Bill:       bill,
		Lines:      lines,
		Payments:   collectPayments(bills),
		Paid:       fin.Paid,
		Remaining:  fin.Remaining,
		Financials: &fin,
	}, nil
}

// PaymentRows returns one consolidated payment row per bill that received
// at least one payment.
func (s *ReconciliationService) PaymentRows(ctx context.Context, filter billing.BillFilter) ([]PaymentRow, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "payment_rows")
	defer span.End()

	bills, err := s.billRepo.FindAll(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	summary := billing.AggregatePayments(bills)
	byID := make(map[uuid.UUID]*billing.Bill, len(bills))
	for i := range bills {
		byID[bills[i].ID] = &bills[i]
	}

	rows := make([]PaymentRow, 0, len(summary.PerBill))
	for _, entry := range summary.PerBill {
		row := PaymentRow{BillPaymentSummary: entry}
		if bill, ok := byID[entry.BillID]; ok {
			row.Remaining = billing.RemainingBalance(bill.TotalAmount, entry.PaidAmount)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// collectPayments flattens all payments of the given bills, newest first
func collectPayments(bills []billing.Bill) []billing.Payment {
	payments := make([]billing.Payment, 0)
	for i := range bills {
		if bills[i].Status == billing.BillStatusCancelled {
			continue
		}
		payments = append(payments, bills[i].Payments...)
	}
	sort.Slice(payments, func(a, b int) bool {
		return payments[a].PaymentDate.After(payments[b].PaymentDate)
	})
	return payments
}
