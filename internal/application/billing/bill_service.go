package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/hms/backend/internal/infrastructure/telemetry"
)

// BillService manages the bill ledger
type BillService struct {
	billRepo billing.BillRepository
}

// NewBillService creates a new BillService
func NewBillService(billRepo billing.BillRepository) *BillService {
	return &BillService{billRepo: billRepo}
}

// BillItemInput is one line of a bill creation request
type BillItemInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateBillRequest represents a request to create a bill
type CreateBillRequest struct {
	BillNumber  string // Generated when empty
	PatientID   uuid.UUID
	AdmissionID *uuid.UUID
	Items       []BillItemInput
	DueDate     *time.Time
}

// CreateBill creates a pending bill. Item totals and the bill total are
// computed server-side from quantity and unit price.
func (s *BillService) CreateBill(ctx context.Context, req CreateBillRequest) (*billing.Bill, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "create_bill")
	defer span.End()

	if req.PatientID == uuid.Nil {
		err := shared.NewDomainError("INVALID_INPUT", "Patient ID is required")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(req.Items) == 0 {
		err := shared.NewDomainError("INVALID_ITEM", "Bill must contain at least one item")
		telemetry.RecordError(span, err)
		return nil, err
	}

	items := make([]billing.BillItem, 0, len(req.Items))
	for _, input := range req.Items {
		item, err := billing.NewBillItem(input.Description, input.Quantity,
			valueobject.NewMoneyINR(input.UnitPrice))
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		items = append(items, *item)
	}

	billNumber := req.BillNumber
	if billNumber == "" {
		billNumber = GenerateBillNumber("BILL")
	}

	bill, err := billing.NewBill(billNumber, req.PatientID, req.AdmissionID, items, req.DueDate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrBillNumber, bill.BillNumber)
	telemetry.SetOK(span)

	return bill, nil
}

// GetBill returns a bill with its items and payments
func (s *BillService) GetBill(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	return s.billRepo.FindByID(ctx, id)
}

// ListBills returns bills matching the filter
func (s *BillService) ListBills(ctx context.Context, filter billing.BillFilter) ([]billing.Bill, int64, error) {
	bills, err := s.billRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.billRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

// CancelBill voids a pending bill
func (s *BillService) CancelBill(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bill.Cancel(); err != nil {
		return nil, err
	}
	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	return bill, nil
}

// GenerateBillNumber builds a bill number from a prefix and a random suffix,
// e.g. BILL-3f2a9c1d.
func GenerateBillNumber(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s", prefix, suffix)
}
