package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
)

// BillStatus represents the status of a bill
type BillStatus string

const (
	BillStatusPending   BillStatus = "PENDING"   // Outstanding balance expected
	BillStatusPaid      BillStatus = "PAID"      // Settled
	BillStatusCancelled BillStatus = "CANCELLED" // Voided before settlement
)

// IsValid checks if the status is a valid BillStatus
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusPaid, BillStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the bill is in a terminal state
func (s BillStatus) IsTerminal() bool {
	return s == BillStatusPaid || s == BillStatusCancelled
}

// BedBillPrefix marks bill numbers of dedicated bed-charge bills
const BedBillPrefix = "BED-"

// IsBedChargeLine reports whether a bill line represents the bed charge.
// Stored data carries no explicit flag, so the predicate matches the
// dedicated bed-bill number prefix or the line description. Keep every
// bed-charge exclusion behind this single predicate.
func IsBedChargeLine(billNumber, description string) bool {
	if strings.HasPrefix(billNumber, BedBillPrefix) {
		return true
	}
	return strings.Contains(strings.ToLower(description), "bed charge")
}

// BillItem is a line item within a bill
type BillItem struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"` // Quantity x UnitPrice, computed server-side
}

// NewBillItem creates a bill item with the total computed from quantity and unit price
func NewBillItem(description string, quantity int, unitPrice valueobject.Money) (*BillItem, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Unit price cannot be negative")
	}

	return &BillItem{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		TotalPrice:  unitPrice.Amount().Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// Bill represents a patient bill aggregate root.
// Items and payments are append-only; corrections add new records.
type Bill struct {
	shared.BaseAggregateRoot
	BillNumber  string          `json:"bill_number"`
	AdmissionID *uuid.UUID      `json:"admission_id"`
	PatientID   uuid.UUID       `json:"patient_id"`
	TotalAmount decimal.Decimal `json:"total_amount"` // Stored amount; may diverge from the item sum
	DueDate     *time.Time      `json:"due_date"`
	Status      BillStatus      `json:"status"`
	Items       []BillItem      `json:"items"`
	Payments    []Payment       `json:"payments"`
}

// NewBill creates a new pending bill. TotalAmount is the sum of item totals.
func NewBill(billNumber string, patientID uuid.UUID, admissionID *uuid.UUID, items []BillItem, dueDate *time.Time) (*Bill, error) {
	if billNumber == "" {
		return nil, shared.NewDomainError("INVALID_BILL_NUMBER", "Bill number cannot be empty")
	}
	if patientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PATIENT", "Patient ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEM", "Bill must contain at least one item")
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}

	b := &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BillNumber:        billNumber,
		AdmissionID:       admissionID,
		PatientID:         patientID,
		TotalAmount:       total,
		DueDate:           dueDate,
		Status:            BillStatusPending,
		Items:             items,
		Payments:          make([]Payment, 0),
	}

	b.AddDomainEvent(NewBillCreatedEvent(b))

	return b, nil
}

// AddPayment appends a payment to the bill
func (b *Bill) AddPayment(p *Payment) error {
	if b.Status == BillStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot record payment on a cancelled bill")
	}
	if !p.Amount.IsPositive() {
		return shared.ErrInvalidAmount
	}

	p.BillID = b.ID
	b.Payments = append(b.Payments, *p)
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	b.AddDomainEvent(NewPaymentRecordedEvent(b, p))

	return nil
}

// MarkPaid moves the bill to PAID once its balance is settled
func (b *Bill) MarkPaid() error {
	if b.Status == BillStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot mark a cancelled bill as paid")
	}
	if b.Status == BillStatusPaid {
		return nil
	}
	b.Status = BillStatusPaid
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Cancel voids a pending bill
func (b *Bill) Cancel() error {
	if b.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel bill in %s status", b.Status))
	}
	b.Status = BillStatusCancelled
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// ReplaceItems swaps the bill's items and recomputes the stored total.
// Used only for the dedicated bed bill, which is regenerated at discharge.
func (b *Bill) ReplaceItems(items []BillItem) error {
	if len(items) == 0 {
		return shared.NewDomainError("INVALID_ITEM", "Bill must contain at least one item")
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	b.Items = items
	b.TotalAmount = total
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// PaidAmount returns the sum of all payments on this bill
func (b *Bill) PaidAmount() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range b.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// IsBedBill returns true if this is the dedicated bed-charge bill of an admission
func (b *Bill) IsBedBill() bool {
	return strings.HasPrefix(b.BillNumber, BedBillPrefix)
}

// GetTotalAmountMoney returns the stored bill total as Money
func (b *Bill) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(b.TotalAmount)
}
