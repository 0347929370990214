package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/shared"
)

// BillCreatedEvent is raised when a new bill is created
type BillCreatedEvent struct {
	shared.BaseDomainEvent
	BillID      uuid.UUID       `json:"bill_id"`
	BillNumber  string          `json:"bill_number"`
	PatientID   uuid.UUID       `json:"patient_id"`
	AdmissionID *uuid.UUID      `json:"admission_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *BillCreatedEvent) EventType() string {
	return "BillCreated"
}

// NewBillCreatedEvent creates a new BillCreatedEvent
func NewBillCreatedEvent(b *Bill) *BillCreatedEvent {
	return &BillCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillCreated", "Bill", b.ID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		PatientID:       b.PatientID,
		AdmissionID:     b.AdmissionID,
		TotalAmount:     b.TotalAmount,
	}
}

// PaymentRecordedEvent is raised when a payment is recorded against a bill
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	BillID        uuid.UUID       `json:"bill_id"`
	BillNumber    string          `json:"bill_number"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return "PaymentRecorded"
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(b *Bill, p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRecorded", "Bill", b.ID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		PaymentID:       p.ID,
		Amount:          p.Amount,
		PaymentMethod:   p.PaymentMethod,
	}
}
