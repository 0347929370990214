package admission

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/shared"
)

// AdmissionCreatedEvent is raised when a patient is admitted
type AdmissionCreatedEvent struct {
	shared.BaseDomainEvent
	AdmissionID   uuid.UUID       `json:"admission_id"`
	PatientID     uuid.UUID       `json:"patient_id"`
	BedID         *uuid.UUID      `json:"bed_id,omitempty"`
	AdmissionDate time.Time       `json:"admission_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *AdmissionCreatedEvent) EventType() string {
	return "AdmissionCreated"
}

// NewAdmissionCreatedEvent creates a new AdmissionCreatedEvent
func NewAdmissionCreatedEvent(a *Admission) *AdmissionCreatedEvent {
	return &AdmissionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AdmissionCreated", "Admission", a.ID),
		AdmissionID:     a.ID,
		PatientID:       a.PatientID,
		BedID:           a.BedID,
		AdmissionDate:   a.AdmissionDate,
		TotalAmount:     a.TotalAmount,
	}
}

// AdmissionDischargedEvent is raised when a patient is discharged
type AdmissionDischargedEvent struct {
	shared.BaseDomainEvent
	AdmissionID   uuid.UUID  `json:"admission_id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	BedID         *uuid.UUID `json:"bed_id,omitempty"`
	DischargeDate time.Time  `json:"discharge_date"`
}

// EventType returns the event type name
func (e *AdmissionDischargedEvent) EventType() string {
	return "AdmissionDischarged"
}

// NewAdmissionDischargedEvent creates a new AdmissionDischargedEvent
func NewAdmissionDischargedEvent(a *Admission) *AdmissionDischargedEvent {
	dischargedAt := time.Now()
	if a.DischargeDate != nil {
		dischargedAt = *a.DischargeDate
	}
	return &AdmissionDischargedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AdmissionDischarged", "Admission", a.ID),
		AdmissionID:     a.ID,
		PatientID:       a.PatientID,
		BedID:           a.BedID,
		DischargeDate:   dischargedAt,
	}
}

// AdmissionTransferredEvent is raised when a patient is transferred out
type AdmissionTransferredEvent struct {
	shared.BaseDomainEvent
	AdmissionID uuid.UUID  `json:"admission_id"`
	PatientID   uuid.UUID  `json:"patient_id"`
	BedID       *uuid.UUID `json:"bed_id,omitempty"`
}

// EventType returns the event type name
func (e *AdmissionTransferredEvent) EventType() string {
	return "AdmissionTransferred"
}

// NewAdmissionTransferredEvent creates a new AdmissionTransferredEvent
func NewAdmissionTransferredEvent(a *Admission, bedID *uuid.UUID) *AdmissionTransferredEvent {
	return &AdmissionTransferredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AdmissionTransferred", "Admission", a.ID),
		AdmissionID:     a.ID,
		PatientID:       a.PatientID,
		BedID:           bedID,
	}
}
