package admission

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
)

// AdmissionStatus represents the status of a hospital admission
type AdmissionStatus string

const (
	AdmissionStatusAdmitted    AdmissionStatus = "ADMITTED"    // Patient occupies a bed, charges accrue
	AdmissionStatusDischarged  AdmissionStatus = "DISCHARGED"  // Terminal, discharge date fixed
	AdmissionStatusTransferred AdmissionStatus = "TRANSFERRED" // Terminal, patient moved to another facility
)

// IsValid checks if the status is a valid AdmissionStatus
func (s AdmissionStatus) IsValid() bool {
	switch s {
	case AdmissionStatusAdmitted, AdmissionStatusDischarged, AdmissionStatusTransferred:
		return true
	}
	return false
}

// String returns the string representation of AdmissionStatus
func (s AdmissionStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the admission is in a terminal state
func (s AdmissionStatus) IsTerminal() bool {
	return s == AdmissionStatusDischarged || s == AdmissionStatusTransferred
}

// Admission represents a hospital admission aggregate root.
// It tracks the stay of a patient from intake until discharge or transfer.
type Admission struct {
	shared.BaseAggregateRoot
	PatientID     uuid.UUID       `json:"patient_id"`
	BedID         *uuid.UUID      `json:"bed_id"`
	AdmissionDate time.Time       `json:"admission_date"`
	DischargeDate *time.Time      `json:"discharge_date"`
	Reason        string          `json:"reason"`
	TotalAmount   decimal.Decimal `json:"total_amount"` // Flat base charge fixed at intake
	Status        AdmissionStatus `json:"status"`
}

// NewAdmission creates a new admission in ADMITTED status
func NewAdmission(
	patientID uuid.UUID,
	bedID *uuid.UUID,
	admissionDate time.Time,
	reason string,
	totalAmount valueobject.Money,
) (*Admission, error) {
	if patientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PATIENT", "Patient ID cannot be empty")
	}
	if admissionDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ADMISSION_DATE", "Admission date cannot be empty")
	}
	if totalAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Admission charge cannot be negative")
	}

	a := &Admission{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PatientID:         patientID,
		BedID:             bedID,
		AdmissionDate:     admissionDate,
		Reason:            reason,
		TotalAmount:       totalAmount.Amount(),
		Status:            AdmissionStatusAdmitted,
	}

	a.AddDomainEvent(NewAdmissionCreatedEvent(a))

	return a, nil
}

// IsActive returns true if the patient is still admitted
func (a *Admission) IsActive() bool {
	return a.Status == AdmissionStatusAdmitted
}

// Discharge moves the admission to DISCHARGED and fixes the discharge date,
// freezing bed-charge proration at that instant.
// Financial gating happens in the application layer before this is called.
func (a *Admission) Discharge(at time.Time) error {
	if a.Status != AdmissionStatusAdmitted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot discharge admission in %s status", a.Status))
	}
	if at.Before(a.AdmissionDate) {
		return shared.NewDomainError("INVALID_DISCHARGE_DATE", "Discharge date cannot precede admission date")
	}

	a.Status = AdmissionStatusDischarged
	a.DischargeDate = &at
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAdmissionDischargedEvent(a))

	return nil
}

// Transfer moves the admission to TRANSFERRED. The bed is released but no
// financial gating applies.
func (a *Admission) Transfer(at time.Time) error {
	if a.Status != AdmissionStatusAdmitted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot transfer admission in %s status", a.Status))
	}

	previousBedID := a.BedID
	a.Status = AdmissionStatusTransferred
	a.DischargeDate = &at
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAdmissionTransferredEvent(a, previousBedID))

	return nil
}

// GetTotalAmountMoney returns the flat admission charge as Money
func (a *Admission) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(a.TotalAmount)
}

// StayEnd returns the end instant used for bed-charge proration:
// the discharge date when fixed, otherwise the given reference instant.
func (a *Admission) StayEnd(now time.Time) time.Time {
	if a.DischargeDate != nil {
		return *a.DischargeDate
	}
	return now
}
