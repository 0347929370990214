package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/admission"
	"github.com/hms/backend/internal/domain/shared"
)

// AdmissionModel is the persistence model for the Admission aggregate root.
type AdmissionModel struct {
	AggregateModel
	PatientID     uuid.UUID                 `gorm:"type:uuid;not null;index"`
	BedID         *uuid.UUID                `gorm:"type:uuid;index"`
	AdmissionDate time.Time                 `gorm:"not null;index"`
	DischargeDate *time.Time                `gorm:"index"`
	Reason        string                    `gorm:"type:varchar(500)"`
	TotalAmount   decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	Status        admission.AdmissionStatus `gorm:"type:varchar(20);not null;default:'ADMITTED';index"`
}

// TableName returns the table name for GORM
func (AdmissionModel) TableName() string {
	return "admissions"
}

// ToDomain converts the persistence model to a domain Admission entity.
func (m *AdmissionModel) ToDomain() *admission.Admission {
	a := &admission.Admission{
		PatientID:     m.PatientID,
		BedID:         m.BedID,
		AdmissionDate: m.AdmissionDate,
		DischargeDate: m.DischargeDate,
		Reason:        m.Reason,
		TotalAmount:   m.TotalAmount,
		Status:        m.Status,
	}
	m.PopulateAggregateRoot(&a.BaseAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Admission entity.
func (m *AdmissionModel) FromDomain(a *admission.Admission) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.PatientID = a.PatientID
	m.BedID = a.BedID
	m.AdmissionDate = a.AdmissionDate
	m.DischargeDate = a.DischargeDate
	m.Reason = a.Reason
	m.TotalAmount = a.TotalAmount
	m.Status = a.Status
}

// AdmissionModelFromDomain creates a new persistence model from a domain Admission entity.
func AdmissionModelFromDomain(a *admission.Admission) *AdmissionModel {
	m := &AdmissionModel{}
	m.FromDomain(a)
	return m
}

// BedModel is the persistence model for the Bed entity.
type BedModel struct {
	BaseModel
	BedNumber   string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	Ward        string            `gorm:"type:varchar(100);not null;index"`
	BedType     admission.BedType `gorm:"type:varchar(20);not null;default:'GENERAL'"`
	PricePerDay decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	IsOccupied  bool              `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (BedModel) TableName() string {
	return "beds"
}

// ToDomain converts the persistence model to a domain Bed entity.
func (m *BedModel) ToDomain() *admission.Bed {
	return &admission.Bed{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		BedNumber:   m.BedNumber,
		Ward:        m.Ward,
		BedType:     m.BedType,
		PricePerDay: m.PricePerDay,
		IsOccupied:  m.IsOccupied,
	}
}

// FromDomain populates the persistence model from a domain Bed entity.
func (m *BedModel) FromDomain(b *admission.Bed) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.BedNumber = b.BedNumber
	m.Ward = b.Ward
	m.BedType = b.BedType
	m.PricePerDay = b.PricePerDay
	m.IsOccupied = b.IsOccupied
}

// BedModelFromDomain creates a new persistence model from a domain Bed entity.
func BedModelFromDomain(b *admission.Bed) *BedModel {
	m := &BedModel{}
	m.FromDomain(b)
	return m
}
