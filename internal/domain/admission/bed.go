package admission

import (
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
)

// BedType represents the category of a bed
type BedType string

const (
	BedTypeGeneral BedType = "GENERAL"
	BedTypePrivate BedType = "PRIVATE"
	BedTypeICU     BedType = "ICU"
)

// IsValid checks if the bed type is valid
func (t BedType) IsValid() bool {
	switch t {
	case BedTypeGeneral, BedTypePrivate, BedTypeICU:
		return true
	}
	return false
}

// Bed represents a hospital bed with a daily rate
type Bed struct {
	shared.BaseEntity
	BedNumber   string          `json:"bed_number"`
	Ward        string          `json:"ward"`
	BedType     BedType         `json:"bed_type"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	IsOccupied  bool            `json:"is_occupied"`
}

// NewBed creates a new unoccupied bed
func NewBed(bedNumber, ward string, bedType BedType, pricePerDay valueobject.Money) (*Bed, error) {
	if bedNumber == "" {
		return nil, shared.NewDomainError("INVALID_BED_NUMBER", "Bed number cannot be empty")
	}
	if !bedType.IsValid() {
		return nil, shared.NewDomainError("INVALID_BED_TYPE", "Bed type is not valid")
	}
	if pricePerDay.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Price per day cannot be negative")
	}

	return &Bed{
		BaseEntity:  shared.NewBaseEntity(),
		BedNumber:   bedNumber,
		Ward:        ward,
		BedType:     bedType,
		PricePerDay: pricePerDay.Amount(),
		IsOccupied:  false,
	}, nil
}

// Occupy marks the bed as occupied.
// Returns ErrBedOccupied if a patient already holds it.
func (b *Bed) Occupy() error {
	if b.IsOccupied {
		return shared.ErrBedOccupied
	}
	b.IsOccupied = true
	return nil
}

// Release marks the bed as free. Releasing a free bed is a no-op.
func (b *Bed) Release() {
	b.IsOccupied = false
}

// GetPricePerDayMoney returns the daily rate as Money
func (b *Bed) GetPricePerDayMoney() valueobject.Money {
	return valueobject.NewMoneyINR(b.PricePerDay)
}
