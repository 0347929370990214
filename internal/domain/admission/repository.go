package admission

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/backend/internal/domain/shared"
)

// AdmissionFilter defines filtering options for admission queries
type AdmissionFilter struct {
	shared.Filter
	PatientID *uuid.UUID
	BedID     *uuid.UUID
	Status    *AdmissionStatus
}

// AdmissionRepository defines the interface for admission persistence
type AdmissionRepository interface {
	// FindByID finds an admission by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Admission, error)

	// FindAll finds admissions with filtering
	FindAll(ctx context.Context, filter AdmissionFilter) ([]Admission, error)

	// FindActiveByBed finds the active admission occupying a bed, if any
	FindActiveByBed(ctx context.Context, bedID uuid.UUID) (*Admission, error)

	// Save creates or updates an admission
	Save(ctx context.Context, admission *Admission) error

	// Count counts admissions matching the filter
	Count(ctx context.Context, filter AdmissionFilter) (int64, error)
}

// BedFilter defines filtering options for bed queries
type BedFilter struct {
	shared.Filter
	Ward          *string
	BedType       *BedType
	AvailableOnly bool
}

// BedRepository defines the interface for bed persistence
type BedRepository interface {
	// FindByID finds a bed by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Bed, error)

	// FindAll finds beds with filtering
	FindAll(ctx context.Context, filter BedFilter) ([]Bed, error)

	// Save creates or updates a bed
	Save(ctx context.Context, bed *Bed) error

	// Count counts beds matching the filter
	Count(ctx context.Context, filter BedFilter) (int64, error)
}
