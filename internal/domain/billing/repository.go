package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/backend/internal/domain/shared"
)

// BillFilter defines filtering options for bill queries
type BillFilter struct {
	shared.Filter
	PatientID   *uuid.UUID
	AdmissionID *uuid.UUID
	Status      *BillStatus
}

// BillRepository defines the interface for bill persistence.
// Bills load with their items and payments; the aggregate is saved whole.
type BillRepository interface {
	// FindByID finds a bill by ID with items and payments
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)

	// FindByBillNumber finds a bill by its unique bill number
	FindByBillNumber(ctx context.Context, billNumber string) (*Bill, error)

	// FindByAdmission finds all bills attached to an admission
	FindByAdmission(ctx context.Context, admissionID uuid.UUID) ([]Bill, error)

	// FindAll finds bills with filtering
	FindAll(ctx context.Context, filter BillFilter) ([]Bill, error)

	// Save creates or updates a bill with its items and payments
	Save(ctx context.Context, bill *Bill) error

	// Count counts bills matching the filter
	Count(ctx context.Context, filter BillFilter) (int64, error)
}
