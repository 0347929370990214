package handler

import (
	"context"

	admissiondomain "github.com/hms/backend/internal/domain/admission"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAdmissionRepository implements admission.AdmissionRepository for testing
type MockAdmissionRepository struct {
	mock.Mock
}

func (m *MockAdmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*admissiondomain.Admission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admissiondomain.Admission), args.Error(1)
}

func (m *MockAdmissionRepository) FindAll(ctx context.Context, filter admissiondomain.AdmissionFilter) ([]admissiondomain.Admission, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]admissiondomain.Admission), args.Error(1)
}

func (m *MockAdmissionRepository) FindActiveByBed(ctx context.Context, bedID uuid.UUID) (*admissiondomain.Admission, error) {
	args := m.Called(ctx, bedID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admissiondomain.Admission), args.Error(1)
}

func (m *MockAdmissionRepository) Save(ctx context.Context, adm *admissiondomain.Admission) error {
	args := m.Called(ctx, adm)
	return args.Error(0)
}

func (m *MockAdmissionRepository) Count(ctx context.Context, filter admissiondomain.AdmissionFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockBedRepository implements admission.BedRepository for testing
type MockBedRepository struct {
	mock.Mock
}

func (m *MockBedRepository) FindByID(ctx context.Context, id uuid.UUID) (*admissiondomain.Bed, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admissiondomain.Bed), args.Error(1)
}

func (m *MockBedRepository) FindAll(ctx context.Context, filter admissiondomain.BedFilter) ([]admissiondomain.Bed, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]admissiondomain.Bed), args.Error(1)
}

func (m *MockBedRepository) Save(ctx context.Context, bed *admissiondomain.Bed) error {
	args := m.Called(ctx, bed)
	return args.Error(0)
}

func (m *MockBedRepository) Count(ctx context.Context, filter admissiondomain.BedFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockBillRepository implements billing.BillRepository for testing
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByBillNumber(ctx context.Context, billNumber string) (*billing.Bill, error) {
	args := m.Called(ctx, billNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByAdmission(ctx context.Context, admissionID uuid.UUID) ([]billing.Bill, error) {
	args := m.Called(ctx, admissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// A func return value is evaluated per call so tests can observe
	// mutations made through other repository methods.
	if fn, ok := args.Get(0).(func() []billing.Bill); ok {
		return fn(), args.Error(1)
	}
	return args.Get(0).([]billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindAll(ctx context.Context, filter billing.BillFilter) ([]billing.Bill, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Bill), args.Error(1)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) Count(ctx context.Context, filter billing.BillFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
