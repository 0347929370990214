package admission

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	admissiondomain "github.com/hms/backend/internal/domain/admission"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
)

func newAdmissionTestService(t *testing.T) (*AdmissionService, *MockAdmissionRepository, *MockBedRepository, *MockBillRepository) {
	t.Helper()
	admissionRepo := new(MockAdmissionRepository)
	bedRepo := new(MockBedRepository)
	billRepo := new(MockBillRepository)
	svc := NewAdmissionService(admissionRepo, bedRepo, billRepo, nil)
	return svc, admissionRepo, bedRepo, billRepo
}

func newTestBed(t *testing.T, pricePerDay int64) *admissiondomain.Bed {
	t.Helper()
	bed, err := admissiondomain.NewBed("B-101", "General", admissiondomain.BedTypeGeneral,
		valueobject.NewMoneyINR(decimal.NewFromInt(pricePerDay)))
	require.NoError(t, err)
	return bed
}

func TestAdmissionServiceAdmit(t *testing.T) {
	ctx := context.Background()

	t.Run("admits patient and opens hospital bill with default charge", func(t *testing.T) {
		svc, admissionRepo, bedRepo, billRepo := newAdmissionTestService(t)

		bed := newTestBed(t, 100)
		bedRepo.On("FindByID", mock.Anything, bed.ID).Return(bed, nil)
		bedRepo.On("Save", mock.Anything, bed).Return(nil)
		admissionRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		billRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		result, err := svc.Admit(ctx, AdmitRequest{
			PatientID:     uuid.New(),
			BedID:         &bed.ID,
			AdmissionDate: time.Now(),
			Reason:        "Observation",
			TotalAmount:   decimal.NewFromInt(400),
		})

		require.NoError(t, err)
		assert.Equal(t, admissiondomain.AdmissionStatusAdmitted, result.Admission.Status)
		assert.True(t, bed.IsOccupied)

		bill := result.HospitalBill
		require.NotNil(t, bill)
		assert.True(t, strings.HasPrefix(bill.BillNumber, "HOSP-"))
		require.Len(t, bill.Items, 1)
		assert.Equal(t, "Hospital Charge", bill.Items[0].Description)
		assert.True(t, bill.TotalAmount.Equal(DefaultHospitalCharge),
			"expected default charge, got %s", bill.TotalAmount)
		require.NotNil(t, bill.AdmissionID)
		assert.Equal(t, result.Admission.ID, *bill.AdmissionID)

		bedRepo.AssertExpectations(t)
		admissionRepo.AssertExpectations(t)
		billRepo.AssertExpectations(t)
	})

	t.Run("uses the explicit hospital charge when given", func(t *testing.T) {
		svc, admissionRepo, _, billRepo := newAdmissionTestService(t)

		admissionRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		billRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		result, err := svc.Admit(ctx, AdmitRequest{
			PatientID:      uuid.New(),
			AdmissionDate:  time.Now(),
			TotalAmount:    decimal.NewFromInt(400),
			HospitalCharge: decimal.NewFromInt(75),
		})

		require.NoError(t, err)
		assert.True(t, result.HospitalBill.TotalAmount.Equal(decimal.NewFromInt(75)))
	})

	t.Run("rejects an occupied bed without side effects", func(t *testing.T) {
		svc, admissionRepo, bedRepo, billRepo := newAdmissionTestService(t)

		bed := newTestBed(t, 100)
		require.NoError(t, bed.Occupy())
		bedRepo.On("FindByID", mock.Anything, bed.ID).Return(bed, nil)

		_, err := svc.Admit(ctx, AdmitRequest{
			PatientID:     uuid.New(),
			BedID:         &bed.ID,
			AdmissionDate: time.Now(),
			TotalAmount:   decimal.NewFromInt(400),
		})

		require.ErrorIs(t, err, shared.ErrBedOccupied)
		admissionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		billRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("admits without a bed", func(t *testing.T) {
		svc, admissionRepo, bedRepo, billRepo := newAdmissionTestService(t)

		admissionRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		billRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		result, err := svc.Admit(ctx, AdmitRequest{
			PatientID:     uuid.New(),
			AdmissionDate: time.Now(),
			TotalAmount:   decimal.NewFromInt(400),
		})

		require.NoError(t, err)
		assert.Nil(t, result.Admission.BedID)
		bedRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestAdmissionServiceTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("transfers and releases the bed", func(t *testing.T) {
		svc, admissionRepo, bedRepo, _ := newAdmissionTestService(t)

		bed := newTestBed(t, 100)
		require.NoError(t, bed.Occupy())
		adm, err := admissiondomain.NewAdmission(uuid.New(), &bed.ID, time.Now().Add(-24*time.Hour),
			"Observation", valueobject.NewMoneyINR(decimal.NewFromInt(400)))
		require.NoError(t, err)

		admissionRepo.On("FindByID", mock.Anything, adm.ID).Return(adm, nil)
		bedRepo.On("FindByID", mock.Anything, bed.ID).Return(bed, nil)
		bedRepo.On("Save", mock.Anything, bed).Return(nil)
		admissionRepo.On("Save", mock.Anything, adm).Return(nil)

		when := time.Now()
		transferred, err := svc.Transfer(ctx, adm.ID, &when)

		require.NoError(t, err)
		assert.Equal(t, admissiondomain.AdmissionStatusTransferred, transferred.Status)
		require.NotNil(t, transferred.DischargeDate)
		assert.True(t, transferred.DischargeDate.Equal(when))
		assert.False(t, bed.IsOccupied)

		bedRepo.AssertExpectations(t)
		admissionRepo.AssertExpectations(t)
	})

	t.Run("tolerates a dangling bed reference", func(t *testing.T) {
		svc, admissionRepo, bedRepo, _ := newAdmissionTestService(t)

		missingBedID := uuid.New()
		adm, err := admissiondomain.NewAdmission(uuid.New(), &missingBedID, time.Now().Add(-24*time.Hour),
			"Observation", valueobject.NewMoneyINR(decimal.NewFromInt(400)))
		require.NoError(t, err)

		admissionRepo.On("FindByID", mock.Anything, adm.ID).Return(adm, nil)
		bedRepo.On("FindByID", mock.Anything, missingBedID).Return(nil, shared.ErrNotFound)
		admissionRepo.On("Save", mock.Anything, adm).Return(nil)

		transferred, err := svc.Transfer(ctx, adm.ID, nil)

		require.NoError(t, err)
		assert.Equal(t, admissiondomain.AdmissionStatusTransferred, transferred.Status)
		bedRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects transfer of a discharged admission", func(t *testing.T) {
		svc, admissionRepo, _, _ := newAdmissionTestService(t)

		adm, err := admissiondomain.NewAdmission(uuid.New(), nil, time.Now().Add(-24*time.Hour),
			"Observation", valueobject.NewMoneyINR(decimal.NewFromInt(400)))
		require.NoError(t, err)
		require.NoError(t, adm.Discharge(time.Now()))

		admissionRepo.On("FindByID", mock.Anything, adm.ID).Return(adm, nil)

		_, err = svc.Transfer(ctx, adm.ID, nil)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		admissionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestAdmissionServiceBeds(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a free bed", func(t *testing.T) {
		svc, _, bedRepo, _ := newAdmissionTestService(t)

		bedRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		bed, err := svc.CreateBed(ctx, "B-201", "ICU", admissiondomain.BedTypeICU, decimal.NewFromInt(250))

		require.NoError(t, err)
		assert.Equal(t, "B-201", bed.BedNumber)
		assert.Equal(t, "ICU", bed.Ward)
		assert.False(t, bed.IsOccupied)
		assert.True(t, bed.PricePerDay.Equal(decimal.NewFromInt(250)))
		bedRepo.AssertExpectations(t)
	})

	t.Run("lists beds with total count", func(t *testing.T) {
		svc, _, bedRepo, _ := newAdmissionTestService(t)

		beds := []admissiondomain.Bed{*newTestBed(t, 100), *newTestBed(t, 250)}
		bedRepo.On("FindAll", mock.Anything, mock.Anything).Return(beds, nil)
		bedRepo.On("Count", mock.Anything, mock.Anything).Return(int64(2), nil)

		result, total, err := svc.ListBeds(ctx, admissiondomain.BedFilter{})

		require.NoError(t, err)
		assert.Len(t, result, 2)
		assert.Equal(t, int64(2), total)
	})
}
