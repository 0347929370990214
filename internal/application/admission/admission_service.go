package admission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	admissiondomain "github.com/hms/backend/internal/domain/admission"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/hms/backend/internal/infrastructure/telemetry"
)

// DefaultHospitalCharge is the flat charge billed automatically at intake
var DefaultHospitalCharge = decimal.NewFromInt(50)

// AdmissionService handles patient intake and transfer
type AdmissionService struct {
	admissionRepo admissiondomain.AdmissionRepository
	bedRepo       admissiondomain.BedRepository
	billRepo      billing.BillRepository
	metrics       *telemetry.BusinessMetrics
}

// NewAdmissionService creates a new AdmissionService
func NewAdmissionService(
	admissionRepo admissiondomain.AdmissionRepository,
	bedRepo admissiondomain.BedRepository,
	billRepo billing.BillRepository,
	metrics *telemetry.BusinessMetrics,
) *AdmissionService {
	return &AdmissionService{
		admissionRepo: admissionRepo,
		bedRepo:       bedRepo,
		billRepo:      billRepo,
		metrics:       metrics,
	}
}

// AdmitRequest represents a patient intake request
type AdmitRequest struct {
	PatientID      uuid.UUID
	BedID          *uuid.UUID
	AdmissionDate  time.Time
	Reason         string
	TotalAmount    decimal.Decimal // Flat base charge for the stay
	HospitalCharge decimal.Decimal // Defaults to DefaultHospitalCharge when zero
}

// AdmitResult carries the created admission and its automatic hospital bill
type AdmitResult struct {
	Admission    *admissiondomain.Admission `json:"admission"`
	HospitalBill *billing.Bill              `json:"hospital_bill"`
}

// Admit creates an admission, occupies the requested bed and opens the
// automatic flat hospital-charge bill.
func (s *AdmissionService) Admit(ctx context.Context, req AdmitRequest) (*AdmitResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "admission", "admit")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPatientID, req.PatientID.String())

	if req.AdmissionDate.IsZero() {
		req.AdmissionDate = time.Now()
	}

	var bed *admissiondomain.Bed
	if req.BedID != nil {
		var err error
		bed, err = s.bedRepo.FindByID(ctx, *req.BedID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := bed.Occupy(); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	adm, err := admissiondomain.NewAdmission(
		req.PatientID, req.BedID, req.AdmissionDate, req.Reason,
		valueobject.NewMoneyINR(req.TotalAmount),
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if bed != nil {
		if err := s.bedRepo.Save(ctx, bed); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to save bed: %w", err)
		}
	}
	if err := s.admissionRepo.Save(ctx, adm); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save admission: %w", err)
	}

	hospitalBill, err := s.createHospitalBill(ctx, adm, req.HospitalCharge)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordAdmissionCreated(ctx)
	telemetry.SetAttributes(span, telemetry.SpanAttrAdmissionID, adm.ID.String())
	telemetry.SetOK(span)

	return &AdmitResult{Admission: adm, HospitalBill: hospitalBill}, nil
}

// createHospitalBill opens the flat hospital-charge bill attached to a new
// admission, numbered HOSP-<admission prefix>-<random suffix>.
func (s *AdmissionService) createHospitalBill(ctx context.Context, adm *admissiondomain.Admission, charge decimal.Decimal) (*billing.Bill, error) {
	if !charge.IsPositive() {
		charge = DefaultHospitalCharge
	}

	item, err := billing.NewBillItem("Hospital Charge", 1, valueobject.NewMoneyINR(charge))
	if err != nil {
		return nil, err
	}

	admissionID := adm.ID
	billNumber := fmt.Sprintf("HOSP-%s-%s", shortID(adm.ID), randomSuffix(4))
	bill, err := billing.NewBill(billNumber, adm.PatientID, &admissionID, []billing.BillItem{*item}, nil)
	if err != nil {
		return nil, err
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save hospital bill: %w", err)
	}
	return bill, nil
}

// Transfer moves an admission to TRANSFERRED and releases the bed.
// No financial gating applies to transfers.
func (s *AdmissionService) Transfer(ctx context.Context, admissionID uuid.UUID, at *time.Time) (*admissiondomain.Admission, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "admission", "transfer")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrAdmissionID, admissionID.String())

	adm, err := s.admissionRepo.FindByID(ctx, admissionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	when := time.Now()
	if at != nil {
		when = *at
	}
	if err := adm.Transfer(when); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.releaseBed(ctx, adm); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.admissionRepo.Save(ctx, adm); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save admission: %w", err)
	}

	telemetry.SetOK(span)
	return adm, nil
}

// GetAdmission returns one admission by ID
func (s *AdmissionService) GetAdmission(ctx context.Context, id uuid.UUID) (*admissiondomain.Admission, error) {
	return s.admissionRepo.FindByID(ctx, id)
}

// CreateBed adds a bed to the roster
func (s *AdmissionService) CreateBed(ctx context.Context, bedNumber, ward string, bedType admissiondomain.BedType, pricePerDay decimal.Decimal) (*admissiondomain.Bed, error) {
	bed, err := admissiondomain.NewBed(bedNumber, ward, bedType, valueobject.NewMoneyINR(pricePerDay))
	if err != nil {
		return nil, err
	}
	if err := s.bedRepo.Save(ctx, bed); err != nil {
		return nil, fmt.Errorf("failed to save bed: %w", err)
	}
	return bed, nil
}

// GetBed returns one bed by ID
func (s *AdmissionService) GetBed(ctx context.Context, id uuid.UUID) (*admissiondomain.Bed, error) {
	return s.bedRepo.FindByID(ctx, id)
}

// ListBeds returns beds matching the filter
func (s *AdmissionService) ListBeds(ctx context.Context, filter admissiondomain.BedFilter) ([]admissiondomain.Bed, int64, error) {
	beds, err := s.bedRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.bedRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return beds, total, nil
}

// releaseBed frees the admission's bed if it holds one. A missing bed is
// tolerated so a stale reference cannot block the transition.
func (s *AdmissionService) releaseBed(ctx context.Context, adm *admissiondomain.Admission) error {
	if adm.BedID == nil {
		return nil
	}
	bed, err := s.bedRepo.FindByID(ctx, *adm.BedID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	bed.Release()
	return s.bedRepo.Save(ctx, bed)
}

// shortID returns the first eight hex characters of a UUID
func shortID(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}

// randomSuffix returns n random hex characters
func randomSuffix(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
