package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hms/backend/internal/domain/admission"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/persistence/models"
)

// GormAdmissionRepository implements AdmissionRepository using GORM
type GormAdmissionRepository struct {
	db *gorm.DB
}

// NewGormAdmissionRepository creates a new GormAdmissionRepository
func NewGormAdmissionRepository(db *gorm.DB) *GormAdmissionRepository {
	return &GormAdmissionRepository{db: db}
}

// FindByID finds an admission by its ID
func (r *GormAdmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*admission.Admission, error) {
	var model models.AdmissionModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds admissions with filtering
func (r *GormAdmissionRepository) FindAll(ctx context.Context, filter admission.AdmissionFilter) ([]admission.Admission, error) {
	var admissionModels []models.AdmissionModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AdmissionModel{}),
		filter,
	)

	if err := query.Find(&admissionModels).Error; err != nil {
		return nil, err
	}
	admissions := make([]admission.Admission, len(admissionModels))
	for i, model := range admissionModels {
		admissions[i] = *model.ToDomain()
	}
	return admissions, nil
}

// FindActiveByBed finds the active admission occupying a bed, if any
func (r *GormAdmissionRepository) FindActiveByBed(ctx context.Context, bedID uuid.UUID) (*admission.Admission, error) {
	var model models.AdmissionModel
	if err := r.db.WithContext(ctx).
		Where("bed_id = ? AND status = ?", bedID, admission.AdmissionStatusAdmitted).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an admission
func (r *GormAdmissionRepository) Save(ctx context.Context, a *admission.Admission) error {
	model := models.AdmissionModelFromDomain(a)
	return r.db.WithContext(ctx).Save(model).Error
}

// Count counts admissions matching the filter
func (r *GormAdmissionRepository) Count(ctx context.Context, filter admission.AdmissionFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.AdmissionModel{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormAdmissionRepository) applyFilter(query *gorm.DB, filter admission.AdmissionFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, AdmissionSortFields, "admission_date")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("admission_date DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAdmissionRepository) applyFilterWithoutPagination(query *gorm.DB, filter admission.AdmissionFilter) *gorm.DB {
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.BedID != nil {
		query = query.Where("bed_id = ?", *filter.BedID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// Ensure GormAdmissionRepository implements AdmissionRepository
var _ admission.AdmissionRepository = (*GormAdmissionRepository)(nil)
