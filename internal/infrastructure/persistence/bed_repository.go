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

// GormBedRepository implements BedRepository using GORM
type GormBedRepository struct {
	db *gorm.DB
}

// NewGormBedRepository creates a new GormBedRepository
func NewGormBedRepository(db *gorm.DB) *GormBedRepository {
	return &GormBedRepository{db: db}
}

// FindByID finds a bed by its ID
func (r *GormBedRepository) FindByID(ctx context.Context, id uuid.UUID) (*admission.Bed, error) {
	var model models.BedModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds beds with filtering
func (r *GormBedRepository) FindAll(ctx context.Context, filter admission.BedFilter) ([]admission.Bed, error) {
	var bedModels []models.BedModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BedModel{}),
		filter,
	)

	if err := query.Find(&bedModels).Error; err != nil {
		return nil, err
	}
	beds := make([]admission.Bed, len(bedModels))
	for i, model := range bedModels {
		beds[i] = *model.ToDomain()
	}
	return beds, nil
}

// Save creates or updates a bed
func (r *GormBedRepository) Save(ctx context.Context, b *admission.Bed) error {
	model := models.BedModelFromDomain(b)
	return r.db.WithContext(ctx).Save(model).Error
}

// Count counts beds matching the filter
func (r *GormBedRepository) Count(ctx context.Context, filter admission.BedFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.BedModel{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormBedRepository) applyFilter(query *gorm.DB, filter admission.BedFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, BedSortFields, "bed_number")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("bed_number ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormBedRepository) applyFilterWithoutPagination(query *gorm.DB, filter admission.BedFilter) *gorm.DB {
	if filter.Ward != nil {
		query = query.Where("ward = ?", *filter.Ward)
	}
	if filter.BedType != nil {
		query = query.Where("bed_type = ?", *filter.BedType)
	}
	if filter.AvailableOnly {
		query = query.Where("is_occupied = ?", false)
	}
	return query
}

// Ensure GormBedRepository implements BedRepository
var _ admission.BedRepository = (*GormBedRepository)(nil)
