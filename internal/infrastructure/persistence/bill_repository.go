package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/persistence/models"
)

// GormBillRepository implements BillRepository using GORM.
// Bills load with their items and payments; the aggregate is saved whole.
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill by its ID with items and payments
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBillNumber finds a bill by its unique bill number
func (r *GormBillRepository) FindByBillNumber(ctx context.Context, billNumber string) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("bill_number = ?", billNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAdmission finds all bills attached to an admission
func (r *GormBillRepository) FindByAdmission(ctx context.Context, admissionID uuid.UUID) ([]billing.Bill, error) {
	var billModels []models.BillModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("admission_id = ?", admissionID).
		Order("created_at ASC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	bills := make([]billing.Bill, len(billModels))
	for i, model := range billModels {
		bills[i] = *model.ToDomain()
	}
	return bills, nil
}

// FindAll finds bills with filtering
func (r *GormBillRepository) FindAll(ctx context.Context, filter billing.BillFilter) ([]billing.Bill, error) {
	var billModels []models.BillModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BillModel{}).
			Preload("Items").
			Preload("Payments"),
		filter,
	)

	if err := query.Find(&billModels).Error; err != nil {
		return nil, err
	}
	bills := make([]billing.Bill, len(billModels))
	for i, model := range billModels {
		bills[i] = *model.ToDomain()
	}
	return bills, nil
}

// Save creates or updates a bill with its items and payments.
// Items are replaced to match the aggregate; payments are append-only.
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Payments").Save(&model).Error; err != nil {
			return err
		}

		// Replace items not present in the aggregate (bed-bill regeneration)
		currentItemIDs := make([]uuid.UUID, len(model.Items))
		for i, item := range model.Items {
			currentItemIDs[i] = item.ID
		}
		if len(currentItemIDs) > 0 {
			if err := tx.Where("bill_id = ? AND id NOT IN ?", model.ID, currentItemIDs).
				Delete(&models.BillItemModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("bill_id = ?", model.ID).
				Delete(&models.BillItemModel{}).Error; err != nil {
				return err
			}
		}
		for i := range model.Items {
			model.Items[i].BillID = model.ID
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}

		for i := range model.Payments {
			model.Payments[i].BillID = model.ID
			if err := tx.Save(&model.Payments[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Count counts bills matching the filter
func (r *GormBillRepository) Count(ctx context.Context, filter billing.BillFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.BillModel{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormBillRepository) applyFilter(query *gorm.DB, filter billing.BillFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, BillSortFields, "created_at")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormBillRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.BillFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("bill_number ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.AdmissionID != nil {
		query = query.Where("admission_id = ?", *filter.AdmissionID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// Ensure GormBillRepository implements BillRepository
var _ billing.BillRepository = (*GormBillRepository)(nil)
