package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerops/backend/internal/domain/orders"
	"github.com/sellerops/backend/internal/domain/shared"
	"github.com/sellerops/backend/internal/infrastructure/persistence/models"
)

// GormImportHistoryRepository implements ImportHistoryRepository using GORM
type GormImportHistoryRepository struct {
	db *gorm.DB
}

// NewGormImportHistoryRepository creates a new GormImportHistoryRepository
func NewGormImportHistoryRepository(db *gorm.DB) *GormImportHistoryRepository {
	return &GormImportHistoryRepository{db: db}
}

// FindByID finds an import history by ID
func (r *GormImportHistoryRepository) FindByID(ctx context.Context, sellerID, id uuid.UUID) (*orders.ImportHistory, error) {
	var model models.ImportHistoryModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ? AND id = ?", sellerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all import histories for a seller with pagination and filtering
func (r *GormImportHistoryRepository) FindAll(
	ctx context.Context,
	sellerID uuid.UUID,
	filter orders.ImportHistoryFilter,
	page, pageSize int,
) (*orders.ImportHistoryListResult, error) {
	query := r.db.WithContext(ctx).Model(&models.ImportHistoryModel{}).
		Where("seller_id = ?", sellerID)

	query = r.applyFilters(query, filter)

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, err
	}

	if page > 0 && pageSize > 0 {
		offset := (page - 1) * pageSize
		query = query.Offset(offset).Limit(pageSize)
	}

	// Most recent first
	query = query.Order("started_at DESC NULLS LAST, created_at DESC")

	var historyModels []models.ImportHistoryModel
	if err := query.Find(&historyModels).Error; err != nil {
		return nil, err
	}

	histories := make([]*orders.ImportHistory, len(historyModels))
	for i, model := range historyModels {
		histories[i] = model.ToDomain()
	}

	return &orders.ImportHistoryListResult{
		Items:      histories,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// FindStaleProcessing returns processing records started before the cutoff,
// oldest first, across all sellers
func (r *GormImportHistoryRepository) FindStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]*orders.ImportHistory, error) {
	query := r.db.WithContext(ctx).Model(&models.ImportHistoryModel{}).
		Where("status = ? AND started_at < ?", orders.ImportStatusProcessing, olderThan).
		Order("started_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var historyModels []models.ImportHistoryModel
	if err := query.Find(&historyModels).Error; err != nil {
		return nil, err
	}

	histories := make([]*orders.ImportHistory, len(historyModels))
	for i, model := range historyModels {
		histories[i] = model.ToDomain()
	}
	return histories, nil
}

// Save saves an import history (create or update)
func (r *GormImportHistoryRepository) Save(ctx context.Context, history *orders.ImportHistory) error {
	model := models.ImportHistoryModelFromDomain(history)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes an import history by ID
func (r *GormImportHistoryRepository) Delete(ctx context.Context, sellerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.ImportHistoryModel{}, "seller_id = ? AND id = ?", sellerID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilters applies filter options to the query
func (r *GormImportHistoryRepository) applyFilters(query *gorm.DB, filter orders.ImportHistoryFilter) *gorm.DB {
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StartedFrom != nil {
		query = query.Where("started_at >= ?", *filter.StartedFrom)
	}
	if filter.StartedTo != nil {
		query = query.Where("started_at <= ?", *filter.StartedTo)
	}
	return query
}

// Compile-time interface compliance check
var _ orders.ImportHistoryRepository = (*GormImportHistoryRepository)(nil)
