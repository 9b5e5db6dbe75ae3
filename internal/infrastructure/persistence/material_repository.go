package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/stock"
)

// GormMaterialRepository implements MaterialRepository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByID finds a material by its ID
func (r *GormMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Material, error) {
	var material stock.Material
	if err := r.db.WithContext(ctx).First(&material, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// FindByCode finds a material by its unique code
func (r *GormMaterialRepository) FindByCode(ctx context.Context, code string) (*stock.Material, error) {
	var material stock.Material
	if err := r.db.WithContext(ctx).First(&material, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// FindByIDs finds multiple materials by their IDs
func (r *GormMaterialRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]stock.Material, error) {
	if len(ids) == 0 {
		return []stock.Material{}, nil
	}

	var materials []stock.Material
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

// FindAll finds all materials matching the filter
func (r *GormMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.Material, error) {
	var materials []stock.Material
	query := r.applyFilter(r.db.WithContext(ctx).Model(&stock.Material{}), filter)

	if err := query.Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

// FindBelowMinimum finds materials whose balance has fallen below their threshold
func (r *GormMaterialRepository) FindBelowMinimum(ctx context.Context, filter shared.Filter) ([]stock.Material, error) {
	var materials []stock.Material
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.Material{}).
			Where("min_quantity > 0 AND available_quantity < min_quantity"),
		filter,
	)

	if err := query.Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

// Save creates or updates a material
func (r *GormMaterialRepository) Save(ctx context.Context, material *stock.Material) error {
	return r.db.WithContext(ctx).Save(material).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormMaterialRepository) SaveWithLock(ctx context.Context, material *stock.Material) error {
	result := r.db.WithContext(ctx).
		Model(material).
		Where("id = ? AND version = ?", material.ID, material.Version-1).
		Updates(map[string]interface{}{
			"available_quantity": material.AvailableQuantity,
			"unit_cost":          material.UnitCost,
			"min_quantity":       material.MinQuantity,
			"max_quantity":       material.MaxQuantity,
			"halted":             material.Halted,
			"halt_reason":        material.HaltReason,
			"version":            material.Version,
			"updated_at":         material.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts materials matching the filter
func (r *GormMaterialRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&stock.Material{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormMaterialRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, MaterialSortFields, "code")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormMaterialRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "unit":
			query = query.Where("unit = ?", value)
		case "color":
			query = query.Where("color = ?", value)
		case "halted":
			query = query.Where("halted = ?", value)
		case "below_minimum":
			if value == true {
				query = query.Where("min_quantity > 0 AND available_quantity < min_quantity")
			}
		case "has_stock":
			if value == true {
				query = query.Where("available_quantity > 0")
			}
		}
	}

	return query
}

// Ensure GormMaterialRepository implements MaterialRepository
var _ stock.MaterialRepository = (*GormMaterialRepository)(nil)
