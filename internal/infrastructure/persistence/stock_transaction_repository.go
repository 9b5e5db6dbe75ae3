package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/stock"
)

// GormStockTransactionRepository implements StockTransactionRepository using
// GORM. The ledger is append-only, so the repository exposes no update or
// delete operation.
type GormStockTransactionRepository struct {
	db *gorm.DB
}

// NewGormStockTransactionRepository creates a new GormStockTransactionRepository
func NewGormStockTransactionRepository(db *gorm.DB) *GormStockTransactionRepository {
	return &GormStockTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormStockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockTransaction, error) {
	var tx stock.StockTransaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByMaterial finds transactions for a material
func (r *GormStockTransactionRepository) FindByMaterial(ctx context.Context, materialID uuid.UUID, filter shared.Filter) ([]stock.StockTransaction, error) {
	var transactions []stock.StockTransaction
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.StockTransaction{}).
			Where("material_id = ?", materialID),
		filter,
	)

	if err := query.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// FindByBatchRef finds transactions recorded against a batch reference
func (r *GormStockTransactionRepository) FindByBatchRef(ctx context.Context, batchRef string) ([]stock.StockTransaction, error) {
	var transactions []stock.StockTransaction
	if err := r.db.WithContext(ctx).
		Where("batch_ref = ?", batchRef).
		Order("transaction_date ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// Create appends a new transaction record
func (r *GormStockTransactionRepository) Create(ctx context.Context, tx *stock.StockTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// CountByMaterial counts transactions for a material
func (r *GormStockTransactionRepository) CountByMaterial(ctx context.Context, materialID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.StockTransaction{}).
		Where("material_id = ?", materialID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormStockTransactionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "transaction_type":
			query = query.Where("transaction_type = ?", value)
		case "batch_ref":
			query = query.Where("batch_ref = ?", value)
		case "actor":
			query = query.Where("actor = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, StockTransactionSortFields, "transaction_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// Ensure GormStockTransactionRepository implements StockTransactionRepository
var _ stock.StockTransactionRepository = (*GormStockTransactionRepository)(nil)
