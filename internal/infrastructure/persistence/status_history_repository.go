package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrp/backend/internal/domain/production"
)

// GormStatusHistoryRepository implements StatusHistoryRepository using GORM.
// Entries are written through the batch aggregate; this repository only reads.
type GormStatusHistoryRepository struct {
	db *gorm.DB
}

// NewGormStatusHistoryRepository creates a new GormStatusHistoryRepository
func NewGormStatusHistoryRepository(db *gorm.DB) *GormStatusHistoryRepository {
	return &GormStatusHistoryRepository{db: db}
}

// FindByBatch returns the transition log for a batch, oldest first
func (r *GormStatusHistoryRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]production.StatusHistoryEntry, error) {
	var entries []production.StatusHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Ensure GormStatusHistoryRepository implements StatusHistoryRepository
var _ production.StatusHistoryRepository = (*GormStatusHistoryRepository)(nil)
