package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrp/backend/internal/domain/production"
	"github.com/mrp/backend/internal/domain/shared"
)

// GormProductionBatchRepository implements ProductionBatchRepository using GORM
type GormProductionBatchRepository struct {
	db *gorm.DB
}

// NewGormProductionBatchRepository creates a new GormProductionBatchRepository
func NewGormProductionBatchRepository(db *gorm.DB) *GormProductionBatchRepository {
	return &GormProductionBatchRepository{db: db}
}

// FindByID loads a batch aggregate with its lines, leftovers and history
func (r *GormProductionBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.ProductionBatch, error) {
	var batch production.ProductionBatch
	if err := r.withAssociations(r.db.WithContext(ctx)).
		First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByReference loads a batch aggregate by its human-readable reference
func (r *GormProductionBatchRepository) FindByReference(ctx context.Context, reference string) (*production.ProductionBatch, error) {
	var batch production.ProductionBatch
	if err := r.withAssociations(r.db.WithContext(ctx)).
		First(&batch, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindAll finds batches matching the filter, paginated
func (r *GormProductionBatchRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[production.ProductionBatch], error) {
	return r.findPaginated(ctx, r.db.WithContext(ctx).Model(&production.ProductionBatch{}), filter)
}

// FindByStatus finds batches in a given status, paginated
func (r *GormProductionBatchRepository) FindByStatus(ctx context.Context, status production.BatchStatus, filter shared.Filter) (*shared.Paginated[production.ProductionBatch], error) {
	query := r.db.WithContext(ctx).Model(&production.ProductionBatch{}).
		Where("status = ?", status)
	return r.findPaginated(ctx, query, filter)
}

// Save creates or updates a batch aggregate including its associations.
// A unique-index violation on the reference surfaces as ErrAlreadyExists so
// the caller can re-allocate and retry.
func (r *GormProductionBatchRepository) Save(ctx context.Context, batch *production.ProductionBatch) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(batch).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// SaveWithLock persists the aggregate guarded by its version column.
// The batch row and its child rows commit in one database transaction so a
// losing writer leaves nothing behind.
func (r *GormProductionBatchRepository) SaveWithLock(ctx context.Context, batch *production.ProductionBatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&production.ProductionBatch{}).
			Where("id = ? AND version = ?", batch.ID, batch.Version-1).
			Updates(map[string]interface{}{
				"status":               batch.Status,
				"cancellation_reason":  batch.CancellationReason,
				"commit_invoked":       batch.CommitInvoked,
				"deduction_incomplete": batch.DeductionIncomplete,
				"started_at":           batch.StartedAt,
				"completed_at":         batch.CompletedAt,
				"cancelled_at":         batch.CancelledAt,
				"version":              batch.Version,
				"updated_at":           batch.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.saveChildren(tx, batch)
	})
}

// SaveLine persists a single material line without touching the rest of the
// aggregate. The update is guarded on the stored deducted flag: once a line's
// deduction has committed, no later SaveLine can touch it, so the flag check
// and the deduction share one atomic step. A zero-row update means another
// writer deducted the line first.
func (r *GormProductionBatchRepository) SaveLine(ctx context.Context, line *production.BatchMaterialLine) error {
	result := r.db.WithContext(ctx).
		Model(&production.BatchMaterialLine{}).
		Where("id = ? AND deducted = ?", line.ID, false).
		Updates(map[string]interface{}{
			"actual_per_unit": line.ActualPerUnit,
			"actual_recorded": line.ActualRecorded,
			"comment":         line.Comment,
			"deducted":        line.Deducted,
			"deducted_at":     line.DeductedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// NextReference allocates the next batch reference for the given day.
// References are PB-YYYYMMDD-NNN; the sequence continues from the highest
// reference stored for that day. Two concurrent creates can still allocate
// the same value; the reference's unique index catches the loser and
// BatchService.Create re-allocates.
func (r *GormProductionBatchRepository) NextReference(ctx context.Context, day time.Time) (string, error) {
	prefix := "PB-" + day.Format("20060102")

	var last sql.NullString
	if err := r.db.WithContext(ctx).
		Model(&production.ProductionBatch{}).
		Where("reference LIKE ?", prefix+"-%").
		Select("MAX(reference)").
		Scan(&last).Error; err != nil {
		return "", err
	}

	seq := 0
	if last.Valid {
		parsed, err := strconv.Atoi(strings.TrimPrefix(last.String, prefix+"-"))
		if err != nil {
			return "", fmt.Errorf("malformed batch reference %q: %w", last.String, err)
		}
		seq = parsed
	}

	return fmt.Sprintf("%s-%03d", prefix, seq+1), nil
}

// Count counts all batches
func (r *GormProductionBatchRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&production.ProductionBatch{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// withAssociations preloads the full aggregate
func (r *GormProductionBatchRepository) withAssociations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Lines").
		Preload("Leftovers").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

// findPaginated runs a count plus a page query and assembles the result
func (r *GormProductionBatchRepository) findPaginated(ctx context.Context, query *gorm.DB, filter shared.Filter) (*shared.Paginated[production.ProductionBatch], error) {
	query = r.applyFilterWithoutPagination(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	orderBy := ValidateSortField(filter.OrderBy, ProductionBatchSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var batches []production.ProductionBatch
	if err := r.withAssociations(query).
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&batches).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(batches, total, page, pageSize)
	return &result, nil
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormProductionBatchRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("reference LIKE ? OR product_ref LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "product_ref":
			query = query.Where("product_ref = ?", value)
		case "deduction_incomplete":
			query = query.Where("deduction_incomplete = ?", value)
		}
	}

	return query
}

// saveChildren upserts lines and leftovers and appends new history entries
func (r *GormProductionBatchRepository) saveChildren(tx *gorm.DB, batch *production.ProductionBatch) error {
	// Deducted lines are frozen at the database level: the upsert only
	// touches rows whose stored flag is still false, so a save from a stale
	// aggregate can never clear deducted or rewrite the quantity the
	// deduction used.
	if len(batch.Lines) > 0 {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"actual_per_unit", "actual_recorded", "comment", "updated_at",
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Eq{
					Column: clause.Column{Table: "batch_material_lines", Name: "deducted"},
					Value:  false,
				},
			}},
		}).Create(&batch.Lines).Error; err != nil {
			return err
		}
	}

	if len(batch.Leftovers) > 0 {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&batch.Leftovers).Error; err != nil {
			return err
		}
	}

	// History is append-only: existing entries are never rewritten
	if len(batch.History) > 0 {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&batch.History).Error; err != nil {
			return err
		}
	}

	return nil
}

// Ensure GormProductionBatchRepository implements ProductionBatchRepository
var _ production.ProductionBatchRepository = (*GormProductionBatchRepository)(nil)
