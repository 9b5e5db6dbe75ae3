package production

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mrp/backend/internal/domain/shared"
)

// ProductionBatchRepository persists batch aggregates with their lines,
// leftovers and history.
type ProductionBatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionBatch, error)
	FindByReference(ctx context.Context, reference string) (*ProductionBatch, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[ProductionBatch], error)
	FindByStatus(ctx context.Context, status BatchStatus, filter shared.Filter) (*shared.Paginated[ProductionBatch], error)
	Save(ctx context.Context, batch *ProductionBatch) error
	// SaveWithLock persists the aggregate guarded by its version column and
	// returns shared.ErrConcurrencyConflict when another writer got there first.
	SaveWithLock(ctx context.Context, batch *ProductionBatch) error
	// SaveLine persists a single material line without touching the rest of
	// the aggregate. Used by the commit flow, which finalizes one line per
	// database transaction.
	SaveLine(ctx context.Context, line *BatchMaterialLine) error
	// NextReference allocates the next batch reference for the given day,
	// e.g. PB-20260828-003.
	NextReference(ctx context.Context, day time.Time) (string, error)
	Count(ctx context.Context) (int64, error)
}

// StatusHistoryRepository reads the append-only transition log. Entries are
// written through the batch aggregate, never directly.
type StatusHistoryRepository interface {
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]StatusHistoryEntry, error)
}
