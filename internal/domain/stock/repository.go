package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/mrp/backend/internal/domain/shared"
)

// MaterialRepository defines the interface for material ledger persistence
type MaterialRepository interface {
	// FindByID finds a material by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)

	// FindByCode finds a material by its unique code
	FindByCode(ctx context.Context, code string) (*Material, error)

	// FindByIDs finds multiple materials by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Material, error)

	// FindAll finds all materials matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Material, error)

	// FindBelowMinimum finds materials below their minimum threshold
	FindBelowMinimum(ctx context.Context, filter shared.Filter) ([]Material, error)

	// Save creates or updates a material
	Save(ctx context.Context, material *Material) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, material *Material) error

	// Count counts materials matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// StockTransactionRepository defines the interface for ledger transaction
// persistence. The log is append-only: there is deliberately no update or
// delete operation.
type StockTransactionRepository interface {
	// FindByID finds a transaction by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransaction, error)

	// FindByMaterial finds transactions for a material, newest first
	FindByMaterial(ctx context.Context, materialID uuid.UUID, filter shared.Filter) ([]StockTransaction, error)

	// FindByBatchRef finds transactions recorded against a batch reference
	FindByBatchRef(ctx context.Context, batchRef string) ([]StockTransaction, error)

	// Create appends a new transaction record
	Create(ctx context.Context, tx *StockTransaction) error

	// CountByMaterial counts transactions for a material
	CountByMaterial(ctx context.Context, materialID uuid.UUID) (int64, error)
}
