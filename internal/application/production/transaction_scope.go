package production

import (
	"context"

	"github.com/mrp/backend/internal/domain/production"
	"github.com/mrp/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the repositories a commit
// run touches. Each material line is committed in its own scope: the balance
// mutation, the ledger record and the line's deducted flag change together,
// while lines never share a transaction with each other.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. All repositories share the same underlying database transaction.
type TransactionalRepositories interface {
	// BatchRepo returns the batch repository scoped to the current transaction
	BatchRepo() production.ProductionBatchRepository
	// MaterialRepo returns the material repository scoped to the current transaction
	MaterialRepo() stock.MaterialRepository
	// StockTransactionRepo returns the ledger transaction repository scoped to the current transaction
	StockTransactionRepo() stock.StockTransactionRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in tests where the repositories are in-memory or mocked.
type NoOpTransactionScope struct {
	batchRepo    production.ProductionBatchRepository
	materialRepo stock.MaterialRepository
	stockTxRepo  stock.StockTransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	batchRepo production.ProductionBatchRepository,
	materialRepo stock.MaterialRepository,
	stockTxRepo stock.StockTransactionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		batchRepo:    batchRepo,
		materialRepo: materialRepo,
		stockTxRepo:  stockTxRepo,
	}
}

// Execute runs the function directly against the wrapped repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BatchRepo returns the batch repository
func (s *NoOpTransactionScope) BatchRepo() production.ProductionBatchRepository {
	return s.batchRepo
}

// MaterialRepo returns the material repository
func (s *NoOpTransactionScope) MaterialRepo() stock.MaterialRepository {
	return s.materialRepo
}

// StockTransactionRepo returns the ledger transaction repository
func (s *NoOpTransactionScope) StockTransactionRepo() stock.StockTransactionRepository {
	return s.stockTxRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
