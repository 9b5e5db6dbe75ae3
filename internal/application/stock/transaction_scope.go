package stock

import (
	"context"

	"github.com/mrp/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the ledger repositories.
// A balance mutation and its StockTransaction record must commit or roll back
// together, so every ledger write goes through Execute.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories within
// a transaction. Both repositories share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// MaterialRepo returns the material repository scoped to the current transaction
	MaterialRepo() stock.MaterialRepository
	// TransactionRepo returns the ledger transaction repository scoped to the current transaction
	TransactionRepo() stock.StockTransactionRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in tests where the repositories are in-memory or mocked.
type NoOpTransactionScope struct {
	materialRepo    stock.MaterialRepository
	transactionRepo stock.StockTransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	materialRepo stock.MaterialRepository,
	transactionRepo stock.StockTransactionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		materialRepo:    materialRepo,
		transactionRepo: transactionRepo,
	}
}

// Execute runs the function directly against the wrapped repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// MaterialRepo returns the material repository
func (s *NoOpTransactionScope) MaterialRepo() stock.MaterialRepository {
	return s.materialRepo
}

// TransactionRepo returns the ledger transaction repository
func (s *NoOpTransactionScope) TransactionRepo() stock.StockTransactionRepository {
	return s.transactionRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
