package persistence

import (
	"context"

	"gorm.io/gorm"

	appprod "github.com/mrp/backend/internal/application/production"
	"github.com/mrp/backend/internal/domain/production"
	"github.com/mrp/backend/internal/domain/stock"
)

// GormProductionTransactionScope implements the production TransactionScope
// using GORM transactions. The commit flow runs one scope per material line:
// the material balance, the ledger record and the line's deducted flag change
// in a single database transaction.
type GormProductionTransactionScope struct {
	db *gorm.DB
}

// NewGormProductionTransactionScope creates a new GormProductionTransactionScope.
func NewGormProductionTransactionScope(db *gorm.DB) *GormProductionTransactionScope {
	return &GormProductionTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormProductionTransactionScope) Execute(ctx context.Context, fn func(repos appprod.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormProductionTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormProductionTransactionalRepositories provides repositories bound to one transaction.
type gormProductionTransactionalRepositories struct {
	tx *gorm.DB
}

// BatchRepo returns the batch repository scoped to the current transaction.
func (r *gormProductionTransactionalRepositories) BatchRepo() production.ProductionBatchRepository {
	return NewGormProductionBatchRepository(r.tx)
}

// MaterialRepo returns the material repository scoped to the current transaction.
func (r *gormProductionTransactionalRepositories) MaterialRepo() stock.MaterialRepository {
	return NewGormMaterialRepository(r.tx)
}

// StockTransactionRepo returns the ledger transaction repository scoped to the current transaction.
func (r *gormProductionTransactionalRepositories) StockTransactionRepo() stock.StockTransactionRepository {
	return NewGormStockTransactionRepository(r.tx)
}

// Ensure GormProductionTransactionScope implements TransactionScope
var _ appprod.TransactionScope = (*GormProductionTransactionScope)(nil)

// Ensure gormProductionTransactionalRepositories implements TransactionalRepositories
var _ appprod.TransactionalRepositories = (*gormProductionTransactionalRepositories)(nil)
