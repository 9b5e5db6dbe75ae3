package persistence

import (
	"context"

	"gorm.io/gorm"

	appstock "github.com/mrp/backend/internal/application/stock"
	"github.com/mrp/backend/internal/domain/stock"
)

// GormStockTransactionScope implements the stock TransactionScope using GORM
// transactions. A balance mutation and its ledger record commit or roll back
// together.
type GormStockTransactionScope struct {
	db *gorm.DB
}

// NewGormStockTransactionScope creates a new GormStockTransactionScope.
func NewGormStockTransactionScope(db *gorm.DB) *GormStockTransactionScope {
	return &GormStockTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormStockTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormStockTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormStockTransactionalRepositories provides repositories bound to one transaction.
type gormStockTransactionalRepositories struct {
	tx *gorm.DB
}

// MaterialRepo returns the material repository scoped to the current transaction.
func (r *gormStockTransactionalRepositories) MaterialRepo() stock.MaterialRepository {
	return NewGormMaterialRepository(r.tx)
}

// TransactionRepo returns the ledger transaction repository scoped to the current transaction.
func (r *gormStockTransactionalRepositories) TransactionRepo() stock.StockTransactionRepository {
	return NewGormStockTransactionRepository(r.tx)
}

// Ensure GormStockTransactionScope implements TransactionScope
var _ appstock.TransactionScope = (*GormStockTransactionScope)(nil)

// Ensure gormStockTransactionalRepositories implements TransactionalRepositories
var _ appstock.TransactionalRepositories = (*gormStockTransactionalRepositories)(nil)
