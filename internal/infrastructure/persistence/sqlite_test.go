package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrp/backend/internal/domain/production"
	"github.com/mrp/backend/internal/domain/stock"
)

// newTestDB opens an in-memory SQLite database with the full schema migrated.
// Each test gets an isolated database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&stock.Material{},
		&stock.StockTransaction{},
		&production.ProductionBatch{},
		&production.BatchMaterialLine{},
		&production.LeftoverRecord{},
		&production.StatusHistoryEntry{},
	)
	require.NoError(t, err)

	return db
}
