package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/stock"
)

func newLedgerEntry(t *testing.T, materialID uuid.UUID, txType stock.TransactionType, qty, before, after int64, batchRef, actor string) *stock.StockTransaction {
	t.Helper()
	tx, err := stock.NewStockTransaction(
		materialID,
		txType,
		decimal.NewFromInt(qty),
		decimal.NewFromInt(before),
		decimal.NewFromInt(after),
		decimal.NewFromFloat(2.5),
		batchRef,
		actor,
	)
	require.NoError(t, err)
	return tx
}

func TestGormStockTransactionRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormStockTransactionRepository(db)
	ctx := context.Background()

	materialID := uuid.New()
	otherMaterialID := uuid.New()

	t.Run("create and find by ID", func(t *testing.T) {
		tx := newLedgerEntry(t, materialID, stock.TransactionTypeDeduction, 30, 100, 70, "PB-20260828-001", "alice")
		tx.WithReason("batch commit")
		require.NoError(t, repo.Create(ctx, tx))

		found, err := repo.FindByID(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, stock.TransactionTypeDeduction, found.TransactionType)
		assert.True(t, found.Quantity.Equal(decimal.NewFromInt(30)))
		assert.Equal(t, "batch commit", found.Reason)
	})

	t.Run("not found maps to shared error", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("find by material with type filter", func(t *testing.T) {
		credit := newLedgerEntry(t, materialID, stock.TransactionTypeCredit, 20, 70, 90, "PO-1001", "bob")
		require.NoError(t, repo.Create(ctx, credit))

		other := newLedgerEntry(t, otherMaterialID, stock.TransactionTypeDeduction, 5, 50, 45, "PB-20260828-002", "alice")
		require.NoError(t, repo.Create(ctx, other))

		found, err := repo.FindByMaterial(ctx, materialID, shared.Filter{
			Filters: map[string]interface{}{"transaction_type": "CREDIT"},
		})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, stock.TransactionTypeCredit, found[0].TransactionType)
	})

	t.Run("count by material", func(t *testing.T) {
		count, err := repo.CountByMaterial(ctx, materialID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestGormStockTransactionRepository_FindByBatchRef(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormStockTransactionRepository(db)
	ctx := context.Background()

	materialID := uuid.New()
	base := time.Now().Add(-time.Hour)

	// Insert out of order; FindByBatchRef must return them oldest first
	second := newLedgerEntry(t, materialID, stock.TransactionTypeDeduction, 10, 90, 80, "PB-20260828-001", "alice")
	second.TransactionDate = base.Add(10 * time.Minute)
	require.NoError(t, repo.Create(ctx, second))

	first := newLedgerEntry(t, materialID, stock.TransactionTypeDeduction, 10, 100, 90, "PB-20260828-001", "alice")
	first.TransactionDate = base
	require.NoError(t, repo.Create(ctx, first))

	unrelated := newLedgerEntry(t, materialID, stock.TransactionTypeDeduction, 5, 80, 75, "PB-20260828-002", "bob")
	require.NoError(t, repo.Create(ctx, unrelated))

	found, err := repo.FindByBatchRef(ctx, "PB-20260828-001")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, first.ID, found[0].ID)
	assert.Equal(t, second.ID, found[1].ID)
	assert.True(t, found[0].TransactionDate.Before(found[1].TransactionDate))
}
