// Package integration provides end-to-end batch lifecycle tests.
// Testing the full plan, reconcile, commit and transition flow with real
// database interactions.
package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	prodapp "github.com/mrp/backend/internal/application/production"
	stockapp "github.com/mrp/backend/internal/application/stock"
	"github.com/mrp/backend/internal/domain/production"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/stock"
	"github.com/mrp/backend/internal/infrastructure/persistence"
)

// testServices wires the application services against a real database
type testServices struct {
	materials *stockapp.MaterialService
	batches   *prodapp.BatchService
	commits   *prodapp.CommitService
}

func newTestServices(db *TestDB) *testServices {
	materialRepo := persistence.NewGormMaterialRepository(db.DB)
	stockTxRepo := persistence.NewGormStockTransactionRepository(db.DB)
	batchRepo := persistence.NewGormProductionBatchRepository(db.DB)
	historyRepo := persistence.NewGormStatusHistoryRepository(db.DB)

	stockScope := persistence.NewGormStockTransactionScope(db.DB)
	prodScope := persistence.NewGormProductionTransactionScope(db.DB)

	return &testServices{
		materials: stockapp.NewMaterialService(materialRepo, stockTxRepo, stockScope),
		batches:   prodapp.NewBatchService(batchRepo, historyRepo, materialRepo),
		commits:   prodapp.NewCommitService(batchRepo, prodScope, zap.NewNop()),
	}
}

// lineFor returns the batch line referencing the given material
func lineFor(t *testing.T, batch *prodapp.BatchResponse, materialID uuid.UUID) prodapp.MaterialLineResponse {
	t.Helper()
	for _, line := range batch.Lines {
		if line.MaterialID == materialID {
			return line
		}
	}
	t.Fatalf("no line for material %s", materialID)
	return prodapp.MaterialLineResponse{}
}

// createMaterial registers a material and credits it with the given stock
func createMaterial(t *testing.T, svc *testServices, code, name string, available string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	m, err := svc.materials.Create(ctx, stockapp.CreateMaterialRequest{
		Code:        code,
		Name:        name,
		Unit:        "m",
		UnitCost:    decimal.NewFromFloat(4.50),
		MinQuantity: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	qty, err := decimal.NewFromString(available)
	require.NoError(t, err)
	if !qty.IsZero() {
		_, err = svc.materials.CreditStock(ctx, m.ID, stockapp.CreditStockRequest{
			Quantity: qty,
			BatchRef: "PO-SEED",
			Reason:   "initial stock",
		}, "warehouse")
		require.NoError(t, err)
	}
	return m.ID
}

func TestBatchLifecycle_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := NewTestDB(t)
	svc := newTestServices(db)
	ctx := context.Background()

	fabricID := createMaterial(t, svc, "FAB-001", "Cotton twill", "500")
	threadID := createMaterial(t, svc, "THR-001", "Polyester thread", "200")

	// Plan a batch of 100 units with two material lines
	batch, err := svc.batches.Create(ctx, prodapp.CreateBatchRequest{
		ProductRef:        "SHIRT-CLASSIC",
		QuantityToProduce: 100,
		SizeBreakdown:     map[string]int{"M": 60, "L": 40},
		Materials: []prodapp.BatchMaterialLineRequest{
			{MaterialID: fabricID, Color: "navy", EstimatedPerUnit: decimal.NewFromFloat(1.5)},
			{MaterialID: threadID, EstimatedPerUnit: decimal.NewFromFloat(0.2)},
		},
	}, "planner")
	require.NoError(t, err)
	require.Len(t, batch.Lines, 2)
	assert.Equal(t, "PLANNED", batch.Status)
	assert.NotEmpty(t, batch.Reference)
	assert.False(t, batch.Reconciled)

	// The lines carry a snapshot of the material master data
	fabricLine := lineFor(t, batch, fabricID)
	threadLine := lineFor(t, batch, threadID)
	assert.Equal(t, "FAB-001", fabricLine.MaterialCode)
	assert.Equal(t, "Cotton twill", fabricLine.MaterialName)
	assert.Equal(t, "m", fabricLine.Unit)

	// Commit and start are blocked until every line has an actual quantity
	_, err = svc.commits.Commit(ctx, batch.ID, "planner")
	require.ErrorIs(t, err, production.ErrMaterialsNotReconciled)

	_, err = svc.batches.RequestTransition(ctx, batch.ID, prodapp.TransitionRequest{
		Target: "IN_PRODUCTION",
	}, "planner")
	require.ErrorIs(t, err, production.ErrMaterialsNotReconciled)

	// Reconcile both lines
	batch, err = svc.batches.RecordActual(ctx, batch.ID, fabricLine.ID, prodapp.RecordActualRequest{
		PerUnitQuantity: decimal.NewFromFloat(1.6),
		Comment:         "extra for pattern matching",
	}, "cutter")
	require.NoError(t, err)
	assert.False(t, batch.Reconciled)

	batch, err = svc.batches.RecordActual(ctx, batch.ID, threadLine.ID, prodapp.RecordActualRequest{
		PerUnitQuantity: decimal.NewFromFloat(0.2),
	}, "cutter")
	require.NoError(t, err)
	assert.True(t, batch.Reconciled)

	// Starting production still requires an explicit commit
	_, err = svc.batches.RequestTransition(ctx, batch.ID, prodapp.TransitionRequest{
		Target: "IN_PRODUCTION",
	}, "planner")
	require.ErrorIs(t, err, production.ErrMaterialsNotCommitted)

	// Commit deducts both lines
	result, err := svc.commits.Commit(ctx, batch.ID, "planner")
	require.NoError(t, err)
	assert.True(t, result.FullyCommitted)
	assert.Equal(t, 2, result.LinesDeducted)
	assert.Equal(t, 0, result.LinesSkipped)
	assert.Empty(t, result.Failures)

	// Balances reflect the deduction: 500 - 1.6*100, 200 - 0.2*100
	fabric, err := svc.materials.GetByID(ctx, fabricID)
	require.NoError(t, err)
	assert.True(t, fabric.AvailableQuantity.Equal(decimal.NewFromInt(340)),
		"expected 340, got %s", fabric.AvailableQuantity)

	thread, err := svc.materials.GetByID(ctx, threadID)
	require.NoError(t, err)
	assert.True(t, thread.AvailableQuantity.Equal(decimal.NewFromInt(180)),
		"expected 180, got %s", thread.AvailableQuantity)

	// The ledger records the deduction against the batch reference
	txs, total, err := svc.materials.ListTransactions(ctx, fabricID, stockapp.TransactionListFilter{
		Page: 1, PageSize: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	var deduction *stockapp.TransactionResponse
	for i := range txs {
		if txs[i].TransactionType == string(stock.TransactionTypeDeduction) {
			deduction = &txs[i]
		}
	}
	require.NotNil(t, deduction, "expected a deduction ledger entry")
	assert.Equal(t, batch.Reference, deduction.BatchRef)
	assert.Equal(t, "planner", deduction.Actor)
	assert.True(t, deduction.Quantity.Equal(decimal.NewFromInt(160)))

	// Commit is re-invocable; already deducted lines are skipped
	result, err = svc.commits.Commit(ctx, batch.ID, "planner")
	require.NoError(t, err)
	assert.True(t, result.FullyCommitted)
	assert.Equal(t, 0, result.LinesDeducted)
	assert.Equal(t, 2, result.LinesSkipped)

	// No double deduction happened
	fabric, err = svc.materials.GetByID(ctx, fabricID)
	require.NoError(t, err)
	assert.True(t, fabric.AvailableQuantity.Equal(decimal.NewFromInt(340)))

	// Walk the batch forward through its lifecycle
	batch, err = svc.batches.RequestTransition(ctx, batch.ID, prodapp.TransitionRequest{
		Target: "IN_PRODUCTION", Comment: "line 3",
	}, "supervisor")
	require.NoError(t, err)
	assert.Equal(t, "IN_PRODUCTION", batch.Status)
	assert.NotNil(t, batch.StartedAt)

	// Completing requires leftovers for every line
	_, err = svc.batches.RequestTransition(ctx, batch.ID, prodapp.TransitionRequest{
		Target: "COMPLETED",
	}, "supervisor")
	require.ErrorIs(t, err, production.ErrLeftoversNotRecorded)

	batch, err = svc.batches.RecordLeftover(ctx, batch.ID, fabricLine.ID, prodapp.RecordLeftoverRequest{
		Quantity: decimal.NewFromFloat(12.5),
		Reusable: true,
		Notes:    "full roll remnant",
	}, "cutter")
	require.NoError(t, err)

	batch, err = svc.batches.RecordLeftover(ctx, batch.ID, threadLine.ID, prodapp.RecordLeftoverRequest{
		Quantity: decimal.Zero,
	}, "cutter")
	require.NoError(t, err)
	require.Len(t, batch.Leftovers, 2)

	for _, target := range []string{"COMPLETED", "TO_COLLECT", "IN_STORE"} {
		batch, err = svc.batches.RequestTransition(ctx, batch.ID, prodapp.TransitionRequest{
			Target: target,
		}, "supervisor")
		require.NoError(t, err)
		assert.Equal(t, target, batch.Status)
	}
	assert.NotNil(t, batch.CompletedAt)

	// Backward moves are rejected without explicit confirmation
	_, err = svc.batches.RequestTransition(ctx, batch.ID, prodapp.TransitionRequest{
		Target: "TO_COLLECT",
	}, "supervisor")
	require.ErrorIs(t, err, production.ErrInvalidBackwardTransition)

	batch, err = svc.batches.ConfirmTransition(ctx, batch.ID, prodapp.TransitionRequest{
		Target: "TO_COLLECT", Comment: "mislabeled carton",
	}, "supervisor")
	require.NoError(t, err)
	assert.Equal(t, "TO_COLLECT", batch.Status)

	// The transition log records every move in order
	history, err := svc.batches.GetStatusHistory(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, history, 6)

	assert.Nil(t, history[0].PreviousStatus)
	assert.Equal(t, "PLANNED", history[0].NewStatus)
	assert.Equal(t, "planner", history[0].Actor)

	last := history[len(history)-1]
	require.NotNil(t, last.PreviousStatus)
	assert.Equal(t, "IN_STORE", *last.PreviousStatus)
	assert.Equal(t, "TO_COLLECT", last.NewStatus)
	assert.Equal(t, "mislabeled carton", last.Comment)
}

func TestBatchCommit_InsufficientStock(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := NewTestDB(t)
	svc := newTestServices(db)
	ctx := context.Background()

	fabricID := createMaterial(t, svc, "FAB-010", "Denim", "500")
	buttonID := createMaterial(t, svc, "BTN-010", "Brass button", "50")

	batch, err := svc.batches.Create(ctx, prodapp.CreateBatchRequest{
		ProductRef:        "JEANS-REGULAR",
		QuantityToProduce: 40,
		Materials: []prodapp.BatchMaterialLineRequest{
			{MaterialID: fabricID, EstimatedPerUnit: decimal.NewFromFloat(2.0)},
			{MaterialID: buttonID, EstimatedPerUnit: decimal.NewFromInt(5)},
		},
	}, "planner")
	require.NoError(t, err)

	for i := range batch.Lines {
		per := decimal.NewFromFloat(2.0)
		if batch.Lines[i].MaterialID == buttonID {
			per = decimal.NewFromInt(5)
		}
		batch, err = svc.batches.RecordActual(ctx, batch.ID, batch.Lines[i].ID, prodapp.RecordActualRequest{
			PerUnitQuantity: per,
		}, "cutter")
		require.NoError(t, err)
	}

	// Buttons need 200 but only 50 are on hand. The fabric line is
	// deducted and stays deducted; the button line fails.
	result, err := svc.commits.Commit(ctx, batch.ID, "planner")
	require.NoError(t, err)
	assert.False(t, result.FullyCommitted)
	assert.Equal(t, 1, result.LinesDeducted)
	require.Len(t, result.Failures, 1)

	failure := result.Failures[0]
	assert.Equal(t, buttonID, failure.MaterialID)
	assert.Equal(t, shared.ErrInsufficientStock.Code, failure.Code)
	assert.True(t, failure.Required.Equal(decimal.NewFromInt(200)))
	assert.True(t, failure.Available.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, int64(10), failure.MaxProducible)

	batch, err = svc.batches.GetByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, batch.CommitInvoked)
	assert.True(t, batch.DeductionIncomplete)

	// Production cannot start with undeducted lines short on stock,
	// so replenish and re-run. Only the failed line is deducted.
	_, err = svc.materials.CreditStock(ctx, buttonID, stockapp.CreditStockRequest{
		Quantity: decimal.NewFromInt(300),
		BatchRef: "PO-1042",
	}, "warehouse")
	require.NoError(t, err)

	result, err = svc.commits.Commit(ctx, batch.ID, "planner")
	require.NoError(t, err)
	assert.True(t, result.FullyCommitted)
	assert.Equal(t, 1, result.LinesDeducted)
	assert.Equal(t, 1, result.LinesSkipped)

	buttons, err := svc.materials.GetByID(ctx, buttonID)
	require.NoError(t, err)
	assert.True(t, buttons.AvailableQuantity.Equal(decimal.NewFromInt(150)),
		"expected 150, got %s", buttons.AvailableQuantity)

	batch, err = svc.batches.GetByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.False(t, batch.DeductionIncomplete)
}

func TestBatchCancellation_KeepsLedger(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := NewTestDB(t)
	svc := newTestServices(db)
	ctx := context.Background()

	fabricID := createMaterial(t, svc, "FAB-020", "Linen", "100")

	batch, err := svc.batches.Create(ctx, prodapp.CreateBatchRequest{
		ProductRef:        "DRESS-SUMMER",
		QuantityToProduce: 20,
		Materials: []prodapp.BatchMaterialLineRequest{
			{MaterialID: fabricID, EstimatedPerUnit: decimal.NewFromFloat(1.0)},
		},
	}, "planner")
	require.NoError(t, err)

	batch, err = svc.batches.RecordActual(ctx, batch.ID, batch.Lines[0].ID, prodapp.RecordActualRequest{
		PerUnitQuantity: decimal.NewFromFloat(1.0),
	}, "cutter")
	require.NoError(t, err)

	_, err = svc.commits.Commit(ctx, batch.ID, "planner")
	require.NoError(t, err)

	// Cancelling requires a reason
	_, err = svc.batches.RequestTransition(ctx, batch.ID, prodapp.TransitionRequest{
		Target: "CANCELLED",
	}, "planner")
	require.ErrorIs(t, err, production.ErrCancellationReasonRequired)

	batch, err = svc.batches.RequestTransition(ctx, batch.ID, prodapp.TransitionRequest{
		Target: "CANCELLED", Comment: "customer withdrew the order",
	}, "planner")
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", batch.Status)
	assert.Equal(t, "customer withdrew the order", batch.CancellationReason)
	assert.NotNil(t, batch.CancelledAt)

	// Deducted stock is never credited back automatically
	fabric, err := svc.materials.GetByID(ctx, fabricID)
	require.NoError(t, err)
	assert.True(t, fabric.AvailableQuantity.Equal(decimal.NewFromInt(80)),
		"expected 80, got %s", fabric.AvailableQuantity)

	// A cancelled batch is frozen
	_, err = svc.batches.RequestTransition(ctx, batch.ID, prodapp.TransitionRequest{
		Target: "IN_PRODUCTION",
	}, "planner")
	require.ErrorIs(t, err, production.ErrInvalidTransition)
}
