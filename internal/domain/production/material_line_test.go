package production

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLine(t *testing.T) *BatchMaterialLine {
	t.Helper()
	return NewBatchMaterialLine(
		uuid.New(), uuid.New(),
		"FAB-001", "Cotton twill", "navy", "m",
		decimal.NewFromFloat(2.5), decimal.NewFromFloat(1.2),
	)
}

func TestRecordActual(t *testing.T) {
	t.Run("records the per-unit quantity", func(t *testing.T) {
		line := createTestLine(t)

		err := line.RecordActual(decimal.NewFromFloat(1.35), "narrower roll")
		require.NoError(t, err)
		assert.True(t, line.ActualPerUnit.Equal(decimal.NewFromFloat(1.35)))
		assert.True(t, line.ActualRecorded)
		assert.Equal(t, "narrower roll", line.Comment)
	})

	t.Run("last write wins", func(t *testing.T) {
		line := createTestLine(t)

		require.NoError(t, line.RecordActual(decimal.NewFromFloat(1.35), ""))
		require.NoError(t, line.RecordActual(decimal.NewFromFloat(1.40), ""))
		assert.True(t, line.ActualPerUnit.Equal(decimal.NewFromFloat(1.40)))
	})

	t.Run("keeps previous comment when new one is empty", func(t *testing.T) {
		line := createTestLine(t)

		require.NoError(t, line.RecordActual(decimal.NewFromFloat(1.35), "narrower roll"))
		require.NoError(t, line.RecordActual(decimal.NewFromFloat(1.40), ""))
		assert.Equal(t, "narrower roll", line.Comment)
	})

	t.Run("zero is recorded but not reconciled", func(t *testing.T) {
		line := createTestLine(t)

		require.NoError(t, line.RecordActual(decimal.Zero, ""))
		assert.True(t, line.ActualRecorded)
		assert.False(t, line.IsReconciled())
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		line := createTestLine(t)
		assert.Error(t, line.RecordActual(decimal.NewFromFloat(-1), ""))
	})

	t.Run("rejects edits after deduction", func(t *testing.T) {
		line := createTestLine(t)
		require.NoError(t, line.RecordActual(decimal.NewFromFloat(1.35), ""))
		line.MarkDeducted()

		err := line.RecordActual(decimal.NewFromFloat(2), "")
		assert.ErrorIs(t, err, ErrLineDeducted)
		assert.True(t, line.ActualPerUnit.Equal(decimal.NewFromFloat(1.35)))
	})
}

func TestLineTotals(t *testing.T) {
	line := createTestLine(t)
	require.NoError(t, line.RecordActual(decimal.NewFromFloat(1.35), ""))

	assert.True(t, line.TotalEstimated(100).Equal(decimal.NewFromFloat(120)))
	assert.True(t, line.TotalActual(100).Equal(decimal.NewFromFloat(135)))
}

func TestMarkDeducted(t *testing.T) {
	line := createTestLine(t)
	line.MarkDeducted()

	assert.True(t, line.Deducted)
	require.NotNil(t, line.DeductedAt)
}
