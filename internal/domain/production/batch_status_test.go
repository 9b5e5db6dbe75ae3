package production

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchStatusIsValid(t *testing.T) {
	t.Run("valid statuses", func(t *testing.T) {
		for _, s := range []BatchStatus{
			BatchStatusPlanned, BatchStatusInProduction, BatchStatusCompleted,
			BatchStatusToCollect, BatchStatusInStore, BatchStatusCancelled,
		} {
			assert.True(t, s.IsValid(), s.String())
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		assert.False(t, BatchStatus("SHIPPED").IsValid())
	})
}

func TestBatchStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    BatchStatus
		to      BatchStatus
		allowed bool
	}{
		{BatchStatusPlanned, BatchStatusInProduction, true},
		{BatchStatusPlanned, BatchStatusCompleted, false},
		{BatchStatusInProduction, BatchStatusCompleted, true},
		{BatchStatusInProduction, BatchStatusToCollect, false},
		{BatchStatusCompleted, BatchStatusToCollect, true},
		{BatchStatusCompleted, BatchStatusInStore, true},
		{BatchStatusToCollect, BatchStatusInStore, true},
		{BatchStatusInStore, BatchStatusToCollect, false},
		{BatchStatusCancelled, BatchStatusPlanned, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.allowed, c.from.CanTransitionTo(c.to),
			"%s -> %s", c.from, c.to)
	}
}

func TestBatchStatusIsBackwardFrom(t *testing.T) {
	t.Run("earlier status is backward", func(t *testing.T) {
		assert.True(t, BatchStatusPlanned.IsBackwardFrom(BatchStatusInProduction))
		assert.True(t, BatchStatusCompleted.IsBackwardFrom(BatchStatusInStore))
		assert.True(t, BatchStatusToCollect.IsBackwardFrom(BatchStatusInStore))
	})

	t.Run("forward or equal is not backward", func(t *testing.T) {
		assert.False(t, BatchStatusInProduction.IsBackwardFrom(BatchStatusPlanned))
		assert.False(t, BatchStatusPlanned.IsBackwardFrom(BatchStatusPlanned))
	})

	t.Run("cancelled is outside the ordering", func(t *testing.T) {
		assert.False(t, BatchStatusPlanned.IsBackwardFrom(BatchStatusCancelled))
		assert.False(t, BatchStatusCancelled.IsBackwardFrom(BatchStatusInStore))
	})
}

func TestBatchStatusCancellation(t *testing.T) {
	assert.True(t, BatchStatusPlanned.CanBeCancelled())
	assert.True(t, BatchStatusInProduction.CanBeCancelled())
	assert.False(t, BatchStatusCompleted.CanBeCancelled())
	assert.False(t, BatchStatusToCollect.CanBeCancelled())
	assert.False(t, BatchStatusInStore.CanBeCancelled())
	assert.False(t, BatchStatusCancelled.CanBeCancelled())
}

func TestBatchStatusIsTerminal(t *testing.T) {
	assert.True(t, BatchStatusCompleted.IsTerminal())
	assert.True(t, BatchStatusCancelled.IsTerminal())
	assert.False(t, BatchStatusPlanned.IsTerminal())
	assert.False(t, BatchStatusInProduction.IsTerminal())
	assert.False(t, BatchStatusToCollect.IsTerminal())
	assert.False(t, BatchStatusInStore.IsTerminal())
}
