package production

import (
	"time"

	"github.com/google/uuid"
)

// StatusHistoryEntry is one line of the append-only transition audit log.
// Entries are never mutated or deleted; PreviousStatus is nil for the entry
// written at batch creation.
type StatusHistoryEntry struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey"`
	BatchID        uuid.UUID    `gorm:"type:uuid;not null;index:idx_status_history_batch"`
	PreviousStatus *BatchStatus `gorm:"type:varchar(20)"`
	NewStatus      BatchStatus  `gorm:"type:varchar(20);not null"`
	Actor          string       `gorm:"type:varchar(100);not null"`
	Comment        string       `gorm:"type:varchar(255)"`
	CreatedAt      time.Time    `gorm:"not null;index:idx_status_history_batch,priority:2"`
}

// TableName returns the table name for GORM
func (StatusHistoryEntry) TableName() string {
	return "batch_status_history"
}

// NewStatusHistoryEntry creates a history entry for an accepted transition
func NewStatusHistoryEntry(batchID uuid.UUID, previous *BatchStatus, next BatchStatus, actor, comment string) *StatusHistoryEntry {
	return &StatusHistoryEntry{
		ID:             uuid.New(),
		BatchID:        batchID,
		PreviousStatus: previous,
		NewStatus:      next,
		Actor:          actor,
		Comment:        comment,
		CreatedAt:      time.Now(),
	}
}
