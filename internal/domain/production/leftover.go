package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeftoverRecord captures, per material line, the quantity left over after
// production, whether it can be reused, and operator notes. One record per
// line; recording is a precondition for completing the batch.
type LeftoverRecord struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BatchID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_leftover_line,priority:1"`
	LineID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_leftover_line,priority:2"`
	MaterialID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reusable   bool            `gorm:"not null;default:false"`
	Notes      string          `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM
func (LeftoverRecord) TableName() string {
	return "leftover_records"
}

// NewLeftoverRecord creates a leftover record for a material line
func NewLeftoverRecord(batchID, lineID, materialID uuid.UUID, quantity decimal.Decimal, reusable bool, notes string) *LeftoverRecord {
	now := time.Now()
	return &LeftoverRecord{
		ID:         uuid.New(),
		BatchID:    batchID,
		LineID:     lineID,
		MaterialID: materialID,
		Quantity:   quantity,
		Reusable:   reusable,
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Update overwrites the recorded values
func (r *LeftoverRecord) Update(quantity decimal.Decimal, reusable bool, notes string) {
	r.Quantity = quantity
	r.Reusable = reusable
	r.Notes = notes
	r.UpdatedAt = time.Now()
}
