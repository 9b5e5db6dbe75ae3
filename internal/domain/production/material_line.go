package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BatchMaterialLine is one material requirement on a production batch.
// The estimated quantity comes from the product configuration; the actual
// quantity is entered by the operator while the batch is planned. Both are
// per produced unit.
//
// A batch may carry the same material more than once only when the lines
// differ by color; reconciliation treats (material, color) as the identity.
type BatchMaterialLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BatchID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_batch_line_material,priority:1"`
	MaterialID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_batch_line_material,priority:2"`
	Color            string          `gorm:"type:varchar(50);uniqueIndex:idx_batch_line_material,priority:3"`
	MaterialCode     string          `gorm:"type:varchar(50);not null"`
	MaterialName     string          `gorm:"type:varchar(255);not null"`
	Unit             string          `gorm:"type:varchar(20);not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	EstimatedPerUnit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ActualPerUnit    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ActualRecorded   bool            `gorm:"not null;default:false"`
	Comment          string          `gorm:"type:varchar(255)"`
	Deducted         bool            `gorm:"not null;default:false"` // Set once stock has been deducted; the line is immutable after
	DeductedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM
func (BatchMaterialLine) TableName() string {
	return "batch_material_lines"
}

// NewBatchMaterialLine creates a new material line for a batch
func NewBatchMaterialLine(batchID, materialID uuid.UUID, code, name, color, unit string, unitCost, estimatedPerUnit decimal.Decimal) *BatchMaterialLine {
	now := time.Now()
	return &BatchMaterialLine{
		ID:               uuid.New(),
		BatchID:          batchID,
		MaterialID:       materialID,
		Color:            color,
		MaterialCode:     code,
		MaterialName:     name,
		Unit:             unit,
		UnitCost:         unitCost,
		EstimatedPerUnit: estimatedPerUnit,
		ActualPerUnit:    decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// RecordActual stores the operator-entered per-unit quantity.
// Repeated calls overwrite the previous value (last write wins); the line
// rejects edits once stock has been deducted against it.
func (l *BatchMaterialLine) RecordActual(perUnitQuantity decimal.Decimal, comment string) error {
	if l.Deducted {
		return ErrLineDeducted
	}
	if perUnitQuantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Actual quantity cannot be negative")
	}

	l.ActualPerUnit = perUnitQuantity
	l.ActualRecorded = true
	if comment != "" {
		l.Comment = comment
	}
	l.UpdatedAt = time.Now()

	return nil
}

// MarkDeducted flags the line as deducted, freezing its actual quantity
func (l *BatchMaterialLine) MarkDeducted() {
	now := time.Now()
	l.Deducted = true
	l.DeductedAt = &now
	l.UpdatedAt = now
}

// IsReconciled returns true when the line has a positive actual quantity
func (l *BatchMaterialLine) IsReconciled() bool {
	return l.ActualRecorded && l.ActualPerUnit.GreaterThan(decimal.Zero)
}

// TotalEstimated returns the estimated quantity for the whole batch
func (l *BatchMaterialLine) TotalEstimated(quantityToProduce int) decimal.Decimal {
	return l.EstimatedPerUnit.Mul(decimal.NewFromInt(int64(quantityToProduce)))
}

// TotalActual returns the actual quantity for the whole batch
func (l *BatchMaterialLine) TotalActual(quantityToProduce int) decimal.Decimal {
	return l.ActualPerUnit.Mul(decimal.NewFromInt(int64(quantityToProduce)))
}
