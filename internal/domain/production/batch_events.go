package production

import (
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Production event types
const (
	EventTypeBatchCreated             = "batch.created"
	EventTypeBatchStatusChanged       = "batch.status_changed"
	EventTypeMaterialQuantityRecorded = "batch.material_quantity_recorded"
	EventTypeMaterialsCommitted       = "batch.materials_committed"
	EventTypeStockDeductionFailed     = "batch.stock_deduction_failed"
	EventTypeBatchCancelled           = "batch.cancelled"
)

// BatchCreatedEvent is emitted when a new batch is created
type BatchCreatedEvent struct {
	shared.BaseDomainEvent
	Reference         string `json:"reference"`
	ProductRef        string `json:"product_ref"`
	QuantityToProduce int    `json:"quantity_to_produce"`
	Actor             string `json:"actor"`
}

// NewBatchCreatedEvent creates a batch created event
func NewBatchCreatedEvent(batch *ProductionBatch, actor string) *BatchCreatedEvent {
	return &BatchCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeBatchCreated, "ProductionBatch", batch.ID),
		Reference:         batch.Reference,
		ProductRef:        batch.ProductRef,
		QuantityToProduce: batch.QuantityToProduce,
		Actor:             actor,
	}
}

// BatchStatusChangedEvent is emitted on every accepted status transition
type BatchStatusChangedEvent struct {
	shared.BaseDomainEvent
	Reference      string      `json:"reference"`
	PreviousStatus BatchStatus `json:"previous_status"`
	NewStatus      BatchStatus `json:"new_status"`
	Actor          string      `json:"actor"`
}

// NewBatchStatusChangedEvent creates a status changed event
func NewBatchStatusChangedEvent(batch *ProductionBatch, previous, next BatchStatus, actor string) *BatchStatusChangedEvent {
	return &BatchStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchStatusChanged, "ProductionBatch", batch.ID),
		Reference:       batch.Reference,
		PreviousStatus:  previous,
		NewStatus:       next,
		Actor:           actor,
	}
}

// MaterialQuantityRecordedEvent is emitted when an operator records the
// actual per-unit quantity for a material line
type MaterialQuantityRecordedEvent struct {
	shared.BaseDomainEvent
	Reference    string          `json:"reference"`
	MaterialCode string          `json:"material_code"`
	Color        string          `json:"color,omitempty"`
	PerUnit      decimal.Decimal `json:"per_unit"`
}

// NewMaterialQuantityRecordedEvent creates a quantity recorded event
func NewMaterialQuantityRecordedEvent(batch *ProductionBatch, line *BatchMaterialLine, perUnit decimal.Decimal) *MaterialQuantityRecordedEvent {
	return &MaterialQuantityRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaterialQuantityRecorded, "ProductionBatch", batch.ID),
		Reference:       batch.Reference,
		MaterialCode:    line.MaterialCode,
		Color:           line.Color,
		PerUnit:         perUnit,
	}
}

// MaterialsCommittedEvent is emitted after a commit run in which every
// pending line was deducted successfully
type MaterialsCommittedEvent struct {
	shared.BaseDomainEvent
	Reference     string `json:"reference"`
	LinesDeducted int    `json:"lines_deducted"`
	Actor         string `json:"actor"`
}

// NewMaterialsCommittedEvent creates a materials committed event
func NewMaterialsCommittedEvent(batch *ProductionBatch, linesDeducted int, actor string) *MaterialsCommittedEvent {
	return &MaterialsCommittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaterialsCommitted, "ProductionBatch", batch.ID),
		Reference:       batch.Reference,
		LinesDeducted:   linesDeducted,
		Actor:           actor,
	}
}

// StockDeductionFailedEvent is emitted for each line a commit run could not
// deduct. Lines already deducted in the same run stay deducted.
type StockDeductionFailedEvent struct {
	shared.BaseDomainEvent
	Reference     string          `json:"reference"`
	MaterialCode  string          `json:"material_code"`
	Required      decimal.Decimal `json:"required"`
	Available     decimal.Decimal `json:"available"`
	MaxProducible int64           `json:"max_producible"`
}

// NewStockDeductionFailedEvent creates a deduction failed event
func NewStockDeductionFailedEvent(batch *ProductionBatch, materialCode string, required, available decimal.Decimal, maxProducible int64) *StockDeductionFailedEvent {
	return &StockDeductionFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDeductionFailed, "ProductionBatch", batch.ID),
		Reference:       batch.Reference,
		MaterialCode:    materialCode,
		Required:        required,
		Available:       available,
		MaxProducible:   maxProducible,
	}
}

// BatchCancelledEvent is emitted when a batch is cancelled
type BatchCancelledEvent struct {
	shared.BaseDomainEvent
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
	Actor     string `json:"actor"`
}

// NewBatchCancelledEvent creates a batch cancelled event
func NewBatchCancelledEvent(batch *ProductionBatch, reason, actor string) *BatchCancelledEvent {
	return &BatchCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchCancelled, "ProductionBatch", batch.ID),
		Reference:       batch.Reference,
		Reason:          reason,
		Actor:           actor,
	}
}
