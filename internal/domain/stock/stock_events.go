package stock

import (
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants for the stock ledger
const (
	EventTypeStockDeducted       = "stock.deducted"
	EventTypeStockCredited       = "stock.credited"
	EventTypeStockBelowThreshold = "stock.below_threshold"
	EventTypeMaterialHalted      = "stock.material_halted"
)

// StockDeductedEvent is emitted when stock is deducted from a material
type StockDeductedEvent struct {
	shared.BaseDomainEvent
	MaterialCode string          `json:"material_code"`
	Quantity     decimal.Decimal `json:"quantity"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	BatchRef     string          `json:"batch_ref"`
	Actor        string          `json:"actor"`
}

// NewStockDeductedEvent creates a new StockDeductedEvent
func NewStockDeductedEvent(m *Material, quantity decimal.Decimal, batchRef, actor string) *StockDeductedEvent {
	return &StockDeductedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDeducted, "Material", m.ID),
		MaterialCode:    m.Code,
		Quantity:        quantity,
		BalanceAfter:    m.AvailableQuantity,
		BatchRef:        batchRef,
		Actor:           actor,
	}
}

// StockCreditedEvent is emitted when stock is credited back to a material
type StockCreditedEvent struct {
	shared.BaseDomainEvent
	MaterialCode string          `json:"material_code"`
	Quantity     decimal.Decimal `json:"quantity"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	BatchRef     string          `json:"batch_ref"`
	Actor        string          `json:"actor"`
}

// NewStockCreditedEvent creates a new StockCreditedEvent
func NewStockCreditedEvent(m *Material, quantity decimal.Decimal, batchRef, actor string) *StockCreditedEvent {
	return &StockCreditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCredited, "Material", m.ID),
		MaterialCode:    m.Code,
		Quantity:        quantity,
		BalanceAfter:    m.AvailableQuantity,
		BatchRef:        batchRef,
		Actor:           actor,
	}
}

// StockBelowThresholdEvent is emitted when a deduction drops the balance
// below the material's minimum threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	MaterialCode string          `json:"material_code"`
	Available    decimal.Decimal `json:"available"`
	MinQuantity  decimal.Decimal `json:"min_quantity"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(m *Material) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, "Material", m.ID),
		MaterialCode:    m.Code,
		Available:       m.AvailableQuantity,
		MinQuantity:     m.MinQuantity,
	}
}

// MaterialHaltedEvent is emitted when a material is locked from automated
// deduction after a consistency fault
type MaterialHaltedEvent struct {
	shared.BaseDomainEvent
	MaterialCode string `json:"material_code"`
	Reason       string `json:"reason"`
}

// NewMaterialHaltedEvent creates a new MaterialHaltedEvent
func NewMaterialHaltedEvent(m *Material, reason string) *MaterialHaltedEvent {
	return &MaterialHaltedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaterialHalted, "Material", m.ID),
		MaterialCode:    m.Code,
		Reason:          reason,
	}
}
