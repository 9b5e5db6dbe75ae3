package stock

import (
	"time"

	"github.com/mrp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Material represents a raw material tracked by the stock ledger.
// It is the aggregate root for all ledger operations; AvailableQuantity
// is only ever mutated through Deduct and Credit.
type Material struct {
	shared.BaseAggregateRoot
	Code              string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name              string          `gorm:"type:varchar(255);not null"`
	Unit              string          `gorm:"type:varchar(20);not null"`
	Color             string          `gorm:"type:varchar(50)"`
	AvailableQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinQuantity       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Threshold for alerts, not a hard limit
	MaxQuantity       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Halted            bool            `gorm:"not null;default:false"` // Set on consistency fault, blocks automated deduction
	HaltReason        string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Material) TableName() string {
	return "materials"
}

// NewMaterial creates a new material ledger entry
func NewMaterial(code, name, unit string) (*Material, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Material code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Material name cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit of measure cannot be empty")
	}

	return &Material{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Unit:              unit,
		AvailableQuantity: decimal.Zero,
		UnitCost:          decimal.Zero,
		MinQuantity:       decimal.Zero,
		MaxQuantity:       decimal.Zero,
	}, nil
}

// CanFulfill returns true if the available quantity covers the requested quantity
func (m *Material) CanFulfill(quantity decimal.Decimal) bool {
	return m.AvailableQuantity.GreaterThanOrEqual(quantity)
}

// Deduct removes quantity from the available balance.
// It fails when the material is halted or the balance is insufficient;
// the caller persists the change with optimistic locking and appends the
// matching StockTransaction in the same database transaction.
func (m *Material) Deduct(quantity decimal.Decimal, batchRef, actor string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}
	if m.Halted {
		return shared.NewDomainError("MATERIAL_HALTED", "Material is halted pending consistency review")
	}
	if m.AvailableQuantity.LessThan(quantity) {
		return shared.ErrInsufficientStock
	}

	m.AvailableQuantity = m.AvailableQuantity.Sub(quantity)
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewStockDeductedEvent(m, quantity, batchRef, actor))

	if m.IsBelowMinimum() {
		m.AddDomainEvent(NewStockBelowThresholdEvent(m))
	}

	return nil
}

// Credit adds quantity back to the available balance.
// Used for replenishment and for routing reusable leftovers back to stock.
func (m *Material) Credit(quantity decimal.Decimal, batchRef, actor string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Credit quantity must be positive")
	}

	m.AvailableQuantity = m.AvailableQuantity.Add(quantity)
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewStockCreditedEvent(m, quantity, batchRef, actor))

	return nil
}

// Halt blocks further automated deductions for this material.
// Called when the ledger balance and transaction log disagree; the flag is
// never cleared automatically.
func (m *Material) Halt(reason string) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Halt reason is required")
	}

	m.Halted = true
	m.HaltReason = reason
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMaterialHaltedEvent(m, reason))

	return nil
}

// ClearHalt re-enables automated deductions after operator review
func (m *Material) ClearHalt() {
	m.Halted = false
	m.HaltReason = ""
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// SetUnitCost updates the cost snapshot used for new transactions
func (m *Material) SetUnitCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	m.UnitCost = cost
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// SetThresholds updates the min/max display thresholds
func (m *Material) SetThresholds(minQty, maxQty decimal.Decimal) error {
	if minQty.IsNegative() || maxQty.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Thresholds cannot be negative")
	}
	m.MinQuantity = minQty
	m.MaxQuantity = maxQty
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// IsBelowMinimum returns true if available quantity is below the minimum threshold
func (m *Material) IsBelowMinimum() bool {
	return m.MinQuantity.GreaterThan(decimal.Zero) && m.AvailableQuantity.LessThan(m.MinQuantity)
}

// IsAboveMaximum returns true if available quantity is above the maximum threshold
func (m *Material) IsAboveMaximum() bool {
	return m.MaxQuantity.GreaterThan(decimal.Zero) && m.AvailableQuantity.GreaterThan(m.MaxQuantity)
}

// MaxProducible returns how many units of product the available balance can
// cover given a per-unit requirement. Returns zero for non-positive per-unit
// quantities.
func (m *Material) MaxProducible(perUnitQuantity decimal.Decimal) int64 {
	if perUnitQuantity.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	return m.AvailableQuantity.Div(perUnitQuantity).Floor().IntPart()
}
