package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a ledger mutation
type TransactionType string

const (
	// TransactionTypeDeduction represents stock consumed by a production batch
	TransactionTypeDeduction TransactionType = "DEDUCTION"
	// TransactionTypeCredit represents stock returned or replenished
	TransactionTypeCredit TransactionType = "CREDIT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDeduction || t == TransactionTypeCredit
}

// StockTransaction is an immutable record of a single ledger mutation.
// It is the canonical audit trail: once written it is never updated or
// deleted, and corrections are made with new transactions.
type StockTransaction struct {
	shared.BaseEntity
	MaterialID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_tx_material"`
	TransactionType TransactionType `gorm:"type:varchar(20);not null;index:idx_stock_tx_type"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Always positive, direction given by type
	BalanceBefore   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Cost snapshot at transaction time
	BatchRef        string          `gorm:"type:varchar(50);not null;index:idx_stock_tx_batch"`
	Actor           string          `gorm:"type:varchar(100);not null"`
	Reason          string          `gorm:"type:varchar(255)"`
	TransactionDate time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// NewStockTransaction creates a new ledger transaction record
func NewStockTransaction(
	materialID uuid.UUID,
	txType TransactionType,
	quantity decimal.Decimal,
	balanceBefore decimal.Decimal,
	balanceAfter decimal.Decimal,
	unitCost decimal.Decimal,
	batchRef string,
	actor string,
) (*StockTransaction, error) {
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MATERIAL", "Material ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if batchRef == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_REF", "Batch reference cannot be empty")
	}
	if actor == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor cannot be empty")
	}

	return &StockTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		MaterialID:      materialID,
		TransactionType: txType,
		Quantity:        quantity,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    balanceAfter,
		UnitCost:        unitCost,
		BatchRef:        batchRef,
		Actor:           actor,
		TransactionDate: time.Now(),
	}, nil
}

// WithReason sets the free-text reason for the transaction
func (t *StockTransaction) WithReason(reason string) *StockTransaction {
	t.Reason = reason
	return t
}

// SignedQuantity returns the quantity with sign based on transaction type
func (t *StockTransaction) SignedQuantity() decimal.Decimal {
	if t.TransactionType == TransactionTypeDeduction {
		return t.Quantity.Neg()
	}
	return t.Quantity
}

// TotalCost returns quantity times the unit-cost snapshot
func (t *StockTransaction) TotalCost() decimal.Decimal {
	return t.Quantity.Mul(t.UnitCost)
}

// Consistent verifies that the recorded balances match the quantity delta
func (t *StockTransaction) Consistent() bool {
	delta := t.BalanceAfter.Sub(t.BalanceBefore)
	return delta.Equal(t.SignedQuantity())
}

// NewDeduction is a helper that builds a deduction transaction from a material's
// state after Deduct has been applied.
func NewDeduction(m *Material, quantity decimal.Decimal, batchRef, actor string) (*StockTransaction, error) {
	return NewStockTransaction(
		m.ID,
		TransactionTypeDeduction,
		quantity,
		m.AvailableQuantity.Add(quantity),
		m.AvailableQuantity,
		m.UnitCost,
		batchRef,
		actor,
	)
}

// NewCredit is a helper that builds a credit transaction from a material's
// state after Credit has been applied.
func NewCredit(m *Material, quantity decimal.Decimal, batchRef, actor string) (*StockTransaction, error) {
	return NewStockTransaction(
		m.ID,
		TransactionTypeCredit,
		quantity,
		m.AvailableQuantity.Sub(quantity),
		m.AvailableQuantity,
		m.UnitCost,
		batchRef,
		actor,
	)
}
