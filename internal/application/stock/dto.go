package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/stock"
)

// MaterialResponse represents a material in API responses
type MaterialResponse struct {
	ID                uuid.UUID       `json:"id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	Color             string          `json:"color,omitempty"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	MinQuantity       decimal.Decimal `json:"min_quantity"`
	MaxQuantity       decimal.Decimal `json:"max_quantity"`
	IsBelowMinimum    bool            `json:"is_below_minimum"`
	IsAboveMaximum    bool            `json:"is_above_maximum"`
	Halted            bool            `json:"halted"`
	HaltReason        string          `json:"halt_reason,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToMaterialResponse converts a material to its response representation
func ToMaterialResponse(m *stock.Material) MaterialResponse {
	return MaterialResponse{
		ID:                m.ID,
		Code:              m.Code,
		Name:              m.Name,
		Unit:              m.Unit,
		Color:             m.Color,
		AvailableQuantity: m.AvailableQuantity,
		UnitCost:          m.UnitCost,
		MinQuantity:       m.MinQuantity,
		MaxQuantity:       m.MaxQuantity,
		IsBelowMinimum:    m.IsBelowMinimum(),
		IsAboveMaximum:    m.IsAboveMaximum(),
		Halted:            m.Halted,
		HaltReason:        m.HaltReason,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Version:           m.GetVersion(),
	}
}

// MaterialListFilter represents filter options for the material list
type MaterialListFilter struct {
	Search       string `form:"search"`
	BelowMinimum *bool  `form:"below_minimum"`
	Halted       *bool  `form:"halted"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateMaterialRequest represents a request to register a new material
type CreateMaterialRequest struct {
	Code        string          `json:"code" binding:"required,min=1,max=50"`
	Name        string          `json:"name" binding:"required,min=1,max=255"`
	Unit        string          `json:"unit" binding:"required,min=1,max=20"`
	Color       string          `json:"color" binding:"omitempty,max=50"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	MaxQuantity decimal.Decimal `json:"max_quantity"`
}

// CreditStockRequest represents a request to add stock to a material
type CreditStockRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	BatchRef string          `json:"batch_ref" binding:"required,min=1,max=50"`
	Reason   string          `json:"reason" binding:"omitempty,max=255"`
}

// HaltMaterialRequest represents a request to halt automated deduction
type HaltMaterialRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// TransactionResponse represents a ledger transaction in API responses
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	MaterialID      uuid.UUID       `json:"material_id"`
	TransactionType string          `json:"transaction_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	BalanceBefore   decimal.Decimal `json:"balance_before"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	BatchRef        string          `json:"batch_ref"`
	Actor           string          `json:"actor"`
	Reason          string          `json:"reason,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
}

// ToTransactionResponse converts a ledger transaction to its response representation
func ToTransactionResponse(tx *stock.StockTransaction) TransactionResponse {
	return TransactionResponse{
		ID:              tx.ID,
		MaterialID:      tx.MaterialID,
		TransactionType: tx.TransactionType.String(),
		Quantity:        tx.Quantity,
		BalanceBefore:   tx.BalanceBefore,
		BalanceAfter:    tx.BalanceAfter,
		UnitCost:        tx.UnitCost,
		TotalCost:       tx.TotalCost(),
		BatchRef:        tx.BatchRef,
		Actor:           tx.Actor,
		Reason:          tx.Reason,
		TransactionDate: tx.TransactionDate,
	}
}

// TransactionListFilter represents filter options for the transaction list
type TransactionListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ConsistencyReport summarizes a ledger audit run for one material
type ConsistencyReport struct {
	MaterialID   uuid.UUID `json:"material_id"`
	MaterialCode string    `json:"material_code"`
	Checked      int       `json:"checked"`
	Faults       []string  `json:"faults,omitempty"`
	Halted       bool      `json:"halted"`
}
