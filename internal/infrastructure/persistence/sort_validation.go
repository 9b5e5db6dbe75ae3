package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// Common allowed sort fields for entities with base fields
// These are the common fields present in most entities

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// MaterialSortFields contains allowed sort fields for materials
var MaterialSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"code":               true,
	"name":               true,
	"unit":               true,
	"color":              true,
	"available_quantity": true,
	"unit_cost":          true,
	"min_quantity":       true,
	"max_quantity":       true,
	"halted":             true,
}

// StockTransactionSortFields contains allowed sort fields for ledger transactions
var StockTransactionSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"transaction_type": true,
	"material_id":      true,
	"quantity":         true,
	"balance_after":    true,
	"batch_ref":        true,
	"actor":            true,
	"transaction_date": true,
}

// ProductionBatchSortFields contains allowed sort fields for production batches
var ProductionBatchSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"reference":           true,
	"product_ref":         true,
	"status":              true,
	"quantity_to_produce": true,
	"started_at":          true,
	"completed_at":        true,
	"cancelled_at":        true,
}

// StatusHistorySortFields contains allowed sort fields for batch status history
var StatusHistorySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"batch_id":   true,
	"new_status": true,
	"actor":      true,
}
