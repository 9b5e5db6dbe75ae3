package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Stock ledger error codes
const (
	// ErrCodeInsufficientStock is used when the available balance cannot cover a deduction
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeMaterialHalted is used when a halted material blocks automated deduction
	ErrCodeMaterialHalted = "ERR_MATERIAL_HALTED"
	// ErrCodeConsistencyFault is used when the ledger balance and transaction log disagree
	ErrCodeConsistencyFault = "ERR_CONSISTENCY_FAULT"
)

// Batch lifecycle error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInvalidTransition is used when the requested transition is not permitted
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
	// ErrCodeConfirmationRequired is used when a backward transition lacks confirmation
	ErrCodeConfirmationRequired = "ERR_CONFIRMATION_REQUIRED"
	// ErrCodeMaterialsNotReconciled is used when actual quantities are missing
	ErrCodeMaterialsNotReconciled = "ERR_MATERIALS_NOT_RECONCILED"
	// ErrCodeMaterialsNotCommitted is used when stock deduction has not been run
	ErrCodeMaterialsNotCommitted = "ERR_MATERIALS_NOT_COMMITTED"
	// ErrCodeLeftoversNotRecorded is used when leftover records are missing
	ErrCodeLeftoversNotRecorded = "ERR_LEFTOVERS_NOT_RECORDED"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Stock ledger errors
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeMaterialHalted:    http.StatusUnprocessableEntity,
	ErrCodeConsistencyFault:  http.StatusConflict,

	// Lifecycle errors -> 422 Unprocessable Entity, except confirmation -> 409
	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition:      http.StatusUnprocessableEntity,
	ErrCodeConfirmationRequired:   http.StatusConflict,
	ErrCodeMaterialsNotReconciled: http.StatusUnprocessableEntity,
	ErrCodeMaterialsNotCommitted:  http.StatusUnprocessableEntity,
	ErrCodeLeftoversNotRecorded:   http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:           http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to transport codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                    ErrCodeNotFound,
	"ALREADY_EXISTS":               ErrCodeAlreadyExists,
	"INVALID_INPUT":                ErrCodeInvalidInput,
	"INVALID_STATE":                ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":         ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":           ErrCodeInsufficientStock,
	"MATERIAL_HALTED":              ErrCodeMaterialHalted,
	"CONSISTENCY_FAULT":            ErrCodeConsistencyFault,
	"INVALID_TRANSITION":           ErrCodeInvalidTransition,
	"INVALID_BACKWARD_TRANSITION":  ErrCodeConfirmationRequired,
	"MATERIALS_NOT_RECONCILED":     ErrCodeMaterialsNotReconciled,
	"MATERIALS_NOT_COMMITTED":      ErrCodeMaterialsNotCommitted,
	"LEFTOVERS_NOT_RECORDED":       ErrCodeLeftoversNotRecorded,
	"ALREADY_CANCELLED":            ErrCodeInvalidTransition,
	"CANNOT_CANCEL_COMPLETED":      ErrCodeInvalidTransition,
	"CANCELLATION_REASON_REQUIRED": ErrCodeValidationRequired,
	"LINE_DEDUCTED":                ErrCodeInvalidState,
	"SIZE_BREAKDOWN_MISMATCH":      ErrCodeValidationRange,
	"DUPLICATE_MATERIAL":           ErrCodeAlreadyExists,
	"INVALID_QUANTITY":             ErrCodeValidationRange,
	"VALIDATION_ERROR":             ErrCodeValidation,
	"BAD_REQUEST":                  ErrCodeBadRequest,
	"INTERNAL_ERROR":               ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the transport format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
