package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/production"
)

// CreateBatchRequest represents a request to plan a new production batch
type CreateBatchRequest struct {
	ProductRef        string                     `json:"product_ref" binding:"required,min=1,max=100"`
	QuantityToProduce int                        `json:"quantity_to_produce" binding:"required,min=1"`
	SizeBreakdown     map[string]int             `json:"size_breakdown"`
	Specifications    map[string]string          `json:"specifications"`
	Materials         []BatchMaterialLineRequest `json:"materials" binding:"omitempty,dive"`
}

// BatchMaterialLineRequest represents one material requirement on a new batch
type BatchMaterialLineRequest struct {
	MaterialID       uuid.UUID       `json:"material_id" binding:"required"`
	Color            string          `json:"color" binding:"omitempty,max=50"`
	EstimatedPerUnit decimal.Decimal `json:"estimated_per_unit"`
}

// RecordActualRequest represents a request to record the actual per-unit
// quantity for a material line
type RecordActualRequest struct {
	PerUnitQuantity decimal.Decimal `json:"per_unit_quantity" binding:"required"`
	Comment         string          `json:"comment" binding:"omitempty,max=255"`
}

// TransitionRequest represents a request to move a batch to a new status
type TransitionRequest struct {
	Target  string `json:"target" binding:"required"`
	Comment string `json:"comment" binding:"omitempty,max=255"`
}

// RecordLeftoverRequest represents a request to record the leftover quantity
// for a material line
type RecordLeftoverRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Reusable bool            `json:"reusable"`
	Notes    string          `json:"notes" binding:"omitempty,max=500"`
}

// BatchListFilter represents filter options for the batch list
type BatchListFilter struct {
	Status   string `form:"status" binding:"omitempty"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BatchResponse represents a production batch in API responses
type BatchResponse struct {
	ID                  uuid.UUID              `json:"id"`
	Reference           string                 `json:"reference"`
	ProductRef          string                 `json:"product_ref"`
	QuantityToProduce   int                    `json:"quantity_to_produce"`
	SizeBreakdown       map[string]int         `json:"size_breakdown,omitempty"`
	Specifications      map[string]string      `json:"specifications,omitempty"`
	Status              string                 `json:"status"`
	CancellationReason  string                 `json:"cancellation_reason,omitempty"`
	Reconciled          bool                   `json:"reconciled"`
	CommitInvoked       bool                   `json:"commit_invoked"`
	DeductionIncomplete bool                   `json:"deduction_incomplete"`
	StartedAt           *time.Time             `json:"started_at,omitempty"`
	CompletedAt         *time.Time             `json:"completed_at,omitempty"`
	CancelledAt         *time.Time             `json:"cancelled_at,omitempty"`
	Lines               []MaterialLineResponse `json:"lines,omitempty"`
	Leftovers           []LeftoverResponse     `json:"leftovers,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
	Version             int                    `json:"version"`
}

// MaterialLineResponse represents a batch material line in API responses
type MaterialLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	MaterialID       uuid.UUID       `json:"material_id"`
	MaterialCode     string          `json:"material_code"`
	MaterialName     string          `json:"material_name"`
	Color            string          `json:"color,omitempty"`
	Unit             string          `json:"unit"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	EstimatedPerUnit decimal.Decimal `json:"estimated_per_unit"`
	ActualPerUnit    decimal.Decimal `json:"actual_per_unit"`
	ActualRecorded   bool            `json:"actual_recorded"`
	Comment          string          `json:"comment,omitempty"`
	TotalEstimated   decimal.Decimal `json:"total_estimated"`
	TotalActual      decimal.Decimal `json:"total_actual"`
	Deducted         bool            `json:"deducted"`
	DeductedAt       *time.Time      `json:"deducted_at,omitempty"`
}

// LeftoverResponse represents a leftover record in API responses
type LeftoverResponse struct {
	ID         uuid.UUID       `json:"id"`
	LineID     uuid.UUID       `json:"line_id"`
	MaterialID uuid.UUID       `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reusable   bool            `json:"reusable"`
	Notes      string          `json:"notes,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// BatchListItemResponse represents a batch in list responses
type BatchListItemResponse struct {
	ID                uuid.UUID  `json:"id"`
	Reference         string     `json:"reference"`
	ProductRef        string     `json:"product_ref"`
	QuantityToProduce int        `json:"quantity_to_produce"`
	Status            string     `json:"status"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// StatusHistoryResponse represents one transition log entry
type StatusHistoryResponse struct {
	ID             uuid.UUID `json:"id"`
	PreviousStatus *string   `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Actor          string    `json:"actor"`
	Comment        string    `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CommitFailure describes one material line a commit run could not deduct
type CommitFailure struct {
	LineID        uuid.UUID       `json:"line_id"`
	MaterialID    uuid.UUID       `json:"material_id"`
	MaterialCode  string          `json:"material_code"`
	Color         string          `json:"color,omitempty"`
	Code          string          `json:"code"`
	Message       string          `json:"message"`
	Required      decimal.Decimal `json:"required"`
	Available     decimal.Decimal `json:"available"`
	MaxProducible int64           `json:"max_producible"`
}

// CommitResult summarizes a commit run. Lines deducted in the run stay
// deducted even when other lines fail; the caller re-invokes commit after
// resolving the failures.
type CommitResult struct {
	BatchID        uuid.UUID       `json:"batch_id"`
	Reference      string          `json:"reference"`
	FullyCommitted bool            `json:"fully_committed"`
	LinesDeducted  int             `json:"lines_deducted"`
	LinesSkipped   int             `json:"lines_skipped"` // Already deducted by a previous run
	Failures       []CommitFailure `json:"failures,omitempty"`
}

// ToBatchResponse converts a batch aggregate to its response representation
func ToBatchResponse(b *production.ProductionBatch) BatchResponse {
	lines := make([]MaterialLineResponse, 0, len(b.Lines))
	for i := range b.Lines {
		lines = append(lines, ToMaterialLineResponse(&b.Lines[i], b.QuantityToProduce))
	}
	leftovers := make([]LeftoverResponse, 0, len(b.Leftovers))
	for i := range b.Leftovers {
		leftovers = append(leftovers, ToLeftoverResponse(&b.Leftovers[i]))
	}

	return BatchResponse{
		ID:                  b.ID,
		Reference:           b.Reference,
		ProductRef:          b.ProductRef,
		QuantityToProduce:   b.QuantityToProduce,
		SizeBreakdown:       b.SizeBreakdown,
		Specifications:      b.Specifications,
		Status:              b.Status.String(),
		CancellationReason:  b.CancellationReason,
		Reconciled:          b.IsReconciled(),
		CommitInvoked:       b.CommitInvoked,
		DeductionIncomplete: b.DeductionIncomplete,
		StartedAt:           b.StartedAt,
		CompletedAt:         b.CompletedAt,
		CancelledAt:         b.CancelledAt,
		Lines:               lines,
		Leftovers:           leftovers,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
		Version:             b.GetVersion(),
	}
}

// ToMaterialLineResponse converts a material line to its response representation
func ToMaterialLineResponse(l *production.BatchMaterialLine, quantityToProduce int) MaterialLineResponse {
	return MaterialLineResponse{
		ID:               l.ID,
		MaterialID:       l.MaterialID,
		MaterialCode:     l.MaterialCode,
		MaterialName:     l.MaterialName,
		Color:            l.Color,
		Unit:             l.Unit,
		UnitCost:         l.UnitCost,
		EstimatedPerUnit: l.EstimatedPerUnit,
		ActualPerUnit:    l.ActualPerUnit,
		ActualRecorded:   l.ActualRecorded,
		Comment:          l.Comment,
		TotalEstimated:   l.TotalEstimated(quantityToProduce),
		TotalActual:      l.TotalActual(quantityToProduce),
		Deducted:         l.Deducted,
		DeductedAt:       l.DeductedAt,
	}
}

// ToLeftoverResponse converts a leftover record to its response representation
func ToLeftoverResponse(r *production.LeftoverRecord) LeftoverResponse {
	return LeftoverResponse{
		ID:         r.ID,
		LineID:     r.LineID,
		MaterialID: r.MaterialID,
		Quantity:   r.Quantity,
		Reusable:   r.Reusable,
		Notes:      r.Notes,
		RecordedAt: r.UpdatedAt,
	}
}

// ToBatchListItemResponse converts a batch to its list representation
func ToBatchListItemResponse(b *production.ProductionBatch) BatchListItemResponse {
	return BatchListItemResponse{
		ID:                b.ID,
		Reference:         b.Reference,
		ProductRef:        b.ProductRef,
		QuantityToProduce: b.QuantityToProduce,
		Status:            b.Status.String(),
		StartedAt:         b.StartedAt,
		CompletedAt:       b.CompletedAt,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

// ToStatusHistoryResponse converts a history entry to its response representation
func ToStatusHistoryResponse(e *production.StatusHistoryEntry) StatusHistoryResponse {
	var previous *string
	if e.PreviousStatus != nil {
		s := e.PreviousStatus.String()
		previous = &s
	}
	return StatusHistoryResponse{
		ID:             e.ID,
		PreviousStatus: previous,
		NewStatus:      e.NewStatus.String(),
		Actor:          e.Actor,
		Comment:        e.Comment,
		CreatedAt:      e.CreatedAt,
	}
}
