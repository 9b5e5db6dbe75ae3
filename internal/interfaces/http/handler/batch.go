package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	prodapp "github.com/mrp/backend/internal/application/production"
	"github.com/mrp/backend/internal/interfaces/http/middleware"
)

// BatchHandler handles production batch API endpoints
type BatchHandler struct {
	BaseHandler
	batchService  *prodapp.BatchService
	commitService *prodapp.CommitService
}

// NewBatchHandler creates a new BatchHandler
func NewBatchHandler(batchService *prodapp.BatchService, commitService *prodapp.CommitService) *BatchHandler {
	return &BatchHandler{
		batchService:  batchService,
		commitService: commitService,
	}
}

// RegisterRoutes registers batch routes on the API group
func (h *BatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	batches := rg.Group("/batches")
	{
		batches.GET("", h.List)
		batches.GET("/:id", h.GetByID)
		batches.GET("/reference/:reference", h.GetByReference)
		batches.GET("/:id/history", h.GetHistory)

		// Mutations require an operator identity for the audit trail
		batches.POST("", middleware.RequireOperator(), h.Create)
		batches.PUT("/:id/lines/:lineId/actual", middleware.RequireOperator(), h.RecordActual)
		batches.PUT("/:id/lines/:lineId/leftover", middleware.RequireOperator(), h.RecordLeftover)
		batches.POST("/:id/commit", middleware.RequireOperator(), h.Commit)
		batches.POST("/:id/transition", middleware.RequireOperator(), h.Transition)
		batches.POST("/:id/transition/confirm", middleware.RequireOperator(), h.ConfirmTransition)
	}
}

// Create plans a new production batch
func (h *BatchHandler) Create(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.BadRequest(c, "X-Operator header is required")
		return
	}

	var req prodapp.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	batch, err := h.batchService.Create(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, batch)
}

// GetByID returns a batch with its lines, leftovers and history
func (h *BatchHandler) GetByID(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	batch, err := h.batchService.GetByID(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// GetByReference returns a batch by its human-readable reference
func (h *BatchHandler) GetByReference(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		h.BadRequest(c, "Batch reference is required")
		return
	}

	batch, err := h.batchService.GetByReference(c.Request.Context(), reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// List returns batches matching the filter, paginated
func (h *BatchHandler) List(c *gin.Context) {
	var filter prodapp.BatchListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	batches, total, err := h.batchService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, batches, total, page, pageSize)
}

// GetHistory returns the batch's transition log, oldest first
func (h *BatchHandler) GetHistory(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	history, err := h.batchService.GetStatusHistory(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, history)
}

// RecordActual records the operator-entered per-unit quantity for one line
func (h *BatchHandler) RecordActual(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.BadRequest(c, "X-Operator header is required")
		return
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	var req prodapp.RecordActualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	batch, err := h.batchService.RecordActual(c.Request.Context(), batchID, lineID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// RecordLeftover records the leftover quantity for one line
func (h *BatchHandler) RecordLeftover(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.BadRequest(c, "X-Operator header is required")
		return
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	var req prodapp.RecordLeftoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	batch, err := h.batchService.RecordLeftover(c.Request.Context(), batchID, lineID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// Commit deducts stock for the batch's pending material lines. The result
// reports per-line failures; deducted lines stay deducted and commit can be
// re-invoked after the failures are resolved.
func (h *BatchHandler) Commit(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.BadRequest(c, "X-Operator header is required")
		return
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	result, err := h.commitService.Commit(c.Request.Context(), batchID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Transition requests a forward transition or a cancellation
func (h *BatchHandler) Transition(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.BadRequest(c, "X-Operator header is required")
		return
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	var req prodapp.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	batch, err := h.batchService.RequestTransition(c.Request.Context(), batchID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// ConfirmTransition performs an explicitly confirmed backward transition
func (h *BatchHandler) ConfirmTransition(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.BadRequest(c, "X-Operator header is required")
		return
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	var req prodapp.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	batch, err := h.batchService.ConfirmTransition(c.Request.Context(), batchID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}
