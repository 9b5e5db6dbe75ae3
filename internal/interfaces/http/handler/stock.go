package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	stockapp "github.com/mrp/backend/internal/application/stock"
	"github.com/mrp/backend/internal/interfaces/http/middleware"
)

// MaterialHandler handles material and stock ledger API endpoints
type MaterialHandler struct {
	BaseHandler
	materialService *stockapp.MaterialService
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(materialService *stockapp.MaterialService) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
	}
}

// RegisterRoutes registers material routes on the API group
func (h *MaterialHandler) RegisterRoutes(rg *gin.RouterGroup) {
	materials := rg.Group("/materials")
	{
		materials.GET("", h.List)
		materials.GET("/:id", h.GetByID)
		materials.GET("/code/:code", h.GetByCode)
		materials.GET("/:id/transactions", h.ListTransactions)

		materials.POST("", h.Create)
		materials.POST("/:id/credit", middleware.RequireOperator(), h.Credit)
		materials.POST("/:id/halt", h.Halt)
		materials.DELETE("/:id/halt", h.ClearHalt)
		materials.POST("/:id/consistency-check", h.CheckConsistency)
	}
}

// Create registers a new material
func (h *MaterialHandler) Create(c *gin.Context) {
	var req stockapp.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	material, err := h.materialService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, material)
}

// GetByID returns a material by ID
func (h *MaterialHandler) GetByID(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	material, err := h.materialService.GetByID(c.Request.Context(), materialID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, material)
}

// GetByCode returns a material by its unique code
func (h *MaterialHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Material code is required")
		return
	}

	material, err := h.materialService.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, material)
}

// List returns materials matching the filter, paginated
func (h *MaterialHandler) List(c *gin.Context) {
	var filter stockapp.MaterialListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	materials, total, err := h.materialService.List(c.Request.Context(), filter)
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
	h.SuccessWithMeta(c, materials, total, page, pageSize)
}

// ListTransactions returns the material's ledger entries, paginated
func (h *MaterialHandler) ListTransactions(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	var filter stockapp.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	transactions, total, err := h.materialService.ListTransactions(c.Request.Context(), materialID, filter)
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
	h.SuccessWithMeta(c, transactions, total, page, pageSize)
}

// Credit adds stock to a material with a ledger entry
func (h *MaterialHandler) Credit(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.BadRequest(c, "X-Operator header is required")
		return
	}

	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	var req stockapp.CreditStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	material, err := h.materialService.CreditStock(c.Request.Context(), materialID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, material)
}

// Halt stops automated deduction for a material
func (h *MaterialHandler) Halt(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	var req stockapp.HaltMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	material, err := h.materialService.Halt(c.Request.Context(), materialID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, material)
}

// ClearHalt resumes automated deduction for a halted material
func (h *MaterialHandler) ClearHalt(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	material, err := h.materialService.ClearHalt(c.Request.Context(), materialID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, material)
}

// CheckConsistency audits the material's ledger against its stored balance
func (h *MaterialHandler) CheckConsistency(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	report, err := h.materialService.CheckConsistency(c.Request.Context(), materialID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}
