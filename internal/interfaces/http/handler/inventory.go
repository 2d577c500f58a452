package handler

import (
	inventoryapp "github.com/fulfil/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryHandler handles product and stock API endpoints
type InventoryHandler struct {
	BaseHandler
	productService        *inventoryapp.ProductService
	reconciliationService *inventoryapp.ReconciliationService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(productService *inventoryapp.ProductService, reconciliationService *inventoryapp.ReconciliationService) *InventoryHandler {
	return &InventoryHandler{
		productService:        productService,
		reconciliationService: reconciliationService,
	}
}

// CreateProductRequest represents a request to register a product
type CreateProductRequest struct {
	Name         string  `json:"name" binding:"required,max=200"`
	Code         string  `json:"code" binding:"required,max=100"`
	InitialStock float64 `json:"initial_stock"`
}

// AdjustStockRequest represents a manual stock correction
type AdjustStockRequest struct {
	Delta  float64 `json:"delta" binding:"required"`
	Reason string  `json:"reason" binding:"max=500"`
}

// Create registers a new product
func (h *InventoryHandler) Create(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.Create(c.Request.Context(), storeID, actorID, inventoryapp.CreateProductRequest{
		Name:         req.Name,
		Code:         req.Code,
		InitialStock: toDecimal(req.InitialStock),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID returns one product with its stock level
func (h *InventoryHandler) GetByID(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), storeID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// List returns the store's products with pagination
func (h *InventoryHandler) List(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	var query struct {
		Search   string `form:"search"`
		Page     int    `form:"page,default=1" binding:"min=1"`
		PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	products, total, err := h.productService.List(c.Request.Context(), storeID, inventoryapp.ProductListFilter{
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, query.Page, query.PageSize)
}

// AdjustStock applies a manual stock adjustment with a reason
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), storeID, productID, actorID, inventoryapp.AdjustStockRequest{
		Delta:  toDecimal(req.Delta),
		Reason: req.Reason,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// ListMovements returns the product's movement ledger, newest first
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var query struct {
		Page     int `form:"page,default=1" binding:"min=1"`
		PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movements, err := h.reconciliationService.Movements(c.Request.Context(), storeID, productID, query.Page, query.PageSize)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, movements)
}

// Reconcile compares each product's stock level against its ledger sum
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	report, err := h.reconciliationService.Report(c.Request.Context(), storeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}
