package handler

import (
	pickingapp "github.com/fulfil/backend/internal/application/picking"
	"github.com/fulfil/backend/internal/domain/picking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PickingHandler handles picking session API endpoints
type PickingHandler struct {
	BaseHandler
	sessionService *pickingapp.SessionService
}

// NewPickingHandler creates a new PickingHandler
func NewPickingHandler(sessionService *pickingapp.SessionService) *PickingHandler {
	return &PickingHandler{
		sessionService: sessionService,
	}
}

// CreateSessionRequest represents a request to open a picking session
type CreateSessionRequest struct {
	OrderIDs []string `json:"order_ids" binding:"required,min=1,dive,uuid"`
}

// RecordPickRequest represents one pick against the aggregated shopping list
type RecordPickRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Delta     int64  `json:"delta" binding:"required"`
}

// IncrementPackedRequest represents one pack increment on a per-order counter
type IncrementPackedRequest struct {
	OrderID   string `json:"order_id" binding:"required,uuid"`
	ProductID string `json:"product_id" binding:"required,uuid"`
	Delta     int64  `json:"delta" binding:"required"`
}

// Create opens a picking session over the requested orders
func (h *PickingHandler) Create(c *gin.Context) {
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

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := pickingapp.CreateSessionRequest{}
	for _, idStr := range req.OrderIDs {
		orderID, err := uuid.Parse(idStr)
		if err != nil {
			h.BadRequest(c, "Invalid order ID format")
			return
		}
		appReq.OrderIDs = append(appReq.OrderIDs, orderID)
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), storeID, actorID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, session)
}

// GetByID returns one session with orders, items and counters
func (h *PickingHandler) GetByID(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), storeID, sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, session)
}

// GetByCode returns a session looked up by its human-readable code
func (h *PickingHandler) GetByCode(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Session code is required")
		return
	}

	session, err := h.sessionService.GetSessionByCode(c.Request.Context(), storeID, code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, session)
}

// List returns the store's sessions filtered by status
func (h *PickingHandler) List(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	var query struct {
		Status   string `form:"status"`
		Search   string `form:"search"`
		Page     int    `form:"page,default=1" binding:"min=1"`
		PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := pickingapp.SessionListFilter{
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		status := picking.SessionStatus(query.Status)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown session status")
			return
		}
		filter.Status = &status
	}

	sessions, err := h.sessionService.ListSessions(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sessions)
}

// ListStale returns active sessions without recent activity
func (h *PickingHandler) ListStale(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	sessions, err := h.sessionService.ListStale(c.Request.Context(), storeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sessions)
}

// RecordPick adds picked units to a shopping-list item
func (h *PickingHandler) RecordPick(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req RecordPickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	item, err := h.sessionService.RecordPick(c.Request.Context(), storeID, sessionID, pickingapp.RecordPickRequest{
		ProductID: productID,
		Delta:     req.Delta,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// StartPacking moves a fully picked session into packing
func (h *PickingHandler) StartPacking(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	session, err := h.sessionService.StartPacking(c.Request.Context(), storeID, sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, session)
}

// IncrementPacked applies a delta to one packing counter
func (h *PickingHandler) IncrementPacked(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req IncrementPackedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	progress, err := h.sessionService.IncrementPacked(c.Request.Context(), storeID, sessionID, pickingapp.IncrementPackedRequest{
		OrderID:   orderID,
		ProductID: productID,
		Delta:     req.Delta,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, progress)
}

// ListProgress returns the session's packing counters
func (h *PickingHandler) ListProgress(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	progress, err := h.sessionService.ListProgress(c.Request.Context(), storeID, sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, progress)
}

// Complete finishes packing and ships every member order's stock
func (h *PickingHandler) Complete(c *gin.Context) {
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

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	session, err := h.sessionService.CompleteSession(c.Request.Context(), storeID, sessionID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, session)
}

// Abandon cancels an active session and releases its orders
func (h *PickingHandler) Abandon(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	session, err := h.sessionService.AbandonSession(c.Request.Context(), storeID, sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, session)
}
