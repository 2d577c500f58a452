package handler

import (
	fulfillmentapp "github.com/fulfil/backend/internal/application/fulfillment"
	"github.com/fulfil/backend/internal/domain/fulfillment"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles order lifecycle API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *fulfillmentapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *fulfillmentapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// CreateOrderRequest represents a request to register a new order
type CreateOrderRequest struct {
	OrderNumber string                 `json:"order_number" binding:"required,min=1,max=50"`
	CustomerRef string                 `json:"customer_ref" binding:"max=100"`
	Items       []CreateOrderItemInput `json:"items" binding:"required,min=1,dive"`
	Remark      string                 `json:"remark"`
}

// CreateOrderItemInput represents an item in the create order request
type CreateOrderItemInput struct {
	ProductID   string `json:"product_id" binding:"required,uuid"`
	ProductName string `json:"product_name" binding:"required,min=1,max=200"`
	ProductCode string `json:"product_code" binding:"max=50"`
	Quantity    int64  `json:"quantity" binding:"required,gt=0"`
}

// PatchOrderRequest represents an order-updated event from the channel
type PatchOrderRequest struct {
	CarrierID *string               `json:"carrier_id"`
	Remark    *string               `json:"remark"`
	Items     []PatchOrderItemInput `json:"items" binding:"dive"`
}

// PatchOrderItemInput updates or removes one line item
type PatchOrderItemInput struct {
	ItemID   string `json:"item_id" binding:"required,uuid"`
	Quantity *int64 `json:"quantity"`
	Remove   bool   `json:"remove"`
}

// TransitionOrderRequest represents a request to move an order through the state machine
type TransitionOrderRequest struct {
	TargetStatus string `json:"target_status" binding:"required"`
	Reason       string `json:"reason" binding:"max=500"`
}

// Create registers a new order with its line items
func (h *OrderHandler) Create(c *gin.Context) {
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

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := fulfillmentapp.CreateOrderRequest{
		OrderNumber: req.OrderNumber,
		CustomerRef: req.CustomerRef,
		Remark:      req.Remark,
	}
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		appReq.Items = append(appReq.Items, fulfillmentapp.CreateOrderItemInput{
			ProductID:   productID,
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
		})
	}

	order, err := h.orderService.Create(c.Request.Context(), storeID, actorID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID returns one order with its line items
func (h *OrderHandler) GetByID(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), storeID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// List returns the store's orders filtered by status
func (h *OrderHandler) List(c *gin.Context) {
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

	filter := fulfillmentapp.OrderListFilter{
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		status := fulfillment.OrderStatus(query.Status)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown order status")
			return
		}
		filter.Status = &status
	}

	orders, total, err := h.orderService.List(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, query.Page, query.PageSize)
}

// ListReadyToShip returns orders awaiting carrier pickup
func (h *OrderHandler) ListReadyToShip(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
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

	orders, total, err := h.orderService.ListReadyToShip(c.Request.Context(), storeID, query.Page, query.PageSize)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, query.Page, query.PageSize)
}

// Patch updates mutable order fields while the order is still open
func (h *OrderHandler) Patch(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req PatchOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := fulfillmentapp.PatchOrderRequest{
		Remark: req.Remark,
	}
	if req.CarrierID != nil && *req.CarrierID != "" {
		carrierID, err := uuid.Parse(*req.CarrierID)
		if err != nil {
			h.BadRequest(c, "Invalid carrier ID format")
			return
		}
		appReq.CarrierID = &carrierID
	}
	for _, item := range req.Items {
		itemID, err := uuid.Parse(item.ItemID)
		if err != nil {
			h.BadRequest(c, "Invalid item ID format")
			return
		}
		appReq.Items = append(appReq.Items, fulfillmentapp.PatchOrderItemRequest{
			ItemID:   itemID,
			Quantity: item.Quantity,
			Remove:   item.Remove,
		})
	}

	order, err := h.orderService.Patch(c.Request.Context(), storeID, orderID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Transition moves an order along its lifecycle
func (h *OrderHandler) Transition(c *gin.Context) {
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

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req TransitionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	target := fulfillment.OrderStatus(req.TargetStatus)
	order, err := h.orderService.Transition(c.Request.Context(), storeID, orderID, target, req.Reason, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}
