package fulfillment

import (
	"time"

	"github.com/fulfil/backend/internal/domain/fulfillment"
	"github.com/google/uuid"
)

// CreateOrderRequest represents a new order delivered by the sync layer
type CreateOrderRequest struct {
	OrderNumber string                 `json:"order_number" binding:"required,min=1,max=50"`
	CustomerRef string                 `json:"customer_ref" binding:"max=100"`
	Items       []CreateOrderItemInput `json:"items" binding:"required,min=1,dive"`
	Remark      string                 `json:"remark"`
}

// CreateOrderItemInput represents one line item in the create request
type CreateOrderItemInput struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	ProductName string    `json:"product_name" binding:"required,min=1,max=200"`
	ProductCode string    `json:"product_code" binding:"max=50"`
	Quantity    int64     `json:"quantity" binding:"required,gt=0"`
}

// PatchOrderRequest represents an order-updated event from the sync layer.
// Item edits are rejected with OrderLocked once stock has been deducted.
type PatchOrderRequest struct {
	CarrierID *uuid.UUID              `json:"carrier_id"`
	Remark    *string                 `json:"remark"`
	Items     []PatchOrderItemRequest `json:"items" binding:"dive"`
}

// PatchOrderItemRequest updates or removes one line item
type PatchOrderItemRequest struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity *int64    `json:"quantity"`
	Remove   bool      `json:"remove"`
}

// TransitionRequest asks the state machine to move an order
type TransitionRequest struct {
	TargetStatus string `json:"target_status" binding:"required"`
	Reason       string `json:"reason" binding:"max=500"`
}

// OrderListFilter represents filter options for order listing
type OrderListFilter struct {
	Status   *fulfillment.OrderStatus
	Search   string
	Page     int
	PageSize int
}

// OrderItemResponse represents a line item in responses
type OrderItemResponse struct {
	ID            uuid.UUID `json:"id"`
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	ProductCode   string    `json:"product_code"`
	Quantity      int64     `json:"quantity"`
	StockDeducted bool      `json:"stock_deducted"`
	StockRestored bool      `json:"stock_restored"`
}

// OrderResponse represents an order in responses
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	StoreID       uuid.UUID           `json:"store_id"`
	OrderNumber   string              `json:"order_number"`
	CustomerRef   string              `json:"customer_ref"`
	Status        string              `json:"status"`
	Items         []OrderItemResponse `json:"items"`
	CarrierID     *uuid.UUID          `json:"carrier_id,omitempty"`
	Remark        string              `json:"remark,omitempty"`
	Version       int                 `json:"version"`
	ConfirmedAt   *time.Time          `json:"confirmed_at,omitempty"`
	PreparationAt *time.Time          `json:"preparation_at,omitempty"`
	ReadyToShipAt *time.Time          `json:"ready_to_ship_at,omitempty"`
	ShippedAt     *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt   *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason  string              `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToOrderResponse maps a domain order to its response representation
func ToOrderResponse(order *fulfillment.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items[i] = OrderItemResponse{
			ID:            item.ID,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			ProductCode:   item.ProductCode,
			Quantity:      item.Quantity,
			StockDeducted: item.StockDeducted,
			StockRestored: item.StockRestored,
		}
	}

	return OrderResponse{
		ID:            order.ID,
		StoreID:       order.StoreID,
		OrderNumber:   order.OrderNumber,
		CustomerRef:   order.CustomerRef,
		Status:        order.Status.String(),
		Items:         items,
		CarrierID:     order.CarrierID,
		Remark:        order.Remark,
		Version:       order.Version,
		ConfirmedAt:   order.ConfirmedAt,
		PreparationAt: order.PreparationAt,
		ReadyToShipAt: order.ReadyToShipAt,
		ShippedAt:     order.ShippedAt,
		DeliveredAt:   order.DeliveredAt,
		CancelledAt:   order.CancelledAt,
		CancelReason:  order.CancelReason,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}
