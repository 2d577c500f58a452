package fulfillment

import (
	"fmt"
	"time"

	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "pending"
	OrderStatusConfirmed     OrderStatus = "confirmed"
	OrderStatusInPreparation OrderStatus = "in_preparation"
	OrderStatusReadyToShip   OrderStatus = "ready_to_ship"
	OrderStatusShipped       OrderStatus = "shipped"
	OrderStatusDelivered     OrderStatus = "delivered"
	OrderStatusCancelled     OrderStatus = "cancelled"
	OrderStatusRejected      OrderStatus = "rejected"
	OrderStatusIncident      OrderStatus = "incident"
	OrderStatusNotDelivered  OrderStatus = "not_delivered"
	OrderStatusReturned      OrderStatus = "returned"
)

// IsValid checks if the status is a known OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusInPreparation,
		OrderStatusReadyToShip, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCancelled, OrderStatusRejected, OrderStatusIncident,
		OrderStatusNotDelivered, OrderStatusReturned:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsStockCommitted reports whether inventory has been deducted at or after
// this status.
func (s OrderStatus) IsStockCommitted() bool {
	switch s {
	case OrderStatusReadyToShip, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the order lifecycle
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRejected,
		OrderStatusNotDelivered, OrderStatusReturned:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status.
// The graph is strictly forward except for the explicit reversal branches
// (cancellation, rejection, incident, return).
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled || target == OrderStatusRejected
	case OrderStatusConfirmed:
		return target == OrderStatusInPreparation || target == OrderStatusCancelled || target == OrderStatusRejected
	case OrderStatusInPreparation:
		return target == OrderStatusReadyToShip || target == OrderStatusCancelled
	case OrderStatusReadyToShip:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered || target == OrderStatusIncident
	case OrderStatusIncident:
		return target == OrderStatusNotDelivered || target == OrderStatusDelivered
	case OrderStatusDelivered:
		return target == OrderStatusReturned
	}
	// cancelled, rejected, not_delivered, returned are terminal
	return false
}

// Fulfillment domain errors
var (
	// ErrOrderLocked rejects line-item edits once stock has been deducted for
	// any item on the order.
	ErrOrderLocked = shared.NewDomainError("ORDER_LOCKED", "Order line items are locked after stock deduction")
)

// NewInvalidTransitionError builds the error for a transition not allowed by the graph
func NewInvalidTransitionError(from, to OrderStatus) *shared.DomainError {
	return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition order from %s to %s", from, to))
}

// OrderLineItem represents one product within an order.
//
// StockDeducted and StockRestored are the idempotency guards for inventory
// mutation: each can go false -> true exactly once, and restoration is only
// meaningful after deduction. They are what make retried transitions safe.
type OrderLineItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	ProductCode   string
	Quantity      int64
	StockDeducted bool
	StockRestored bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrderLineItem creates a new order line item
func NewOrderLineItem(orderID, productID uuid.UUID, productName, productCode string, quantity int64) (*OrderLineItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	now := time.Now()
	return &OrderLineItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		ProductCode: productCode,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MarkDeducted flips the deduction guard. It is an error to deduct twice.
func (i *OrderLineItem) MarkDeducted() error {
	if i.StockDeducted {
		return shared.NewDomainError("ALREADY_DEDUCTED", "Stock already deducted for this line item")
	}
	i.StockDeducted = true
	i.UpdatedAt = time.Now()
	return nil
}

// MarkRestored flips the restoration guard. Restoration requires a prior
// deduction and is an error to apply twice.
func (i *OrderLineItem) MarkRestored() error {
	if !i.StockDeducted {
		return shared.NewDomainError("NOT_DEDUCTED", "Cannot restore stock that was never deducted")
	}
	if i.StockRestored {
		return shared.NewDomainError("ALREADY_RESTORED", "Stock already restored for this line item")
	}
	i.StockRestored = true
	i.UpdatedAt = time.Now()
	return nil
}

// Order represents a customer order aggregate root.
//
// The order owns its lifecycle: status changes only happen through
// TransitionTo, and the stock-mutation bookkeeping (which line items need
// deduction or restoration for a given transition) is derived here so the
// application layer can run it inside the same storage transaction as the
// status write.
type Order struct {
	shared.StoreAggregateRoot
	OrderNumber string
	CustomerRef string
	Items       []OrderLineItem
	Status      OrderStatus
	CarrierID   *uuid.UUID
	Remark      string

	ConfirmedAt    *time.Time
	PreparationAt  *time.Time
	ReadyToShipAt  *time.Time
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	RejectedAt     *time.Time
	IncidentAt     *time.Time
	NotDeliveredAt *time.Time
	ReturnedAt     *time.Time
	CancelReason   string
}

// NewOrder creates a new order in pending status.
// Orders are delivered by the external sync layer already associated with a
// store and a platform-side order number.
func NewOrder(storeID uuid.UUID, orderNumber, customerRef string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}

	order := &Order{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		OrderNumber:        orderNumber,
		CustomerRef:        customerRef,
		Items:              make([]OrderLineItem, 0),
		Status:             OrderStatusPending,
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// IsLocked reports whether line-item edits are forbidden. An order locks as
// soon as stock has been deducted for any of its items.
func (o *Order) IsLocked() bool {
	for idx := range o.Items {
		if o.Items[idx].StockDeducted {
			return true
		}
	}
	return false
}

// AddItem adds a new line item to the order
func (o *Order) AddItem(productID uuid.UUID, productName, productCode string, quantity int64) (*OrderLineItem, error) {
	if o.IsLocked() {
		return nil, ErrOrderLocked
	}
	if o.Status != OrderStatusPending && o.Status != OrderStatusConfirmed {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to an order past confirmation")
	}

	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order, update quantity instead")
		}
	}

	item, err := NewOrderLineItem(o.ID, productID, productName, productCode, quantity)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.UpdatedAt = time.Now()

	return item, nil
}

// UpdateItemQuantity updates the quantity of an existing line item
func (o *Order) UpdateItemQuantity(itemID uuid.UUID, quantity int64) error {
	if o.IsLocked() {
		return ErrOrderLocked
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			o.Items[idx].Quantity = quantity
			o.Items[idx].UpdatedAt = time.Now()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order line item not found")
}

// RemoveItem removes a line item from the order
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if o.IsLocked() {
		return ErrOrderLocked
	}

	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order line item not found")
}

// AssignCarrier assigns the carrier that will dispatch the order
func (o *Order) AssignCarrier(carrierID uuid.UUID) error {
	if carrierID == uuid.Nil {
		return shared.NewDomainError("INVALID_CARRIER", "Carrier ID cannot be empty")
	}
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot assign carrier to a finished order")
	}
	o.CarrierID = &carrierID
	o.UpdatedAt = time.Now()
	return nil
}

// SetRemark sets the order remark
func (o *Order) SetRemark(remark string) {
	o.Remark = remark
	o.UpdatedAt = time.Now()
}

// TransitionTo moves the order to the target status, validating the move
// against the lifecycle graph and stamping the transition timestamp.
//
// TransitionTo only mutates the aggregate. Persisting the new status, the
// version bump and any stock mutation must happen together in one storage
// transaction driven by the application layer.
func (o *Order) TransitionTo(target OrderStatus, reason string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return NewInvalidTransitionError(o.Status, target)
	}

	from := o.Status
	now := time.Now()
	o.Status = target
	o.UpdatedAt = now

	switch target {
	case OrderStatusConfirmed:
		o.ConfirmedAt = &now
	case OrderStatusInPreparation:
		o.PreparationAt = &now
	case OrderStatusReadyToShip:
		o.ReadyToShipAt = &now
	case OrderStatusShipped:
		o.ShippedAt = &now
	case OrderStatusDelivered:
		o.DeliveredAt = &now
	case OrderStatusCancelled:
		o.CancelledAt = &now
		o.CancelReason = reason
	case OrderStatusRejected:
		o.RejectedAt = &now
		o.CancelReason = reason
	case OrderStatusIncident:
		o.IncidentAt = &now
	case OrderStatusNotDelivered:
		o.NotDeliveredAt = &now
	case OrderStatusReturned:
		o.ReturnedAt = &now
	}

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target))

	return nil
}

// CrossesStockCommitBoundary reports whether moving to target is the first
// entry into a stock-committed state, i.e. the transition that deducts stock.
func (o *Order) CrossesStockCommitBoundary(target OrderStatus) bool {
	return !o.Status.IsStockCommitted() && target.IsStockCommitted()
}

// TriggersStockRestore reports whether moving to target reverses a prior
// stock commitment (cancellation from a committed state, or a return after
// delivery).
func (o *Order) TriggersStockRestore(target OrderStatus) bool {
	switch target {
	case OrderStatusCancelled, OrderStatusRejected:
		return o.Status.IsStockCommitted()
	case OrderStatusReturned:
		return true
	}
	return false
}

// ItemsNeedingDeduction returns the line items the Stock Mutator must deduct.
// Items already flagged are skipped, which is what makes retried transitions
// deduct at most once.
func (o *Order) ItemsNeedingDeduction() []*OrderLineItem {
	items := make([]*OrderLineItem, 0, len(o.Items))
	for idx := range o.Items {
		if !o.Items[idx].StockDeducted {
			items = append(items, &o.Items[idx])
		}
	}
	return items
}

// ItemsNeedingRestore returns the line items the Stock Mutator must add back
func (o *Order) ItemsNeedingRestore() []*OrderLineItem {
	items := make([]*OrderLineItem, 0, len(o.Items))
	for idx := range o.Items {
		if o.Items[idx].StockDeducted && !o.Items[idx].StockRestored {
			items = append(items, &o.Items[idx])
		}
	}
	return items
}

// GetItem returns a line item by its ID
func (o *Order) GetItem(itemID uuid.UUID) *OrderLineItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// GetItemByProduct returns a line item by product ID
func (o *Order) GetItemByProduct(productID uuid.UUID) *OrderLineItem {
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			return &o.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of line items in the order
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the sum of all line item quantities
func (o *Order) TotalQuantity() int64 {
	var total int64
	for idx := range o.Items {
		total += o.Items[idx].Quantity
	}
	return total
}

// IsConfirmed returns true if the order is confirmed
func (o *Order) IsConfirmed() bool {
	return o.Status == OrderStatusConfirmed
}

// IsStockCommitted returns true if the order is in a stock-committed state
func (o *Order) IsStockCommitted() bool {
	return o.Status.IsStockCommitted()
}
