package fulfillment

import (
	"testing"
	"time"

	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestOrder(t *testing.T) *Order {
	order, err := NewOrder(uuid.New(), "ORD-2026-001", "customer-ref-1")
	require.NoError(t, err)
	return order
}

func addTestItem(t *testing.T, order *Order, name string, quantity int64) *OrderLineItem {
	item, err := order.AddItem(uuid.New(), name, "SKU-"+name, quantity)
	require.NoError(t, err)
	return item
}

// advanceTo walks the order along the forward path to the target status
func advanceTo(t *testing.T, order *Order, target OrderStatus) {
	path := []OrderStatus{
		OrderStatusConfirmed,
		OrderStatusInPreparation,
		OrderStatusReadyToShip,
		OrderStatusShipped,
		OrderStatusDelivered,
	}
	for _, status := range path {
		if order.Status == target {
			return
		}
		require.NoError(t, order.TransitionTo(status, ""))
		if status == target {
			return
		}
	}
}

// ============================================
// OrderStatus Tests
// ============================================

func TestOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		isValid bool
	}{
		{OrderStatusPending, true},
		{OrderStatusConfirmed, true},
		{OrderStatusInPreparation, true},
		{OrderStatusReadyToShip, true},
		{OrderStatusShipped, true},
		{OrderStatusDelivered, true},
		{OrderStatusCancelled, true},
		{OrderStatusRejected, true},
		{OrderStatusIncident, true},
		{OrderStatusNotDelivered, true},
		{OrderStatusReturned, true},
		{OrderStatus("INVALID"), false},
		{OrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		to       OrderStatus
		canTrans bool
	}{
		// forward path
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusInPreparation, true},
		{OrderStatusInPreparation, OrderStatusReadyToShip, true},
		{OrderStatusReadyToShip, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},

		// no skipping forward
		{OrderStatusPending, OrderStatusInPreparation, false},
		{OrderStatusPending, OrderStatusReadyToShip, false},
		{OrderStatusConfirmed, OrderStatusReadyToShip, false},
		{OrderStatusInPreparation, OrderStatusShipped, false},

		// no moving backwards
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusReadyToShip, OrderStatusInPreparation, false},
		{OrderStatusShipped, OrderStatusReadyToShip, false},

		// cancellation branches
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusInPreparation, OrderStatusCancelled, true},
		{OrderStatusReadyToShip, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelled, false},

		// rejection branches
		{OrderStatusPending, OrderStatusRejected, true},
		{OrderStatusConfirmed, OrderStatusRejected, true},
		{OrderStatusInPreparation, OrderStatusRejected, false},
		{OrderStatusReadyToShip, OrderStatusRejected, false},

		// incident handling
		{OrderStatusShipped, OrderStatusIncident, true},
		{OrderStatusIncident, OrderStatusNotDelivered, true},
		{OrderStatusIncident, OrderStatusDelivered, true},
		{OrderStatusReadyToShip, OrderStatusIncident, false},

		// return after delivery
		{OrderStatusDelivered, OrderStatusReturned, true},
		{OrderStatusShipped, OrderStatusReturned, false},

		// terminal statuses go nowhere
		{OrderStatusCancelled, OrderStatusConfirmed, false},
		{OrderStatusRejected, OrderStatusPending, false},
		{OrderStatusNotDelivered, OrderStatusDelivered, false},
		{OrderStatusReturned, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_IsStockCommitted(t *testing.T) {
	committed := []OrderStatus{OrderStatusReadyToShip, OrderStatusShipped, OrderStatusDelivered}
	for _, status := range committed {
		assert.True(t, status.IsStockCommitted(), string(status))
	}

	uncommitted := []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusInPreparation,
		OrderStatusCancelled, OrderStatusRejected, OrderStatusIncident,
		OrderStatusNotDelivered, OrderStatusReturned,
	}
	for _, status := range uncommitted {
		assert.False(t, status.IsStockCommitted(), string(status))
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	terminal := []OrderStatus{
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRejected,
		OrderStatusNotDelivered, OrderStatusReturned,
	}
	for _, status := range terminal {
		assert.True(t, status.IsTerminal(), string(status))
	}
	assert.False(t, OrderStatusShipped.IsTerminal())
	assert.False(t, OrderStatusIncident.IsTerminal())
}

// ============================================
// Order Tests
// ============================================

func TestNewOrder(t *testing.T) {
	storeID := uuid.New()
	order, err := NewOrder(storeID, "ORD-001", "cust-1")

	assert.NoError(t, err)
	assert.Equal(t, storeID, order.StoreID)
	assert.Equal(t, "ORD-001", order.OrderNumber)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, 1, order.Version)
	assert.Len(t, order.GetDomainEvents(), 1)
}

func TestNewOrder_EmptyOrderNumber(t *testing.T) {
	_, err := NewOrder(uuid.New(), "", "cust-1")
	assert.Error(t, err)
}

func TestOrder_AddItem(t *testing.T) {
	order := createTestOrder(t)
	productID := uuid.New()

	item, err := order.AddItem(productID, "Widget", "W-1", 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), item.Quantity)
	assert.False(t, item.StockDeducted)
	assert.Equal(t, 1, order.ItemCount())
}

func TestOrder_AddItem_DuplicateProduct(t *testing.T) {
	order := createTestOrder(t)
	productID := uuid.New()

	_, err := order.AddItem(productID, "Widget", "W-1", 3)
	require.NoError(t, err)

	_, err = order.AddItem(productID, "Widget", "W-1", 2)
	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_PRODUCT", domainErr.Code)
}

func TestOrder_AddItem_PastConfirmation(t *testing.T) {
	order := createTestOrder(t)
	addTestItem(t, order, "Widget", 1)
	advanceTo(t, order, OrderStatusInPreparation)

	_, err := order.AddItem(uuid.New(), "Gadget", "G-1", 1)
	assert.Error(t, err)
}

func TestOrder_ItemEdits_LockedAfterDeduction(t *testing.T) {
	order := createTestOrder(t)
	item := addTestItem(t, order, "Widget", 2)
	require.NoError(t, order.Items[0].MarkDeducted())

	assert.True(t, order.IsLocked())

	_, err := order.AddItem(uuid.New(), "Gadget", "G-1", 1)
	assert.ErrorIs(t, err, ErrOrderLocked)

	err = order.UpdateItemQuantity(item.ID, 5)
	assert.ErrorIs(t, err, ErrOrderLocked)

	err = order.RemoveItem(item.ID)
	assert.ErrorIs(t, err, ErrOrderLocked)
}

func TestOrder_UpdateItemQuantity(t *testing.T) {
	order := createTestOrder(t)
	item := addTestItem(t, order, "Widget", 2)

	err := order.UpdateItemQuantity(item.ID, 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), order.Items[0].Quantity)

	err = order.UpdateItemQuantity(item.ID, 0)
	assert.Error(t, err)

	err = order.UpdateItemQuantity(uuid.New(), 1)
	assert.Error(t, err)
}

func TestOrder_RemoveItem(t *testing.T) {
	order := createTestOrder(t)
	item := addTestItem(t, order, "Widget", 2)
	addTestItem(t, order, "Gadget", 1)

	err := order.RemoveItem(item.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, order.ItemCount())
}

func TestOrder_TransitionTo_StampsTimestamps(t *testing.T) {
	order := createTestOrder(t)

	require.NoError(t, order.TransitionTo(OrderStatusConfirmed, ""))
	assert.NotNil(t, order.ConfirmedAt)
	assert.Equal(t, OrderStatusConfirmed, order.Status)

	require.NoError(t, order.TransitionTo(OrderStatusInPreparation, ""))
	assert.NotNil(t, order.PreparationAt)

	require.NoError(t, order.TransitionTo(OrderStatusReadyToShip, ""))
	assert.NotNil(t, order.ReadyToShipAt)
}

func TestOrder_TransitionTo_Invalid(t *testing.T) {
	order := createTestOrder(t)

	err := order.TransitionTo(OrderStatusShipped, "")
	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	// the failed transition leaves the order untouched
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Nil(t, order.ShippedAt)
}

func TestOrder_TransitionTo_UnknownStatus(t *testing.T) {
	order := createTestOrder(t)
	err := order.TransitionTo(OrderStatus("bogus"), "")
	assert.Error(t, err)
}

func TestOrder_TransitionTo_CancelRecordsReason(t *testing.T) {
	order := createTestOrder(t)
	require.NoError(t, order.TransitionTo(OrderStatusCancelled, "customer changed mind"))

	assert.Equal(t, OrderStatusCancelled, order.Status)
	assert.NotNil(t, order.CancelledAt)
	assert.Equal(t, "customer changed mind", order.CancelReason)
}

func TestOrder_CrossesStockCommitBoundary(t *testing.T) {
	order := createTestOrder(t)
	advanceTo(t, order, OrderStatusInPreparation)

	assert.True(t, order.CrossesStockCommitBoundary(OrderStatusReadyToShip))

	require.NoError(t, order.TransitionTo(OrderStatusReadyToShip, ""))
	// already committed, moving deeper does not deduct again
	assert.False(t, order.CrossesStockCommitBoundary(OrderStatusShipped))
}

func TestOrder_TriggersStockRestore(t *testing.T) {
	tests := []struct {
		name     string
		at       OrderStatus
		target   OrderStatus
		restores bool
	}{
		{"cancel before commit", OrderStatusConfirmed, OrderStatusCancelled, false},
		{"cancel after commit", OrderStatusReadyToShip, OrderStatusCancelled, true},
		{"return after delivery", OrderStatusDelivered, OrderStatusReturned, true},
		{"reject before commit", OrderStatusPending, OrderStatusRejected, false},
		{"plain forward move", OrderStatusReadyToShip, OrderStatusShipped, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := createTestOrder(t)
			advanceTo(t, order, tt.at)
			assert.Equal(t, tt.restores, order.TriggersStockRestore(tt.target))
		})
	}
}

// ============================================
// OrderLineItem guard Tests
// ============================================

func TestOrderLineItem_MarkDeducted_Once(t *testing.T) {
	item, err := NewOrderLineItem(uuid.New(), uuid.New(), "Widget", "W-1", 2)
	require.NoError(t, err)

	assert.NoError(t, item.MarkDeducted())
	assert.True(t, item.StockDeducted)

	err = item.MarkDeducted()
	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_DEDUCTED", domainErr.Code)
}

func TestOrderLineItem_MarkRestored_RequiresDeduction(t *testing.T) {
	item, err := NewOrderLineItem(uuid.New(), uuid.New(), "Widget", "W-1", 2)
	require.NoError(t, err)

	err = item.MarkRestored()
	assert.Error(t, err)

	require.NoError(t, item.MarkDeducted())
	assert.NoError(t, item.MarkRestored())

	err = item.MarkRestored()
	assert.Error(t, err)
}

func TestOrder_ItemsNeedingDeduction(t *testing.T) {
	order := createTestOrder(t)
	addTestItem(t, order, "Widget", 2)
	addTestItem(t, order, "Gadget", 1)

	require.NoError(t, order.Items[0].MarkDeducted())

	pending := order.ItemsNeedingDeduction()
	require.Len(t, pending, 1)
	assert.Equal(t, "Gadget", pending[0].ProductName)
}

func TestOrder_ItemsNeedingRestore(t *testing.T) {
	order := createTestOrder(t)
	addTestItem(t, order, "Widget", 2)
	addTestItem(t, order, "Gadget", 1)
	addTestItem(t, order, "Sprocket", 4)

	require.NoError(t, order.Items[0].MarkDeducted())
	require.NoError(t, order.Items[1].MarkDeducted())
	require.NoError(t, order.Items[1].MarkRestored())

	// only deducted-and-not-restored items qualify
	restorable := order.ItemsNeedingRestore()
	require.Len(t, restorable, 1)
	assert.Equal(t, "Widget", restorable[0].ProductName)
}

func TestOrder_AssignCarrier(t *testing.T) {
	order := createTestOrder(t)
	carrierID := uuid.New()

	assert.NoError(t, order.AssignCarrier(carrierID))
	assert.Equal(t, carrierID, *order.CarrierID)

	assert.Error(t, order.AssignCarrier(uuid.Nil))

	require.NoError(t, order.TransitionTo(OrderStatusCancelled, "done"))
	assert.Error(t, order.AssignCarrier(uuid.New()))
}

func TestOrder_TotalQuantity(t *testing.T) {
	order := createTestOrder(t)
	addTestItem(t, order, "Widget", 2)
	addTestItem(t, order, "Gadget", 5)

	assert.Equal(t, int64(7), order.TotalQuantity())
}

func TestOrder_GetItemByProduct(t *testing.T) {
	order := createTestOrder(t)
	productID := uuid.New()
	_, err := order.AddItem(productID, "Widget", "W-1", 2)
	require.NoError(t, err)

	assert.NotNil(t, order.GetItemByProduct(productID))
	assert.Nil(t, order.GetItemByProduct(uuid.New()))
}

func TestOrder_StatusChangeEmitsEvent(t *testing.T) {
	order := createTestOrder(t)
	order.ClearDomainEvents()

	require.NoError(t, order.TransitionTo(OrderStatusConfirmed, ""))

	events := order.GetDomainEvents()
	require.Len(t, events, 1)
	assert.WithinDuration(t, time.Now(), events[0].OccurredAt(), time.Second)
}
