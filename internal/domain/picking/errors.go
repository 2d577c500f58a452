package picking

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IneligibleReason explains why an order cannot join a session
type IneligibleReason string

const (
	// ReasonNotConfirmed means the order is not in confirmed status
	ReasonNotConfirmed IneligibleReason = "not_confirmed"
	// ReasonAlreadyInSession means the order belongs to another active session
	ReasonAlreadyInSession IneligibleReason = "already_in_session"
	// ReasonNotFound means the order does not exist in this store
	ReasonNotFound IneligibleReason = "not_found"
)

// IneligibleOrder is one offending member of a rejected batch
type IneligibleOrder struct {
	OrderID uuid.UUID        `json:"order_id"`
	Reason  IneligibleReason `json:"reason"`
}

// OrderNotEligibleError rejects session creation entirely, enumerating every
// offending order so the caller can resolve them in one pass. Partial batch
// creation is never allowed.
type OrderNotEligibleError struct {
	Orders []IneligibleOrder
}

// Error implements the error interface
func (e *OrderNotEligibleError) Error() string {
	parts := make([]string, len(e.Orders))
	for i, o := range e.Orders {
		parts[i] = fmt.Sprintf("%s (%s)", o.OrderID, o.Reason)
	}
	return "orders not eligible for picking session: " + strings.Join(parts, ", ")
}

// Code returns the stable error code for transport mapping
func (e *OrderNotEligibleError) Code() string {
	return "ORDER_NOT_ELIGIBLE"
}

// ShortPair identifies an (order, product) counter that is not yet full
type ShortPair struct {
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Shortfall int64     `json:"shortfall"`
}

// IncompletePackingError rejects session completion, reporting which
// (order, product) pairs are short.
type IncompletePackingError struct {
	Short []ShortPair
}

// Error implements the error interface
func (e *IncompletePackingError) Error() string {
	parts := make([]string, len(e.Short))
	for i, s := range e.Short {
		parts[i] = fmt.Sprintf("order %s product %s short %d", s.OrderID, s.ProductID, s.Shortfall)
	}
	return "session packing incomplete: " + strings.Join(parts, ", ")
}

// Code returns the stable error code for transport mapping
func (e *IncompletePackingError) Code() string {
	return "INCOMPLETE_PACKING"
}
