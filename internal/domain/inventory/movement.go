package inventory

import (
	"time"

	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind tags a ledger entry with the order-lifecycle cause that
// produced it.
type MovementKind string

const (
	// MovementKindReadyToShip records the deduction fired on first entry into
	// a stock-committed state.
	MovementKindReadyToShip MovementKind = "entered-ready-to-ship"
	// MovementKindReverted records the restoration fired by cancellation,
	// rejection or return after deduction.
	MovementKindReverted MovementKind = "reverted"
	// MovementKindAdjustment records a manual stock correction outside the
	// order lifecycle (initial load, stocktake correction).
	MovementKindAdjustment MovementKind = "adjustment"
)

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// IsValid returns true if the movement kind is known
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementKindReadyToShip, MovementKindReverted, MovementKindAdjustment:
		return true
	}
	return false
}

// InventoryMovement is one append-only ledger entry: a signed stock delta for
// a product, caused by an order transition. Movements are immutable once
// written; corrections are new movements, never updates. The ledger is the
// audit trail of record and the source of truth the cached product stock is
// reconciled against.
type InventoryMovement struct {
	shared.BaseEntity
	StoreID   uuid.UUID
	ProductID uuid.UUID
	Delta     decimal.Decimal
	Kind      MovementKind
	OrderID   *uuid.UUID
	ActorID   *uuid.UUID
}

// NewInventoryMovement creates a new ledger entry
func NewInventoryMovement(storeID, productID uuid.UUID, delta decimal.Decimal, kind MovementKind, orderID *uuid.UUID) (*InventoryMovement, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_DELTA", "Movement delta cannot be zero")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_KIND", "Unknown movement kind")
	}
	if kind != MovementKindAdjustment && orderID == nil {
		return nil, shared.NewDomainError("INVALID_ORDER_REF", "Order-caused movements must reference the causing order")
	}

	return &InventoryMovement{
		BaseEntity: shared.NewBaseEntity(),
		StoreID:    storeID,
		ProductID:  productID,
		Delta:      delta,
		Kind:       kind,
		OrderID:    orderID,
	}, nil
}

// SetActor records the operator responsible for the movement
func (m *InventoryMovement) SetActor(actorID uuid.UUID) {
	if actorID != uuid.Nil {
		m.ActorID = &actorID
	}
}

// DriftRow is one line of the reconciliation report: a product whose cached
// stock disagrees with the sum of its ledger deltas.
type DriftRow struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	CachedStock decimal.Decimal `json:"cached_stock"`
	LedgerSum   decimal.Decimal `json:"ledger_sum"`
	Drift       decimal.Decimal `json:"drift"`
	CheckedAt   time.Time       `json:"checked_at"`
}

// HasDrift reports whether cached stock and ledger sum disagree
func (r DriftRow) HasDrift() bool {
	return !r.CachedStock.Equal(r.LedgerSum)
}
