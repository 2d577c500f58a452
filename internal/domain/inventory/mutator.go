package inventory

import (
	"context"

	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MutatorRepositories is the slice of storage the Stock Mutator writes
// through. Both repositories must be bound to the caller's transaction so the
// ledger append and the cached-stock adjustment commit or roll back together
// with the order status write that triggered them.
type MutatorRepositories interface {
	ProductRepo() ProductRepository
	MovementRepo() InventoryMovementRepository
}

// StockMutator is the only component allowed to change product stock. It is
// invoked exclusively by order transitions; at-most-once per line item per
// direction is guaranteed by the StockDeducted/StockRestored flags checked
// and flipped in the same transaction.
//
// The mutator deliberately does not reject negative stock: dispatch is never
// stalled on drift, which is surfaced by the reconciliation report instead.
type StockMutator struct{}

// NewStockMutator creates a new StockMutator
func NewStockMutator() *StockMutator {
	return &StockMutator{}
}

// Apply appends one movement to the ledger and adjusts the product's cached
// stock by delta, both through the transaction-bound repositories.
func (m *StockMutator) Apply(ctx context.Context, repos MutatorRepositories, storeID, productID uuid.UUID, delta decimal.Decimal, kind MovementKind, orderID uuid.UUID, actorID uuid.UUID) (*InventoryMovement, error) {
	if repos == nil {
		return nil, shared.NewDomainError("INVALID_REPOSITORIES", "Mutator repositories cannot be nil")
	}

	var orderRef *uuid.UUID
	if orderID != uuid.Nil {
		orderRef = &orderID
	}

	movement, err := NewInventoryMovement(storeID, productID, delta, kind, orderRef)
	if err != nil {
		return nil, err
	}
	movement.SetActor(actorID)

	if err := repos.MovementRepo().Append(ctx, movement); err != nil {
		return nil, err
	}

	// Single server-side UPDATE, never read-modify-write: concurrent
	// transitions for different orders must not lose each other's deltas.
	if err := repos.ProductRepo().AdjustStock(ctx, storeID, productID, delta); err != nil {
		return nil, err
	}

	return movement, nil
}
