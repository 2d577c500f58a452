package inventory

import (
	"context"

	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForStore finds a product by ID within a store
	FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by code within a store
	FindByCode(ctx context.Context, storeID uuid.UUID, code string) (*Product, error)

	// FindAllForStore finds all products for a store with filtering
	FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]Product, error)

	// FindWithNegativeStock finds products whose cached stock has gone negative
	FindWithNegativeStock(ctx context.Context, storeID uuid.UUID) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// AdjustStock applies a signed delta to the cached stock with a single
	// server-side update (stock = stock + delta). Only the Stock Mutator may
	// call this.
	AdjustStock(ctx context.Context, storeID, productID uuid.UUID, delta decimal.Decimal) error

	// CountForStore counts products for a store
	CountForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (int64, error)
}

// InventoryMovementRepository defines the interface for the append-only ledger
type InventoryMovementRepository interface {
	// Append writes one immutable ledger entry. There is deliberately no
	// update or delete.
	Append(ctx context.Context, movement *InventoryMovement) error

	// FindByProduct lists ledger entries for a product, newest first
	FindByProduct(ctx context.Context, storeID, productID uuid.UUID, filter shared.Filter) ([]InventoryMovement, error)

	// FindByOrder lists ledger entries caused by an order
	FindByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]InventoryMovement, error)

	// SumByProduct returns the signed sum of all deltas for a product
	SumByProduct(ctx context.Context, storeID, productID uuid.UUID) (decimal.Decimal, error)

	// LedgerSums returns the per-product signed delta sums for a store,
	// the basis of the reconciliation report.
	LedgerSums(ctx context.Context, storeID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	// CountByOrderAndKind counts ledger entries for an (order, product, kind)
	// triple; the at-most-once guarantee keeps this at 0 or 1.
	CountByOrderAndKind(ctx context.Context, storeID, orderID, productID uuid.UUID, kind MovementKind) (int64, error)
}
