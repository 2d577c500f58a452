package fulfillment

import (
	"context"

	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForStore finds an order by ID for a specific store
	FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its platform order number within a store
	FindByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (*Order, error)

	// FindByIDs finds multiple orders by ID within a store
	FindByIDs(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]Order, error)

	// FindAllForStore finds all orders for a store with filtering
	FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByStatus finds orders in a given lifecycle status
	FindByStatus(ctx context.Context, storeID uuid.UUID, status OrderStatus, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order together with its line items
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking: the update is conditioned on
	// the version the aggregate was loaded with, and a lost race surfaces as
	// shared.ErrConcurrentModification.
	SaveWithLock(ctx context.Context, order *Order) error

	// CountForStore counts orders for a store with optional filters
	CountForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts orders in a given status
	CountByStatus(ctx context.Context, storeID uuid.UUID, status OrderStatus) (int64, error)

	// ExistsByOrderNumber checks if an order number already exists for a store
	ExistsByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (bool, error)
}
