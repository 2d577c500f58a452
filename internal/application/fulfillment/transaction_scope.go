package fulfillment

import (
	"context"

	"github.com/fulfil/backend/internal/domain/fulfillment"
	"github.com/fulfil/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the repositories an order
// transition touches. A status write and the stock mutation it triggers must
// commit or roll back as one unit; the scope is how the application layer
// draws that boundary without knowing the storage engine.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the fulfillment-side
// repositories within one transaction. It satisfies
// inventory.MutatorRepositories so the Stock Mutator writes through the same
// transaction as the status change that invoked it.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() fulfillment.OrderRepository
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() inventory.ProductRepository
	// MovementRepo returns the ledger repository scoped to the current transaction
	MovementRepo() inventory.InventoryMovementRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests where the repositories are in-memory fakes or mocks.
type NoOpTransactionScope struct {
	orderRepo    fulfillment.OrderRepository
	productRepo  inventory.ProductRepository
	movementRepo inventory.InventoryMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	orderRepo fulfillment.OrderRepository,
	productRepo inventory.ProductRepository,
	movementRepo inventory.InventoryMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() fulfillment.OrderRepository {
	return s.orderRepo
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() inventory.ProductRepository {
	return s.productRepo
}

// MovementRepo returns the ledger repository
func (s *NoOpTransactionScope) MovementRepo() inventory.InventoryMovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
var _ inventory.MutatorRepositories = (*NoOpTransactionScope)(nil)
