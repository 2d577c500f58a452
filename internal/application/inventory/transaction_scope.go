package inventory

import (
	"context"

	"github.com/fulfil/backend/internal/domain/inventory"
)

// TransactionScope provides transactional boundaries for stock operations
type TransactionScope interface {
	// Execute runs the given function within a transaction
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories groups the repositories bound to one transaction.
// It satisfies inventory.MutatorRepositories so the Stock Mutator can write
// through it directly.
type TransactionalRepositories interface {
	ProductRepo() inventory.ProductRepository
	MovementRepo() inventory.InventoryMovementRepository
}

// NoOpTransactionScope executes without transactions (for testing)
type NoOpTransactionScope struct {
	Products  inventory.ProductRepository
	Movements inventory.InventoryMovementRepository
}

// Execute runs the function without transaction boundaries
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() inventory.ProductRepository { return s.Products }

// MovementRepo returns the inventory movement repository
func (s *NoOpTransactionScope) MovementRepo() inventory.InventoryMovementRepository {
	return s.Movements
}

var (
	_ TransactionScope              = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories     = (*NoOpTransactionScope)(nil)
	_ inventory.MutatorRepositories = (*NoOpTransactionScope)(nil)
)
