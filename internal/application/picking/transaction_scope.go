package picking

import (
	"context"

	"github.com/fulfil/backend/internal/domain/fulfillment"
	"github.com/fulfil/backend/internal/domain/inventory"
	"github.com/fulfil/backend/internal/domain/picking"
)

// TransactionScope provides transactional boundaries for picking operations
// that span the session aggregate, packing counters, member orders and stock
type TransactionScope interface {
	// Execute runs the given function within a transaction
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories groups the repositories bound to one transaction
type TransactionalRepositories interface {
	SessionRepo() picking.SessionRepository
	ProgressRepo() picking.ProgressRepository
	OrderRepo() fulfillment.OrderRepository
	ProductRepo() inventory.ProductRepository
	MovementRepo() inventory.InventoryMovementRepository
}

// IncrementerProvider exposes the deployed packing-counter tiers in fallback
// order. The service walks the slice until one tier does not report
// ErrPrimitiveUnavailable.
type IncrementerProvider interface {
	Incrementers() []picking.ProgressIncrementer
}

// NoOpTransactionScope executes without transactions (for testing)
type NoOpTransactionScope struct {
	Sessions  picking.SessionRepository
	Progress  picking.ProgressRepository
	Orders    fulfillment.OrderRepository
	Products  inventory.ProductRepository
	Movements inventory.InventoryMovementRepository
	Tiers     []picking.ProgressIncrementer
}

// Execute runs the function without transaction boundaries
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// SessionRepo returns the session repository
func (s *NoOpTransactionScope) SessionRepo() picking.SessionRepository { return s.Sessions }

// ProgressRepo returns the packing progress repository
func (s *NoOpTransactionScope) ProgressRepo() picking.ProgressRepository { return s.Progress }

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() fulfillment.OrderRepository { return s.Orders }

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() inventory.ProductRepository { return s.Products }

// MovementRepo returns the inventory movement repository
func (s *NoOpTransactionScope) MovementRepo() inventory.InventoryMovementRepository {
	return s.Movements
}

// Incrementers returns the configured counter tiers
func (s *NoOpTransactionScope) Incrementers() []picking.ProgressIncrementer { return s.Tiers }

var (
	_ TransactionScope              = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories     = (*NoOpTransactionScope)(nil)
	_ IncrementerProvider           = (*NoOpTransactionScope)(nil)
	_ inventory.MutatorRepositories = (*NoOpTransactionScope)(nil)
)
