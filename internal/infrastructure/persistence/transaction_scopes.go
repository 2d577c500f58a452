package persistence

import (
	"context"

	appfulfillment "github.com/fulfil/backend/internal/application/fulfillment"
	appinventory "github.com/fulfil/backend/internal/application/inventory"
	apppicking "github.com/fulfil/backend/internal/application/picking"
	"github.com/fulfil/backend/internal/domain/fulfillment"
	"github.com/fulfil/backend/internal/domain/inventory"
	"github.com/fulfil/backend/internal/domain/picking"
	"gorm.io/gorm"
)

// GormFulfillmentTransactionScope implements the fulfillment TransactionScope
// using GORM transactions. A status write and the stock mutation it triggers
// commit or roll back as one unit.
type GormFulfillmentTransactionScope struct {
	db *gorm.DB
}

// NewGormFulfillmentTransactionScope creates a fulfillment transaction scope
func NewGormFulfillmentTransactionScope(db *gorm.DB) *GormFulfillmentTransactionScope {
	return &GormFulfillmentTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormFulfillmentTransactionScope) Execute(ctx context.Context, fn func(repos appfulfillment.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&fulfillmentTxRepositories{tx: tx})
	})
}

type fulfillmentTxRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *fulfillmentTxRepositories) OrderRepo() fulfillment.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *fulfillmentTxRepositories) ProductRepo() inventory.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// MovementRepo returns the ledger repository scoped to the current transaction
func (r *fulfillmentTxRepositories) MovementRepo() inventory.InventoryMovementRepository {
	return NewGormInventoryMovementRepository(r.tx)
}

// GormInventoryTransactionScope implements the inventory TransactionScope
// using GORM transactions. Product stock and its ledger row move together.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates an inventory transaction scope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&inventoryTxRepositories{tx: tx})
	})
}

type inventoryTxRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *inventoryTxRepositories) ProductRepo() inventory.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// MovementRepo returns the ledger repository scoped to the current transaction
func (r *inventoryTxRepositories) MovementRepo() inventory.InventoryMovementRepository {
	return NewGormInventoryMovementRepository(r.tx)
}

// GormPickingTransactionScope implements the picking TransactionScope using
// GORM transactions, and carries the deployed packing-counter tiers. The
// tiers run against the root handle because each one draws its own
// transaction boundary.
type GormPickingTransactionScope struct {
	db           *gorm.DB
	incrementers []picking.ProgressIncrementer
}

// NewGormPickingTransactionScope creates a picking transaction scope with the
// given tier slice in fallback order
func NewGormPickingTransactionScope(db *gorm.DB, incrementers []picking.ProgressIncrementer) *GormPickingTransactionScope {
	return &GormPickingTransactionScope{db: db, incrementers: incrementers}
}

// Execute runs the given function within a database transaction
func (s *GormPickingTransactionScope) Execute(ctx context.Context, fn func(repos apppicking.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pickingTxRepositories{tx: tx})
	})
}

// Incrementers returns the deployed packing-counter tiers in fallback order
func (s *GormPickingTransactionScope) Incrementers() []picking.ProgressIncrementer {
	return s.incrementers
}

type pickingTxRepositories struct {
	tx *gorm.DB
}

// SessionRepo returns the session repository scoped to the current transaction
func (r *pickingTxRepositories) SessionRepo() picking.SessionRepository {
	return NewGormSessionRepository(r.tx)
}

// ProgressRepo returns the packing progress repository scoped to the current transaction
func (r *pickingTxRepositories) ProgressRepo() picking.ProgressRepository {
	return NewGormProgressRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *pickingTxRepositories) OrderRepo() fulfillment.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *pickingTxRepositories) ProductRepo() inventory.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// MovementRepo returns the ledger repository scoped to the current transaction
func (r *pickingTxRepositories) MovementRepo() inventory.InventoryMovementRepository {
	return NewGormInventoryMovementRepository(r.tx)
}

var (
	_ appfulfillment.TransactionScope          = (*GormFulfillmentTransactionScope)(nil)
	_ appfulfillment.TransactionalRepositories = (*fulfillmentTxRepositories)(nil)
	_ inventory.MutatorRepositories            = (*fulfillmentTxRepositories)(nil)
	_ appinventory.TransactionScope            = (*GormInventoryTransactionScope)(nil)
	_ appinventory.TransactionalRepositories   = (*inventoryTxRepositories)(nil)
	_ apppicking.TransactionScope              = (*GormPickingTransactionScope)(nil)
	_ apppicking.TransactionalRepositories     = (*pickingTxRepositories)(nil)
	_ apppicking.IncrementerProvider           = (*GormPickingTransactionScope)(nil)
)
