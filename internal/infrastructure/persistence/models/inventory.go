package models

import (
	"github.com/fulfil/backend/internal/domain/inventory"
	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate root.
// The stock column is only ever written through server-side relative updates
// issued by the product repository's AdjustStock.
type ProductModel struct {
	StoreAggregateModel
	Name  string          `gorm:"type:varchar(200);not null"`
	Code  string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_store_code,priority:2"`
	Stock decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *inventory.Product {
	product := &inventory.Product{
		Name:  m.Name,
		Code:  m.Code,
		Stock: m.Stock,
	}
	m.PopulateStoreAggregateRoot(&product.StoreAggregateRoot)
	return product
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *inventory.Product) {
	m.FromDomainStoreAggregateRoot(p.StoreAggregateRoot)
	m.Name = p.Name
	m.Code = p.Code
	m.Stock = p.Stock
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *inventory.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// InventoryMovementModel is the persistence model for one ledger entry.
// Rows are insert-only; there is no update path and no soft delete. The
// partial unique index on (order_id, product_id, kind) backs the at-most-once
// guarantee for order-caused movements at the storage level.
type InventoryMovementModel struct {
	BaseModel
	StoreID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID              `gorm:"type:uuid;not null;index:idx_movement_product"`
	Delta     decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Kind      inventory.MovementKind `gorm:"type:varchar(30);not null"`
	OrderID   *uuid.UUID             `gorm:"type:uuid;index"`
	ActorID   *uuid.UUID             `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InventoryMovementModel) TableName() string {
	return "inventory_movements"
}

// ToDomain converts the persistence model to a domain InventoryMovement entity.
func (m *InventoryMovementModel) ToDomain() *inventory.InventoryMovement {
	return &inventory.InventoryMovement{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		StoreID:   m.StoreID,
		ProductID: m.ProductID,
		Delta:     m.Delta,
		Kind:      m.Kind,
		OrderID:   m.OrderID,
		ActorID:   m.ActorID,
	}
}

// FromDomain populates the persistence model from a domain InventoryMovement entity.
func (m *InventoryMovementModel) FromDomain(mv *inventory.InventoryMovement) {
	m.FromDomainBaseEntity(mv.BaseEntity)
	m.StoreID = mv.StoreID
	m.ProductID = mv.ProductID
	m.Delta = mv.Delta
	m.Kind = mv.Kind
	m.OrderID = mv.OrderID
	m.ActorID = mv.ActorID
}

// InventoryMovementModelFromDomain creates a new persistence model from a domain entity.
func InventoryMovementModelFromDomain(mv *inventory.InventoryMovement) *InventoryMovementModel {
	m := &InventoryMovementModel{}
	m.FromDomain(mv)
	return m
}
