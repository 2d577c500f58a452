package inventory

import (
	"time"

	"github.com/fulfil/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to register a product
type CreateProductRequest struct {
	Name         string          `json:"name" binding:"required,max=200"`
	Code         string          `json:"code" binding:"required,max=100"`
	InitialStock decimal.Decimal `json:"initial_stock"`
}

// AdjustStockRequest represents a manual stock correction
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta" binding:"required"`
	Reason string          `json:"reason" binding:"max=500"`
}

// ProductListFilter represents filtering options for listing products
type ProductListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ProductResponse represents product data in responses
type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	StoreID   uuid.UUID       `json:"store_id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Stock     decimal.Decimal `json:"stock"`
	Negative  bool            `json:"negative"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MovementResponse represents one ledger entry in responses
type MovementResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Delta     decimal.Decimal `json:"delta"`
	Kind      string          `json:"kind"`
	OrderID   *uuid.UUID      `json:"order_id,omitempty"`
	ActorID   *uuid.UUID      `json:"actor_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReconciliationReport is the drift report for one store
type ReconciliationReport struct {
	StoreID       uuid.UUID            `json:"store_id"`
	CheckedAt     time.Time            `json:"checked_at"`
	ProductsTotal int                  `json:"products_total"`
	DriftRows     []inventory.DriftRow `json:"drift_rows"`
	NegativeStock []ProductResponse    `json:"negative_stock"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(product *inventory.Product) ProductResponse {
	return ProductResponse{
		ID:        product.ID,
		StoreID:   product.StoreID,
		Name:      product.Name,
		Code:      product.Code,
		Stock:     product.Stock,
		Negative:  product.HasNegativeStock(),
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}

// ToMovementResponse converts a domain movement to a response DTO
func ToMovementResponse(m *inventory.InventoryMovement) MovementResponse {
	return MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Delta:     m.Delta,
		Kind:      m.Kind.String(),
		OrderID:   m.OrderID,
		ActorID:   m.ActorID,
		CreatedAt: m.CreatedAt,
	}
}
