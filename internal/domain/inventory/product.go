package inventory

import (
	"time"

	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a sellable product with its cached stock count.
//
// Stock is a projection of the movement ledger: at any point it must equal
// the sum of all InventoryMovement deltas for the product. The field is
// written only by the Stock Mutator, which is only reachable through order
// transitions; every other component reads it. Divergence between Stock and
// the ledger sum is drift, detected by the reconciliation report rather than
// enforced synchronously.
type Product struct {
	shared.StoreAggregateRoot
	Name  string
	Code  string
	Stock decimal.Decimal
}

// NewProduct creates a new product with zero stock
func NewProduct(storeID uuid.UUID, name, code string) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}

	return &Product{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		Name:               name,
		Code:               code,
		Stock:              decimal.Zero,
	}, nil
}

// Rename updates the product display name
func (p *Product) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	p.Name = name
	p.UpdatedAt = time.Now()
	return nil
}

// HasNegativeStock reports whether the cached stock has drifted below zero.
// Negative stock never blocks dispatch; it is surfaced as an anomaly.
func (p *Product) HasNegativeStock() bool {
	return p.Stock.IsNegative()
}
