package picking

import (
	"time"

	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Packing and picking bound violations
var (
	// ErrOverPack rejects an increment that would push a counter above what
	// is needed. The counter is left unchanged, never clamped.
	ErrOverPack = shared.NewDomainError("OVER_PACK", "Increment would exceed the quantity needed")
	// ErrUnderPack rejects a decrement that would push a counter below zero
	ErrUnderPack = shared.NewDomainError("UNDER_PACK", "Decrement would push the quantity below zero")
)

// PackingProgress is the per (session, order, product) counter incremented by
// operators as units move from the shared basket into order containers. It is
// the row under real concurrent write pressure: multiple devices increment
// the same triple. Mutation happens only through the atomic repository
// primitives; the invariant 0 <= QuantityPacked <= QuantityNeeded holds under
// any interleaving.
type PackingProgress struct {
	ID             uuid.UUID
	SessionID      uuid.UUID
	OrderID        uuid.UUID
	ProductID      uuid.UUID
	QuantityNeeded int64
	QuantityPacked int64
	// Version fingerprints the row for the compare-and-swap fallback path
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPackingProgress creates a fresh counter for an (order, product) pair
func NewPackingProgress(sessionID, orderID, productID uuid.UUID, quantityNeeded int64) (*PackingProgress, error) {
	if quantityNeeded <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity needed must be positive")
	}

	now := time.Now()
	return &PackingProgress{
		ID:             uuid.New(),
		SessionID:      sessionID,
		OrderID:        orderID,
		ProductID:      productID,
		QuantityNeeded: quantityNeeded,
		QuantityPacked: 0,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CheckIncrement validates the bounds for applying delta without mutating.
// The storage primitives evaluate the same predicate server-side; this
// client-side copy exists for the compare-and-swap path and for precise
// error classification after a zero-row update.
func (p *PackingProgress) CheckIncrement(delta int64) error {
	next := p.QuantityPacked + delta
	if next > p.QuantityNeeded {
		return ErrOverPack
	}
	if next < 0 {
		return ErrUnderPack
	}
	return nil
}

// IsComplete reports whether every needed unit has been packed
func (p *PackingProgress) IsComplete() bool {
	return p.QuantityPacked >= p.QuantityNeeded
}

// Shortfall returns the units still missing
func (p *PackingProgress) Shortfall() int64 {
	return p.QuantityNeeded - p.QuantityPacked
}
