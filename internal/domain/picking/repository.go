package picking

import (
	"context"
	"time"

	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Increment precondition and availability errors
var (
	// ErrPrimitiveUnavailable is returned by an increment implementation whose
	// storage primitive is not deployed; the caller falls through to the next
	// tier.
	ErrPrimitiveUnavailable = shared.NewDomainError("PRIMITIVE_UNAVAILABLE", "Atomic increment primitive not available")
	// ErrSessionNotPacking rejects a pack increment when the owning session
	// is not in packing status.
	ErrSessionNotPacking = shared.NewDomainError("SESSION_NOT_PACKING", "Session is not in packing status")
	// ErrSessionNotPicking rejects a pick increment when the owning session
	// is not in picking status.
	ErrSessionNotPicking = shared.NewDomainError("SESSION_NOT_PICKING", "Session is not in picking status")
	// ErrOrderStockCommitted rejects a pack increment once the member order
	// has already crossed the stock-commitment boundary.
	ErrOrderStockCommitted = shared.NewDomainError("ORDER_STOCK_COMMITTED", "Order is already stock-committed")
)

// SessionRepository defines the interface for picking session persistence
type SessionRepository interface {
	// FindByID finds a session by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// FindByIDForStore finds a session by ID within a store, with its member
	// orders and aggregated items loaded.
	FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*Session, error)

	// FindByCode finds a session by its human-readable code within a store
	FindByCode(ctx context.Context, storeID uuid.UUID, code string) (*Session, error)

	// FindAllForStore finds sessions for a store with filtering
	FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]Session, error)

	// FindActiveMemberships returns, for each given order that belongs to an
	// active (picking or packing) session, the session it belongs to. Used to
	// enforce the at-most-one-active-session invariant.
	FindActiveMemberships(ctx context.Context, storeID uuid.UUID, orderIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)

	// FindStale lists active sessions whose last activity is older than the
	// window. Flagging only; staleness never auto-cancels.
	FindStale(ctx context.Context, storeID uuid.UUID, window time.Duration) ([]Session, error)

	// Save creates or updates a session with its member orders and items
	Save(ctx context.Context, session *Session) error

	// SaveWithLock saves with optimistic locking on the session version
	SaveWithLock(ctx context.Context, session *Session) error

	// TouchActivity bumps last_activity_at without rewriting the aggregate
	TouchActivity(ctx context.Context, sessionID uuid.UUID, at time.Time) error

	// IncrementPicked applies a bounded atomic increment to a session item's
	// quantity_picked, checking that the session is in picking status in the
	// same atomic step. Same primitive family as IncrementPacked.
	IncrementPicked(ctx context.Context, sessionID, productID uuid.UUID, delta int64) (*SessionItem, error)
}

// ProgressIncrementer is one tier of the packing counter primitive. All
// implementations share exact semantics: apply delta to the
// (session, order, product) counter if and only if the bounds hold, the
// session is in packing and the order is not stock-committed — all evaluated
// in one indivisible step — and bump the session's last_activity_at in the
// same transaction.
type ProgressIncrementer interface {
	// Name identifies the tier in logs and metrics
	Name() string

	// IncrementPacked applies the delta and returns the updated counter.
	// Returns ErrPrimitiveUnavailable if this tier's primitive is not
	// deployed, ErrOverPack/ErrUnderPack on bounds violations,
	// ErrSessionNotPacking/ErrOrderStockCommitted on precondition failures,
	// and shared.ErrTooManyConflicts when a bounded retry loop gives up.
	IncrementPacked(ctx context.Context, sessionID, orderID, productID uuid.UUID, delta int64) (*PackingProgress, error)
}

// ProgressRepository defines the interface for packing progress persistence
type ProgressRepository interface {
	// FindBySession lists all counters under a session
	FindBySession(ctx context.Context, sessionID uuid.UUID) ([]PackingProgress, error)

	// FindByTriple finds the counter for a (session, order, product) triple
	FindByTriple(ctx context.Context, sessionID, orderID, productID uuid.UUID) (*PackingProgress, error)

	// SaveAll inserts the counters computed at session creation
	SaveAll(ctx context.Context, rows []PackingProgress) error

	// Shortfalls returns the (order, product) pairs not yet fully packed
	Shortfalls(ctx context.Context, sessionID uuid.UUID) ([]ShortPair, error)
}

// CodeAllocator hands out the per-store-per-day sequence numbers behind
// session codes. Allocation serializes on the (store, day) pair only for the
// duration of the sequence bump, not for the whole session-creation call;
// concurrent creations on the same day must never observe the same number.
type CodeAllocator interface {
	NextSequence(ctx context.Context, storeID uuid.UUID, day time.Time) (int64, error)
}
