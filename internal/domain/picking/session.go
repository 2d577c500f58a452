package picking

import (
	"fmt"
	"time"

	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle status of a picking session
type SessionStatus string

const (
	SessionStatusPicking   SessionStatus = "picking"
	SessionStatusPacking   SessionStatus = "packing"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAbandoned SessionStatus = "abandoned"
)

// IsValid checks if the status is a known SessionStatus
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusPicking, SessionStatusPacking, SessionStatusCompleted, SessionStatusAbandoned:
		return true
	}
	return false
}

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// IsActive reports whether the session still holds its member orders
// exclusively. Only active sessions block re-batching.
func (s SessionStatus) IsActive() bool {
	return s == SessionStatusPicking || s == SessionStatusPacking
}

// SessionCodeDateLayout is the DDMMYYYY date segment of a session code
const SessionCodeDateLayout = "02012006"

// FormatSessionCode builds a human-readable session code PREFIX-DDMMYYYY-NN
// from an allocated per-store-per-day sequence number.
func FormatSessionCode(prefix string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%02d", prefix, day.Format(SessionCodeDateLayout), seq)
}

// SessionOrder is the junction row linking a session to one member order.
// While the session is active an order may belong to at most one active
// session; the repository enforces this with a partial unique constraint.
type SessionOrder struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	OrderID   uuid.UUID
	CreatedAt time.Time
}

// SessionItem is the aggregated demand row for one product across all member
// orders: the "shopping list" line an operator picks against.
type SessionItem struct {
	ID                  uuid.UUID
	SessionID           uuid.UUID
	ProductID           uuid.UUID
	ProductName         string
	ProductCode         string
	TotalQuantityNeeded int64
	QuantityPicked      int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsFullyPicked reports whether every needed unit has been retrieved
func (i *SessionItem) IsFullyPicked() bool {
	return i.QuantityPicked >= i.TotalQuantityNeeded
}

// Remaining returns the units still to pick
func (i *SessionItem) Remaining() int64 {
	return i.TotalQuantityNeeded - i.QuantityPicked
}

// Session represents a unit of warehouse work: a batch of confirmed orders
// picked and packed together. The aggregate owns the session lifecycle;
// per-counter mutation goes through the atomic repository primitives, never
// through field assignment on loaded copies.
type Session struct {
	shared.StoreAggregateRoot
	Code           string
	Status         SessionStatus
	Orders         []SessionOrder
	Items          []SessionItem
	LastActivityAt time.Time
	CompletedAt    *time.Time
	AbandonedAt    *time.Time
}

// NewSession creates a new session in picking status
func NewSession(storeID uuid.UUID, code string, createdBy uuid.UUID) (*Session, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_SESSION_CODE", "Session code cannot be empty")
	}

	now := time.Now()
	session := &Session{
		StoreAggregateRoot: shared.NewStoreAggregateRootWithCreator(storeID, createdBy),
		Code:               code,
		Status:             SessionStatusPicking,
		Orders:             make([]SessionOrder, 0),
		Items:              make([]SessionItem, 0),
		LastActivityAt:     now,
	}

	session.AddDomainEvent(NewSessionCreatedEvent(session))

	return session, nil
}

// AddOrder links a member order to the session
func (s *Session) AddOrder(orderID uuid.UUID) error {
	if s.Status != SessionStatusPicking {
		return shared.NewDomainError("INVALID_STATE", "Orders can only be added while the session is in picking")
	}
	for idx := range s.Orders {
		if s.Orders[idx].OrderID == orderID {
			return shared.NewDomainError("DUPLICATE_ORDER", "Order already belongs to this session")
		}
	}
	s.Orders = append(s.Orders, SessionOrder{
		ID:        uuid.New(),
		SessionID: s.ID,
		OrderID:   orderID,
		CreatedAt: time.Now(),
	})
	s.UpdatedAt = time.Now()
	return nil
}

// SetItems installs the aggregated demand rows computed from the member
// orders' line items.
func (s *Session) SetItems(items []SessionItem) {
	s.Items = items
	s.UpdatedAt = time.Now()
}

// OrderIDs returns the member order IDs
func (s *Session) OrderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(s.Orders))
	for idx := range s.Orders {
		ids[idx] = s.Orders[idx].OrderID
	}
	return ids
}

// IsFullyPicked reports whether every aggregated item is fully picked
func (s *Session) IsFullyPicked() bool {
	for idx := range s.Items {
		if !s.Items[idx].IsFullyPicked() {
			return false
		}
	}
	return true
}

// StartPacking moves the session from picking to packing
func (s *Session) StartPacking() error {
	if s.Status != SessionStatusPicking {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start packing from %s", s.Status))
	}
	if !s.IsFullyPicked() {
		return shared.NewDomainError("PICKING_INCOMPLETE", "All items must be picked before packing starts")
	}

	now := time.Now()
	s.Status = SessionStatusPacking
	s.LastActivityAt = now
	s.UpdatedAt = now

	s.AddDomainEvent(NewSessionStatusChangedEvent(s, SessionStatusPicking, SessionStatusPacking))

	return nil
}

// Complete marks the session as completed. The coordinator only calls this
// after every member order transitioned successfully.
func (s *Session) Complete() error {
	if s.Status != SessionStatusPacking {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete a session in %s", s.Status))
	}

	now := time.Now()
	s.Status = SessionStatusCompleted
	s.CompletedAt = &now
	s.LastActivityAt = now
	s.UpdatedAt = now

	s.AddDomainEvent(NewSessionStatusChangedEvent(s, SessionStatusPacking, SessionStatusCompleted))

	return nil
}

// Abandon releases the session and with it the order-to-session exclusivity,
// so the member orders can be re-batched. Sessions are never hard-deleted.
func (s *Session) Abandon() error {
	if !s.Status.IsActive() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot abandon a session in %s", s.Status))
	}

	from := s.Status
	now := time.Now()
	s.Status = SessionStatusAbandoned
	s.AbandonedAt = &now
	s.LastActivityAt = now
	s.UpdatedAt = now

	s.AddDomainEvent(NewSessionStatusChangedEvent(s, from, SessionStatusAbandoned))

	return nil
}

// IsStale reports whether the session has seen no activity for longer than
// the given window. Stale sessions are flagged for an operator to resume or
// abandon, never auto-cancelled.
func (s *Session) IsStale(window time.Duration, now time.Time) bool {
	if !s.Status.IsActive() {
		return false
	}
	return now.Sub(s.LastActivityAt) > window
}

// Touch bumps the staleness detector
func (s *Session) Touch() {
	now := time.Now()
	s.LastActivityAt = now
	s.UpdatedAt = now
}
