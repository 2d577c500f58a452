package picking

import (
	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeSession = "PickingSession"

// Event type constants
const (
	EventTypeSessionCreated       = "PickingSessionCreated"
	EventTypeSessionStatusChanged = "PickingSessionStatusChanged"
)

// SessionCreatedEvent is raised when a batch of orders is pulled into a session
type SessionCreatedEvent struct {
	shared.BaseDomainEvent
	SessionID uuid.UUID `json:"session_id"`
	Code      string    `json:"code"`
}

// NewSessionCreatedEvent creates a new SessionCreatedEvent
func NewSessionCreatedEvent(session *Session) *SessionCreatedEvent {
	return &SessionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionCreated, AggregateTypeSession, session.ID, session.StoreID),
		SessionID:       session.ID,
		Code:            session.Code,
	}
}

// EventType returns the event type name
func (e *SessionCreatedEvent) EventType() string {
	return EventTypeSessionCreated
}

// SessionStatusChangedEvent is raised on every session lifecycle change
type SessionStatusChangedEvent struct {
	shared.BaseDomainEvent
	SessionID  uuid.UUID     `json:"session_id"`
	Code       string        `json:"code"`
	FromStatus SessionStatus `json:"from_status"`
	ToStatus   SessionStatus `json:"to_status"`
}

// NewSessionStatusChangedEvent creates a new SessionStatusChangedEvent
func NewSessionStatusChangedEvent(session *Session, from, to SessionStatus) *SessionStatusChangedEvent {
	return &SessionStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionStatusChanged, AggregateTypeSession, session.ID, session.StoreID),
		SessionID:       session.ID,
		Code:            session.Code,
		FromStatus:      from,
		ToStatus:        to,
	}
}

// EventType returns the event type name
func (e *SessionStatusChangedEvent) EventType() string {
	return EventTypeSessionStatusChanged
}
