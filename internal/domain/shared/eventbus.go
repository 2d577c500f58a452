package shared

import "context"

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in.
	// An empty slice means the handler receives all events.
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	// Publish publishes one or more domain events
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	// Subscribe registers a handler. With no explicit event types the
	// handler's own EventTypes() decide what it receives.
	Subscribe(handler EventHandler, eventTypes ...string)
	// Unsubscribe removes a handler from all event types
	Unsubscribe(handler EventHandler)
}
