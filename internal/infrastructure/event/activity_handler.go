package event

import (
	"context"

	"github.com/fulfil/backend/internal/domain/fulfillment"
	"github.com/fulfil/backend/internal/domain/picking"
	"github.com/fulfil/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ActivityLogHandler writes the warehouse activity feed: one structured log
// line per order or session lifecycle event. The feed is what operators grep
// when reconstructing how an order moved through the floor.
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates a handler that logs lifecycle events
func NewActivityLogHandler(logger *zap.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{logger: logger.Named("activity")}
}

// EventTypes returns the lifecycle events this handler consumes
func (h *ActivityLogHandler) EventTypes() []string {
	return []string{
		fulfillment.EventTypeOrderCreated,
		fulfillment.EventTypeOrderStatusChanged,
		picking.EventTypeSessionCreated,
		picking.EventTypeSessionStatusChanged,
	}
}

// Handle logs one lifecycle event
func (h *ActivityLogHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("store_id", evt.StoreID().String()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
	}

	switch e := evt.(type) {
	case *fulfillment.OrderCreatedEvent:
		fields = append(fields, zap.String("order_number", e.OrderNumber))
		h.logger.Info("order created", fields...)
	case *fulfillment.OrderStatusChangedEvent:
		fields = append(fields,
			zap.String("order_number", e.OrderNumber),
			zap.String("from", e.FromStatus.String()),
			zap.String("to", e.ToStatus.String()),
		)
		h.logger.Info("order status changed", fields...)
	case *picking.SessionCreatedEvent:
		fields = append(fields, zap.String("code", e.Code))
		h.logger.Info("picking session created", fields...)
	case *picking.SessionStatusChangedEvent:
		fields = append(fields,
			zap.String("code", e.Code),
			zap.String("from", string(e.FromStatus)),
			zap.String("to", string(e.ToStatus)),
		)
		h.logger.Info("picking session status changed", fields...)
	default:
		h.logger.Info(evt.EventType(), fields...)
	}
	return nil
}

// Ensure ActivityLogHandler implements EventHandler
var _ shared.EventHandler = (*ActivityLogHandler)(nil)
