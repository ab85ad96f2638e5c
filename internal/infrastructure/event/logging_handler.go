package event

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderAuditHandler writes one structured log line per order lifecycle event
type OrderAuditHandler struct {
	logger *zap.Logger
}

// NewOrderAuditHandler creates an OrderAuditHandler
func NewOrderAuditHandler(logger *zap.Logger) *OrderAuditHandler {
	return &OrderAuditHandler{logger: logger.Named("order_audit")}
}

// EventTypes returns the order lifecycle events
func (h *OrderAuditHandler) EventTypes() []string {
	return []string{
		trade.EventTypeOrderPlaced,
		trade.EventTypeOrderProcessingStarted,
		trade.EventTypeOrderCompleted,
		trade.EventTypeOrderFailed,
	}
}

// Handle logs the event
func (h *OrderAuditHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("order_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		fields = append(fields,
			zap.String("product_id", e.ProductID.String()),
			zap.Int("quantity", e.Quantity),
			zap.String("total_price", e.TotalPrice.StringFixed(2)))
	case *trade.OrderCompletedEvent:
		fields = append(fields,
			zap.Int("quantity", e.Quantity),
			zap.Duration("time_to_complete", e.OccurredAt().Sub(e.PlacedAt)))
	case *trade.OrderFailedEvent:
		fields = append(fields, zap.String("reason", e.Reason))
		h.logger.Warn("Order event", fields...)
		return nil
	}

	h.logger.Info("Order event", fields...)
	return nil
}

var _ shared.EventHandler = (*OrderAuditHandler)(nil)
