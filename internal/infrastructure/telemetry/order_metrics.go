package telemetry

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// OrderMetrics turns order lifecycle events into counters and a
// time-to-terminal histogram. It is subscribed to the domain event bus.
type OrderMetrics struct {
	transitions *Counter
	quantity    *Counter
	duration    *Histogram
	logger      *zap.Logger
}

// NewOrderMetrics creates the order instruments on meter.
func NewOrderMetrics(meter metric.Meter, logger *zap.Logger) (*OrderMetrics, error) {
	transitions, err := NewCounter(meter, "orders.transitions",
		"Order status transitions", "{order}")
	if err != nil {
		return nil, err
	}
	quantity, err := NewCounter(meter, "orders.units_fulfilled",
		"Product units decremented by completed orders", "{unit}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "orders.fulfillment.duration",
		Description: "Time from order placement to a terminal status",
		Unit:        "s",
		Boundaries:  FulfillmentDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &OrderMetrics{
		transitions: transitions,
		quantity:    quantity,
		duration:    duration,
		logger:      logger,
	}, nil
}

// EventTypes returns the order lifecycle events
func (m *OrderMetrics) EventTypes() []string {
	return []string{
		trade.EventTypeOrderPlaced,
		trade.EventTypeOrderProcessingStarted,
		trade.EventTypeOrderCompleted,
		trade.EventTypeOrderFailed,
	}
}

// Handle records the event
func (m *OrderMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		m.transitions.Inc(ctx, AttrOrderStatus.String(string(trade.OrderStatusPending)))
	case *trade.OrderProcessingStartedEvent:
		m.transitions.Inc(ctx, AttrOrderStatus.String(string(trade.OrderStatusProcessing)))
	case *trade.OrderCompletedEvent:
		status := AttrOrderStatus.String(string(trade.OrderStatusCompleted))
		m.transitions.Inc(ctx, status)
		m.quantity.Add(ctx, int64(e.Quantity))
		m.duration.RecordDuration(ctx, e.OccurredAt().Sub(e.PlacedAt), status)
	case *trade.OrderFailedEvent:
		status := AttrOrderStatus.String(string(trade.OrderStatusFailed))
		m.transitions.Inc(ctx, status)
		m.duration.RecordDuration(ctx, e.OccurredAt().Sub(e.PlacedAt), status)
	default:
		return fmt.Errorf("unexpected event %T", event)
	}
	return nil
}

// GaugeFunc reports a point-in-time value
type GaugeFunc func(ctx context.Context) (int64, error)

// RegisterGauges reports queue depth and connected event stream clients on
// every collection. Either function may be nil.
func RegisterGauges(meter metric.Meter, queueDepth, streamClients GaugeFunc, logger *zap.Logger) (metric.Registration, error) {
	depth, err := meter.Int64ObservableGauge("fulfillment.queue.depth",
		metric.WithDescription("Jobs waiting in the fulfillment queue"),
		metric.WithUnit("{job}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create fulfillment.queue.depth: %w", err)
	}
	clients, err := meter.Int64ObservableGauge("notifications.clients",
		metric.WithDescription("Connected event stream clients"),
		metric.WithUnit("{client}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create notifications.clients: %w", err)
	}

	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		if queueDepth != nil {
			if n, err := queueDepth(ctx); err != nil {
				logger.Debug("Queue depth unavailable", zap.Error(err))
			} else {
				o.ObserveInt64(depth, n)
			}
		}
		if streamClients != nil {
			if n, err := streamClients(ctx); err == nil {
				o.ObserveInt64(clients, n)
			}
		}
		return nil
	}, depth, clients)
}

var _ shared.EventHandler = (*OrderMetrics)(nil)
