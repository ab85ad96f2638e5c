package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced            = "OrderPlaced"
	EventTypeOrderProcessingStarted = "OrderProcessingStarted"
	EventTypeOrderCompleted         = "OrderCompleted"
	EventTypeOrderFailed            = "OrderFailed"
)

// OrderPlacedEvent is raised when a pending order is created
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID       `json:"order_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(order *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		ProductID:       order.ProductID,
		Quantity:        order.Quantity,
		TotalPrice:      order.TotalPrice,
	}
}

// OrderProcessingStartedEvent is raised when the worker picks the order up
type OrderProcessingStartedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
}

// NewOrderProcessingStartedEvent creates a new OrderProcessingStartedEvent
func NewOrderProcessingStartedEvent(order *Order) *OrderProcessingStartedEvent {
	return &OrderProcessingStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderProcessingStarted, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
	}
}

// OrderCompletedEvent is raised when fulfillment succeeds
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	PlacedAt  time.Time `json:"placed_at"`
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(order *Order) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		ProductID:       order.ProductID,
		Quantity:        order.Quantity,
		PlacedAt:        order.CreatedAt,
	}
}

// OrderFailedEvent is raised when fulfillment fails
type OrderFailedEvent struct {
	shared.BaseDomainEvent
	OrderID  uuid.UUID `json:"order_id"`
	Reason   string    `json:"reason"`
	PlacedAt time.Time `json:"placed_at"`
}

// NewOrderFailedEvent creates a new OrderFailedEvent
func NewOrderFailedEvent(order *Order, reason string) *OrderFailedEvent {
	return &OrderFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFailed, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		Reason:          reason,
		PlacedAt:        order.CreatedAt,
	}
}
