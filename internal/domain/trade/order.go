package trade

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the status of a storefront order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing
	case OrderStatusProcessing:
		return target == OrderStatusCompleted || target == OrderStatusFailed
	case OrderStatusCompleted, OrderStatusFailed:
		return false // Terminal states
	}
	return false
}

// Order is a single-product purchase placed by a customer.
// TotalPrice is fixed at creation and never recomputed.
type Order struct {
	shared.BaseAggregateRoot
	ProductID     uuid.UUID
	Quantity      int
	TotalPrice    decimal.Decimal
	CustomerName  string
	CustomerEmail string
	Status        OrderStatus
}

// NewOrder creates a pending order priced at unitPrice × quantity
func NewOrder(productID uuid.UUID, unitPrice valueobject.Money, quantity int, customerName, customerEmail string) (*Order, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be a positive integer")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if err := validateCustomerName(customerName); err != nil {
		return nil, err
	}
	if err := validateCustomerEmail(customerEmail); err != nil {
		return nil, err
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Quantity:          quantity,
		TotalPrice:        unitPrice.MultiplyByInt(int64(quantity)).Round(valueobject.MoneyScale).Amount(),
		CustomerName:      strings.TrimSpace(customerName),
		CustomerEmail:     strings.TrimSpace(customerEmail),
		Status:            OrderStatusPending,
	}

	order.AddDomainEvent(NewOrderPlacedEvent(order))

	return order, nil
}

// StartProcessing moves the order from pending to processing
func (o *Order) StartProcessing() error {
	if !o.Status.CanTransitionTo(OrderStatusProcessing) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start processing order in %s status", o.Status))
	}

	o.Status = OrderStatusProcessing
	o.Touch()

	o.AddDomainEvent(NewOrderProcessingStartedEvent(o))

	return nil
}

// Complete marks a processing order as completed
func (o *Order) Complete() error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete order in %s status", o.Status))
	}

	o.Status = OrderStatusCompleted
	o.Touch()

	o.AddDomainEvent(NewOrderCompletedEvent(o))

	return nil
}

// Fail marks a processing order as failed
func (o *Order) Fail(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusFailed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail order in %s status", o.Status))
	}

	o.Status = OrderStatusFailed
	o.Touch()

	o.AddDomainEvent(NewOrderFailedEvent(o, reason))

	return nil
}

// IsTerminal returns true if the order is completed or failed
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot exceed 255 characters")
	}
	return nil
}

func validateCustomerEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Customer email cannot be empty")
	}
	if len(email) > 255 {
		return shared.NewDomainError("INVALID_EMAIL", "Customer email cannot exceed 255 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return shared.NewDomainError("INVALID_EMAIL", "Customer email is not a valid address")
	}
	return nil
}
