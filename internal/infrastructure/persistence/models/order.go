package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
)

// OrderModel is the persistence model for the Order aggregate.
// product_id carries no foreign key so catalog resets do not cascade into order history.
type OrderModel struct {
	BaseModel
	ProductID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	Quantity      int               `gorm:"not null"`
	TotalPrice    decimal.Decimal   `gorm:"type:decimal(10,2);not null"`
	CustomerName  string            `gorm:"type:varchar(255);not null"`
	CustomerEmail string            `gorm:"type:varchar(255);not null"`
	Status        trade.OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
// The returned aggregate carries no pending domain events.
func (m *OrderModel) ToDomain() *trade.Order {
	return &trade.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: m.BaseModel.ToDomain()},
		ProductID:         m.ProductID,
		Quantity:          m.Quantity,
		TotalPrice:        m.TotalPrice,
		CustomerName:      m.CustomerName,
		CustomerEmail:     m.CustomerEmail,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.ProductID = o.ProductID
	m.Quantity = o.Quantity
	m.TotalPrice = o.TotalPrice
	m.CustomerName = o.CustomerName
	m.CustomerEmail = o.CustomerEmail
	m.Status = o.Status
}

// OrderModelFromDomain creates a new persistence model from a domain Order aggregate.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
