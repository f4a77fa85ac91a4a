package model

import (
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
}

// CanTransitionTo reports whether fulfilment may move an order from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// swagger:model Order
type Order struct {
	BaseModel
	Reference       string          `gorm:"size:40;uniqueIndex;not null" json:"reference"`
	UserID          uint            `gorm:"index;not null" json:"userId"`
	Status          OrderStatus     `gorm:"size:20;index;not null" json:"status"`
	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total" swaggertype:"number"`
	ShippingAddress string          `gorm:"type:text" json:"shippingAddress"`
	Phone           string          `gorm:"size:30" json:"phone"`
	Note            string          `gorm:"type:text" json:"note,omitempty"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	BaseModel
	OrderID     uint            `gorm:"index;not null" json:"orderId"`
	ProductID   uint            `gorm:"index;not null" json:"productId"`
	ProductName string          `gorm:"size:255" json:"productName"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unitPrice" swaggertype:"number"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal" swaggertype:"number"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
