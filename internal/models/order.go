package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderItem represents a single item within an order.
type OrderItem struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"` // Price at the time of order
}

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// Order represents a completed checkout.
type Order struct {
	ID           string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SessionID    string          `json:"sessionId" gorm:"type:varchar(64);index"`
	CustomerName string          `json:"customerName" gorm:"type:varchar(200)"`
	Email        string          `json:"email" gorm:"type:varchar(255)"`
	Shipping     ShippingAddress `json:"shipping" gorm:"serializer:json;type:text"`
	Items        []OrderItem     `json:"items" gorm:"serializer:json;type:text"`
	Subtotal     int64           `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax" gorm:"type:numeric"`
	Total        decimal.Decimal `json:"total" gorm:"type:numeric"`
	CardLast4    string          `json:"cardLast4" gorm:"type:varchar(4)"`
	Status       string          `json:"status" gorm:"type:varchar(20)"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ItemCount returns the number of units ordered.
func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
