package models

import "time"

// Order statuses. Transitions are monotonic:
// pending -> confirmed -> shipped -> delivered.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
)

// ValidOrderStatus reports whether s is one of the four order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// Order is the model for the 'orders' table. TotalPrice and Tax are frozen
// at placement time; later product price changes do not affect them.
type Order struct {
	ID              string     `json:"id" db:"id"`
	UserID          string     `json:"user_id" db:"user_id"`
	TotalPrice      int64      `json:"total_price" db:"total_price"`
	Tax             int64      `json:"tax" db:"tax"`
	Status          string     `json:"status" db:"status"`
	ShippingAddress string     `json:"shipping_address" db:"shipping_address"`
	PaymentMethod   *string    `json:"payment_method" db:"payment_method"`
	TransactionID   *string    `json:"-" db:"transaction_id"`
	OrderDate       time.Time  `json:"order_date" db:"order_date"`
	DeliveryDate    *time.Time `json:"delivery_date" db:"delivery_date"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"-" db:"updated_at"`
}

// OrderItem is the model for the 'order_items' table.
type OrderItem struct {
	ID              string    `json:"id" db:"id"`
	OrderID         string    `json:"-" db:"order_id"`
	ProductID       string    `json:"product_id" db:"product_id"`
	Quantity        int       `json:"quantity" db:"quantity"`
	PriceAtPurchase int64     `json:"price_at_purchase" db:"price_at_purchase"`
	CreatedAt       time.Time `json:"-" db:"created_at"`
}
