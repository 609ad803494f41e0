package models

import "time"

// CartItem is the model for the 'cart_items' table. One row per
// (user, product) pair; adding the same product again increments quantity.
type CartItem struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	AddedAt   time.Time `json:"-" db:"added_at"`
}
