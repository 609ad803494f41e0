package models

import "time"

// Product is the model for the 'products' table. Price is an integer in
// paisa so totals never touch floating point.
type Product struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Slug        string  `json:"slug" db:"slug"`
	Description string  `json:"description" db:"description"`
	Price       int64   `json:"price" db:"price"`
	Category    string  `json:"category" db:"category"`
	ImageURL    *string `json:"image_url" db:"image_url"`

	Stock       int     `json:"stock" db:"stock"`
	Rating      float64 `json:"rating" db:"rating"`
	ReviewCount int     `json:"review_count" db:"review_count"`

	// is_active=false is a soft delete; the row stays for historical
	// orders and reviews but is excluded from catalog listings.
	IsActive bool `json:"-" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}
