package models

import "time"

// Review is the model for the 'reviews' table. At most one row per
// (product, user) pair; resubmitting overwrites the existing review.
type Review struct {
	ID           string    `json:"id" db:"id"`
	ProductID    string    `json:"product_id" db:"product_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment" db:"comment"`
	IsVerified   bool      `json:"is_verified" db:"is_verified"`
	HelpfulCount int       `json:"helpful_count" db:"helpful_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"-" db:"updated_at"`
}
