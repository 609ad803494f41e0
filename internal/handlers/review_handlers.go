package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/meowkart/cat-ecommerce-golang/internal/models"
)

//
// --- Review Handlers ---
//

// ReviewDetail is a review with the reviewer's username attached.
type ReviewDetail struct {
	models.Review
	Username string `json:"username" db:"username"`
}

// GetProductReviews is the handler for GET /api/reviews/product/:product_id.
func (h *Handlers) GetProductReviews(c *gin.Context) {
	productID := c.Param("product_id")
	page, perPage := pageParams(c, 10)

	var total int
	if err := h.DB.Get(&total, "SELECT COUNT(*) FROM reviews WHERE product_id = ?", productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	reviews := []ReviewDetail{}
	err := h.DB.Select(&reviews, `
		SELECT r.*, u.username
		FROM reviews r
		JOIN users u ON r.user_id = u.id
		WHERE r.product_id = ?
		ORDER BY r.created_at DESC LIMIT ? OFFSET ?`,
		productID, perPage, (page-1)*perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":      reviews,
		"total":        total,
		"pages":        pageCount(total, perPage),
		"current_page": page,
	})
}

// SubmitReviewInput defines the JSON for submitting a review.
type SubmitReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// SubmitReview is the handler for POST /api/reviews/product/:product_id.
// Upsert keyed on (product, user): a second submission overwrites the
// existing review instead of inserting a duplicate, and review_count only
// moves on the first one.
func (h *Handlers) SubmitReview(c *gin.Context) {
	userID := currentUserID(c)
	productID := c.Param("product_id")

	var input SubmitReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}

	tx, err := h.DB.Beginx()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	var product models.Product
	err = tx.Get(&product, "SELECT * FROM products WHERE id = ?", productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// A review is "verified" when the user has a delivered order that
	// contains this product.
	var verified bool
	err = tx.Get(&verified, `
		SELECT COUNT(*) > 0
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE o.user_id = ? AND oi.product_id = ? AND o.status = ?`,
		userID, productID, models.OrderStatusDelivered)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	now := time.Now().UTC()
	var review models.Review
	err = tx.Get(&review, "SELECT * FROM reviews WHERE product_id = ? AND user_id = ?", productID, userID)
	switch {
	case err == nil:
		// Overwrite in place.
		review.Rating = input.Rating
		review.Comment = input.Comment
		review.IsVerified = verified
		review.UpdatedAt = now
		_, err = tx.Exec("UPDATE reviews SET rating = ?, comment = ?, is_verified = ?, updated_at = ? WHERE id = ?",
			review.Rating, review.Comment, review.IsVerified, review.UpdatedAt, review.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
			return
		}
	case errors.Is(err, sql.ErrNoRows):
		review = models.Review{
			ID:         uuid.NewString(),
			ProductID:  productID,
			UserID:     userID,
			Rating:     input.Rating,
			Comment:    input.Comment,
			IsVerified: verified,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		_, err = tx.Exec(`
			INSERT INTO reviews (id, product_id, user_id, rating, comment, is_verified, helpful_count, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
			review.ID, review.ProductID, review.UserID, review.Rating, review.Comment,
			review.IsVerified, review.CreatedAt, review.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
			return
		}
		// First review from this user for this product.
		if _, err := tx.Exec("UPDATE products SET review_count = review_count + 1 WHERE id = ?", productID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := recomputeProductRating(tx, productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product rating"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review submitted successfully",
		"review":  review,
	})
}

// UpdateReviewInput uses pointers so rating and comment can be updated
// independently.
type UpdateReviewInput struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// UpdateReview is the handler for PUT /api/reviews/:id. Author only.
func (h *Handlers) UpdateReview(c *gin.Context) {
	userID := currentUserID(c)
	reviewID := c.Param("id")

	var input UpdateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}

	tx, err := h.DB.Beginx()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	var review models.Review
	err = tx.Get(&review, "SELECT * FROM reviews WHERE id = ?", reviewID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if review.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own reviews"})
		return
	}

	if input.Rating != nil {
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = *input.Comment
	}
	review.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec("UPDATE reviews SET rating = ?, comment = ?, updated_at = ? WHERE id = ?",
		review.Rating, review.Comment, review.UpdatedAt, reviewID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
		return
	}

	if err := recomputeProductRating(tx, review.ProductID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product rating"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review updated successfully",
		"review":  review,
	})
}

// DeleteReview is the handler for DELETE /api/reviews/:id. Author only;
// decrements review_count (floored at zero) and recomputes the mean.
func (h *Handlers) DeleteReview(c *gin.Context) {
	userID := currentUserID(c)
	reviewID := c.Param("id")

	tx, err := h.DB.Beginx()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	var review models.Review
	err = tx.Get(&review, "SELECT * FROM reviews WHERE id = ?", reviewID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if review.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own reviews"})
		return
	}

	if _, err := tx.Exec("DELETE FROM reviews WHERE id = ?", reviewID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		return
	}

	_, err = tx.Exec(`
		UPDATE products
		SET review_count = CASE WHEN review_count > 0 THEN review_count - 1 ELSE 0 END
		WHERE id = ?`, review.ProductID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	if err := recomputeProductRating(tx, review.ProductID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product rating"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

// MarkHelpful is the handler for POST /api/reviews/:id/helpful. Public,
// no dedup: repeat calls keep incrementing.
func (h *Handlers) MarkHelpful(c *gin.Context) {
	reviewID := c.Param("id")

	result, err := h.DB.Exec("UPDATE reviews SET helpful_count = helpful_count + 1 WHERE id = ?", reviewID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	var helpfulCount int
	if err := h.DB.Get(&helpfulCount, "SELECT helpful_count FROM reviews WHERE id = ?", reviewID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Marked as helpful",
		"helpful_count": helpfulCount,
	})
}

// recomputeProductRating sets product.rating to the arithmetic mean of all
// current ratings, or 0 when none remain.
func recomputeProductRating(tx *sqlx.Tx, productID string) error {
	var avg float64
	err := tx.Get(&avg, "SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE product_id = ?", productID)
	if err != nil {
		return err
	}
	_, err = tx.Exec("UPDATE products SET rating = ? WHERE id = ?", avg, productID)
	return err
}
