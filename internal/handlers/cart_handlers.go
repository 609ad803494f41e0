package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meowkart/cat-ecommerce-golang/internal/models"
)

//
// --- Cart Handlers ---
//

// CartItemResponse is a cart line with its product embedded and the line
// subtotal precomputed, mirroring what the storefront renders.
type CartItemResponse struct {
	ID       string         `json:"id"`
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
	Subtotal int64          `json:"subtotal"`
}

// cartRow is the scan target for the cart_items/products join.
type cartRow struct {
	CartItemID   string `db:"cart_item_id"`
	CartQuantity int    `db:"cart_quantity"`
	models.Product
}

const cartJoinQuery = `
	SELECT ci.id AS cart_item_id, ci.quantity AS cart_quantity, p.*
	FROM cart_items ci
	JOIN products p ON ci.product_id = p.id
	WHERE ci.user_id = ?
	ORDER BY ci.added_at`

// GetCart is the handler for GET /api/cart.
func (h *Handlers) GetCart(c *gin.Context) {
	userID := currentUserID(c)

	var rows []cartRow
	if err := h.DB.Select(&rows, cartJoinQuery, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query cart items"})
		return
	}

	items := []CartItemResponse{}
	var totalPrice int64
	var totalItems int

	for _, row := range rows {
		item := CartItemResponse{
			ID:       row.CartItemID,
			Product:  row.Product,
			Quantity: row.CartQuantity,
			Subtotal: row.Product.Price * int64(row.CartQuantity),
		}
		totalPrice += item.Subtotal
		totalItems += item.Quantity
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total_items": totalItems,
		"total_price": totalPrice,
	})
}

// AddToCartInput defines the JSON for adding an item to the cart.
type AddToCartInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// AddToCart is the handler for POST /api/cart. Adding a product that is
// already carted merges into the existing row instead of duplicating it.
func (h *Handlers) AddToCart(c *gin.Context) {
	userID := currentUserID(c)

	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.Beginx()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// 1. --- Product must exist ---
	var product models.Product
	err = tx.Get(&product, "SELECT * FROM products WHERE id = ?", input.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// 2. --- Stock guard against the requested quantity ---
	if product.Stock < input.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Only %d items available", product.Stock)})
		return
	}

	// 3. --- Merge into an existing row, or insert a new one ---
	var existing models.CartItem
	err = tx.Get(&existing, "SELECT * FROM cart_items WHERE user_id = ? AND product_id = ?",
		userID, input.ProductID)

	var item models.CartItem
	switch {
	case err == nil:
		newQuantity := existing.Quantity + input.Quantity
		// Cumulative quantity must also fit the stock.
		if newQuantity > product.Stock {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Only %d items available", product.Stock)})
			return
		}
		if _, err := tx.Exec("UPDATE cart_items SET quantity = ? WHERE id = ?", newQuantity, existing.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		item = existing
		item.Quantity = newQuantity
	case errors.Is(err, sql.ErrNoRows):
		item = models.CartItem{
			ID:        uuid.NewString(),
			UserID:    userID,
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			AddedAt:   time.Now().UTC(),
		}
		_, err := tx.Exec("INSERT INTO cart_items (id, user_id, product_id, quantity, added_at) VALUES (?, ?, ?, ?, ?)",
			item.ID, item.UserID, item.ProductID, item.Quantity, item.AddedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Item added to cart",
		"cart_item": CartItemResponse{
			ID:       item.ID,
			Product:  product,
			Quantity: item.Quantity,
			Subtotal: product.Price * int64(item.Quantity),
		},
	})
}

// UpdateCartItemInput defines the JSON for updating a cart line.
type UpdateCartItemInput struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItem is the handler for PUT /api/cart/:item_id.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	userID := currentUserID(c)
	itemID := c.Param("item_id")

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var item models.CartItem
	err := h.DB.Get(&item, "SELECT * FROM cart_items WHERE id = ? AND user_id = ?", itemID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// Re-check stock at mutation time.
	var product models.Product
	if err := h.DB.Get(&product, "SELECT * FROM products WHERE id = ?", item.ProductID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check product stock"})
		return
	}
	if product.Stock < input.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Only %d items available", product.Stock)})
		return
	}

	if _, err := h.DB.Exec("UPDATE cart_items SET quantity = ? WHERE id = ?", input.Quantity, itemID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated",
		"cart_item": CartItemResponse{
			ID:       item.ID,
			Product:  product,
			Quantity: input.Quantity,
			Subtotal: product.Price * int64(input.Quantity),
		},
	})
}

// RemoveCartItem is the handler for DELETE /api/cart/:item_id.
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	userID := currentUserID(c)

	result, err := h.DB.Exec("DELETE FROM cart_items WHERE id = ? AND user_id = ?",
		c.Param("item_id"), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// ClearCart is the handler for DELETE /api/cart.
func (h *Handlers) ClearCart(c *gin.Context) {
	if _, err := h.DB.Exec("DELETE FROM cart_items WHERE user_id = ?", currentUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
