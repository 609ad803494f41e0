package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/meowkart/cat-ecommerce-golang/internal/models"
)

//
// --- Order Handlers ---
//

// taxRatePercent is the flat sales tax applied to every order, in percent.
// Totals are integer paisa, so subtotal*8/100 truncates exactly like the
// floor the pricing rules call for.
const taxRatePercent = 8

// checkoutLine is the scan target for the cart/product join used during
// order placement. Price and stock are the live values at checkout time.
type checkoutLine struct {
	ProductID   string `db:"product_id"`
	ProductName string `db:"product_name"`
	Quantity    int    `db:"quantity"`
	Price       int64  `db:"price"`
	Stock       int    `db:"stock"`
}

// OrderItemDetail extends OrderItem with product info and a line subtotal.
type OrderItemDetail struct {
	models.OrderItem
	ProductName string `json:"product_name" db:"product_name"`
	Subtotal    int64  `json:"subtotal" db:"-"`
}

// OrderResponse embeds the order's items the way clients consume them.
type OrderResponse struct {
	models.Order
	Items []OrderItemDetail `json:"items"`
}

// CreateOrderInput defines the JSON for placing an order.
type CreateOrderInput struct {
	ShippingAddress string `json:"shipping_address" binding:"required"`
	PaymentMethod   string `json:"payment_method"`
}

// CreateOrder is the handler for POST /api/orders. It converts the
// caller's cart into an immutable order in a single transaction: order row,
// order items with frozen prices, stock decrements and cart cleanup either
// all commit or all roll back.
func (h *Handlers) CreateOrder(c *gin.Context) {
	userID := currentUserID(c)

	// 1. --- Bind & Validate JSON ---
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shipping address is required"})
		return
	}

	// 2. --- Begin Transaction ---
	tx, err := h.DB.Beginx()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback() // safety net for every error path below

	// 3. --- Load the cart with live prices and stock ---
	var lines []checkoutLine
	err = tx.Select(&lines, `
		SELECT ci.product_id, p.name AS product_name, ci.quantity, p.price, p.stock
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.user_id = ?`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get cart items"})
		return
	}
	if len(lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	// 4. --- Stock check & totals ---
	// The whole order aborts on the first short line; no partial order.
	var subtotal int64
	for _, line := range lines {
		if line.Stock < line.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Insufficient stock for %s", line.ProductName)})
			return
		}
		subtotal += line.Price * int64(line.Quantity)
	}
	tax := subtotal * taxRatePercent / 100
	total := subtotal + tax

	// 5. --- Create the order row ---
	now := time.Now().UTC()
	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "pending"
	}
	order := models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		TotalPrice:      total,
		Tax:             tax,
		Status:          models.OrderStatusPending,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   &paymentMethod,
		OrderDate:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	_, err = tx.Exec(`
		INSERT INTO orders (id, user_id, total_price, tax, status, shipping_address,
			payment_method, order_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.TotalPrice, order.Tax, order.Status,
		order.ShippingAddress, paymentMethod, order.OrderDate, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	// 6. --- Snapshot items & decrement stock ---
	// The decrement is conditional on stock still covering the quantity,
	// so two concurrent checkouts of the same product cannot oversell:
	// the slower one sees zero rows affected and the transaction aborts.
	for _, line := range lines {
		_, err := tx.Exec(`
			INSERT INTO order_items (id, order_id, product_id, quantity, price_at_purchase, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), order.ID, line.ProductID, line.Quantity, line.Price, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order item"})
			return
		}

		result, err := tx.Exec(
			"UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?",
			line.Quantity, now, line.ProductID, line.Quantity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deduct stock"})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Insufficient stock for %s", line.ProductName)})
			return
		}
	}

	// 7. --- Clear the cart ---
	if _, err := tx.Exec("DELETE FROM cart_items WHERE user_id = ?", userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	// 8. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	items, err := h.loadOrderItems(h.DB, order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   OrderResponse{Order: order, Items: items},
	})
}

// loadOrderItems fetches an order's items with product names attached.
func (h *Handlers) loadOrderItems(q sqlx.Queryer, orderID string) ([]OrderItemDetail, error) {
	items := []OrderItemDetail{}
	err := sqlx.Select(q, &items, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_at_purchase,
			oi.created_at, p.name AS product_name
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?`, orderID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Subtotal = items[i].PriceAtPurchase * int64(items[i].Quantity)
	}
	return items, nil
}

// GetOrders is the handler for GET /api/orders. Newest first, paginated.
func (h *Handlers) GetOrders(c *gin.Context) {
	userID := currentUserID(c)
	page, perPage := pageParams(c, 10)

	var total int
	if err := h.DB.Get(&total, "SELECT COUNT(*) FROM orders WHERE user_id = ?", userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	var orders []models.Order
	err := h.DB.Select(&orders, `
		SELECT * FROM orders WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, perPage, (page-1)*perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	responses := []OrderResponse{}
	for _, order := range orders {
		items, err := h.loadOrderItems(h.DB, order.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
			return
		}
		responses = append(responses, OrderResponse{Order: order, Items: items})
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":       responses,
		"total":        total,
		"pages":        pageCount(total, perPage),
		"current_page": page,
	})
}

// GetOrder is the handler for GET /api/orders/:id. Owner only; other
// users' orders read as not found.
func (h *Handlers) GetOrder(c *gin.Context) {
	userID := currentUserID(c)

	var order models.Order
	err := h.DB.Get(&order, "SELECT * FROM orders WHERE id = ? AND user_id = ?",
		c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	items, err := h.loadOrderItems(h.DB, order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": OrderResponse{Order: order, Items: items}})
}

// UpdateOrderInput defines the JSON for the admin status update.
type UpdateOrderInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrder is the handler for PUT /api/orders/:id (admin only).
// Entering 'delivered' stamps the delivery date.
func (h *Handlers) UpdateOrder(c *gin.Context) {
	orderID := c.Param("id")

	var input UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidOrderStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var order models.Order
	err := h.DB.Get(&order, "SELECT * FROM orders WHERE id = ?", orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	now := time.Now().UTC()
	order.Status = input.Status
	order.UpdatedAt = now
	if input.Status == models.OrderStatusDelivered {
		order.DeliveryDate = &now
	}

	_, err = h.DB.Exec("UPDATE orders SET status = ?, delivery_date = ?, updated_at = ? WHERE id = ?",
		order.Status, order.DeliveryDate, order.UpdatedAt, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	items, err := h.loadOrderItems(h.DB, order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order updated successfully",
		"order":   OrderResponse{Order: order, Items: items},
	})
}

// ConfirmPaymentInput defines the JSON for the payment confirmation.
type ConfirmPaymentInput struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	PaymentMethod string `json:"payment_method"`
}

// ConfirmPayment is the handler for POST /api/orders/:id/confirm-payment.
// The transaction id is client-asserted; nothing verifies it against a
// payment processor.
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	userID := currentUserID(c)
	orderID := c.Param("id")

	var input ConfirmPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction ID is required"})
		return
	}

	var order models.Order
	err := h.DB.Get(&order, "SELECT * FROM orders WHERE id = ? AND user_id = ?", orderID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "razorpay"
	}
	order.TransactionID = &input.TransactionID
	order.PaymentMethod = &paymentMethod
	order.Status = models.OrderStatusConfirmed
	order.UpdatedAt = time.Now().UTC()

	_, err = h.DB.Exec(`
		UPDATE orders SET transaction_id = ?, payment_method = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		input.TransactionID, paymentMethod, order.Status, order.UpdatedAt, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm payment"})
		return
	}

	items, err := h.loadOrderItems(h.DB, order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment confirmed",
		"order":   OrderResponse{Order: order, Items: items},
	})
}
