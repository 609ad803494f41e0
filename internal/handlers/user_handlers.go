package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meowkart/cat-ecommerce-golang/internal/models"
)

//
// --- User Handlers ---
//

// GetUser is the handler for GET /api/users/:id. Public, so only a
// limited profile is returned.
func (h *Handlers) GetUser(c *gin.Context) {
	var user models.User
	err := h.DB.Get(&user, "SELECT * FROM users WHERE id = ?", c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.PublicProfile()})
}

// ListUsers is the handler for GET /api/users/admin/list (admin only).
func (h *Handlers) ListUsers(c *gin.Context) {
	page, perPage := pageParams(c, h.Cfg.ItemsPerPage)

	var total int
	if err := h.DB.Get(&total, "SELECT COUNT(*) FROM users"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	users := []models.User{}
	err := h.DB.Select(&users, "SELECT * FROM users ORDER BY created_at LIMIT ? OFFSET ?",
		perPage, (page-1)*perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":        users,
		"total":        total,
		"pages":        pageCount(total, perPage),
		"current_page": page,
	})
}

// ToggleAdmin is the handler for PUT /api/users/admin/:id/toggle-admin.
func (h *Handlers) ToggleAdmin(c *gin.Context) {
	h.toggleUserFlag(c, "is_admin", "User admin status updated")
}

// ToggleActive is the handler for PUT /api/users/admin/:id/toggle-active.
func (h *Handlers) ToggleActive(c *gin.Context) {
	h.toggleUserFlag(c, "is_active", "User active status updated")
}

// toggleUserFlag flips a boolean column on the users table. The column
// name is one of two fixed literals, never caller input.
func (h *Handlers) toggleUserFlag(c *gin.Context, column, message string) {
	userID := c.Param("id")

	var user models.User
	err := h.DB.Get(&user, "SELECT * FROM users WHERE id = ?", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var newValue bool
	switch column {
	case "is_admin":
		newValue = !user.IsAdmin
		user.IsAdmin = newValue
	case "is_active":
		newValue = !user.IsActive
		user.IsActive = newValue
	}

	_, err = h.DB.Exec("UPDATE users SET "+column+" = ?, updated_at = ? WHERE id = ?",
		newValue, time.Now().UTC(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"user":    user,
	})
}
