package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meowkart/cat-ecommerce-golang/internal/auth"
	"github.com/meowkart/cat-ecommerce-golang/internal/models"
)

//
// --- Auth Handlers ---
//

// RegisterInput defines the JSON for user registration. The 'binding' tags
// are validated by gin before the handler body runs.
type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register is the handler for POST /api/auth/register.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	// Uniqueness checks. The columns also carry UNIQUE constraints, so a
	// race here surfaces as an insert error rather than a duplicate row.
	var exists bool
	if err := h.DB.Get(&exists, "SELECT COUNT(*) > 0 FROM users WHERE username = ?", username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		return
	}
	if err := h.DB.Get(&exists, "SELECT COUNT(*) > 0 FROM users WHERE email = ?", email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: password.Hash,
		Country:      "India",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, country, is_admin, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := h.DB.Exec(query, user.ID, user.Username, user.Email, user.PasswordHash,
		user.Country, user.IsAdmin, user.IsActive, user.CreatedAt, user.UpdatedAt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginInput defines the JSON for the login endpoint.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /api/auth/login.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.Get(&user, "SELECT * FROM users WHERE email = ?", strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check password"})
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is inactive"})
		return
	}

	token, err := auth.GenerateToken(user.ID, h.Cfg.JWTSecret, h.Cfg.JWTExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"access_token": token,
		"user":         user,
	})
}

// GetProfile is the handler for GET /api/auth/profile.
func (h *Handlers) GetProfile(c *gin.Context) {
	userID := currentUserID(c)

	var user models.User
	if err := h.DB.Get(&user, "SELECT * FROM users WHERE id = ?", userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfileInput uses pointers so "absent" and "empty" are
// distinguishable; only submitted fields are updated.
type UpdateProfileInput struct {
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
}

// UpdateProfile is the handler for PUT /api/auth/profile.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	userID := currentUserID(c)

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Build the SET clause dynamically from the submitted fields.
	querySet := "updated_at = ?"
	queryArgs := []interface{}{time.Now().UTC()}

	if input.Phone != nil {
		querySet += ", phone = ?"
		queryArgs = append(queryArgs, *input.Phone)
	}
	if input.Address != nil {
		querySet += ", address = ?"
		queryArgs = append(queryArgs, *input.Address)
	}
	if input.City != nil {
		querySet += ", city = ?"
		queryArgs = append(queryArgs, *input.City)
	}
	if input.State != nil {
		querySet += ", state = ?"
		queryArgs = append(queryArgs, *input.State)
	}
	if input.PostalCode != nil {
		querySet += ", postal_code = ?"
		queryArgs = append(queryArgs, *input.PostalCode)
	}
	if input.Country != nil {
		querySet += ", country = ?"
		queryArgs = append(queryArgs, *input.Country)
	}

	queryArgs = append(queryArgs, userID)
	result, err := h.DB.Exec("UPDATE users SET "+querySet+" WHERE id = ?", queryArgs...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var user models.User
	if err := h.DB.Get(&user, "SELECT * FROM users WHERE id = ?", userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// ChangePasswordInput defines the JSON for the change-password endpoint.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword is the handler for POST /api/auth/change-password.
func (h *Handlers) ChangePassword(c *gin.Context) {
	userID := currentUserID(c)

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.DB.Get(&user, "SELECT * FROM users WHERE id = ?", userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.OldPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check password"})
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid old password"})
		return
	}

	if err := password.Set(input.NewPassword); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	_, err = h.DB.Exec("UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		password.Hash, time.Now().UTC(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
