package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/meowkart/cat-ecommerce-golang/internal/models"
)

//
// --- Catalog Handlers ---
//

// GetProducts is the handler for GET /api/products. It supports category
// and search filters, four sort orders and pagination.
func (h *Handlers) GetProducts(c *gin.Context) {
	page, perPage := pageParams(c, h.Cfg.ItemsPerPage)
	category := c.Query("category")
	search := c.Query("search")
	sortBy := c.DefaultQuery("sort_by", "created_at")

	// 1. --- Build the WHERE clause shared by the count and page queries ---
	var where strings.Builder
	var args []interface{}

	where.WriteString(" WHERE is_active = ?")
	args = append(args, true)

	if category != "" && category != "all" {
		where.WriteString(" AND category = ?")
		args = append(args, category)
	}
	if search != "" {
		where.WriteString(" AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		term := "%" + strings.ToLower(search) + "%"
		args = append(args, term, term)
	}

	// 2. --- Total count for the pagination envelope ---
	var total int
	if err := h.DB.Get(&total, "SELECT COUNT(*) FROM products"+where.String(), args...); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	// 3. --- Sort order ---
	var orderBy string
	switch sortBy {
	case "price_asc":
		orderBy = " ORDER BY price ASC"
	case "price_desc":
		orderBy = " ORDER BY price DESC"
	case "rating":
		orderBy = " ORDER BY rating DESC"
	default:
		orderBy = " ORDER BY created_at DESC"
	}

	// 4. --- Fetch the requested page ---
	query := "SELECT * FROM products" + where.String() + orderBy + " LIMIT ? OFFSET ?"
	args = append(args, perPage, (page-1)*perPage)

	products := []models.Product{}
	if err := h.DB.Select(&products, query, args...); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":     products,
		"total":        total,
		"pages":        pageCount(total, perPage),
		"current_page": page,
	})
}

// GetProduct is the handler for GET /api/products/:id.
func (h *Handlers) GetProduct(c *gin.Context) {
	var product models.Product
	err := h.DB.Get(&product, "SELECT * FROM products WHERE id = ?", c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProductInput defines the JSON for creating a product. Price is a
// pointer so a zero price still satisfies 'required'.
type CreateProductInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       *int64  `json:"price" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	ImageURL    *string `json:"image_url"`
	Stock       int     `json:"stock" binding:"gte=0"`
	Rating      float64 `json:"rating" binding:"gte=0,lte=5"`
}

// CreateProduct is the handler for POST /api/products (admin only).
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *input.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
		return
	}

	now := time.Now().UTC()
	product := models.Product{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Slug:        slug.Make(input.Name),
		Description: input.Description,
		Price:       *input.Price,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
		Rating:      input.Rating,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `
		INSERT INTO products (id, name, slug, description, price, category, image_url,
			stock, rating, review_count, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := h.DB.Exec(query, product.ID, product.Name, product.Slug, product.Description,
		product.Price, product.Category, product.ImageURL, product.Stock, product.Rating,
		product.ReviewCount, product.IsActive, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProductInput uses pointer fields for partial updates.
type UpdateProductInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"image_url"`
	Stock       *int    `json:"stock"`
}

// UpdateProduct is the handler for PUT /api/products/:id (admin only).
func (h *Handlers) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Price != nil && *input.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
		return
	}
	if input.Stock != nil && *input.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock must not be negative"})
		return
	}

	// Dynamically build the SET clause from the submitted fields.
	querySet := "updated_at = ?"
	queryArgs := []interface{}{time.Now().UTC()}

	if input.Name != nil {
		querySet += ", name = ?, slug = ?"
		queryArgs = append(queryArgs, *input.Name, slug.Make(*input.Name))
	}
	if input.Description != nil {
		querySet += ", description = ?"
		queryArgs = append(queryArgs, *input.Description)
	}
	if input.Price != nil {
		querySet += ", price = ?"
		queryArgs = append(queryArgs, *input.Price)
	}
	if input.Category != nil {
		querySet += ", category = ?"
		queryArgs = append(queryArgs, *input.Category)
	}
	if input.ImageURL != nil {
		querySet += ", image_url = ?"
		queryArgs = append(queryArgs, *input.ImageURL)
	}
	if input.Stock != nil {
		querySet += ", stock = ?"
		queryArgs = append(queryArgs, *input.Stock)
	}

	queryArgs = append(queryArgs, productID)
	result, err := h.DB.Exec("UPDATE products SET "+querySet+" WHERE id = ?", queryArgs...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var product models.Product
	if err := h.DB.Get(&product, "SELECT * FROM products WHERE id = ?", productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct is the handler for DELETE /api/products/:id (admin only).
// Soft delete: the row stays so historical orders and reviews keep their
// references.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	result, err := h.DB.Exec("UPDATE products SET is_active = ?, updated_at = ? WHERE id = ?",
		false, time.Now().UTC(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// GetCategories is the handler for GET /api/products/categories.
func (h *Handlers) GetCategories(c *gin.Context) {
	categories := []string{}
	err := h.DB.Select(&categories,
		"SELECT DISTINCT category FROM products WHERE is_active = ? ORDER BY category", true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
