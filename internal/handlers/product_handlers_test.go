package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGetProductsFilteringAndSorting(t *testing.T) {
	router, db := newTestApp(t)
	insertProduct(t, db, "Catnip Mouse Toy", "toys", 835, 120)
	insertProduct(t, db, "Cozy Cat Bed", "beds", 4174, 30)
	insertProduct(t, db, "Laser Toy", "toys", 1668, 90)

	// Category filter
	w := doJSON(t, router, http.MethodGet, "/api/products?category=toys", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if int(body["total"].(float64)) != 2 {
		t.Fatalf("category filter: expected total 2, got %v", body["total"])
	}

	// Search is case-insensitive and matches name or description
	w = doJSON(t, router, http.MethodGet, "/api/products?search=COZY", "", nil)
	body = decodeBody(t, w)
	if int(body["total"].(float64)) != 1 {
		t.Fatalf("search: expected total 1, got %v", body["total"])
	}

	// price_asc ordering
	w = doJSON(t, router, http.MethodGet, "/api/products?sort_by=price_asc", "", nil)
	products := decodeBody(t, w)["products"].([]any)
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	var last float64 = -1
	for _, p := range products {
		price := p.(map[string]any)["price"].(float64)
		if price < last {
			t.Fatalf("products not sorted by ascending price")
		}
		last = price
	}

	// category=all behaves like no filter
	w = doJSON(t, router, http.MethodGet, "/api/products?category=all", "", nil)
	body = decodeBody(t, w)
	if int(body["total"].(float64)) != 3 {
		t.Fatalf("category=all: expected total 3, got %v", body["total"])
	}
}

func TestGetProductsPaginationEnvelope(t *testing.T) {
	router, db := newTestApp(t)
	for i := 0; i < 5; i++ {
		insertProduct(t, db, "Product "+string(rune('A'+i)), "toys", int64(100*(i+1)), 10)
	}

	w := doJSON(t, router, http.MethodGet, "/api/products?page=2&per_page=2", "", nil)
	body := decodeBody(t, w)
	if int(body["total"].(float64)) != 5 {
		t.Fatalf("expected total 5, got %v", body["total"])
	}
	if int(body["pages"].(float64)) != 3 {
		t.Fatalf("expected 3 pages, got %v", body["pages"])
	}
	if int(body["current_page"].(float64)) != 2 {
		t.Fatalf("expected current_page 2, got %v", body["current_page"])
	}
	if n := len(body["products"].([]any)); n != 2 {
		t.Fatalf("expected 2 products on page, got %d", n)
	}
}

func TestProductAdminLifecycle(t *testing.T) {
	router, db := newTestApp(t)
	userToken, _ := registerAndLogin(t, router, "customer", "customer@example.com", "secret123")
	adminToken, adminID := registerAndLogin(t, router, "shopadmin", "admin@example.com", "secret123")
	makeAdmin(t, db, adminID)

	payload := gin.H{
		"name": "Cat Scratching Post", "description": "Tall post",
		"price": 6676, "category": "furniture", "stock": 15,
	}

	// Non-admins cannot create products.
	w := doJSON(t, router, http.MethodPost, "/api/products", userToken, payload)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin create: expected 403, got %d", w.Code)
	}

	// Admin creates; slug is derived from the name.
	w = doJSON(t, router, http.MethodPost, "/api/products", adminToken, payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	product := decodeBody(t, w)["product"].(map[string]any)
	productID := product["id"].(string)
	if product["slug"] != "cat-scratching-post" {
		t.Fatalf("expected slug cat-scratching-post, got %v", product["slug"])
	}

	// Partial update; renaming regenerates the slug.
	w = doJSON(t, router, http.MethodPut, "/api/products/"+productID, adminToken, gin.H{
		"name": "Deluxe Cat Tree", "price": 7000,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	product = decodeBody(t, w)["product"].(map[string]any)
	if product["slug"] != "deluxe-cat-tree" || product["price"].(float64) != 7000 {
		t.Fatalf("update not applied: %v", product)
	}
	if product["category"] != "furniture" {
		t.Fatalf("untouched field clobbered: %v", product["category"])
	}

	// Negative values are rejected.
	w = doJSON(t, router, http.MethodPut, "/api/products/"+productID, adminToken, gin.H{"price": -1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative price: expected 400, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPut, "/api/products/"+productID, adminToken, gin.H{"stock": -5})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative stock: expected 400, got %d", w.Code)
	}

	// Soft delete hides the product from the listing but the row survives.
	w = doJSON(t, router, http.MethodDelete, "/api/products/"+productID, adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/products", "", nil)
	if total := int(decodeBody(t, w)["total"].(float64)); total != 0 {
		t.Fatalf("soft-deleted product still listed: total %d", total)
	}
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM products WHERE id = ?", productID); err != nil || count != 1 {
		t.Fatalf("soft delete removed the row: count=%d err=%v", count, err)
	}
}

func TestGetProductNotFound(t *testing.T) {
	router, _ := newTestApp(t)
	w := doJSON(t, router, http.MethodGet, "/api/products/no-such-id", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetCategories(t *testing.T) {
	router, db := newTestApp(t)
	insertProduct(t, db, "Toy One", "toys", 100, 5)
	insertProduct(t, db, "Toy Two", "toys", 200, 5)
	insertProduct(t, db, "Bed One", "beds", 300, 5)

	w := doJSON(t, router, http.MethodGet, "/api/products/categories", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	categories := decodeBody(t, w)["categories"].([]any)
	if len(categories) != 2 {
		t.Fatalf("expected 2 distinct categories, got %v", categories)
	}
	if categories[0] != "beds" || categories[1] != "toys" {
		t.Fatalf("categories not sorted: %v", categories)
	}
}
