package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/meowkart/cat-ecommerce-golang/internal/config"
	"github.com/meowkart/cat-ecommerce-golang/internal/database"
	"github.com/meowkart/cat-ecommerce-golang/internal/handlers"
	"github.com/meowkart/cat-ecommerce-golang/internal/routes"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestApp builds the full router against a fresh in-memory database.
func newTestApp(t *testing.T) (*gin.Engine, *sqlx.DB) {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Port:         "0",
		DBDriver:     "sqlite",
		DBDSN:        ":memory:",
		JWTSecret:    []byte("test-secret"),
		JWTExpiry:    time.Hour,
		CORSOrigins:  []string{"*"},
		ItemsPerPage: 20,
	}

	h := handlers.New(db, cfg, zerolog.Nop())
	return routes.SetupRouter(h, cfg), db
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a response body into a generic map.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// registerAndLogin creates a user through the API and returns its token
// and user ID.
func registerAndLogin(t *testing.T, router *gin.Engine, username, email, password string) (token, userID string) {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", email, w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	token, _ = body["access_token"].(string)
	if token == "" {
		t.Fatal("login response missing access_token")
	}
	user, _ := body["user"].(map[string]any)
	userID, _ = user["id"].(string)
	if userID == "" {
		t.Fatal("login response missing user id")
	}
	return token, userID
}

// makeAdmin flips the is_admin flag directly in the database.
func makeAdmin(t *testing.T, db *sqlx.DB, userID string) {
	t.Helper()
	if _, err := db.Exec("UPDATE users SET is_admin = ? WHERE id = ?", true, userID); err != nil {
		t.Fatalf("make admin: %v", err)
	}
}

// insertProduct seeds a product row directly and returns its ID.
func insertProduct(t *testing.T, db *sqlx.DB, name, category string, price int64, stock int) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := db.Exec(
		`INSERT INTO products (id, name, slug, description, price, category, stock, rating, review_count, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?)`,
		id, name, slug.Make(name), "test product", price, category, stock, true, now, now)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
}

// addToCart puts quantity of a product into the token's cart via the API.
func addToCart(t *testing.T, router *gin.Engine, token, productID string, quantity int) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/cart", token, gin.H{
		"product_id": productID,
		"quantity":   quantity,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add to cart: expected 201, got %d: %s", w.Code, w.Body.String())
	}
}
