package handlers_test

import (
	"math"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

func submitReview(t *testing.T, router *gin.Engine, token, productID string, rating int, comment string) map[string]any {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/reviews/product/"+productID, token, gin.H{
		"rating": rating, "comment": comment,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit review: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decodeBody(t, w)
}

func productRating(t *testing.T, db *sqlx.DB, productID string) (rating float64, count int) {
	t.Helper()
	row := struct {
		Rating      float64 `db:"rating"`
		ReviewCount int     `db:"review_count"`
	}{}
	if err := db.Get(&row, "SELECT rating, review_count FROM products WHERE id = ?", productID); err != nil {
		t.Fatalf("select product rating: %v", err)
	}
	return row.Rating, row.ReviewCount
}

func TestSubmitReviewRecomputesMean(t *testing.T) {
	router, db := newTestApp(t)
	productID := insertProduct(t, db, "Catnip Toy", "toys", 835, 50)

	users := []struct {
		name   string
		rating int
	}{
		{"alice", 5},
		{"bob", 3},
		{"carol", 4},
	}
	for _, u := range users {
		token, _ := registerAndLogin(t, router, u.name, u.name+"@example.com", "secret123")
		submitReview(t, router, token, productID, u.rating, "nice")
	}

	rating, count := productRating(t, db, productID)
	if math.Abs(rating-4.0) > 1e-9 {
		t.Fatalf("expected mean rating 4.0, got %v", rating)
	}
	if count != 3 {
		t.Fatalf("expected review_count 3, got %d", count)
	}
}

func TestSubmitReviewUpsertsPerUser(t *testing.T) {
	router, db := newTestApp(t)
	productID := insertProduct(t, db, "Cat Bed", "beds", 4174, 20)
	token, _ := registerAndLogin(t, router, "alice", "alice@example.com", "secret123")

	submitReview(t, router, token, productID, 2, "meh")
	submitReview(t, router, token, productID, 5, "actually great")

	// Second submission overwrites; count stays at one.
	rating, count := productRating(t, db, productID)
	if count != 1 {
		t.Fatalf("resubmission duplicated the review: count %d", count)
	}
	if math.Abs(rating-5.0) > 1e-9 {
		t.Fatalf("expected rating 5.0 after overwrite, got %v", rating)
	}

	var reviews int
	db.Get(&reviews, "SELECT COUNT(*) FROM reviews WHERE product_id = ?", productID)
	if reviews != 1 {
		t.Fatalf("expected 1 review row, got %d", reviews)
	}
}

func TestReviewVerifiedPurchase(t *testing.T) {
	router, db := newTestApp(t)
	productID := insertProduct(t, db, "Cat Food", "food", 2074, 50)
	token, _ := registerAndLogin(t, router, "buyer", "buyer@example.com", "secret123")
	adminToken, adminID := registerAndLogin(t, router, "shopadmin", "admin@example.com", "secret123")
	makeAdmin(t, db, adminID)

	// Review before any purchase is unverified.
	body := submitReview(t, router, token, productID, 4, "looks good")
	review := body["review"].(map[string]any)
	if review["is_verified"] != false {
		t.Fatalf("pre-purchase review marked verified")
	}

	// Buy the product and have the order delivered.
	addToCart(t, router, token, productID, 1)
	w := doJSON(t, router, http.MethodPost, "/api/orders", token, gin.H{
		"shipping_address": "1 Cat Street",
	})
	orderID := decodeBody(t, w)["order"].(map[string]any)["id"].(string)
	w = doJSON(t, router, http.MethodPut, "/api/orders/"+orderID, adminToken, gin.H{"status": "delivered"})
	if w.Code != http.StatusOK {
		t.Fatalf("deliver: expected 200, got %d", w.Code)
	}

	// Resubmitting after delivery flips the flag.
	body = submitReview(t, router, token, productID, 4, "confirmed good")
	review = body["review"].(map[string]any)
	if review["is_verified"] != true {
		t.Fatalf("post-delivery review not verified")
	}
}

func TestReviewAuthorOnlyEditAndDelete(t *testing.T) {
	router, db := newTestApp(t)
	productID := insertProduct(t, db, "Scratching Post", "furniture", 6676, 10)
	aliceToken, _ := registerAndLogin(t, router, "alice", "alice@example.com", "secret123")
	bobToken, _ := registerAndLogin(t, router, "bob", "bob@example.com", "secret123")

	body := submitReview(t, router, aliceToken, productID, 4, "solid")
	reviewID := body["review"].(map[string]any)["id"].(string)
	submitReview(t, router, bobToken, productID, 2, "wobbly")

	// Bob cannot edit or delete Alice's review.
	w := doJSON(t, router, http.MethodPut, "/api/reviews/"+reviewID, bobToken, gin.H{"rating": 1})
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-user edit: expected 403, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodDelete, "/api/reviews/"+reviewID, bobToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-user delete: expected 403, got %d", w.Code)
	}

	// Alice edits hers; the product mean follows.
	w = doJSON(t, router, http.MethodPut, "/api/reviews/"+reviewID, aliceToken, gin.H{"rating": 5})
	if w.Code != http.StatusOK {
		t.Fatalf("edit: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	rating, _ := productRating(t, db, productID)
	if math.Abs(rating-3.5) > 1e-9 {
		t.Fatalf("expected mean 3.5 after edit, got %v", rating)
	}

	// Out-of-range rating on edit is rejected.
	w = doJSON(t, router, http.MethodPut, "/api/reviews/"+reviewID, aliceToken, gin.H{"rating": 6})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("rating 6: expected 400, got %d", w.Code)
	}

	// Deleting recomputes the mean and decrements the count.
	w = doJSON(t, router, http.MethodDelete, "/api/reviews/"+reviewID, aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	rating, count := productRating(t, db, productID)
	if math.Abs(rating-2.0) > 1e-9 || count != 1 {
		t.Fatalf("expected rating 2.0 / count 1 after delete, got %v / %d", rating, count)
	}
}

func TestGetProductReviewsIncludesUsername(t *testing.T) {
	router, db := newTestApp(t)
	productID := insertProduct(t, db, "Laser Toy", "toys", 1668, 10)
	token, _ := registerAndLogin(t, router, "alice", "alice@example.com", "secret123")
	submitReview(t, router, token, productID, 5, "cat approved")

	w := doJSON(t, router, http.MethodGet, "/api/reviews/product/"+productID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list reviews: expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	reviews := body["reviews"].([]any)
	if len(reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(reviews))
	}
	review := reviews[0].(map[string]any)
	if review["username"] != "alice" {
		t.Fatalf("expected username alice, got %v", review["username"])
	}
	if int(body["total"].(float64)) != 1 || int(body["current_page"].(float64)) != 1 {
		t.Fatalf("wrong pagination envelope: %s", w.Body.String())
	}
}

func TestMarkHelpful(t *testing.T) {
	router, db := newTestApp(t)
	productID := insertProduct(t, db, "Cat Treats", "food", 1086, 10)
	token, _ := registerAndLogin(t, router, "alice", "alice@example.com", "secret123")
	body := submitReview(t, router, token, productID, 5, "tasty")
	reviewID := body["review"].(map[string]any)["id"].(string)

	// Anonymous and repeated votes both count.
	for want := 1; want <= 3; want++ {
		w := doJSON(t, router, http.MethodPost, "/api/reviews/"+reviewID+"/helpful", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("helpful: expected 200, got %d", w.Code)
		}
		if got := int(decodeBody(t, w)["helpful_count"].(float64)); got != want {
			t.Fatalf("expected helpful_count %d, got %d", want, got)
		}
	}

	w := doJSON(t, router, http.MethodPost, "/api/reviews/no-such-review/helpful", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown review: expected 404, got %d", w.Code)
	}
}
