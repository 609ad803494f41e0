package handlers_test

import (
	"net/http"
	"testing"
)

func TestGetUserPublicProfile(t *testing.T) {
	router, _ := newTestApp(t)
	_, userID := registerAndLogin(t, router, "alice", "alice@example.com", "secret123")

	w := doJSON(t, router, http.MethodGet, "/api/users/"+userID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	user := decodeBody(t, w)["user"].(map[string]any)
	if user["username"] != "alice" {
		t.Fatalf("expected username alice, got %v", user["username"])
	}
	// The public profile must not expose contact or account details.
	for _, field := range []string{"email", "phone", "address", "password_hash", "is_admin"} {
		if _, leaked := user[field]; leaked {
			t.Fatalf("public profile leaks %s", field)
		}
	}

	w = doJSON(t, router, http.MethodGet, "/api/users/no-such-id", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown user: expected 404, got %d", w.Code)
	}
}

func TestAdminUserManagement(t *testing.T) {
	router, db := newTestApp(t)
	userToken, userID := registerAndLogin(t, router, "alice", "alice@example.com", "secret123")
	adminToken, adminID := registerAndLogin(t, router, "shopadmin", "admin@example.com", "secret123")
	makeAdmin(t, db, adminID)

	// The listing is admin-only.
	w := doJSON(t, router, http.MethodGet, "/api/users/admin/list", userToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin list: expected 403, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/users/admin/list", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin list: expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if int(body["total"].(float64)) != 2 {
		t.Fatalf("expected 2 users, got %v", body["total"])
	}

	// Promote, then demote.
	w = doJSON(t, router, http.MethodPut, "/api/users/admin/"+userID+"/toggle-admin", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle-admin: expected 200, got %d", w.Code)
	}
	var isAdmin bool
	db.Get(&isAdmin, "SELECT is_admin FROM users WHERE id = ?", userID)
	if !isAdmin {
		t.Fatal("user not promoted")
	}
	doJSON(t, router, http.MethodPut, "/api/users/admin/"+userID+"/toggle-admin", adminToken, nil)
	db.Get(&isAdmin, "SELECT is_admin FROM users WHERE id = ?", userID)
	if isAdmin {
		t.Fatal("user not demoted on second toggle")
	}

	// Deactivation locks the account out of login.
	w = doJSON(t, router, http.MethodPut, "/api/users/admin/"+userID+"/toggle-active", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle-active: expected 200, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "alice@example.com", "password": "secret123",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("deactivated login: expected 403, got %d", w.Code)
	}
}
