package controllers

import (
	"net/http"
	"testing"

	"github.com/cicc-pucmm/open-house-social-app-2026/models"
)

func TestUpsertSessionCreatesThenUpdates(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.doJSON(t, http.MethodPost, "/api/v1/session", "", map[string]string{
		"username": "maria",
		"email":    "maria@example.com",
		"phone":    "8090000001",
	})
	wantStatus(t, w, http.StatusOK)

	var first struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	decodeData(t, resp, &first)
	if first.Token == "" {
		t.Fatal("expected a session token")
	}
	if first.User.IsAdmin {
		t.Fatal("regular user must not be admin")
	}

	// same email, new identity fields: must update in place
	w, resp = env.doJSON(t, http.MethodPost, "/api/v1/session", "", map[string]string{
		"username": "maria-updated",
		"email":    "maria@example.com",
		"phone":    "8090000002",
	})
	wantStatus(t, w, http.StatusOK)

	var second struct {
		User models.User `json:"user"`
	}
	decodeData(t, resp, &second)
	if second.User.ID != first.User.ID {
		t.Fatalf("upsert created a new user: id %d then %d", first.User.ID, second.User.ID)
	}
	if second.User.Username != "maria-updated" || second.User.Phone != "8090000002" {
		t.Fatalf("fields not refreshed: %+v", second.User)
	}

	var count int64
	env.db.Model(&models.User{}).Where("email = ?", "maria@example.com").Count(&count)
	if count != 1 {
		t.Fatalf("user rows = %d, want 1", count)
	}
}

func TestUpsertSessionAdminTripleRecomputed(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.doJSON(t, http.MethodPost, "/api/v1/session", "", map[string]string{
		"username": "Dean",
		"email":    "dean@example.edu",
		"phone":    "8095551234",
	})
	wantStatus(t, w, http.StatusOK)

	var got struct {
		User models.User `json:"user"`
	}
	decodeData(t, resp, &got)
	if !got.User.IsAdmin {
		t.Fatal("full triple match must grant admin")
	}

	// two out of three is not enough, and the flag must drop on re-upsert
	w, resp = env.doJSON(t, http.MethodPost, "/api/v1/session", "", map[string]string{
		"username": "Dean",
		"email":    "dean@example.edu",
		"phone":    "0000000000",
	})
	wantStatus(t, w, http.StatusOK)
	decodeData(t, resp, &got)
	if got.User.IsAdmin {
		t.Fatal("partial triple match must revoke admin")
	}
}

func TestUpsertSessionValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []map[string]string{
		{"email": "no-username@example.com"},
		{"username": "nobody"},
		{"username": "bad-email", "email": "not-an-email"},
		{"username": "   ", "email": "blank@example.com"},
	}
	for _, body := range cases {
		w, _ := env.doJSON(t, http.MethodPost, "/api/v1/session", "", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %v: status = %d, want 400", body, w.Code)
		}
	}
}

func TestGetUserByEmail(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.createUser(t, "pedro", "pedro@example.com", false)

	w, resp := env.doJSON(t, http.MethodGet, "/api/v1/users/by-email?email=pedro@example.com", "", nil)
	wantStatus(t, w, http.StatusOK)

	var got struct {
		User models.User `json:"user"`
	}
	decodeData(t, resp, &got)
	if got.User.ID != user.ID {
		t.Fatalf("user id = %d, want %d", got.User.ID, user.ID)
	}

	w, _ = env.doJSON(t, http.MethodGet, "/api/v1/users/by-email?email=ghost@example.com", "", nil)
	wantStatus(t, w, http.StatusNotFound)
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "ana", "ana@example.com", false)

	w, _ := env.doJSON(t, http.MethodGet, "/api/v1/session/me", token, nil)
	wantStatus(t, w, http.StatusOK)

	w, _ = env.doJSON(t, http.MethodPost, "/api/v1/session/logout", token, nil)
	wantStatus(t, w, http.StatusOK)

	w, _ = env.doJSON(t, http.MethodGet, "/api/v1/session/me", token, nil)
	wantStatus(t, w, http.StatusUnauthorized)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.doJSON(t, http.MethodGet, "/api/v1/session/me", "", nil)
	wantStatus(t, w, http.StatusUnauthorized)

	w, _ = env.doJSON(t, http.MethodGet, "/api/v1/session/me", "not-a-jwt", nil)
	wantStatus(t, w, http.StatusUnauthorized)
}
