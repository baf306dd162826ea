package authhandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hrdocs/internal/platform/auth"
	"hrdocs/internal/transport/http/middleware"
)

func newAuthenticator(t *testing.T) auth.Authenticator {
	t.Helper()
	hash, err := auth.HashPassword("Stronger123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return auth.Authenticator{Secret: "secret", Email: "hr@example.com", PasswordHash: hash}
}

func TestHandleLogin(t *testing.T) {
	h := NewHandler(newAuthenticator(t))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "valid credentials", body: `{"email":"HR@example.com","password":"Stronger123"}`, status: http.StatusOK},
		{name: "wrong password", body: `{"email":"hr@example.com","password":"nope"}`, status: http.StatusUnauthorized},
		{name: "unknown email", body: `{"email":"other@example.com","password":"Stronger123"}`, status: http.StatusUnauthorized},
		{name: "malformed body", body: `{`, status: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleLogin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(tc.body)))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestLoginTokenPassesAuthMiddleware(t *testing.T) {
	authn := newAuthenticator(t)
	h := NewHandler(authn)

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"hr@example.com","password":"Stronger123"}`)))
	var body struct {
		Data loginResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Token == "" || body.Data.ExpiresAt.IsZero() {
		t.Fatalf("expected token in response, got %+v", body.Data)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Data.Token)
	me := httptest.NewRecorder()
	middleware.Auth(authn.Secret)(http.HandlerFunc(h.HandleMe)).ServeHTTP(me, req)
	if me.Code != http.StatusOK || !strings.Contains(me.Body.String(), "hr@example.com") {
		t.Fatalf("unexpected /me response %d: %s", me.Code, me.Body.String())
	}
}

func TestLoginDisabledWithoutSecret(t *testing.T) {
	h := NewHandler(auth.Authenticator{})
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a","password":"b"}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
