package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
)

type stubVerifier struct {
	users map[string]string
}

func (s *stubVerifier) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	stored, ok := s.users[username]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if stored != password {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return &models.User{ID: 7, Name: username}, nil
}

func authTestHandler(t *testing.T, wantUserID int32) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Fatal("user id missing from context")
		}
		if id != wantUserID {
			t.Fatalf("expected user id %d, got %d", wantUserID, id)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_ValidCredentials(t *testing.T) {
	verifier := &stubVerifier{users: map[string]string{"alice": "secret"}}
	handler := Auth(verifier, nil, nil)(authTestHandler(t, 7))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("X-Auth-Username", "alice")
	req.Header.Set("X-Auth-Password", "secret")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuth_MissingCredentials(t *testing.T) {
	verifier := &stubVerifier{users: map[string]string{}}
	handler := Auth(verifier, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_UnknownUserIsNotFound(t *testing.T) {
	// deliberate: an unknown username reads as NOT_FOUND, not UNAUTHORIZED
	verifier := &stubVerifier{users: map[string]string{}}
	handler := Auth(verifier, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for unknown users")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("X-Auth-Username", "ghost")
	req.Header.Set("X-Auth-Password", "whatever")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected code: %s", payload.Error.Code)
	}
}

func TestAuth_WrongPassword(t *testing.T) {
	verifier := &stubVerifier{users: map[string]string{"alice": "secret"}}
	handler := Auth(verifier, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a bad password")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("X-Auth-Username", "alice")
	req.Header.Set("X-Auth-Password", "wrong")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
