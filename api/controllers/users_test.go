package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	user "github.com/jmkoster/stockroom-backend/internal/users"
	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
	"github.com/jmkoster/stockroom-backend/pkg/pagination"
)

type stubUserService struct {
	bootstrapCalls int
	signupErr      error
}

func (s *stubUserService) Bootstrap(ctx context.Context, input user.CredentialsInput) (*models.User, error) {
	s.bootstrapCalls++
	return &models.User{ID: user.BootstrapUserID, Name: input.Name}, nil
}

func (s *stubUserService) Signup(ctx context.Context, input user.SignupInput) (*models.User, error) {
	if s.signupErr != nil {
		return nil, s.signupErr
	}
	email := ""
	if input.Email != nil {
		email = *input.Email
	}
	return &models.User{ID: 1, Name: input.Name, Email: email}, nil
}

func (s *stubUserService) GetByName(ctx context.Context, name string) (*models.User, error) {
	return &models.User{ID: 1, Name: name}, nil
}

func (s *stubUserService) GetByID(ctx context.Context, id int32) (*models.User, error) {
	return &models.User{ID: id, Name: "someone"}, nil
}

func (s *stubUserService) List(ctx context.Context, params pagination.Params) ([]models.User, error) {
	return []models.User{{ID: 0, Name: "root"}}, nil
}

func (s *stubUserService) Update(ctx context.Context, id int32, input user.UpdateInput) (*models.User, error) {
	return &models.User{ID: id, Name: "updated"}, nil
}

func (s *stubUserService) Delete(ctx context.Context, id int32) error {
	return nil
}

func TestBootstrapSuccess(t *testing.T) {
	svc := &stubUserService{}
	handler := Bootstrap(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bootstrap", strings.NewReader(`{"name":"root","password":"longenough"}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.bootstrapCalls != 1 {
		t.Fatalf("expected one service call, got %d", svc.bootstrapCalls)
	}

	var envelope struct {
		Data models.User `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != user.BootstrapUserID {
		t.Fatalf("bootstrap account must get the reserved id, got %d", envelope.Data.ID)
	}
}

func TestBootstrapRejectsShortPassword(t *testing.T) {
	svc := &stubUserService{}
	handler := Bootstrap(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bootstrap", strings.NewReader(`{"name":"root","password":"short"}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.bootstrapCalls != 0 {
		t.Fatal("service must not run on invalid input")
	}
}

func TestBootstrapRejectsUnknownFields(t *testing.T) {
	svc := &stubUserService{}
	handler := Bootstrap(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bootstrap", strings.NewReader(`{"name":"root","password":"longenough","admin":true}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestSignupConflictPassesThrough(t *testing.T) {
	svc := &stubUserService{signupErr: pkgerrors.New(pkgerrors.CodeConflict, "username already taken")}
	handler := Signup(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/signup", strings.NewReader(`{"name":"taken","password":"longenough"}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}

	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeConflict) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
	if payload.Error.Message != "username already taken" {
		t.Fatalf("conflict message should pass through, got %q", payload.Error.Message)
	}
}

func TestSignupValidatesEmail(t *testing.T) {
	svc := &stubUserService{}
	handler := Signup(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/signup", strings.NewReader(`{"name":"new","password":"longenough","email":"not-an-email"}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
