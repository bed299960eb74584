package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	order "github.com/jmkoster/stockroom-backend/internal/orders"
	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
	"github.com/jmkoster/stockroom-backend/pkg/pagination"
)

type stubOrderService struct {
	revertErr error
}

func (s *stubOrderService) Place(ctx context.Context, input order.PlaceInput) (*models.PendingOrder, error) {
	return &models.PendingOrder{ID: 1, ProductID: input.ProductID, Amount: input.Amount}, nil
}

func (s *stubOrderService) GetPending(ctx context.Context, id int32) (*models.PendingOrder, error) {
	return &models.PendingOrder{ID: id, ProductID: 1, Amount: 10}, nil
}

func (s *stubOrderService) ListPending(ctx context.Context, params pagination.Params) ([]models.PendingOrder, error) {
	return nil, nil
}

func (s *stubOrderService) UpdatePending(ctx context.Context, id int32, amount float64) (*models.PendingOrder, error) {
	return &models.PendingOrder{ID: id, ProductID: 1, Amount: amount}, nil
}

func (s *stubOrderService) DeletePending(ctx context.Context, id int32) error {
	return nil
}

func (s *stubOrderService) MarkReceived(ctx context.Context, pendingID int32, input order.ReceiveInput) (*models.ReceivedOrder, error) {
	return &models.ReceivedOrder{
		ID:               9,
		Received:         input.ReceivedAt,
		ProductID:        1,
		GrossAmount:      10,
		ActuallyReceived: input.ActuallyReceived,
		Damaged:          input.Damaged,
	}, nil
}

func (s *stubOrderService) GetReceived(ctx context.Context, id int32) (*models.ReceivedOrder, error) {
	return &models.ReceivedOrder{ID: id, ProductID: 1, GrossAmount: 10}, nil
}

func (s *stubOrderService) ListReceived(ctx context.Context, params pagination.Params) ([]models.ReceivedOrder, error) {
	return nil, nil
}

func (s *stubOrderService) UpdateReceived(ctx context.Context, id int32, input order.UpdateReceivedInput) (*models.ReceivedOrder, error) {
	return &models.ReceivedOrder{ID: id, ProductID: 1, GrossAmount: 10}, nil
}

func (s *stubOrderService) DeleteReceived(ctx context.Context, id int32) error {
	return nil
}

func (s *stubOrderService) Revert(ctx context.Context, receivedID int32) (*models.PendingOrder, error) {
	if s.revertErr != nil {
		return nil, s.revertErr
	}
	return &models.PendingOrder{ID: 3, ProductID: 1, Amount: 10}, nil
}

func withOrderID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestReceiveOrderReturnsReceipt(t *testing.T) {
	handler := ReceiveOrder(&stubOrderService{}, nil)

	when := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)
	body := `{"received_at":"` + when.Format(time.RFC3339) + `","actually_received":9,"damaged":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/pending/5/receive", strings.NewReader(body))
	req = withOrderID(req, "5")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data models.ReceivedOrder `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ActuallyReceived != 9 || envelope.Data.Damaged != 1 {
		t.Fatalf("receipt fields lost: %+v", envelope.Data)
	}
}

func TestUpdatePendingRejectsNegativeAmount(t *testing.T) {
	handler := UpdatePendingOrder(&stubOrderService{}, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/orders/pending/5", strings.NewReader(`{"amount":-1}`))
	req = withOrderID(req, "5")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestRevertBlockedByConfig(t *testing.T) {
	svc := &stubOrderService{revertErr: pkgerrors.New(pkgerrors.CodeStateConflict, "lossy revert disabled")}
	handler := RevertOrder(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/received/9/revert", nil)
	req = withOrderID(req, "9")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
}

func TestGetPendingOrderRejectsBadID(t *testing.T) {
	handler := GetPendingOrder(&stubOrderService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/pending/abc", nil)
	req = withOrderID(req, "abc")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
