package controllers

import (
	"net/http"
	"time"

	"github.com/jmkoster/stockroom-backend/api/responses"
	"github.com/jmkoster/stockroom-backend/api/validators"
	order "github.com/jmkoster/stockroom-backend/internal/orders"
	"github.com/jmkoster/stockroom-backend/pkg/logger"
	"github.com/jmkoster/stockroom-backend/pkg/pagination"
)

type placeOrderRequest struct {
	ProductID int32   `json:"product_id" validate:"required,min=1"`
	Amount    float64 `json:"amount" validate:"gte=0"`
}

type updatePendingRequest struct {
	Amount float64 `json:"amount" validate:"gte=0"`
}

type receiveOrderRequest struct {
	ReceivedAt       *time.Time `json:"received_at,omitempty"`
	ActuallyReceived float64    `json:"actually_received" validate:"gte=0"`
	Damaged          float64    `json:"damaged" validate:"gte=0"`
}

type updateReceivedRequest struct {
	ReceivedAt       *time.Time `json:"received_at,omitempty"`
	ActuallyReceived *float64   `json:"actually_received,omitempty" validate:"omitempty,gte=0"`
	Damaged          *float64   `json:"damaged,omitempty" validate:"omitempty,gte=0"`
}

// PlaceOrder opens a pending order for a product.
func PlaceOrder(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Place(r.Context(), order.PlaceInput{
			ProductID: payload.ProductID,
			Amount:    payload.Amount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func GetPendingOrder(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.GetPending(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, row)
	}
}

func ListPendingOrders(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListPending(r.Context(), pagination.FromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

func UpdatePendingOrder(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePendingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdatePending(r.Context(), id, payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

func DeletePendingOrder(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeletePending(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"deleted": id})
	}
}

// ReceiveOrder closes a pending order into the received table. The pending
// row disappears and the receipt gets a fresh, unrelated id.
func ReceiveOrder(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload receiveOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		received, err := svc.MarkReceived(r.Context(), id, order.ReceiveInput{
			ReceivedAt:       payload.ReceivedAt,
			ActuallyReceived: payload.ActuallyReceived,
			Damaged:          payload.Damaged,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, received)
	}
}

func GetReceivedOrder(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.GetReceived(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, row)
	}
}

func ListReceivedOrders(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListReceived(r.Context(), pagination.FromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

func UpdateReceivedOrder(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateReceivedRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateReceived(r.Context(), id, order.UpdateReceivedInput{
			ReceivedAt:       payload.ReceivedAt,
			ActuallyReceived: payload.ActuallyReceived,
			Damaged:          payload.Damaged,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

func DeleteReceivedOrder(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteReceived(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"deleted": id})
	}
}

// RevertOrder reopens a received order as pending. Receipt data is discarded,
// which is why the service gates it behind configuration.
func RevertOrder(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reverted, err := svc.Revert(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, reverted)
	}
}
