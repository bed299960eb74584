package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmkoster/stockroom-backend/api/middleware"
	"github.com/jmkoster/stockroom-backend/api/responses"
	"github.com/jmkoster/stockroom-backend/api/validators"
	permission "github.com/jmkoster/stockroom-backend/internal/permissions"
	user "github.com/jmkoster/stockroom-backend/internal/users"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
	"github.com/jmkoster/stockroom-backend/pkg/logger"
	"github.com/jmkoster/stockroom-backend/pkg/pagination"
)

type credentialsRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

type signupRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Password string  `json:"password" validate:"required,min=8"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

type updateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

type permissionFlagsRequest struct {
	Admin         bool `json:"admin"`
	ViewPending   bool `json:"view_pending"`
	ViewReceived  bool `json:"view_received"`
	EditPending   bool `json:"edit_pending"`
	CreateOrders  bool `json:"create_orders"`
	EditReceived  bool `json:"edit_received"`
	RemoveOrders  bool `json:"remove_orders"`
	EditProducts  bool `json:"edit_products"`
	ViewProducts  bool `json:"view_products"`
	ViewSuppliers bool `json:"view_suppliers"`
}

// Bootstrap creates the very first account. The users service refuses it once
// any account exists.
func Bootstrap(svc user.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload credentialsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Bootstrap(r.Context(), user.CredentialsInput{
			Name:     validators.SanitizeString(payload.Name, 100),
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// Signup creates a regular account with every capability off.
func Signup(svc user.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload signupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Signup(r.Context(), user.SignupInput{
			Name:     validators.SanitizeString(payload.Name, 100),
			Password: payload.Password,
			Email:    payload.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// Me returns the authenticated account.
func Me(svc user.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		account, err := svc.GetByID(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, account)
	}
}

// MyPermissions returns the caller's own flag set, so clients can shape their
// UI without guessing.
func MyPermissions(oracle permission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		perms, err := oracle.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, perms)
	}
}

// ListUsers returns accounts ordered by id.
func ListUsers(svc user.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.List(r.Context(), pagination.FromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, users)
	}
}

// GetUser looks an account up by username. The path segment is a name, not an
// id; ids only appear on the mutation routes.
func GetUser(svc user.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := validators.SanitizeString(chi.URLParam(r, "userRef"), 100)
		if name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "username required"))
			return
		}

		account, err := svc.GetByName(r.Context(), name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, account)
	}
}

// UpdateUser mutates an account. A supplied password is re-hashed.
func UpdateUser(svc user.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "userRef")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, user.UpdateInput{
			Name:     payload.Name,
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// DeleteUser removes the account plus its permission and preference rows.
func DeleteUser(svc user.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "userRef")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"deleted": id})
	}
}

// GetUserPermissions returns another account's flag set.
func GetUserPermissions(oracle permission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "userRef")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		perms, err := oracle.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, perms)
	}
}

// UpdateUserPermissions replaces the whole flag row; flags omitted from the
// payload come through as false.
func UpdateUserPermissions(oracle permission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "userRef")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload permissionFlagsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := oracle.Update(r.Context(), id, permission.UpdateInput{
			Admin:         payload.Admin,
			ViewPending:   payload.ViewPending,
			ViewReceived:  payload.ViewReceived,
			EditPending:   payload.EditPending,
			CreateOrders:  payload.CreateOrders,
			EditReceived:  payload.EditReceived,
			RemoveOrders:  payload.RemoveOrders,
			EditProducts:  payload.EditProducts,
			ViewProducts:  payload.ViewProducts,
			ViewSuppliers: payload.ViewSuppliers,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}
