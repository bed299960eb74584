package middleware

import (
	"net/http"

	"github.com/jmkoster/stockroom-backend/api/responses"
	permission "github.com/jmkoster/stockroom-backend/internal/permissions"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
	"github.com/jmkoster/stockroom-backend/pkg/logger"
)

// RequireCapability gates a route on one permission flag. Admin is its own
// flag, not a superset: a route that wants admin asks for admin explicitly.
func RequireCapability(oracle permission.Service, cap permission.Capability, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}

			allowed, err := oracle.Authorize(r.Context(), userID, cap)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeForbidden, "capability required").
						WithDetails(map[string]any{"capability": string(cap)}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
