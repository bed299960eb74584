package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jmkoster/stockroom-backend/api/responses"
	"github.com/jmkoster/stockroom-backend/internal/auth"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
	"github.com/jmkoster/stockroom-backend/pkg/logger"
	"github.com/jmkoster/stockroom-backend/pkg/metrics"
)

const (
	usernameHeader = "X-Auth-Username"
	passwordHeader = "X-Auth-Password"
)

// Auth verifies the per-request credential headers and seeds the context with
// the authenticated user id. Credentials ride on every request; there is no
// session state to expire.
func Auth(verifier auth.Service, m *metrics.HTTPMetrics, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := strings.TrimSpace(r.Header.Get(usernameHeader))
			password := r.Header.Get(passwordHeader)

			if username == "" || password == "" {
				if m != nil {
					m.IncAuthFailure("missing_credentials")
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			user, err := verifier.Authenticate(r.Context(), username, password)
			if err != nil {
				if m != nil {
					m.IncAuthFailure(failureReason(err))
				}
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUserID(r.Context(), user.ID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, strconv.Itoa(int(user.ID)))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func failureReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "error"
	}
	switch typed.Code() {
	case pkgerrors.CodeNotFound:
		return "unknown_user"
	case pkgerrors.CodeUnauthorized:
		return "bad_password"
	default:
		return "error"
	}
}
