package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/jmkoster/stockroom-backend/api/responses"
	"github.com/jmkoster/stockroom-backend/pkg/config"
	"github.com/jmkoster/stockroom-backend/pkg/db"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
	"github.com/jmkoster/stockroom-backend/pkg/logger"
)

const readyProbeTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stockroom-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes the datastores. A nil dependency is skipped, so the
// readiness answer stays meaningful when redis is not configured.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP db.Pinger) http.HandlerFunc {
	probes := []struct {
		name   string
		target db.Pinger
	}{
		{"database", dbP},
		{"redis", redisP},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stockroom-Env", cfg.App.Env)

		for _, probe := range probes {
			if probe.target == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
			err := probe.target.Ping(ctx)
			cancel()
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency unavailable").
						WithDetails(map[string]any{"dependency": probe.name}))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
