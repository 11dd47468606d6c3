package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/gymdesk-backend/api/responses"
	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is satisfied by the store and the redis client.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Gymdesk-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each named dependency; nil entries are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Gymdesk-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
