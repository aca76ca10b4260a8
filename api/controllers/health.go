package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/pricingdef/api/responses"
	"github.com/angelmondragon/pricingdef/pkg/config"
	"github.com/angelmondragon/pricingdef/pkg/db"
	pkgerrors "github.com/angelmondragon/pricingdef/pkg/errors"
	"github.com/angelmondragon/pricingdef/pkg/logger"
)

const readyTimeout = 2 * time.Second

// ReadyCheck is a named dependency checked by the readiness endpoint.
type ReadyCheck struct {
	Name   string
	Pinger db.Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pricingdef-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every check and reports 503 with the failing names when
// any dependency is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pricingdef-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		failed := map[string]string{}
		for _, check := range checks {
			if check.Pinger == nil {
				continue
			}
			if err := check.Pinger.Ping(ctx); err != nil {
				failed[check.Name] = err.Error()
			}
		}
		if len(failed) > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "not ready").WithDetails(failed))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
