package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/foresttrail/trailops/api/responses"
	"github.com/foresttrail/trailops/pkg/config"
	pkgerrors "github.com/foresttrail/trailops/pkg/errors"
	"github.com/foresttrail/trailops/pkg/logger"
)

const (
	envHeader    = "X-Trailops-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is any dependency the readiness check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency names one readiness check.
type Dependency struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and reports the ones that failed.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...Dependency) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		failed := false
		for _, dep := range deps {
			if dep.Pinger == nil {
				continue
			}
			if err := dep.Pinger.Ping(ctx); err != nil {
				checks[dep.Name] = "unavailable"
				failed = true
				if logg != nil {
					logg.Warn(logg.WithFields(r.Context(), map[string]any{"dependency": dep.Name, "error": err.Error()}), "readiness check failed")
				}
				continue
			}
			checks[dep.Name] = "ok"
		}

		if failed {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").
				WithDetails(map[string]any{"checks": checks}))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
