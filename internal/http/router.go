// Package httpapi assembles the HTTP surface: health, metrics, and the
// versioned validation API.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"securedeal/internal/validation/handler"
)

// HealthCheck reports readiness of one dependency.
type HealthCheck func(ctx context.Context) error

// NewRouter wires the full route tree. Health checks run on every /healthz
// call; a failing dependency turns the endpoint red.
func NewRouter(logger *slog.Logger, validation *handler.Handler, checks map[string]HealthCheck) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", healthHandler(logger, checks))
	r.Handle("/metrics", promhttp.Handler())

	validation.Register(r)
	return r
}

func healthHandler(logger *slog.Logger, checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Warn("health check failed", "dependency", name, "error", err)
				http.Error(w, name+": unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
