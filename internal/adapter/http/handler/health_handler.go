package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
)

const readinessTimeout = 5 * time.Second

// ReadinessCheck is a dependency checked by /ready.
type ReadinessCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks []ReadinessCheck
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 when every dependency answers, 503 otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{"status": "ready"}

	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("dependency", c.Name()).Msg("readiness check failed")
			body[c.Name()] = "unhealthy"
			body["status"] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}

		body[c.Name()] = "ok"
	}

	writeJSON(w, status, body)
}
