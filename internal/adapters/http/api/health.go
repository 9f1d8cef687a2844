package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/ladder/pkg/metrics"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps HealthDependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// HandleHealth handles GET /healthz requests. A degraded snapshot still
// answers 200; the body carries the detail.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Health(r.Context()))
}

// MetricsHandler serves the custom metrics registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
