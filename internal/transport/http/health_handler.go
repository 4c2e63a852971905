package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"examsched/pkg/contracts"
)

// HealthHandler handles health and version requests.
type HealthHandler struct {
	logger  *slog.Logger
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger:  logger.With(slog.String("component", "health_handler")),
		started: time.Now(),
	}
}

// HealthCheck handles GET /api/health.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":  "healthy",
		"version": contracts.Version,
		"uptime":  time.Since(h.started).String(),
	})
}

// Version handles GET /api/version.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, contracts.GetVersionInfo())
}
