package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/driftmap/internal/server/response"
)

// HandleHealth handles GET /api/v1/health.
// @Summary Health check
// @Description Health check endpoint (liveness probe)
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "driftmap-api",
		"version": h.app.Version(),
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HandleReady handles GET /api/v1/ready.
// @Summary Readiness check
// @Description Readiness check including cache and backend status
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/ready [get].
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	eng, err := h.app.Engine(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Backend not ready")
		response.ServiceUnavailable(w, "Backend not available")
		return
	}

	response.OK(w, map[string]any{
		"status":  "ready",
		"workers": eng.Workers(),
		"cache":   h.cache.GetStats(),
	})
}
