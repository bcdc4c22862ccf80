package handlers

import (
	"net/http"

	"github.com/agentstation/driftmap/internal/server/response"
)

// HandleCacheStats handles GET /api/v1/cache.
// @Summary Cache statistics
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=cache.Stats}
// @Router /api/v1/cache [get].
func (h *Handlers) HandleCacheStats(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, h.cache.GetStats())
}

// HandleCacheClear handles DELETE /api/v1/cache. Rule or catalog edits
// made outside the server become visible after a clear.
// @Summary Clear the response cache
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/cache [delete].
func (h *Handlers) HandleCacheClear(w http.ResponseWriter, _ *http.Request) {
	cleared := h.cache.ItemCount()
	h.cache.Clear()
	h.logger.Info().Int("items", cleared).Msg("Response cache cleared")
	response.OK(w, map[string]any{"cleared": cleared})
}
