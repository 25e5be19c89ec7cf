package handlers

import (
	"net/http"

	"github.com/daytrack/daytrack/internal/services/worldtime"
	"go.uber.org/zap"
)

// WorldTimeHandler proxies the upstream world-time service
type WorldTimeHandler struct {
	client *worldtime.Client
	log    *zap.Logger
}

// NewWorldTimeHandler creates a new world time handler
func NewWorldTimeHandler(client *worldtime.Client, log *zap.Logger) *WorldTimeHandler {
	return &WorldTimeHandler{client: client, log: log}
}

// CurrentTime handles GET /world-time. Upstream failures surface as 502; the
// upstream error itself is only logged.
func (h *WorldTimeHandler) CurrentTime(w http.ResponseWriter, r *http.Request) {
	snap, err := h.client.Current(r.Context())
	if err != nil {
		h.log.Warn("world_time_fetch_failed", zap.Error(err))
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "World time service unavailable")
		return
	}

	respondJSON(w, http.StatusOK, snap)
}
