package handler

import (
	"net/http"

	"github.com/ai-automation-studio/chatbots-api/internal/events"
	"github.com/ai-automation-studio/chatbots-api/internal/store"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store     *store.Store
	publisher *events.Publisher
}

// NewHealthHandler creates a new health handler. The publisher may be nil
// when event publishing is disabled.
func NewHealthHandler(st *store.Store, publisher *events.Publisher) *HealthHandler {
	return &HealthHandler{
		store:     st,
		publisher: publisher,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database unreachable",
		})
		return
	}

	if h.publisher != nil && !h.publisher.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
