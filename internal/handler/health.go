package handler

import (
	"context"
	"net/http"

	"github.com/evolution-todo/chat-platform/internal/events"
)

// Pinger reports backing-store liveness. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db        Pinger
	publisher *events.Publisher
}

// NewHealthHandler creates a new health handler. db may be nil when running
// on the in-memory store; publisher may be nil when events are disabled.
func NewHealthHandler(db Pinger, publisher *events.Publisher) *HealthHandler {
	return &HealthHandler{
		db:        db,
		publisher: publisher,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": "database not reachable",
			})
			return
		}
	}

	if h.publisher != nil && !h.publisher.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "event broker not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
