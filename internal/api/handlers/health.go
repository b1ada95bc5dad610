package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Health provides a minimal liveness check endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyHandler reports whether the backing stores answer.
type ReadyHandler struct {
	Check func(ctx context.Context) error
}

func (h *ReadyHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.Check(ctx); err != nil {
			slog.WarnContext(r.Context(), "readiness check failed", "err", err)
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
