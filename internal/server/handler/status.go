package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// StatusCounter exposes the store totals shown on the status endpoint.
type StatusCounter interface {
	Count(ctx context.Context) (int64, error)
}

// StatusHandler serves the backend status (mode, store totals).
type StatusHandler struct {
	mode    string
	markets StatusCounter
	groups  StatusCounter
	logger  *slog.Logger
}

// NewStatusHandler creates a StatusHandler for the given mode and counters.
func NewStatusHandler(mode string, markets, groups StatusCounter, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		mode:    mode,
		markets: markets,
		groups:  groups,
		logger:  logger,
	}
}

// GetStatus responds with the current backend mode and store totals.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"mode": h.mode}

	if n, err := h.markets.Count(r.Context()); err == nil {
		resp["markets"] = n
	} else {
		h.logger.WarnContext(r.Context(), "handler: count markets failed",
			slog.String("error", err.Error()),
		)
	}
	if n, err := h.groups.Count(r.Context()); err == nil {
		resp["groups"] = n
	} else {
		h.logger.WarnContext(r.Context(), "handler: count groups failed",
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, http.StatusOK, resp)
}
