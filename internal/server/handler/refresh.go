package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// RefreshHandler serves the refresh trigger endpoint.
type RefreshHandler struct {
	logger    *slog.Logger
	triggerCh chan<- struct{} // when non-nil, sending triggers one refresh cycle
}

// NewRefreshHandler creates a RefreshHandler with the given logger.
func NewRefreshHandler(logger *slog.Logger) *RefreshHandler {
	return &RefreshHandler{logger: logger}
}

// WithTriggerChannel sets the channel to send on when a trigger is requested.
// The refresh loop must receive from this channel to run one cycle.
func (h *RefreshHandler) WithTriggerChannel(ch chan<- struct{}) *RefreshHandler {
	h.triggerCh = ch
	return h
}

// TriggerRefresh enqueues one ingest-match-scan cycle. If a trigger channel
// is configured, a non-blocking send is performed so the refresh loop runs
// one cycle.
// POST /api/refresh
func (h *RefreshHandler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "handler: refresh trigger requested")
	if h.triggerCh != nil {
		select {
		case h.triggerCh <- struct{}{}:
		default:
			// already triggered and not yet consumed
		}
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":       "accepted",
		"message":      "refresh trigger enqueued",
		"requested_at": time.Now().UTC().Format(time.RFC3339),
	})
}
