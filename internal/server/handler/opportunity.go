package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/quantcluster/marketlens/internal/domain"
	"github.com/quantcluster/marketlens/internal/service"
)

// OpportunityService defines the methods that the opportunity handler
// requires from the service layer.
type OpportunityService interface {
	ListRanked(ctx context.Context, opts domain.ListOpts) ([]service.RankedOpportunity, error)
}

// OpportunityHandler serves opportunity HTTP endpoints.
type OpportunityHandler struct {
	opps   OpportunityService
	logger *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler.
func NewOpportunityHandler(opps OpportunityService, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		opps:   opps,
		logger: logger,
	}
}

// listOpportunitiesResponse wraps the list endpoint output with metadata.
type listOpportunitiesResponse struct {
	Opportunities []service.RankedOpportunity `json:"opportunities"`
	Limit         int                         `json:"limit"`
	Offset        int                         `json:"offset"`
}

// ListOpportunities returns active findings ranked by freshness-decayed
// score, highest first.
// GET /api/opportunities?limit=50&offset=0
func (h *OpportunityHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	opps, err := h.opps.ListRanked(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}

	writeJSON(w, http.StatusOK, listOpportunitiesResponse{
		Opportunities: opps,
		Limit:         opts.Limit,
		Offset:        opts.Offset,
	})
}
