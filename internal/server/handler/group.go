package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quantcluster/marketlens/internal/domain"
)

// GroupService defines the methods that the group handler requires from the
// service layer.
type GroupService interface {
	GetGroup(ctx context.Context, id string) (domain.MarketGroup, error)
	ListGroups(ctx context.Context, opts domain.ListOpts) ([]domain.MarketGroup, error)
}

// GroupOpportunityLister lists the findings recorded for one group.
type GroupOpportunityLister interface {
	ListByGroup(ctx context.Context, groupID string) ([]domain.Opportunity, error)
}

// GroupHandler serves market-group HTTP endpoints.
type GroupHandler struct {
	groups GroupService
	opps   GroupOpportunityLister
	logger *slog.Logger
}

// NewGroupHandler creates a GroupHandler with the given services and logger.
func NewGroupHandler(groups GroupService, opps GroupOpportunityLister, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{
		groups: groups,
		opps:   opps,
		logger: logger,
	}
}

// listGroupsResponse wraps the list endpoint output with metadata.
type listGroupsResponse struct {
	Groups []domain.MarketGroup `json:"groups"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// ListGroups returns active groups with their member markets.
// GET /api/groups?limit=50&offset=0
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	groups, err := h.groups.ListGroups(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list groups failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list groups")
		return
	}

	writeJSON(w, http.StatusOK, listGroupsResponse{
		Groups: groups,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

// GetGroup returns a single group by its ID.
// GET /api/groups/{id}
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing group id")
		return
	}

	group, err := h.groups.GetGroup(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "group not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get group failed",
			slog.String("group_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get group")
		return
	}

	writeJSON(w, http.StatusOK, group)
}

// ListGroupOpportunities returns every finding recorded for a group.
// GET /api/groups/{id}/opportunities
func (h *GroupHandler) ListGroupOpportunities(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing group id")
		return
	}

	opps, err := h.opps.ListByGroup(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list group opportunities failed",
			slog.String("group_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"group_id":      id,
		"opportunities": opps,
	})
}
