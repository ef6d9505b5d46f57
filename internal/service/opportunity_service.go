package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/quantcluster/marketlens/internal/analyzer"
	"github.com/quantcluster/marketlens/internal/domain"
)

// RankedOpportunity pairs a stored opportunity with its freshness-decayed
// effective score. The stored score never changes; decay applies at read time.
type RankedOpportunity struct {
	domain.Opportunity
	EffectiveScore float64 `json:"effective_score"`
}

// MarshalJSON merges effective_score into the opportunity's own encoding.
// The embedded type's marshaler would otherwise shadow the extra field.
func (r RankedOpportunity) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(r.Opportunity)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	score, err := json.Marshal(r.EffectiveScore)
	if err != nil {
		return nil, err
	}
	fields["effective_score"] = score
	return json.Marshal(fields)
}

// OpportunityService serves rankings of active findings.
type OpportunityService struct {
	opps     domain.OpportunityStore
	halfLife time.Duration
	logger   *slog.Logger
}

// NewOpportunityService creates an OpportunityService. halfLife controls how
// quickly aging findings lose rank; non-positive values fall back to one hour.
func NewOpportunityService(
	opps domain.OpportunityStore,
	halfLife time.Duration,
	logger *slog.Logger,
) *OpportunityService {
	return &OpportunityService{
		opps:     opps,
		halfLife: halfLife,
		logger:   logger.With(slog.String("component", "opportunity_service")),
	}
}

// ListRanked returns active opportunities ordered by freshness-decayed score,
// highest first.
func (s *OpportunityService) ListRanked(ctx context.Context, opts domain.ListOpts) ([]RankedOpportunity, error) {
	opps, err := s.opps.ListActive(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("opportunity_service: list active: %w", err)
	}

	now := time.Now().UTC()
	ranked := make([]RankedOpportunity, 0, len(opps))
	for _, opp := range opps {
		ranked = append(ranked, RankedOpportunity{
			Opportunity:    opp,
			EffectiveScore: analyzer.FreshnessDecay(opp.Score, opp.DetectedAt, now, s.halfLife),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EffectiveScore > ranked[j].EffectiveScore
	})
	return ranked, nil
}

// ListByGroup returns every finding recorded for a group, newest first.
func (s *OpportunityService) ListByGroup(ctx context.Context, groupID string) ([]domain.Opportunity, error) {
	opps, err := s.opps.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("opportunity_service: list by group %q: %w", groupID, err)
	}
	return opps, nil
}
