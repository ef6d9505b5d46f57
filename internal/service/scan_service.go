package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quantcluster/marketlens/internal/analyzer"
	"github.com/quantcluster/marketlens/internal/domain"
)

// OpportunitiesChannel is the pub/sub channel that carries detection events.
const OpportunitiesChannel = "opportunities"

// scanPageSize bounds how many groups are pulled per store query.
const scanPageSize = 200

// ScanArchiver persists a scan report to blob storage. The scan service only
// needs the upload call, not the full blob client.
type ScanArchiver interface {
	ArchiveScan(ctx context.Context, at time.Time, opps []domain.Opportunity) (string, error)
}

// ScanConfig holds the scan service tunables.
type ScanConfig struct {
	// NotifyFloor is the minimum severity score that triggers an operator
	// notification.
	NotifyFloor float64
}

// DefaultScanConfig returns the standard scan tunables.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{NotifyFloor: 60}
}

// Notifier delivers operator alerts for high-severity findings.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// ScanResult summarizes one detection pass.
type ScanResult struct {
	Groups        int `json:"groups"`
	Opportunities int `json:"opportunities"`
}

// opportunityEvent is the payload published for every finding.
type opportunityEvent struct {
	OpportunityID string  `json:"opportunity_id"`
	GroupID       string  `json:"group_id"`
	Type          string  `json:"type"`
	Score         float64 `json:"score"`
	Description   string  `json:"description"`
}

// ScanService runs the detection pass: for every active group it aligns
// outcomes across members, runs each registered detector, and replaces the
// group's previous findings with the fresh generation.
type ScanService struct {
	groups   domain.GroupStore
	opps     domain.OpportunityStore
	registry *analyzer.Registry
	bus      domain.SignalBus
	notifier Notifier
	archiver ScanArchiver
	cfg      ScanConfig
	logger   *slog.Logger
}

// NewScanService creates a ScanService. notifier and archiver may be nil when
// alerting or report archival is not configured.
func NewScanService(
	groups domain.GroupStore,
	opps domain.OpportunityStore,
	registry *analyzer.Registry,
	bus domain.SignalBus,
	notifier Notifier,
	archiver ScanArchiver,
	cfg ScanConfig,
	logger *slog.Logger,
) *ScanService {
	return &ScanService{
		groups:   groups,
		opps:     opps,
		registry: registry,
		bus:      bus,
		notifier: notifier,
		archiver: archiver,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "scan_service")),
	}
}

// Scan runs one detection pass over every active group.
func (s *ScanService) Scan(ctx context.Context) (ScanResult, error) {
	now := time.Now().UTC()
	var all []domain.Opportunity
	groupCount := 0

	for offset := 0; ; offset += scanPageSize {
		groups, err := s.groups.ListActive(ctx, domain.ListOpts{Limit: scanPageSize, Offset: offset})
		if err != nil {
			return ScanResult{}, fmt.Errorf("scan_service: list groups: %w", err)
		}
		if len(groups) == 0 {
			break
		}
		for _, g := range groups {
			groupCount++
			findings, err := s.scanGroup(ctx, g, now)
			if err != nil {
				return ScanResult{}, err
			}
			all = append(all, findings...)
		}
		if len(groups) < scanPageSize {
			break
		}
	}

	ranked := analyzer.Rank(all)
	for _, opp := range ranked {
		s.publishOpportunity(ctx, opp)
		if s.notifier != nil && opp.Score >= s.cfg.NotifyFloor {
			s.notify(ctx, opp)
		}
	}

	if s.archiver != nil && len(ranked) > 0 {
		key, err := s.archiver.ArchiveScan(ctx, now, ranked)
		if err != nil {
			s.logger.WarnContext(ctx, "scan report archive failed",
				slog.String("error", err.Error()),
			)
		} else {
			s.logger.InfoContext(ctx, "scan report archived",
				slog.String("key", key),
			)
		}
	}

	s.logger.InfoContext(ctx, "scan complete",
		slog.Int("groups", groupCount),
		slog.Int("opportunities", len(ranked)),
	)

	return ScanResult{Groups: groupCount, Opportunities: len(ranked)}, nil
}

// scanGroup runs every detector over one group and replaces its previous
// findings generation.
func (s *ScanService) scanGroup(ctx context.Context, g domain.MarketGroup, now time.Time) ([]domain.Opportunity, error) {
	comparisons := analyzer.AlignOutcomes(g)

	var findings []domain.Opportunity
	for _, det := range s.registry.All() {
		opp, ok := det.Detect(g, comparisons)
		if !ok {
			continue
		}
		opp.ID = uuid.New().String()
		opp.GroupID = g.ID
		opp.Active = true
		opp.DetectedAt = now
		findings = append(findings, opp)
	}

	if err := s.opps.DeactivateByGroup(ctx, g.ID); err != nil {
		return nil, fmt.Errorf("scan_service: deactivate group %s: %w", g.ID, err)
	}
	for _, opp := range findings {
		if err := s.opps.Insert(ctx, opp); err != nil {
			return nil, fmt.Errorf("scan_service: insert opportunity for group %s: %w", g.ID, err)
		}
	}
	return findings, nil
}

func (s *ScanService) publishOpportunity(ctx context.Context, opp domain.Opportunity) {
	payload, err := json.Marshal(opportunityEvent{
		OpportunityID: opp.ID,
		GroupID:       opp.GroupID,
		Type:          string(opp.Type),
		Score:         opp.Score,
		Description:   opp.Description,
	})
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, OpportunitiesChannel, payload); err != nil {
		s.logger.WarnContext(ctx, "publish opportunity event failed",
			slog.String("opportunity_id", opp.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ScanService) notify(ctx context.Context, opp domain.Opportunity) {
	title := fmt.Sprintf("[%s] severity %.0f", opp.Type, opp.Score)
	if err := s.notifier.Notify(ctx, string(opp.Type), title, opp.Description); err != nil {
		s.logger.WarnContext(ctx, "notify failed",
			slog.String("opportunity_id", opp.ID),
			slog.String("error", err.Error()),
		)
	}
}
