package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantcluster/marketlens/internal/domain"
	"github.com/quantcluster/marketlens/internal/matcher"
)

// refreshLockKey serializes refresh cycles across processes.
const refreshLockKey = "refresh"

// GroupsChannel is the pub/sub channel that carries group-formation events.
const GroupsChannel = "groups"

// RefreshResult summarizes one matching pass.
type RefreshResult struct {
	Scanned    int `json:"scanned"`
	Candidates int `json:"candidates"`
	Groups     int `json:"groups"`
	Skipped    bool `json:"skipped"`
}

// groupEvent is the payload published for every newly formed group.
type groupEvent struct {
	GroupID string `json:"group_id"`
	Title   string `json:"title"`
	Size    int    `json:"size"`
	Venues  []string `json:"venues"`
}

// MatchService runs the grouping pass: it collects ungrouped markets, scores
// every cross-venue pair, and persists the greedy assignment as market groups.
type MatchService struct {
	markets  domain.MarketStore
	groups   domain.GroupStore
	scorer   *matcher.Scorer
	assigner *matcher.Assigner
	locks    domain.LockManager
	bus      domain.SignalBus
	lockTTL  time.Duration
	logger   *slog.Logger
}

// NewMatchService creates a MatchService with all required dependencies.
func NewMatchService(
	markets domain.MarketStore,
	groups domain.GroupStore,
	scorer *matcher.Scorer,
	assigner *matcher.Assigner,
	locks domain.LockManager,
	bus domain.SignalBus,
	lockTTL time.Duration,
	logger *slog.Logger,
) *MatchService {
	return &MatchService{
		markets:  markets,
		groups:   groups,
		scorer:   scorer,
		assigner: assigner,
		locks:    locks,
		bus:      bus,
		lockTTL:  lockTTL,
		logger:   logger.With(slog.String("component", "match_service")),
	}
}

// Refresh runs one matching pass under the distributed refresh lock. When
// another process already holds the lock, the pass is skipped without error.
func (s *MatchService) Refresh(ctx context.Context) (RefreshResult, error) {
	unlock, err := s.locks.Acquire(ctx, refreshLockKey, s.lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			s.logger.InfoContext(ctx, "refresh already running, skipping")
			return RefreshResult{Skipped: true}, nil
		}
		return RefreshResult{}, fmt.Errorf("match_service: acquire refresh lock: %w", err)
	}
	defer unlock()

	markets, err := s.markets.ListUngrouped(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("match_service: list ungrouped: %w", err)
	}

	candidates := s.scorer.Candidates(markets)
	groups := s.assigner.Assign(markets, candidates)

	for _, g := range groups {
		if err := s.groups.Create(ctx, g); err != nil {
			return RefreshResult{}, fmt.Errorf("match_service: create group %s: %w", g.ID, err)
		}
		s.publishGroup(ctx, g)
	}

	s.logger.InfoContext(ctx, "refresh complete",
		slog.Int("scanned", len(markets)),
		slog.Int("candidates", len(candidates)),
		slog.Int("groups", len(groups)),
	)

	return RefreshResult{
		Scanned:    len(markets),
		Candidates: len(candidates),
		Groups:     len(groups),
	}, nil
}

// GetGroup retrieves a group by ID with its member markets.
func (s *MatchService) GetGroup(ctx context.Context, id string) (domain.MarketGroup, error) {
	g, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return domain.MarketGroup{}, fmt.Errorf("match_service: get group %q: %w", id, err)
	}
	return g, nil
}

// ListGroups returns active groups with their member markets.
func (s *MatchService) ListGroups(ctx context.Context, opts domain.ListOpts) ([]domain.MarketGroup, error) {
	groups, err := s.groups.ListActive(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("match_service: list groups: %w", err)
	}
	return groups, nil
}

// publishGroup emits a group-formation event. Publish failures are logged,
// never fatal to the refresh pass.
func (s *MatchService) publishGroup(ctx context.Context, g domain.MarketGroup) {
	payload, err := json.Marshal(groupEvent{
		GroupID: g.ID,
		Title:   g.Title,
		Size:    len(g.Markets),
		Venues:  g.Venues(),
	})
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, GroupsChannel, payload); err != nil {
		s.logger.WarnContext(ctx, "publish group event failed",
			slog.String("group_id", g.ID),
			slog.String("error", err.Error()),
		)
	}
}
