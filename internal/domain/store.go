package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
}

// MarketStore persists market listings and their outcomes.
type MarketStore interface {
	Upsert(ctx context.Context, market Market) error
	UpsertBatch(ctx context.Context, markets []Market) error
	GetByID(ctx context.Context, id string) (Market, error)
	GetByExternalID(ctx context.Context, venue, externalID string) (Market, error)
	ListActive(ctx context.Context, opts ListOpts) ([]Market, error)
	// ListUngrouped returns active markets not yet assigned to any group,
	// ordered by creation time for a deterministic pairwise scan.
	ListUngrouped(ctx context.Context) ([]Market, error)
	AssignGroup(ctx context.Context, groupID string, marketIDs []string) error
	Count(ctx context.Context) (int64, error)
}

// GroupStore persists matched-market groups and their member links.
type GroupStore interface {
	Create(ctx context.Context, group MarketGroup) error
	GetByID(ctx context.Context, id string) (MarketGroup, error)
	// ListActive returns active groups with their member markets and
	// outcomes populated.
	ListActive(ctx context.Context, opts ListOpts) ([]MarketGroup, error)
	Count(ctx context.Context) (int64, error)
}

// OpportunityStore persists detected opportunities. The detection pass
// deactivates the previous generation for a group before inserting fresh
// findings, so at most one active generation exists per group.
type OpportunityStore interface {
	Insert(ctx context.Context, opp Opportunity) error
	DeactivateByGroup(ctx context.Context, groupID string) error
	ListActive(ctx context.Context, opts ListOpts) ([]Opportunity, error)
	ListByGroup(ctx context.Context, groupID string) ([]Opportunity, error)
}
