package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantcluster/marketlens/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL. The
// variant detail payload is stored as JSONB and decoded back through the
// opportunity's type tag.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a new OpportunityStore.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

// Insert persists a new opportunity.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.Opportunity) error {
	details, err := json.Marshal(opp.Details())
	if err != nil {
		return fmt.Errorf("postgres: marshal opportunity details: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO opportunities (id, group_id, type, score, spread, description,
			details, avg_liquidity, active, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		opp.ID, opp.GroupID, opp.Type, opp.Score, opp.Spread, opp.Description,
		details, opp.AvgLiquidity, opp.Active, opp.DetectedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// DeactivateByGroup retires every active opportunity of a group.
func (s *OpportunityStore) DeactivateByGroup(ctx context.Context, groupID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE opportunities SET active = FALSE WHERE group_id = $1 AND active`,
		groupID)
	if err != nil {
		return fmt.Errorf("postgres: deactivate opportunities for group %s: %w", groupID, err)
	}
	return nil
}

// ListActive returns active opportunities ordered by raw score, highest first.
func (s *OpportunityStore) ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.Opportunity, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, group_id, type, score, spread, description, details,
			avg_liquidity, active, detected_at
		FROM opportunities
		WHERE active
		ORDER BY score DESC, detected_at DESC
		LIMIT $1 OFFSET $2`,
		limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active opportunities: %w", err)
	}
	return collectOpportunities(rows)
}

// ListByGroup returns every opportunity recorded for a group, newest first.
func (s *OpportunityStore) ListByGroup(ctx context.Context, groupID string) ([]domain.Opportunity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, group_id, type, score, spread, description, details,
			avg_liquidity, active, detected_at
		FROM opportunities
		WHERE group_id = $1
		ORDER BY detected_at DESC, id`,
		groupID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities for group %s: %w", groupID, err)
	}
	return collectOpportunities(rows)
}

func collectOpportunities(rows pgx.Rows) ([]domain.Opportunity, error) {
	defer rows.Close()
	var opps []domain.Opportunity
	for rows.Next() {
		var o domain.Opportunity
		var details []byte
		err := rows.Scan(&o.ID, &o.GroupID, &o.Type, &o.Score, &o.Spread,
			&o.Description, &details, &o.AvgLiquidity, &o.Active, &o.DetectedAt)
		if err != nil {
			return nil, err
		}
		if err := decodeDetails(&o, details); err != nil {
			return nil, err
		}
		opps = append(opps, o)
	}
	return opps, rows.Err()
}

func decodeDetails(o *domain.Opportunity, details []byte) error {
	if len(details) == 0 || string(details) == "null" {
		return nil
	}
	switch o.Type {
	case domain.OpportunityDivergence:
		o.Divergence = &domain.DivergenceDetails{}
		return json.Unmarshal(details, o.Divergence)
	case domain.OpportunitySanity:
		o.Sanity = &domain.SanityDetails{}
		return json.Unmarshal(details, o.Sanity)
	case domain.OpportunityArbitrage:
		o.Arbitrage = &domain.ArbitrageDetails{}
		return json.Unmarshal(details, o.Arbitrage)
	}
	return fmt.Errorf("postgres: opportunity %s has unknown type %q", o.ID, o.Type)
}

var _ domain.OpportunityStore = (*OpportunityStore)(nil)
