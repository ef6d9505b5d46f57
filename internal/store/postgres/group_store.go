package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantcluster/marketlens/internal/domain"
)

// GroupStore implements domain.GroupStore using PostgreSQL.
type GroupStore struct {
	pool *pgxpool.Pool
}

// NewGroupStore creates a new GroupStore.
func NewGroupStore(pool *pgxpool.Pool) *GroupStore {
	return &GroupStore{pool: pool}
}

// Create persists a group and assigns its member markets in one transaction.
func (s *GroupStore) Create(ctx context.Context, group domain.MarketGroup) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin create group: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO market_groups (id, title, category, status, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)`,
		group.ID, group.Title, group.Category, group.Status, group.CreatedAt, group.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert group %s: %w", group.ID, err)
	}

	ids := make([]string, len(group.Markets))
	for i, m := range group.Markets {
		ids[i] = m.ID
	}
	if len(ids) > 0 {
		_, err = tx.Exec(ctx,
			`UPDATE markets SET group_id = $1, updated_at = NOW() WHERE id = ANY($2)`,
			group.ID, ids)
		if err != nil {
			return fmt.Errorf("postgres: assign members of group %s: %w", group.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit create group: %w", err)
	}
	return nil
}

// GetByID returns a group with its member markets hydrated.
func (s *GroupStore) GetByID(ctx context.Context, id string) (domain.MarketGroup, error) {
	var g domain.MarketGroup
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, COALESCE(category, ''), status, created_at, updated_at
		FROM market_groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Title, &g.Category, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MarketGroup{}, domain.ErrNotFound
		}
		return domain.MarketGroup{}, fmt.Errorf("postgres: get group %s: %w", id, err)
	}

	members, err := s.members(ctx, []string{g.ID})
	if err != nil {
		return domain.MarketGroup{}, err
	}
	g.Markets = members[g.ID]
	return g, nil
}

// ListActive returns active groups with their member markets.
func (s *GroupStore) ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.MarketGroup, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, COALESCE(category, ''), status, created_at, updated_at
		FROM market_groups
		WHERE status = 'active'
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2`,
		limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active groups: %w", err)
	}
	defer rows.Close()

	var groups []domain.MarketGroup
	var ids []string
	for rows.Next() {
		var g domain.MarketGroup
		if err := rows.Scan(&g.ID, &g.Title, &g.Category, &g.Status, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
		ids = append(ids, g.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	members, err := s.members(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].Markets = members[groups[i].ID]
	}
	return groups, nil
}

// Count returns the total number of groups.
func (s *GroupStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM market_groups`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count groups: %w", err)
	}
	return n, nil
}

// members loads the markets of the given groups, outcomes included.
func (s *GroupStore) members(ctx context.Context, groupIDs []string) (map[string][]domain.Market, error) {
	if len(groupIDs) == 0 {
		return map[string][]domain.Market{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+marketColumns+` FROM markets
		WHERE group_id = ANY($1)
		ORDER BY created_at, id`, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("postgres: load group members: %w", err)
	}
	defer rows.Close()

	var markets []domain.Market
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, err
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	markets, err = loadOutcomes(ctx, s.pool, markets)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[string][]domain.Market, len(groupIDs))
	for _, m := range markets {
		byGroup[m.GroupID] = append(byGroup[m.GroupID], m)
	}
	return byGroup, nil
}

var _ domain.GroupStore = (*GroupStore)(nil)
