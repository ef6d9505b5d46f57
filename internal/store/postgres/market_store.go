package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantcluster/marketlens/internal/domain"
)

// MarketStore implements domain.MarketStore using PostgreSQL.
type MarketStore struct {
	pool *pgxpool.Pool
}

// NewMarketStore creates a new MarketStore.
func NewMarketStore(pool *pgxpool.Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

const marketColumns = `id, venue, external_id, title, COALESCE(category, ''), status,
	volume, liquidity, end_date, COALESCE(group_id, ''), created_at, updated_at`

// Upsert inserts or updates a market and replaces its outcomes.
func (s *MarketStore) Upsert(ctx context.Context, market domain.Market) error {
	return s.UpsertBatch(ctx, []domain.Market{market})
}

// UpsertBatch inserts or updates markets keyed on (venue, external_id) in a
// single transaction, replacing each market's outcome rows.
func (s *MarketStore) UpsertBatch(ctx context.Context, markets []domain.Market) error {
	if len(markets) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin upsert batch: %w", err)
	}
	defer tx.Rollback(ctx)

	const upsert = `
		INSERT INTO markets (id, venue, external_id, title, category, status,
			volume, liquidity, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11)
		ON CONFLICT (venue, external_id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			status = EXCLUDED.status,
			volume = EXCLUDED.volume,
			liquidity = EXCLUDED.liquidity,
			end_date = EXCLUDED.end_date,
			updated_at = NOW()
		RETURNING id`
	for _, m := range markets {
		var id string
		err := tx.QueryRow(ctx, upsert,
			m.ID, m.Venue, m.ExternalID, m.Title, m.Category, m.Status,
			m.Volume, m.Liquidity, m.EndDate, m.CreatedAt, m.UpdatedAt,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("postgres: upsert market %s/%s: %w", m.Venue, m.ExternalID, err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM market_outcomes WHERE market_id = $1`, id); err != nil {
			return fmt.Errorf("postgres: clear outcomes for %s: %w", id, err)
		}
		for i, o := range m.Outcomes {
			_, err := tx.Exec(ctx, `
				INSERT INTO market_outcomes (market_id, position, name, price, volume)
				VALUES ($1, $2, $3, $4, $5)`,
				id, i, o.Name, o.Price, o.Volume,
			)
			if err != nil {
				return fmt.Errorf("postgres: insert outcome %d for %s: %w", i, id, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit upsert batch: %w", err)
	}
	return nil
}

// GetByID returns a market with its outcomes.
func (s *MarketStore) GetByID(ctx context.Context, id string) (domain.Market, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+marketColumns+` FROM markets WHERE id = $1`, id)
	m, err := scanMarket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("postgres: get market %s: %w", id, err)
	}
	return s.attachOutcomes(ctx, m)
}

// GetByExternalID returns a market by its venue identity.
func (s *MarketStore) GetByExternalID(ctx context.Context, venue, externalID string) (domain.Market, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+marketColumns+` FROM markets WHERE venue = $1 AND external_id = $2`,
		venue, externalID)
	m, err := scanMarket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("postgres: get market %s/%s: %w", venue, externalID, err)
	}
	return s.attachOutcomes(ctx, m)
}

// ListActive returns active markets with their outcomes.
func (s *MarketStore) ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+marketColumns+` FROM markets
		WHERE status = 'active'
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2`,
		limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active markets: %w", err)
	}
	return s.collectMarkets(ctx, rows)
}

// ListUngrouped returns active markets not yet assigned to any group,
// ordered by creation time so the pairwise scan is deterministic.
func (s *MarketStore) ListUngrouped(ctx context.Context) ([]domain.Market, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+marketColumns+` FROM markets
		WHERE status = 'active' AND group_id IS NULL
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list ungrouped markets: %w", err)
	}
	return s.collectMarkets(ctx, rows)
}

// AssignGroup sets group_id on the given markets.
func (s *MarketStore) AssignGroup(ctx context.Context, groupID string, marketIDs []string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE markets SET group_id = $1, updated_at = NOW() WHERE id = ANY($2)`,
		groupID, marketIDs)
	if err != nil {
		return fmt.Errorf("postgres: assign group %s: %w", groupID, err)
	}
	return nil
}

// Count returns the total number of markets.
func (s *MarketStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM markets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count markets: %w", err)
	}
	return n, nil
}

func scanMarket(row pgx.Row) (domain.Market, error) {
	var m domain.Market
	err := row.Scan(&m.ID, &m.Venue, &m.ExternalID, &m.Title, &m.Category, &m.Status,
		&m.Volume, &m.Liquidity, &m.EndDate, &m.GroupID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (s *MarketStore) collectMarkets(ctx context.Context, rows pgx.Rows) ([]domain.Market, error) {
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
	return loadOutcomes(ctx, s.pool, markets)
}

func (s *MarketStore) attachOutcomes(ctx context.Context, m domain.Market) (domain.Market, error) {
	markets, err := loadOutcomes(ctx, s.pool, []domain.Market{m})
	if err != nil {
		return domain.Market{}, err
	}
	return markets[0], nil
}

// loadOutcomes populates Outcomes for the given markets in one query.
func loadOutcomes(ctx context.Context, pool *pgxpool.Pool, markets []domain.Market) ([]domain.Market, error) {
	if len(markets) == 0 {
		return markets, nil
	}
	ids := make([]string, len(markets))
	index := make(map[string]int, len(markets))
	for i, m := range markets {
		ids[i] = m.ID
		index[m.ID] = i
	}

	rows, err := pool.Query(ctx, `
		SELECT market_id, name, price, volume FROM market_outcomes
		WHERE market_id = ANY($1)
		ORDER BY market_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres: load outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var marketID string
		var o domain.Outcome
		if err := rows.Scan(&marketID, &o.Name, &o.Price, &o.Volume); err != nil {
			return nil, err
		}
		if i, ok := index[marketID]; ok {
			markets[i].Outcomes = append(markets[i].Outcomes, o)
		}
	}
	return markets, rows.Err()
}

// Compile-time interface check.
var _ domain.MarketStore = (*MarketStore)(nil)
