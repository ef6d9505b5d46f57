package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quantcluster/marketlens/internal/domain"
)

// MarketService handles market reads for the API surface, with a cache in
// front of the persistent store.
type MarketService struct {
	markets domain.MarketStore
	cache   domain.MarketCache
	logger  *slog.Logger
}

// NewMarketService creates a MarketService with all required dependencies.
func NewMarketService(
	markets domain.MarketStore,
	cache domain.MarketCache,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		markets: markets,
		cache:   cache,
		logger:  logger.With(slog.String("component", "market_service")),
	}
}

// GetMarket retrieves a market by ID.
func (s *MarketService) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	m, err := s.markets.GetByID(ctx, id)
	if err != nil {
		return domain.Market{}, fmt.Errorf("market_service: get by id %q: %w", id, err)
	}
	return m, nil
}

// GetMarketByVenue retrieves a market by its venue identity, checking the
// cache first and falling back to the persistent store on a cache miss.
func (s *MarketService) GetMarketByVenue(ctx context.Context, venue, externalID string) (domain.Market, error) {
	m, err := s.cache.Get(ctx, venue, externalID)
	if err == nil {
		return m, nil
	}

	m, err = s.markets.GetByExternalID(ctx, venue, externalID)
	if err != nil {
		return domain.Market{}, fmt.Errorf("market_service: get %s/%s: %w", venue, externalID, err)
	}

	// Back-fill cache; log but do not fail on cache write errors.
	if cacheErr := s.cache.Set(ctx, m); cacheErr != nil {
		s.logger.WarnContext(ctx, "cache set failed",
			slog.String("venue", venue),
			slog.String("external_id", externalID),
			slog.String("error", cacheErr.Error()),
		)
	}

	return m, nil
}

// ListActive returns active markets from the persistent store.
func (s *MarketService) ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	markets, err := s.markets.ListActive(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("market_service: list active: %w", err)
	}
	return markets, nil
}

// Count returns the total number of stored markets.
func (s *MarketService) Count(ctx context.Context) (int64, error) {
	return s.markets.Count(ctx)
}
