package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quantcluster/marketlens/internal/domain"
)

const marketTTL = 5 * time.Minute

// MarketCache implements domain.MarketCache with JSON-serialized markets
// keyed by venue identity.
//
// Key schema:
//
//	market:{venue}:{external_id} - string value containing JSON
type MarketCache struct {
	rdb *redis.Client
}

// NewMarketCache creates a MarketCache backed by the given Client.
func NewMarketCache(c *Client) *MarketCache {
	return &MarketCache{rdb: c.Underlying()}
}

func marketKey(venue, externalID string) string {
	return "market:" + venue + ":" + externalID
}

// Set stores a Market in the cache with a 5-minute TTL.
func (mc *MarketCache) Set(ctx context.Context, market domain.Market) error {
	data, err := json.Marshal(market)
	if err != nil {
		return fmt.Errorf("redis: marshal market %s/%s: %w", market.Venue, market.ExternalID, err)
	}

	key := marketKey(market.Venue, market.ExternalID)
	if err := mc.rdb.Set(ctx, key, data, marketTTL).Err(); err != nil {
		return fmt.Errorf("redis: set market %s/%s: %w", market.Venue, market.ExternalID, err)
	}
	return nil
}

// Get retrieves a Market by its venue identity.
// It returns domain.ErrNotFound when the key does not exist.
func (mc *MarketCache) Get(ctx context.Context, venue, externalID string) (domain.Market, error) {
	data, err := mc.rdb.Get(ctx, marketKey(venue, externalID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("redis: get market %s/%s: %w", venue, externalID, err)
	}

	var market domain.Market
	if err := json.Unmarshal(data, &market); err != nil {
		return domain.Market{}, fmt.Errorf("redis: unmarshal market %s/%s: %w", venue, externalID, err)
	}
	return market, nil
}

// Invalidate removes a Market from the cache.
func (mc *MarketCache) Invalidate(ctx context.Context, venue, externalID string) error {
	if err := mc.rdb.Del(ctx, marketKey(venue, externalID)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate market %s/%s: %w", venue, externalID, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.MarketCache = (*MarketCache)(nil)
