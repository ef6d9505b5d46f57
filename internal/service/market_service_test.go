package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantcluster/marketlens/internal/domain"
)

func TestMarketServiceGetMarketByVenueCacheHit(t *testing.T) {
	cached := domain.Market{ID: "m1", Venue: "polymarket", ExternalID: "pm-1", Title: "cached"}
	cache := &fakeMarketCache{entries: map[string]domain.Market{
		cacheKey("polymarket", "pm-1"): cached,
	}}
	svc := NewMarketService(&fakeMarketStore{}, cache, testLogger())

	m, err := svc.GetMarketByVenue(context.Background(), "polymarket", "pm-1")
	require.NoError(t, err)
	assert.Equal(t, "cached", m.Title)
}

func TestMarketServiceGetMarketByVenueCacheMiss(t *testing.T) {
	stored := domain.Market{ID: "m1", Venue: "polymarket", ExternalID: "pm-1", Title: "stored"}
	store := &fakeMarketStore{byID: map[string]domain.Market{"m1": stored}}
	cache := &fakeMarketCache{}
	svc := NewMarketService(store, cache, testLogger())

	m, err := svc.GetMarketByVenue(context.Background(), "polymarket", "pm-1")
	require.NoError(t, err)
	assert.Equal(t, "stored", m.Title)

	// The store hit back-fills the cache.
	require.Len(t, cache.sets, 1)
	assert.Equal(t, "m1", cache.sets[0].ID)
}

func TestMarketServiceGetMarketByVenueCacheWriteFailureNonFatal(t *testing.T) {
	stored := domain.Market{ID: "m1", Venue: "polymarket", ExternalID: "pm-1"}
	store := &fakeMarketStore{byID: map[string]domain.Market{"m1": stored}}
	cache := &fakeMarketCache{setErr: errors.New("redis down")}
	svc := NewMarketService(store, cache, testLogger())

	m, err := svc.GetMarketByVenue(context.Background(), "polymarket", "pm-1")
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)
}

func TestMarketServiceGetMarketNotFound(t *testing.T) {
	svc := NewMarketService(&fakeMarketStore{}, &fakeMarketCache{}, testLogger())

	_, err := svc.GetMarket(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetMarketByVenue(context.Background(), "polymarket", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
