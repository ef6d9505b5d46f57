package domain

import (
	"context"
	"time"
)

// MarketCache provides fast market lookups keyed by (venue, external id).
type MarketCache interface {
	Set(ctx context.Context, market Market) error
	Get(ctx context.Context, venue, externalID string) (Market, error)
	Invalidate(ctx context.Context, venue, externalID string) error
}

// LockManager provides distributed locking. A refresh cycle holds the
// "refresh" lock for its duration so two cycles never run the matcher over
// the same unassigned-market set concurrently.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// SignalBus provides pub/sub fan-out of refresh and detection events.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// RateLimiter throttles outbound venue API calls across processes.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string, limit int, window time.Duration) error
}
