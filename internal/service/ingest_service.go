package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quantcluster/marketlens/internal/domain"
	"github.com/quantcluster/marketlens/internal/venue"
)

// Per-venue fetch throttle: one listing sweep per window.
const (
	fetchLimit  = 2
	fetchWindow = time.Second
)

// IngestService pulls active market listings from every configured venue and
// syncs them into the persistent store and cache.
type IngestService struct {
	clients []venue.Client
	markets domain.MarketStore
	cache   domain.MarketCache
	limiter domain.RateLimiter
	logger  *slog.Logger
}

// NewIngestService creates an IngestService with all required dependencies.
func NewIngestService(
	clients []venue.Client,
	markets domain.MarketStore,
	cache domain.MarketCache,
	limiter domain.RateLimiter,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		clients: clients,
		markets: markets,
		cache:   cache,
		limiter: limiter,
		logger:  logger.With(slog.String("component", "ingest_service")),
	}
}

// IngestAll fetches and syncs markets from every venue. A failure on one
// venue is logged and does not abort the others; the first error is returned
// after all venues have been attempted.
func (s *IngestService) IngestAll(ctx context.Context) (int, error) {
	total := 0
	var firstErr error
	for _, client := range s.clients {
		n, err := s.ingestVenue(ctx, client)
		if err != nil {
			s.logger.ErrorContext(ctx, "venue ingest failed",
				slog.String("venue", client.Name()),
				slog.String("error", err.Error()),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		total += n
	}
	return total, firstErr
}

func (s *IngestService) ingestVenue(ctx context.Context, client venue.Client) (int, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, "venue:"+client.Name(), fetchLimit, fetchWindow); err != nil {
			return 0, fmt.Errorf("ingest_service: throttle %s: %w", client.Name(), err)
		}
	}

	fetched, err := client.FetchMarkets(ctx)
	if err != nil {
		return 0, fmt.Errorf("ingest_service: fetch %s: %w", client.Name(), err)
	}

	now := time.Now().UTC()
	for i := range fetched {
		// Candidate ID for first insert; the store keeps the existing ID on
		// conflict with (venue, external_id).
		fetched[i].ID = uuid.New().String()
		if fetched[i].CreatedAt.IsZero() {
			fetched[i].CreatedAt = now
		}
		fetched[i].UpdatedAt = now
	}

	if err := s.markets.UpsertBatch(ctx, fetched); err != nil {
		return 0, fmt.Errorf("ingest_service: sync %s: %w", client.Name(), err)
	}

	// Invalidate cache entries so reads pick up the synced rows; non-fatal,
	// the TTL expires stale data anyway.
	for _, m := range fetched {
		if err := s.cache.Invalidate(ctx, m.Venue, m.ExternalID); err != nil {
			s.logger.WarnContext(ctx, "cache invalidate failed",
				slog.String("venue", m.Venue),
				slog.String("external_id", m.ExternalID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "ingested venue markets",
		slog.String("venue", client.Name()),
		slog.Int("count", len(fetched)),
	)
	return len(fetched), nil
}
