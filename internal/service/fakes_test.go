package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/quantcluster/marketlens/internal/domain"
)

// In-memory test doubles for the domain ports.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMarketStore struct {
	byID           map[string]domain.Market
	ungrouped      []domain.Market
	ungroupedErr   error
	ungroupedCalls int
	upserted       [][]domain.Market
	upsertErr      error
	invalidations  []string
	countVal       int64
}

func (f *fakeMarketStore) Upsert(_ context.Context, m domain.Market) error {
	f.upserted = append(f.upserted, []domain.Market{m})
	return f.upsertErr
}

func (f *fakeMarketStore) UpsertBatch(_ context.Context, markets []domain.Market) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, markets)
	return nil
}

func (f *fakeMarketStore) GetByID(_ context.Context, id string) (domain.Market, error) {
	m, ok := f.byID[id]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeMarketStore) GetByExternalID(_ context.Context, venue, externalID string) (domain.Market, error) {
	for _, m := range f.byID {
		if m.Venue == venue && m.ExternalID == externalID {
			return m, nil
		}
	}
	return domain.Market{}, domain.ErrNotFound
}

func (f *fakeMarketStore) ListActive(_ context.Context, _ domain.ListOpts) ([]domain.Market, error) {
	var out []domain.Market
	for _, m := range f.byID {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMarketStore) ListUngrouped(_ context.Context) ([]domain.Market, error) {
	f.ungroupedCalls++
	return f.ungrouped, f.ungroupedErr
}

func (f *fakeMarketStore) AssignGroup(_ context.Context, _ string, _ []string) error {
	return nil
}

func (f *fakeMarketStore) Count(_ context.Context) (int64, error) {
	return f.countVal, nil
}

type fakeGroupStore struct {
	created   []domain.MarketGroup
	createErr error
	active    []domain.MarketGroup
}

func (f *fakeGroupStore) Create(_ context.Context, g domain.MarketGroup) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, g)
	return nil
}

func (f *fakeGroupStore) GetByID(_ context.Context, id string) (domain.MarketGroup, error) {
	for _, g := range f.active {
		if g.ID == id {
			return g, nil
		}
	}
	return domain.MarketGroup{}, domain.ErrNotFound
}

func (f *fakeGroupStore) ListActive(_ context.Context, opts domain.ListOpts) ([]domain.MarketGroup, error) {
	if opts.Offset >= len(f.active) {
		return nil, nil
	}
	end := len(f.active)
	if opts.Limit > 0 && opts.Offset+opts.Limit < end {
		end = opts.Offset + opts.Limit
	}
	return f.active[opts.Offset:end], nil
}

func (f *fakeGroupStore) Count(_ context.Context) (int64, error) {
	return int64(len(f.active)), nil
}

type fakeOpportunityStore struct {
	inserted    []domain.Opportunity
	deactivated []string
	active      []domain.Opportunity
	byGroup     map[string][]domain.Opportunity
	listErr     error
}

func (f *fakeOpportunityStore) Insert(_ context.Context, opp domain.Opportunity) error {
	f.inserted = append(f.inserted, opp)
	return nil
}

func (f *fakeOpportunityStore) DeactivateByGroup(_ context.Context, groupID string) error {
	f.deactivated = append(f.deactivated, groupID)
	return nil
}

func (f *fakeOpportunityStore) ListActive(_ context.Context, _ domain.ListOpts) ([]domain.Opportunity, error) {
	return f.active, f.listErr
}

func (f *fakeOpportunityStore) ListByGroup(_ context.Context, groupID string) ([]domain.Opportunity, error) {
	return f.byGroup[groupID], f.listErr
}

type fakeLockManager struct {
	err      error
	acquired []string
	released int
}

func (f *fakeLockManager) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.acquired = append(f.acquired, key)
	return func() { f.released++ }, nil
}

type fakeSignalBus struct {
	published map[string][][]byte
}

func (f *fakeSignalBus) Publish(_ context.Context, channel string, payload []byte) error {
	if f.published == nil {
		f.published = make(map[string][][]byte)
	}
	f.published[channel] = append(f.published[channel], payload)
	return nil
}

func (f *fakeSignalBus) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

type fakeMarketCache struct {
	entries     map[string]domain.Market
	sets        []domain.Market
	invalidated []string
	setErr      error
}

func cacheKey(venue, externalID string) string { return venue + "/" + externalID }

func (f *fakeMarketCache) Set(_ context.Context, m domain.Market) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets = append(f.sets, m)
	if f.entries == nil {
		f.entries = make(map[string]domain.Market)
	}
	f.entries[cacheKey(m.Venue, m.ExternalID)] = m
	return nil
}

func (f *fakeMarketCache) Get(_ context.Context, venue, externalID string) (domain.Market, error) {
	m, ok := f.entries[cacheKey(venue, externalID)]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeMarketCache) Invalidate(_ context.Context, venue, externalID string) error {
	f.invalidated = append(f.invalidated, cacheKey(venue, externalID))
	delete(f.entries, cacheKey(venue, externalID))
	return nil
}

type fakeRateLimiter struct {
	waits []string
	err   error
}

func (f *fakeRateLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	return true, nil
}

func (f *fakeRateLimiter) Wait(_ context.Context, key string, _ int, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.waits = append(f.waits, key)
	return nil
}

type fakeNotifier struct {
	events []string
	titles []string
}

func (f *fakeNotifier) Notify(_ context.Context, event, title, _ string) error {
	f.events = append(f.events, event)
	f.titles = append(f.titles, title)
	return nil
}

type fakeArchiver struct {
	archived [][]domain.Opportunity
	err      error
}

func (f *fakeArchiver) ArchiveScan(_ context.Context, _ time.Time, opps []domain.Opportunity) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.archived = append(f.archived, opps)
	return "scans/test.jsonl", nil
}

type fakeVenueClient struct {
	name    string
	markets []domain.Market
	err     error
}

func (f *fakeVenueClient) Name() string { return f.name }

func (f *fakeVenueClient) FetchMarkets(_ context.Context) ([]domain.Market, error) {
	return f.markets, f.err
}
