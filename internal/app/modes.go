package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantcluster/marketlens/internal/analyzer"
	"github.com/quantcluster/marketlens/internal/matcher"
	"github.com/quantcluster/marketlens/internal/server"
	"github.com/quantcluster/marketlens/internal/server/handler"
	"github.com/quantcluster/marketlens/internal/server/ws"
	"github.com/quantcluster/marketlens/internal/service"
)

// engine bundles the services built on top of the wired dependencies.
type engine struct {
	ingest *service.IngestService
	match  *service.MatchService
	scan   *service.ScanService
	market *service.MarketService
	opps   *service.OpportunityService
}

// buildEngine constructs the matcher, the detector registry, and the service
// layer from the wired dependencies.
func (a *App) buildEngine(deps *Dependencies) *engine {
	scorer := matcher.NewScorer(matcher.ScorerConfig{
		SimilarityFloor: a.cfg.Engine.SimilarityFloor,
		MatchFloor:      a.cfg.Engine.MatchFloor,
	})
	assigner := matcher.NewAssigner(a.cfg.Engine.GroupFloor)

	registry := analyzer.NewRegistry()
	registry.Register(analyzer.NewDivergence(analyzer.DivergenceConfig{
		SpreadFloor: a.cfg.Engine.DivergenceSpreadFloor,
	}))
	registry.Register(analyzer.NewSanity(analyzer.SanityConfig{
		Tolerance: a.cfg.Engine.SanityTolerance,
	}))
	registry.Register(analyzer.NewArbitrage(analyzer.ArbitrageConfig{
		NearFloor: a.cfg.Engine.NearArbitrageFloor,
	}))

	var archiver service.ScanArchiver
	if deps.Archiver != nil {
		archiver = deps.Archiver
	}
	var notifier service.Notifier
	if deps.Notifier != nil {
		notifier = deps.Notifier
	}

	return &engine{
		ingest: service.NewIngestService(
			deps.VenueClients, deps.MarketStore, deps.MarketCache, deps.RateLimiter, a.logger,
		),
		match: service.NewMatchService(
			deps.MarketStore, deps.GroupStore, scorer, assigner,
			deps.LockManager, deps.SignalBus, a.cfg.Refresh.LockTTL.Duration, a.logger,
		),
		scan: service.NewScanService(
			deps.GroupStore, deps.OpportunityStore, registry, deps.SignalBus,
			notifier, archiver,
			service.ScanConfig{NotifyFloor: a.cfg.Notify.MinScore}, a.logger,
		),
		market: service.NewMarketService(deps.MarketStore, deps.MarketCache, a.logger),
		opps: service.NewOpportunityService(
			deps.OpportunityStore, a.cfg.Engine.FreshnessHalfLife.Duration, a.logger,
		),
	}
}

// runCycle executes one ingest-match-scan pass. Errors are logged; a failed
// stage does not stop the later stages, since stale data still benefits from
// re-grouping and re-scanning.
func (a *App) runCycle(ctx context.Context, eng *engine) {
	start := time.Now()

	if _, err := eng.ingest.IngestAll(ctx); err != nil {
		a.logger.ErrorContext(ctx, "cycle: ingest failed",
			slog.String("error", err.Error()),
		)
	}
	if _, err := eng.match.Refresh(ctx); err != nil {
		a.logger.ErrorContext(ctx, "cycle: match refresh failed",
			slog.String("error", err.Error()),
		)
	}
	if _, err := eng.scan.Scan(ctx); err != nil {
		a.logger.ErrorContext(ctx, "cycle: scan failed",
			slog.String("error", err.Error()),
		)
	}

	a.logger.InfoContext(ctx, "cycle complete",
		slog.Duration("elapsed", time.Since(start)),
	)
}

// refreshLoop runs an immediate cycle and then repeats on the configured
// interval. A send on triggerCh (from the refresh endpoint) forces an early
// cycle; triggerCh may be nil.
func (a *App) refreshLoop(ctx context.Context, eng *engine, triggerCh <-chan struct{}) error {
	interval := a.cfg.Refresh.Interval.Duration
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	a.runCycle(ctx, eng)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.runCycle(ctx, eng)
		case <-triggerCh:
			a.runCycle(ctx, eng)
			ticker.Reset(interval)
		}
	}
}

// startHTTPServer builds the handler set, the WebSocket hub, and the HTTP
// server, and starts both on the errgroup.
func (a *App) startHTTPServer(
	ctx context.Context,
	g *errgroup.Group,
	deps *Dependencies,
	eng *engine,
	triggerCh chan<- struct{},
) {
	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})

	refreshH := handler.NewRefreshHandler(a.logger)
	if triggerCh != nil {
		refreshH = refreshH.WithTriggerChannel(triggerCh)
	}

	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(a.logger),
		Status:        handler.NewStatusHandler(a.cfg.Mode, deps.MarketStore, deps.GroupStore, a.logger),
		Markets:       handler.NewMarketHandler(eng.market, a.logger),
		Groups:        handler.NewGroupHandler(eng.match, eng.opps, a.logger),
		Opportunities: handler.NewOpportunityHandler(eng.opps, a.logger),
		Refresh:       refreshH,
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// ServeMode runs the read-only API surface without the refresh loop. The
// refresh endpoint still accepts triggers so an operator can force a cycle.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)
	eng := a.buildEngine(deps)

	triggerCh := make(chan struct{}, 1)
	a.startHTTPServer(ctx, g, deps, eng, triggerCh)

	// In serve mode the trigger channel is the only cycle driver.
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-triggerCh:
				a.runCycle(ctx, eng)
			}
		}
	})

	return g.Wait()
}

// ScanMode runs the refresh loop headless, without the HTTP API.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	eng := a.buildEngine(deps)
	return a.refreshLoop(ctx, eng, nil)
}

// FullMode runs the API surface and the refresh loop together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	eng := a.buildEngine(deps)

	triggerCh := make(chan struct{}, 1)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, eng, triggerCh)
	}

	g.Go(func() error {
		return a.refreshLoop(ctx, eng, triggerCh)
	})

	return g.Wait()
}
