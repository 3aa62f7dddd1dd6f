package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/external/apifootball"
	"github.com/riskibarqy/prediction-league/internal/config"
	cacherepo "github.com/riskibarqy/prediction-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/prediction-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/prediction-league/internal/observability"
	basecache "github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/riskibarqy/prediction-league/internal/usecase"
	"github.com/sourcegraph/conc/pool"
)

const shutdownTimeout = 10 * time.Second

// App owns the long running parts of the service.
type App struct {
	cfg       config.Config
	logger    *logging.Logger
	server    *http.Server
	pprof     *http.Server
	scheduler *usecase.RefreshScheduler
	closers   []io.Closer
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{cfg: cfg, logger: logger}
	clock := clockwork.NewRealClock()
	ids := id.NewUUIDGenerator()

	var repos repositories
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		repos = newMemoryRepositories()
	default:
		db, err := openDatabase(ctx, cfg.DBURL, cfg.DBDisablePreparedBinary)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		repos = newPostgresRepositories(db)
	}
	if cfg.CacheEnabled {
		repos = repos.withReadCache(basecache.NewStoreWithClock(cfg.CacheTTL, clock))
	}

	gateway, err := a.buildGateway(ctx, repos, ids, clock)
	if err != nil {
		a.close()
		return nil, err
	}

	syncer := usecase.NewFixtureSyncService(usecase.FixtureSyncDeps{
		Competitions: repos.competitions,
		Seasons:      repos.seasons,
		Rounds:       repos.rounds,
		Matches:      repos.matches,
		Teams:        repos.teams,
		Gateway:      gateway,
		IDGen:        ids,
		Clock:        clock,
		Logger:       logger,
		Workers:      cfg.SchedulerWorkers,

		ChunkInterval: cfg.APIFootballMinInterval,
	})
	competitionSvc := usecase.NewCompetitionService(usecase.CompetitionDeps{
		Competitions: repos.competitions,
		Seasons:      repos.seasons,
		Rounds:       repos.rounds,
		Matches:      repos.matches,
		Teams:        repos.teams,
		Syncer:       syncer,
		IDGen:        ids,
		Clock:        clock,
		Logger:       logger,
	})
	predictionSvc := usecase.NewPredictionService(usecase.PredictionDeps{
		Users:       repos.users,
		Seasons:     repos.seasons,
		Rounds:      repos.rounds,
		Matches:     repos.matches,
		Predictions: repos.predictions,
		Syncer:      syncer,
		IDGen:       ids,
		Clock:       clock,
		Logger:      logger,
	})
	userSvc := usecase.NewUserService(repos.users, repos.competitions, clock, logger)

	handler := httpapi.NewHandler(competitionSvc, predictionSvc, userSvc, syncer, logger)
	if cfg.AdminAPIKey == "" {
		logger.Warn("ADMIN_API_KEY is empty, admin routes reject every request")
	}
	a.server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, logger, cfg.AdminAPIKey),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	a.pprof = observability.NewPprofServer(cfg)

	if cfg.SchedulerEnabled {
		a.scheduler = usecase.NewRefreshScheduler(syncer, usecase.SchedulerConfig{
			DailyAt:        cfg.SchedulerDailyAt,
			ActiveInterval: cfg.SchedulerActiveInterval,
		}, clock, logger)
	}

	return a, nil
}

func (a *App) buildGateway(ctx context.Context, repos repositories, ids id.Generator, clock clockwork.Clock) (usecase.FixtureGateway, error) {
	cfg := a.cfg
	if cfg.APIFootballAPIKey == "" {
		a.logger.Warn("APIFOOTBALL_API_KEY is empty, provider calls will be rejected upstream")
	}

	client := apifootball.NewClient(apifootball.ClientConfig{
		BaseURL: cfg.APIFootballBaseURL,
		Host:    cfg.APIFootballHost,
		APIKey:  cfg.APIFootballAPIKey,
		Timeout: cfg.APIFootballTimeout,
		Logger:  a.logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.APIFootballCircuitEnabled,
			FailureThreshold: cfg.APIFootballCircuitFailureCount,
			OpenTimeout:      cfg.APIFootballCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.APIFootballCircuitHalfOpenMaxReq,
		},
		Clock: clock,
	})

	var gateway usecase.FixtureGateway = usecase.NewAuditedGateway(client, repos.audits, ids, clock, usecase.GatewayPolicy{
		MaxAttempts: cfg.APIFootballMaxAttempts,
		DayStarts:   cfg.APIFootballDayStarts,
		MinInterval: cfg.APIFootballMinInterval,
	}, a.logger)

	ttl := cfg.APIFootballMinInterval
	if ttl <= 0 {
		ttl = cfg.CacheTTL
	}
	switch cfg.FixtureCacheBackend {
	case config.CacheBackendMemory:
		gateway = cacherepo.NewFixtureGateway(gateway, basecache.NewStoreWithClock(ttl, clock), a.logger)
	case config.CacheBackendRedis:
		store, err := basecache.NewRedisStore(ctx, cfg.RedisURL, "prediction-league:", ttl)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		gateway = cacherepo.NewFixtureGateway(gateway, store, a.logger)
	}

	return gateway, nil
}

// Run serves until ctx is cancelled or a component fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		return a.serve(ctx, "http", a.server)
	})
	if a.pprof != nil {
		p.Go(func(ctx context.Context) error {
			return a.serve(ctx, "pprof", a.pprof)
		})
	}
	if a.scheduler != nil {
		p.Go(func(ctx context.Context) error {
			a.scheduler.Run(ctx)
			return nil
		})
	}

	return p.Wait()
}

func (a *App) serve(ctx context.Context, name string, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "server", name, "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s server: %w", name, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown %s server: %w", name, err)
	}
	a.logger.Info("server stopped", "server", name)
	return nil
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close resource failed", "error", err)
		}
	}
	a.closers = nil
}
