package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/campuscoins/coinledger/internal/adapter/http"
	"github.com/campuscoins/coinledger/internal/adapter/http/handler"
	"github.com/campuscoins/coinledger/internal/adapter/http/middleware"
	"github.com/campuscoins/coinledger/internal/adapter/repository/memory"
	postgresRepo "github.com/campuscoins/coinledger/internal/adapter/repository/postgres"
	redisRepo "github.com/campuscoins/coinledger/internal/adapter/repository/redis"
	"github.com/campuscoins/coinledger/internal/infrastructure/auth"
	"github.com/campuscoins/coinledger/internal/infrastructure/catalog"
	"github.com/campuscoins/coinledger/internal/infrastructure/config"
	"github.com/campuscoins/coinledger/internal/infrastructure/eventpublisher"
	"github.com/campuscoins/coinledger/internal/infrastructure/idgen"
	"github.com/campuscoins/coinledger/internal/infrastructure/logger"
	"github.com/campuscoins/coinledger/internal/infrastructure/metrics"
	"github.com/campuscoins/coinledger/internal/infrastructure/postgres"
	"github.com/campuscoins/coinledger/internal/infrastructure/redis"
	"github.com/campuscoins/coinledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// backend is the storage and its probes, closed on shutdown.
type backend struct {
	stores  usecase.Stores
	checks  map[string]handler.HealthCheck
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()

		be.checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, redisClient) }
		log.Info().Msg("connected to redis")
	}

	offers, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewWithRegistry(registry)

	opts := usecase.ServiceOptions{
		Catalog:      offers,
		IDGen:        idgen.NewULIDGenerator(),
		Codes:        idgen.NewRedemptionCodeGenerator(),
		Location:     cfg.Location(),
		WelcomeBonus: cfg.WelcomeBonus,
		CacheTTL:     cfg.LeaderboardCacheTTL,
		Retrier:      postgresRepo.NewRetrier(),
		Metrics:      appMetrics,
	}
	if redisClient != nil {
		opts.Cache = redisRepo.NewCache(redisClient)
	}
	services := usecase.NewServices(be.stores, opts)

	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(&appLogger)
	if redisClient != nil {
		publisher = eventpublisher.NewRedisPublisher(redisClient, cfg.EventsChannel)
	}
	relay := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: be.stores.OutboxRepo,
		Publisher:  publisher,
		Observer:   appMetrics,
		Logger:     &appLogger,
		Interval:   cfg.OutboxPollInterval,
	})

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(services.Coins),
		CoinsHandler:    handler.NewCoinsHandler(services.Coins),
		HistoryHandler:  handler.NewHistoryHandler(services.Coins),
		CatalogHandler:  handler.NewCatalogHandler(services.Coins),
		LedgerHandler:   handler.NewLedgerHandler(services.Reconciliation),
		HealthHandler:   handler.NewHealthHandler(be.checks),
		IdempotencyTTL:  cfg.IdempotencyTTL,
		Metrics:         appMetrics,
		MetricsGatherer: registry,
		Logger:          &appLogger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}
	if cfg.RateLimitRPS > 0 {
		routerCfg.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithObserver(appMetrics)
	}
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("JWT authentication enabled")
	}

	server := newServer(cfg, httpAdapter.NewRouter(routerCfg))

	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()
	go func() {
		if err := relay.Start(relayCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("outbox relay stopped")
		}
	}()

	if routerCfg.RateLimiter != nil {
		go sweepLimiters(relayCtx, routerCfg.RateLimiter)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	stopRelay()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

// openBackend opens the configured storage driver and applies migrations when asked to.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn().Msg("using in-memory storage, balances are lost on restart")
		return memoryBackend(cfg.LedgerLockTimeout), nil

	case config.StorageDriverPostgres:
		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		log.Info().Msg("connected to postgres")

		return &backend{
			stores: usecase.Stores{
				TxManager:   postgresRepo.NewTxManager(pool, cfg.LedgerLockTimeout),
				AccountRepo: postgresRepo.NewAccountRepository(pool),
				EntryRepo:   postgresRepo.NewEntryRepository(pool),
				LedgerRepo:  postgresRepo.NewLedgerRepository(pool),
				OutboxRepo:  postgresRepo.NewOutboxRepository(pool),
			},
			checks:  map[string]handler.HealthCheck{"postgres": pool.Ping},
			closers: []func(){pool.Close},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func memoryBackend(lockTimeout time.Duration) *backend {
	store := memory.NewStore(lockTimeout)

	return &backend{
		stores: usecase.Stores{
			TxManager:   memory.NewTxManager(store),
			AccountRepo: memory.NewAccountRepository(store),
			EntryRepo:   memory.NewEntryRepository(store),
			LedgerRepo:  memory.NewLedgerRepository(store),
			OutboxRepo:  memory.NewOutboxRepository(store),
		},
		checks: map[string]handler.HealthCheck{},
	}
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.OffersFile == "" {
		return catalog.Default(), nil
	}

	c, err := catalog.Load(cfg.OffersFile)
	if err != nil {
		return nil, fmt.Errorf("load offers: %w", err)
	}

	log.Info().Str("file", cfg.OffersFile).Msg("loaded offer catalog")

	return c, nil
}

func newServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

func sweepLimiters(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupIdle(3 * time.Minute); n > 0 {
				log.Debug().Int("removed", n).Msg("dropped idle rate limiters")
			}
		}
	}
}
