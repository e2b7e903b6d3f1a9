package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/tracing"
)

const serviceVersion = "0.1.0"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	events         *event.Producer
	catalog        *catalog.Catalog
	store          *cart.Store
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance, initializing all dependencies.
// Redis and Kafka are optional and only connected when configured.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
	}

	healthHandler := health.NewHandler()

	// Catalog cache.
	var cache catalog.Cache
	if cfg.CacheEnabled() {
		redisCfg := database.DefaultRedisConfig(cfg.RedisAddr)
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB

		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			_ = tracerShutdown(context.Background())
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		a.rdb = rdb

		redisCache := catalog.NewRedisCache(rdb, cfg.CatalogCacheTTL())
		cache = redisCache
		healthHandler.RegisterOptional("redis", redisCache.Ping)
	}

	// Catalog upstream client with retries and a circuit breaker.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.CatalogTimeout()
	clientCfg.MaxRetries = cfg.CatalogMaxRetries
	cbClient := httpclient.NewCircuitBreakerClient(
		httpclient.New(clientCfg),
		httpclient.DefaultCircuitBreakerConfig("catalog"),
		logger,
	)

	a.catalog = catalog.New(catalog.NewClient(cbClient, cfg.CatalogBaseURL), cache, logger)
	healthHandler.Register("catalog", a.catalog.Ready)

	// Cart store and its event stream.
	a.store = cart.NewStore(logger)

	var publisher event.Publisher = event.NoopPublisher{}
	if cfg.EventsEnabled() {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.CartEventsTopic),
		)
	}
	a.events = event.NewProducer(publisher, cfg.CartEventsTopic, logger)
	a.events.Start()
	a.store.Subscribe(a.events.Listener())

	router := handler.NewRouter(a.catalog, a.store, healthHandler, logger, handler.RouterConfig{
		PprofAllowedCIDRs:  cfg.PprofAllowedCIDRs,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server, loads and periodically refreshes the catalog in
// the background and blocks until the context is canceled. The server answers
// with an empty catalog until the first load completes.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go a.syncCatalog(ctx)

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// loadCatalog populates the catalog once. Failure leaves it empty; the cart
// keeps working and readiness reports the catalog as down.
func (a *App) loadCatalog(ctx context.Context) {
	if err := a.catalog.Load(ctx); err != nil {
		a.logger.ErrorContext(ctx, "catalog load failed, serving an empty catalog",
			slog.String("url", a.cfg.CatalogBaseURL),
			slog.String("error", err.Error()),
		)
	}
}

// syncCatalog loads the catalog, then refetches it from upstream every
// refresh interval until ctx is canceled.
func (a *App) syncCatalog(ctx context.Context) {
	a.loadCatalog(ctx)

	interval := a.cfg.CatalogRefreshInterval()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.refreshCatalog(ctx)
		}
	}
}

// refreshCatalog refetches the catalog from upstream. Failure keeps the
// products already held.
func (a *App) refreshCatalog(ctx context.Context) {
	if err := a.catalog.Refresh(ctx); err != nil {
		a.logger.WarnContext(ctx, "catalog refresh failed, keeping current catalog",
			slog.Int("products", a.catalog.Len()),
			slog.String("error", err.Error()),
		)
	}
}

// Shutdown gracefully stops all components in order: HTTP server, cart event
// queue, tracer, Kafka producer, Redis client.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.events != nil {
		eventsCtx, eventsCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer eventsCancel()
		if err := a.events.Close(eventsCtx); err != nil {
			a.logger.Error("cart event drain error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
