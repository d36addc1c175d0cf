package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/persistence"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *session.Registry
	limiter    *middleware.RateLimiter
	producer   *pkgkafka.Producer
	closers    []namedCloser
	tracer     *tracing.Provider
	httpServer *http.Server
}

type namedCloser struct {
	name string
	c    io.Closer
}

// startupTimeout bounds connecting to every backend in NewApp.
const startupTimeout = 30 * time.Second

// NewApp connects the configured backends and builds the HTTP server.
// Canceling ctx aborts startup.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracingCfg := tracing.DefaultConfig(serviceName)
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracingCfg.SampleRate = cfg.OTELSampleRate
	tracingCfg.Enabled = cfg.OTELEnabled
	tracer, err := tracing.Init(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracer = tracer

	database.SetSlowQueryLogging(cfg.SlowStorageThreshold(), logger)
	healthHandler := health.NewHandler()

	storage, err := a.openStorage(ctx)
	if err != nil {
		a.closeAll()
		return nil, err
	}
	healthHandler.RegisterCritical("storage", storage.Ping)

	// Kafka is optional: with events disabled every change is discarded.
	var publisher event.Publisher = event.NopPublisher{}
	if cfg.EventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(a.producer, logger)
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// A nil Catalog disables the by-id routes.
	var products service.Catalog
	if cfg.CatalogURL != "" {
		client := catalog.NewClient(cfg.CatalogURL, cfg.Catalog(), logger)
		products = client
		healthHandler.RegisterNonCritical("catalog", client.Ping)
		logger.Info("catalog client initialized", slog.String("url", cfg.CatalogURL))
	}

	a.registry = session.NewRegistry(storage, products, publisher, session.Config{
		Namespace:   cfg.StorageNamespace,
		IdleTimeout: cfg.SessionIdleTimeout(),
	}, logger)

	if cfg.RateLimitRPS > 0 {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(handler.RouterConfig{
		Sessions:    a.registry,
		Health:      healthHandler,
		RateLimiter: a.limiter,
		CORS:        corsCfg,
		PprofCIDRs:  cfg.PprofAllowedCIDRs,
	}, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// openStorage connects the configured storage backend.
func (a *App) openStorage(ctx context.Context) (persistence.Storage, error) {
	cfg := a.cfg

	switch cfg.StorageDriver {
	case config.DriverRedis:
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, namedCloser{"redis", rdb})
		a.logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		return persistence.NewRedisStorage(rdb, cfg.SlotTTL()), nil

	case config.DriverPostgres:
		pgCfg := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, namedCloser{"postgres", closerFunc(pool.Close)})
		database.RegisterPoolMetrics(pool, config.DriverPostgres)

		if err := persistence.Migrate(ctx, pool, a.logger); err != nil {
			return nil, fmt.Errorf("migrate storage: %w", err)
		}
		a.logger.Info("connected to PostgreSQL", slog.String("host", cfg.PostgresHost))
		return persistence.NewPostgresStorage(pool), nil

	case config.DriverSQLite:
		s, err := persistence.NewSQLiteStorage(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, namedCloser{"sqlite", s})
		a.logger.Info("opened SQLite storage", slog.String("path", cfg.SQLitePath))
		return s, nil

	default:
		a.logger.Warn("using in-memory storage, carts are lost on restart")
		return persistence.NewMemoryStorage(), nil
	}
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

// Run starts the HTTP server and the idle session janitor, and blocks until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.registry.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.limiter != nil {
		a.limiter.Stop()
	}
	a.registry.Shutdown()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	a.closeAll()

	if err := a.tracer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeAll() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].c.Close(); err != nil {
			a.logger.Error("close error",
				slog.String("component", a.closers[i].name),
				slog.String("error", err.Error()),
			)
		}
	}
	a.closers = nil
}
