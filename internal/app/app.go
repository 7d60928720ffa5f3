package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/qbazz/storefront/internal/assistant"
	"github.com/qbazz/storefront/internal/catalog"
	"github.com/qbazz/storefront/internal/config"
	"github.com/qbazz/storefront/internal/event"
	handler "github.com/qbazz/storefront/internal/handler/http"
	redisrepo "github.com/qbazz/storefront/internal/repository/redis"
	"github.com/qbazz/storefront/internal/service"
	"github.com/qbazz/storefront/pkg/database"
	"github.com/qbazz/storefront/pkg/health"
	pkgkafka "github.com/qbazz/storefront/pkg/kafka"
	"github.com/qbazz/storefront/pkg/middleware"
	"github.com/qbazz/storefront/pkg/tracing"
)

const limiterIdleTTL = 10 * time.Minute

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	catalog        *service.CatalogService
	registry       *assistant.Registry
	limiter        *middleware.LimiterStore
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTelEndpoint,
		SampleRate:     cfg.OTelSampleRate,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Redis holds visitor state only; the storefront keeps serving without it.
	redisCfg := database.DefaultRedisConfig()
	redisCfg.Addr = cfg.RedisAddr
	redisCfg.Password = cfg.RedisPass
	redisCfg.DB = cfg.RedisDB
	rdb, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		logger.Warn("redis unavailable, search history and registration drafts will not persist until it recovers",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
		rdb = redis.NewClient(redisCfg.Options())
	} else {
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
	}

	// Catalog API.
	catalogClient := catalog.NewClient(catalog.Config{
		BaseURL:        cfg.CatalogBaseURL,
		Timeout:        cfg.CatalogTimeout,
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.AcceptLanguage,
	}, logger)
	logger.Info("catalog API configured", slog.String("base_url", cfg.CatalogBaseURL))

	// Registration hand-off.
	var (
		producer  *pkgkafka.Producer
		publisher service.RegistrationPublisher
	)
	if cfg.KafkaEnabled() {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(producer, cfg.RegistrationTopic, logger)
		logger.Info("kafka producer initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.RegistrationTopic),
		)
	} else {
		publisher = event.NewLogProducer(logger)
		logger.Info("no kafka brokers configured, store registrations are only logged")
	}

	// Shopping assistant.
	var model assistant.Model = assistant.Unavailable{}
	if cfg.AssistantEnabled() {
		gemini, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("init assistant model: %w", err)
		}
		model = gemini
		logger.Info("shopping assistant enabled", slog.String("model", cfg.GeminiModel))
	} else {
		logger.Warn("GEMINI_API_KEY is not set, the shopping assistant will reply with an error message")
	}

	// Build the dependency graph.
	catalogService := service.NewCatalogService(catalogClient, cfg.ProductLimit, logger)
	navigator := service.NewNavigator(catalogService)
	historyRepo := redisrepo.NewSearchHistoryRepository(rdb, cfg.SearchHistoryTTL)
	searchService := service.NewSearchService(historyRepo, catalogService, catalogClient, cfg.SearchLimit, logger)
	wizardRepo := redisrepo.NewWizardRepository(rdb, cfg.RegistrationTTL)
	registrationService := service.NewRegistrationService(wizardRepo, publisher, logger)
	registry := assistant.NewRegistry(model, cfg.ChatIdleTTL, logger)
	limiter := middleware.NewLimiterStore(cfg.ChatRateLimitRPS, cfg.ChatRateLimitBurst, limiterIdleTTL)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("catalog", catalogService.Ready)
	healthHandler.RegisterNonCritical("catalog_api", func(context.Context) error {
		if state := catalogClient.BreakerState(); state == gobreaker.StateOpen.String() {
			return errors.New("catalog API circuit breaker is open")
		}
		return nil
	})
	healthHandler.RegisterNonCritical("redis", database.RedisChecker(rdb))
	if producer != nil {
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
	}

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(handler.Handlers{
		Catalog:      handler.NewCatalogHandler(catalogService, cfg.StoreLimit, logger),
		Pages:        handler.NewPageHandler(navigator, logger),
		Search:       handler.NewSearchHandler(searchService, logger),
		Chat:         handler.NewChatHandler(registry, logger),
		Registration: handler.NewRegistrationHandler(registrationService, logger),
	}, handler.RouterConfig{
		Health:      healthHandler,
		Visitors:    middleware.NewVisitorStore(cfg.SessionKey, cfg.CookieSecure),
		ChatLimiter: limiter,
		CORS:        corsCfg,
	}, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		producer:       producer,
		catalog:        catalogService,
		registry:       registry,
		limiter:        limiter,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the background loops, and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	// The first catalog load runs in the background; until it finishes pages
	// render with the loading flag set and readiness reports not ready.
	go func() {
		_ = a.catalog.Load(ctx)
	}()
	go a.registry.Run(ctx)
	go a.limiter.Run(ctx)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
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

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
