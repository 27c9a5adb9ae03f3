package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/bensaadi/parapharma/internal"
	"github.com/bensaadi/parapharma/internal/analytics"
	"github.com/bensaadi/parapharma/internal/cache"
	"github.com/bensaadi/parapharma/internal/handler"
	"github.com/bensaadi/parapharma/internal/repository"
	"github.com/bensaadi/parapharma/internal/service"
	"github.com/bensaadi/parapharma/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	// Verify database connection
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize repository
	store := repository.NewStore(pool)

	// Tariff cache: redis when configured, in-process otherwise
	var tariffCache cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()
		tariffCache = redisCache
		logger.Info("Redis cache connected")
	} else {
		tariffCache = cache.NewMemory()
		logger.Warn("REDIS_URL not set, using in-process cache")
	}

	// Purchase analytics: NATS when configured, noop otherwise
	var notifier analytics.Notifier = analytics.NoopNotifier{}
	if cfg.NatsURL != "" {
		natsNotifier, err := analytics.NewNATSNotifier(cfg.NatsURL)
		if err != nil {
			return fmt.Errorf("failed to connect to nats: %w", err)
		}
		defer natsNotifier.Close()
		notifier = natsNotifier
		logger.Info("NATS analytics connected")
	} else {
		logger.Warn("NATS_URL not set, purchase events disabled")
	}

	// Initialize metrics
	metrics := telemetry.NewBusinessMetrics(cfg.MetricsNamespace)

	// Initialize services
	catalogService := service.NewCatalogService(store, logger)
	cartService := service.NewCartService(store, metrics, logger, cfg.DefaultLocale)
	locationService := service.NewLocationService(store, tariffCache, metrics, logger)
	promoService := service.NewPromoService(store, logger)
	loyaltyService := service.NewLoyaltyService(store, metrics, logger, cfg.LoyaltyRatePercent)
	inventoryService := service.NewInventoryService(logger, cfg.DefaultLocale)
	orderService := service.NewOrderService(store, inventoryService, loyaltyService, notifier, metrics, logger, cfg.DefaultLocale)

	// Initialize HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"error", v.Error,
			)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h := handler.New(catalogService, cartService, locationService, promoService, loyaltyService, orderService, logger, cfg.DefaultLocale)
	h.RegisterRoutes(e)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr)
	if err := e.Start(addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
