package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/meelike-pricing/internal/cache"
	"github.com/fairyhunter13/meelike-pricing/internal/config"
	"github.com/fairyhunter13/meelike-pricing/internal/event"
	"github.com/fairyhunter13/meelike-pricing/internal/handler"
	"github.com/fairyhunter13/meelike-pricing/internal/pricing"
	"github.com/fairyhunter13/meelike-pricing/internal/repository"
	"github.com/fairyhunter13/meelike-pricing/internal/service"
	appvalidator "github.com/fairyhunter13/meelike-pricing/internal/validator"
	"github.com/fairyhunter13/meelike-pricing/pkg/clock"
	"github.com/fairyhunter13/meelike-pricing/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	ctx := context.Background()

	// Tier catalogs are validated before anything else starts
	catalogs, err := pricing.LoadCatalogs(cfg.Pricing.TierCatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Pricing.TierCatalogPath).Msg("failed to load tier catalog")
	}

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.PoolConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Optional spend cache
	var (
		rdb         *redis.Client
		spendCache  service.SpendCache
		cachePinger handler.Pinger
	)
	if cfg.Redis.Enabled() {
		rdb, err = database.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		spendCache = cache.NewSpendCache(rdb, cfg.Redis.SpendTTL)
		cachePinger = handler.PingerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		log.Info().Msg("spend cache disabled")
	}

	// Optional bill event publisher
	var (
		amqpConn  *event.Connection
		publisher service.BillPublisher
	)
	if cfg.AMQP.Enabled() {
		amqpConn, err = event.Connect(cfg.AMQP.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		billPublisher, err := event.NewBillPublisher(amqpConn, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatal().Err(err).Str("exchange", cfg.AMQP.Exchange).Msg("failed to declare billing exchange")
		}
		publisher = billPublisher
	} else {
		log.Info().Msg("bill event publishing disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:      "MeeLike Pricing",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	validate := appvalidator.New()
	clk := clock.NewRealClock()

	// Repositories
	couponRepo := repository.NewCouponRepository(pool)
	flashSaleRepo := repository.NewFlashSaleRepository(pool)
	billRepo := repository.NewBillRepository(pool)

	// Services
	spend := service.NewSpendTracker(billRepo, spendCache)
	couponService := service.NewCouponService(couponRepo, clk)
	flashSaleService := service.NewFlashSaleService(flashSaleRepo, clk)
	loyaltyService := service.NewLoyaltyService(catalogs, spend)
	pricingService := service.NewPricingService(pool, catalogs, couponRepo, flashSaleRepo, billRepo, spend, publisher, clk)

	// Handlers
	healthHandler := handler.NewHealthHandler(pool, cachePinger)
	couponHandler := handler.NewCouponHandler(couponService, validate)
	flashSaleHandler := handler.NewFlashSaleHandler(flashSaleService, validate)
	orderHandler := handler.NewOrderHandler(pricingService, validate)
	loyaltyHandler := handler.NewLoyaltyHandler(loyaltyService)

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")
	api.Get("/tiers", loyaltyHandler.ListTiers)
	api.Get("/loyalty/progress", loyaltyHandler.SpendProgress)

	agents := api.Group("/agents/:agentId")
	agents.Post("/coupons", couponHandler.CreateCoupon)
	agents.Get("/coupons/:code", couponHandler.GetCoupon)
	agents.Post("/coupons/:code/validate", couponHandler.ValidateCoupon)
	agents.Post("/flash-sales", flashSaleHandler.CreateFlashSale)
	agents.Get("/flash-sales/:id", flashSaleHandler.GetFlashSale)

	api.Post("/quotes", orderHandler.Quote)
	api.Post("/orders", orderHandler.PlaceOrder)

	customers := api.Group("/customers/:customerId")
	customers.Get("/loyalty", loyaltyHandler.CustomerProgress)
	customers.Get("/bills", orderHandler.ListBills)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Backing services close AFTER server shutdown (even if shutdown timed out)
	if amqpConn != nil {
		if err := amqpConn.Close(); err != nil {
			log.Error().Err(err).Msg("error closing rabbitmq connection")
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis client")
		}
	}

	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
