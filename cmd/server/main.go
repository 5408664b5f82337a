package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/sleepingstar/stockfolio/internal/api"
	"github.com/sleepingstar/stockfolio/internal/config"
	"github.com/sleepingstar/stockfolio/internal/database"
	"github.com/sleepingstar/stockfolio/internal/repository"
	"github.com/sleepingstar/stockfolio/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if cfg.Auth.InternalAPIKey == "" {
		log.Warn().Msg("INTERNAL_API_KEY is not set; authenticated endpoints will refuse all requests")
	}

	// Open database connection and bring the schema up to date
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	log.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	// Create repositories
	userRepo := repository.NewUserRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	stockRepo := repository.NewStockRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	dividendRepo := repository.NewDividendRepository(db)
	optionRepo := repository.NewOptionRepository(db)
	watchlistRepo := repository.NewWatchlistRepository(db)
	allocator := repository.NewKeyAllocator(db)
	locks := service.NewUserLocks()

	// Create services
	svcs := api.Services{
		System: service.NewSystemService(db),
		User: service.NewUserService(
			db, userRepo, locks,
			log.With().Str("component", "user").Logger(),
		),
		Portfolio: service.NewPortfolioService(
			db, portfolioRepo, userRepo, allocator, locks,
			log.With().Str("component", "portfolio").Logger(),
		),
		Stock: service.NewStockService(
			db, stockRepo, portfolioRepo, allocator, locks,
			log.With().Str("component", "stock").Logger(),
		),
		Order: service.NewOrderService(
			db, orderRepo, stockRepo, portfolioRepo, allocator, locks,
			log.With().Str("component", "order").Logger(),
		),
		Dividend: service.NewDividendService(
			db, dividendRepo, stockRepo, portfolioRepo, allocator, locks,
			log.With().Str("component", "dividend").Logger(),
		),
		Option: service.NewOptionService(
			db, optionRepo, stockRepo, portfolioRepo, allocator, locks,
			log.With().Str("component", "option").Logger(),
		),
		Watchlist: service.NewWatchlistService(
			db, watchlistRepo, userRepo, allocator, locks,
			log.With().Str("component", "watchlist").Logger(),
		),
		Metrics: service.NewMetricsService(
			portfolioRepo, stockRepo, orderRepo, dividendRepo,
			log.With().Str("component", "metrics").Logger(),
		),
	}

	// Create router
	router := api.NewRouter(svcs, cfg, log.With().Str("component", "http").Logger())

	// Periodic store maintenance: checkpoint the WAL so it does not grow
	// unbounded between restarts
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Maintenance.Schedule, func() {
		if _, err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			log.Error().Err(err).Msg("wal checkpoint failed")
			return
		}
		log.Info().Msg("wal checkpoint complete")
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Maintenance.Schedule).Msg("invalid maintenance schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
