package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/axlesai/floorplan-engine/internal/config"
	"github.com/axlesai/floorplan-engine/internal/domain"
	"github.com/axlesai/floorplan-engine/internal/handler"
	"github.com/axlesai/floorplan-engine/internal/repository"
	"github.com/axlesai/floorplan-engine/internal/service"
	"github.com/axlesai/floorplan-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}

	logger := newLogger(cfg)

	db, err := initDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to database")
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Repositories
	store := repository.NewStore(db)
	accountRepo := repository.NewAccountRepository(db)
	loanRepo := repository.NewUnitLoanRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	providerRepo := repository.NewProviderRepository(db)

	// Services
	alertPolicy := domain.AlertPolicy{
		CurtailmentWarningDays: cfg.FloorPlan.CurtailmentWarningDays,
		UtilizationThreshold:   cfg.GetUtilizationThreshold(),
		NewLoanWindowDays:      7,
	}
	accountService := service.NewAccountService(accountRepo, loanRepo, providerRepo, store, cfg, logger)
	floorService := service.NewFloorService(accountRepo, loanRepo, ledgerRepo, store, logger)
	alertService := service.NewAlertService(accountRepo, loanRepo, redisClient, alertPolicy, logger)
	metricsService := service.NewMetricsService(accountRepo, loanRepo)

	// Handlers
	floorPlanHandler := handler.NewFloorPlanHandler(accountService, floorService, alertService, metricsService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())
	rateLimiter := handler.NewRateLimiter(redisClient, cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window, logger)

	router := setupRoutes(floorPlanHandler, healthHandler, rateLimiter, logger)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if cfg.Logging.Format == "console" || cfg.IsDevelopment() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(floorPlanHandler *handler.FloorPlanHandler, healthHandler *handler.HealthHandler, rateLimiter *handler.RateLimiter, logger zerolog.Logger) *mux.Router {
	router := mux.NewRouter()

	router.Use(response.LoggingMiddleware(logger))
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(rateLimiter.Middleware)
	floorPlanHandler.Register(api)

	return router
}
