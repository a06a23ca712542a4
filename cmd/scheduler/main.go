package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/axlesai/floorplan-engine/internal/config"
	"github.com/axlesai/floorplan-engine/internal/repository"
	"github.com/axlesai/floorplan-engine/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "floorplan-scheduler").Logger()
	logger.Info().Msg("starting floor plan scheduler")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to database")
	}
	defer db.Close()

	store := repository.NewStore(db)
	accountRepo := repository.NewAccountRepository(db)
	loanRepo := repository.NewUnitLoanRepository(db)
	accrualService := service.NewAccrualService(accountRepo, loanRepo, store, logger)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Scheduler.Timezone).Msg("loading scheduler timezone")
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))
	setupCronJobs(c, cfg, accrualService, logger)

	c.Start()
	logger.Info().Msg("scheduler started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down scheduler")
	<-c.Stop().Done()
	logger.Info().Msg("scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, accrual *service.AccrualService, logger zerolog.Logger) {
	// Daily interest accrual. Idempotent per (loan, day), so an overlapping
	// or retried run cannot double-accrue.
	_, err := c.AddFunc(cfg.Scheduler.AccrualCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		logger.Info().Msg("running interest accrual job")
		if err := accrual.AccrueInterest(ctx, time.Now()); err != nil {
			logger.Error().Err(err).Msg("interest accrual job failed")
		}
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduling interest accrual job")
	}

	// Daily past-due sweep for loans that missed their curtailment date.
	_, err = c.AddFunc(cfg.Scheduler.PastDueCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		logger.Info().Msg("running past-due sweep")
		flagged, err := accrual.SweepPastDue(ctx, time.Now())
		if err != nil {
			logger.Error().Err(err).Msg("past-due sweep failed")
			return
		}
		logger.Info().Int64("flagged", flagged).Msg("past-due sweep complete")
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduling past-due sweep")
	}

	logger.Info().Msg("cron jobs scheduled")
}
