package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/segyhp/microloans/internal/cache"
	"github.com/segyhp/microloans/internal/config"
	"github.com/segyhp/microloans/internal/logger"
	"github.com/segyhp/microloans/internal/repository"
	"github.com/segyhp/microloans/internal/service"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.LogFormat())
	log.Info("Starting stats scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	var statsCache cache.StatsCache = cache.NopStatsCache{}
	if cfg.CacheEnabled() {
		client, err := cache.OpenRedis(cfg.Redis.URL, cfg.Health.Timeout)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		statsCache = cache.NewRedisStatsCache(client, cfg.Redis.StatsTTL)
	} else {
		log.Warn("REDIS_URL not set, snapshots will only be logged")
	}

	loanService := service.NewLoanService(
		repository.NewLoanRepository(db, cfg.Database.QueryTimeout),
		statsCache,
		log,
	)

	// Initialize cron scheduler
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if err := setupCronJobs(c, cfg, loanService, log); err != nil {
		log.Fatalf("Error scheduling stats refresh job: %v", err)
	}

	// Start the scheduler
	c.Start()
	log.WithField("spec", cfg.Scheduler.Spec).Info("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Info("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, loanService service.LoanService, log logrus.FieldLogger) error {
	_, err := c.AddFunc(cfg.Scheduler.Spec, func() {
		refreshStats(loanService, cfg, log)
	})
	return err
}

// refreshStats recomputes the stats snapshot so the API serves it warm.
func refreshStats(loanService service.LoanService, cfg *config.Config, log logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.QueryTimeout)
	defer cancel()

	stats, err := loanService.RefreshStats(ctx)
	if err != nil {
		log.WithError(err).Error("stats refresh failed")
		return
	}

	log.WithFields(logrus.Fields{
		"total_loans":  stats.TotalLoans,
		"total_amount": stats.TotalAmount.StringFixed(2),
		"avg_amount":   stats.AvgAmount.StringFixed(2),
	}).Info("stats snapshot refreshed")
}
