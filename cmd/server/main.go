package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/segyhp/microloans/internal/cache"
	"github.com/segyhp/microloans/internal/config"
	"github.com/segyhp/microloans/internal/handler"
	"github.com/segyhp/microloans/internal/logger"
	"github.com/segyhp/microloans/internal/repository"
	"github.com/segyhp/microloans/internal/service"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.LogFormat())
	log.WithFields(logrus.Fields{
		"env":    cfg.Server.Env,
		"level":  log.GetLevel().String(),
		"format": cfg.LogFormat(),
	}).Info("logging configured")

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	statsCache, closeCache := initCache(cfg, log)
	defer closeCache()

	// Initialize repositories
	loanRepo := repository.NewLoanRepository(db, cfg.Database.QueryTimeout)

	// Initialize service
	loanService := service.NewLoanService(loanRepo, statsCache, log)
	loanHandler := handler.NewLoanHandler(loanService, log)

	// Readiness only probes Redis when a client is actually open.
	var readinessCache cache.StatsCache
	if _, disabled := statsCache.(cache.NopStatsCache); !disabled {
		readinessCache = statsCache
	}
	healthHandler := handler.NewHealthHandler(loanService, readinessCache, cfg.Health.Timeout, log)

	// Setup routes
	router := handler.NewRouter(loanHandler, healthHandler, log)

	// Start server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
		return
	}

	log.Info("Server exited")
}

// initDB opens the shared connection pool. sqlx.Connect pings, so a bad
// DATABASE_URL fails at startup rather than on the first request.
func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

// initCache connects to Redis when configured. An unreachable Redis
// degrades to no caching instead of refusing to start.
func initCache(cfg *config.Config, log logrus.FieldLogger) (cache.StatsCache, func()) {
	if !cfg.CacheEnabled() {
		log.Info("REDIS_URL not set, stats cache disabled")
		return cache.NopStatsCache{}, func() {}
	}

	client, err := cache.OpenRedis(cfg.Redis.URL, cfg.Health.Timeout)
	if err != nil {
		log.WithError(err).Warn("Redis unreachable, stats cache disabled")
		return cache.NopStatsCache{}, func() {}
	}

	return cache.NewRedisStatsCache(client, cfg.Redis.StatsTTL), func() { _ = client.Close() }
}
