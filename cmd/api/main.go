package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/api"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/server"
	"github.com/pageza/recipebox/backend/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting recipebox api", "environment", config.GetEnvironment(), "version", api.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Initialize database
	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(db, cfg.DatabaseURL(), logger); err != nil {
			return err
		}
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}

	// Redis is optional; without it rate limits are kept per process
	var redisClient *redis.Client
	if database.RedisConfigured(cfg) {
		redisClient, err = database.NewRedisClient(ctx, cfg, logger)
		if err != nil {
			logger.Warn("redis unavailable, using in-process rate limiting", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	srv := server.New(api.Dependencies{
		DB:      db,
		Config:  cfg,
		Storage: store,
		Redis:   redisClient,
		Logger:  logger,
	})
	return srv.Run(ctx)
}
