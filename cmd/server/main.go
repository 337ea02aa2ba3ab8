package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/repository"
	"github.com/example/storefront/pkg/service"
	"github.com/example/storefront/web"
	"go.uber.org/zap"
)

func main() {
	// Load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := newLogger(&cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting storefront",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	// Connect to MySQL and migrate
	db, err := repository.Open(&cfg.MySQL)
	if err != nil {
		logger.Fatal("Failed to connect to MySQL", zap.Error(err))
	}
	if err := repository.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	ctx := context.Background()

	// Redis (sessions, catalog cache)
	redisRepo := repository.NewRedisRepository(&cfg.Redis)
	defer redisRepo.Close()
	if err := redisRepo.Ping(ctx); err != nil {
		logger.Fatal("Redis connection failed", zap.Error(err))
	}
	logger.Info("Redis connected successfully")

	// MongoDB (audit trail); the store runs without it
	var audit service.AuditStore
	mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		logger.Warn("MongoDB connection failed, audit trail disabled", zap.Error(err))
	} else {
		audit = mongoRepo
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			mongoRepo.Close(closeCtx)
		}()
	}

	// Services
	catalog := service.NewCatalogService(db, redisRepo, cfg.Catalog.SortBy, logger)
	cart := service.NewCartService(db, logger)
	orders := service.NewOrderService(db, audit, logger)
	reviews := service.NewReviewService(db, audit, logger)
	accounts := service.NewAccountService(db, redisRepo, audit, service.DefaultProfileHook, cfg.Session.TTL, logger)

	// HTTP server
	srv := web.NewServer(cfg, logger, catalog, cart, orders, reviews, accounts)
	srv.SetupRoutes()

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-serverErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Storefront stopped")
}

func newLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	if cfg.Level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
