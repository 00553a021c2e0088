package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/config"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/logger"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/repository/cache"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/repository/postgres"
	redisRepo "github.com/giovanto/pyjama-party-platform-sub000/internal/repository/redis"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/worker"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/worker/dream"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Dream Community Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Duration("stream_read_timeout", cfg.Worker.StreamReadTimeout))

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	dreamRepo := postgres.NewDreamRepository(db)
	statsRepo := postgres.NewStatsRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), cfg.Worker.StreamReadTimeout, log)

	// 6. Initialize use cases
	statsUC := usecase.NewStatsUseCase(statsRepo, cacheRepo, log, cfg.Cache.StatsTTL, cfg.Stats.ActivityWindowDays)

	// 7. Initialize workers
	communityWorker := dream.NewCommunityWorker(
		streamRepo,
		dreamRepo,
		cacheRepo,
		statsUC,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log, worker.DefaultShutdownTimeout)
	workerManager.Register(communityWorker)

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	for name, err := range workerManager.Failures() {
		log.Warn("Worker exited with error", zap.String("name", name), zap.Error(err))
	}

	log.Info("Worker shutdown complete",
		zap.Int64("processed", communityWorker.Processed()))
}
