package main

// @title Pajama Party Platform API
// @version 1.0.0
// @description API платформы Pajama Party: мечты о ночных поездах, автодополнение станций,
// @description слои карты (GeoJSON, MVT), статистика и материалы для адвокации.
// @description
// @description Основные возможности:
// @description - Приём мечт и определение формирующихся сообществ
// @description - Поиск станций и мест назначения
// @description - Векторные тайлы (MVT/PBF) с мечтами и маршрутами
// @description - Экспорт карты в PNG и ссылки для соцсетей

// @contact.name Back-on-Track
// @contact.email hello@pajamaparty.eu

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/giovanto/pyjama-party-platform-sub000/docs"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/config"
	httpDelivery "github.com/giovanto/pyjama-party-platform-sub000/internal/delivery/http"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/delivery/http/handler"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/infrastructure/mapbox"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/logger"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/repository/cache"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/repository/postgres"
	redisRepo "github.com/giovanto/pyjama-party-platform-sub000/internal/repository/redis"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Pajama Party API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// 5. Initialize repositories
	dreamRepo := postgres.NewDreamRepository(db)
	stationRepo := postgres.NewStationRepository(db)
	placeRepo := postgres.NewPlaceRepository(db)
	statsRepo := postgres.NewStatsRepository(db)
	realityRepo := postgres.NewRealityRepository(db)
	analyticsRepo := postgres.NewAnalyticsRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), cfg.Worker.StreamReadTimeout, log)
	mapboxRepo := mapbox.NewMapboxClient(&cfg.Mapbox, log)

	log.Info("Repositories initialized")

	// 6. Initialize use cases
	stationUC := usecase.NewStationUseCase(stationRepo, cacheRepo, log, cfg.Cache.StationSearchTTL)
	placeUC := usecase.NewPlaceUseCase(placeRepo, log)
	dreamUC := usecase.NewDreamUseCase(dreamRepo, stationRepo, cacheRepo, streamRepo, log)
	mapUC := usecase.NewMapLayerUseCase(dreamRepo, log)
	tileUC := usecase.NewTileUseCase(dreamRepo, cacheRepo, log, cfg.Cache.TilesCacheTTL)
	realityUC := usecase.NewRealityUseCase(realityRepo, cfg.Reality.FallbackPath, log)
	statsUC := usecase.NewStatsUseCase(statsRepo, cacheRepo, log, cfg.Cache.StatsTTL, cfg.Stats.ActivityWindowDays)
	analyticsUC := usecase.NewAnalyticsUseCase(analyticsRepo, log)
	exportUC := usecase.NewExportUseCase(mapboxRepo, cfg.Export, log)

	log.Info("Use cases initialized")

	// 7. Initialize HTTP handlers
	healthHandler := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"database": db.Health,
		"redis":    redisClient.Health,
	}, log)

	server := httpDelivery.NewServer(
		cfg,
		log,
		handler.NewStationHandler(stationUC, placeUC, log),
		handler.NewDreamHandler(dreamUC, log),
		handler.NewMapHandler(mapUC, tileUC, realityUC, log),
		handler.NewStatsHandler(statsUC, log),
		handler.NewAnalyticsHandler(analyticsUC, log),
		handler.NewExportHandler(exportUC, log),
		healthHandler,
	)

	log.Info("HTTP server initialized")

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if err := db.Close(); err != nil {
		log.Error("Failed to close PostgreSQL", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Failed to close Redis", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
