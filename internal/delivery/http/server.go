package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/config"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/delivery/http/handler"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/delivery/http/middleware"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/utils"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	stationHandler   *handler.StationHandler
	dreamHandler     *handler.DreamHandler
	mapHandler       *handler.MapHandler
	statsHandler     *handler.StatsHandler
	analyticsHandler *handler.AnalyticsHandler
	exportHandler    *handler.ExportHandler
	healthHandler    *handler.HealthHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	stationHandler *handler.StationHandler,
	dreamHandler *handler.DreamHandler,
	mapHandler *handler.MapHandler,
	statsHandler *handler.StatsHandler,
	analyticsHandler *handler.AnalyticsHandler,
	exportHandler *handler.ExportHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Pajama Party Platform",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:              app,
		config:           cfg,
		logger:           logger,
		stationHandler:   stationHandler,
		dreamHandler:     dreamHandler,
		mapHandler:       mapHandler,
		statsHandler:     statsHandler,
		analyticsHandler: analyticsHandler,
		exportHandler:    exportHandler,
		healthHandler:    healthHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App - доступ к fiber.App (тесты)
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.CORS.AllowOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		// тайлы уже сжаты, PNG не сжимается
		Next: func(c *fiber.Ctx) bool {
			path := c.Path()
			return strings.HasSuffix(path, ".pbf") || strings.HasSuffix(path, ".png")
		},
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// Статический файл сети ночных поездов
	s.app.Get("/reality-network.geojson", s.mapHandler.RealityMap)

	api := s.app.Group("/api")

	api.Get("/health", s.healthHandler.Health)

	// Stations & places
	api.Get("/stations/search", s.stationHandler.SearchStations)
	api.Get("/places/search", s.stationHandler.SearchPlaces)

	// Dreams
	api.Post("/dreams", s.dreamHandler.CreateDream)
	api.Get("/dreams", s.dreamHandler.ListDreams)
	api.Get("/dreams/geojson", s.mapHandler.DreamGeoJSON)
	api.Get("/dreams/tiles/:z/:x/:y.pbf", s.mapHandler.DreamTile)

	// Map layers
	api.Get("/critical-mass", s.mapHandler.CriticalMass)
	api.Get("/heatmap", s.mapHandler.Heatmap)
	api.Get("/reality/map", s.mapHandler.RealityMap)

	// Stats
	api.Get("/stats", s.statsHandler.GetStats)

	// Analytics
	api.Post("/analytics/events", s.analyticsHandler.TrackEvent)
	api.Get("/analytics/advocacy", s.analyticsHandler.Advocacy)

	// Export
	api.Get("/export/map.png", s.exportHandler.ExportMap)
	api.Get("/export/share", s.exportHandler.ShareLinks)

	// Mapbox public token для клиента
	api.Get("/config/mapbox", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"token": s.config.Mapbox.PublicToken,
			"style": s.config.Mapbox.Style,
		})
	})
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := err.(*fiber.Error); ok {
			logger.Warn("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", e.Code),
				zap.Error(err),
			)
			return utils.SendError(c, errors.New(httpErrorCode(e.Code), e.Message, e.Code))
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return utils.SendError(c, err)
	}
}

func httpErrorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusBadRequest:
		return "INVALID_REQUEST"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}
