package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/utils"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/validator"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase/dto"
)

// MapHandler - данные слоёв карты: GeoJSON, тайлы, готовность станций, тепловая карта, сеть «Реальность»
type MapHandler struct {
	mapUC     *usecase.MapLayerUseCase
	tileUC    *usecase.TileUseCase
	realityUC *usecase.RealityUseCase
	logger    *zap.Logger
}

// NewMapHandler - создание нового MapHandler
func NewMapHandler(
	mapUC *usecase.MapLayerUseCase,
	tileUC *usecase.TileUseCase,
	realityUC *usecase.RealityUseCase,
	logger *zap.Logger,
) *MapHandler {
	return &MapHandler{
		mapUC:     mapUC,
		tileUC:    tileUC,
		realityUC: realityUC,
		logger:    logger,
	}
}

// DreamGeoJSON godoc
// @Summary GeoJSON слоя мечт
// @Description Точки отправления и линии маршрутов мечт, координаты [lng, lat]
// @Tags Map
// @Produce json
// @Success 200 {object} map[string]interface{} "FeatureCollection"
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/dreams/geojson [get]
func (h *MapHandler) DreamGeoJSON(c *fiber.Ctx) error {
	fc, err := h.mapUC.DreamGeoJSON(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fc, "application/geo+json")
}

// DreamTile godoc
// @Summary Векторный тайл мечт
// @Description Gzip MVT со слоями dreams (точки) и routes (линии)
// @Tags Map
// @Produce application/x-protobuf
// @Param z path int true "Zoom"
// @Param x path int true "X"
// @Param y path int true "Y"
// @Success 200 {file} binary
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/dreams/tiles/{z}/{x}/{y}.pbf [get]
func (h *MapHandler) DreamTile(c *fiber.Ctx) error {
	z, errZ := strconv.Atoi(c.Params("z"))
	x, errX := strconv.Atoi(c.Params("x"))
	y, errY := strconv.Atoi(strings.TrimSuffix(c.Params("y"), ".pbf"))
	if errZ != nil || errX != nil || errY != nil {
		return utils.SendError(c, errors.ErrInvalidTileCoordinates)
	}

	tile, err := h.tileUC.GetDreamTile(c.Context(), z, x, y)
	if err != nil {
		h.logger.Error("Failed to get dream tile",
			zap.Int("z", z),
			zap.Int("x", x),
			zap.Int("y", y),
			zap.Error(err))
		return utils.SendError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/x-protobuf")
	c.Set(fiber.HeaderContentEncoding, "gzip")
	c.Set(fiber.HeaderCacheControl, "public, max-age=60")
	return c.Send(tile)
}

// CriticalMass godoc
// @Summary Готовность станций
// @Description Станции по убыванию количества мечт с уровнем готовности (critical/high/medium/low)
// @Tags Map
// @Produce json
// @Param limit query int false "Максимум станций" default(100)
// @Success 200 {object} dto.CriticalMassResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/critical-mass [get]
func (h *MapHandler) CriticalMass(c *fiber.Ctx) error {
	var req dto.CriticalMassRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.mapUC.CriticalMass(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}

// Heatmap godoc
// @Summary Тепловая карта спроса
// @Description Точки вдоль маршрутов мечт с весом 0.7*спрос + 0.3*популярность
// @Tags Map
// @Produce json
// @Param samples query int false "Точек на маршрут" default(10)
// @Success 200 {object} dto.HeatmapResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/heatmap [get]
func (h *MapHandler) Heatmap(c *fiber.Ctx) error {
	var req dto.HeatmapRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.mapUC.Heatmap(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}

// RealityMap godoc
// @Summary Сеть ночных поездов
// @Description Действующие станции и маршруты. Если БД недоступна, отдаётся статический файл.
// @Tags Map
// @Produce json
// @Success 200 {object} dto.RealityMapResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/reality/map [get]
// @Router /reality-network.geojson [get]
func (h *MapHandler) RealityMap(c *fiber.Ctx) error {
	result, err := h.realityUC.GetMap(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}
