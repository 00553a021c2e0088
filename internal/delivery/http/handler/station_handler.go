package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/utils"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/validator"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase/dto"
)

// StationHandler - автодополнение станций и поиск мест
type StationHandler struct {
	stationUC *usecase.StationUseCase
	placeUC   *usecase.PlaceUseCase
	logger    *zap.Logger
}

// NewStationHandler - создание нового StationHandler
func NewStationHandler(stationUC *usecase.StationUseCase, placeUC *usecase.PlaceUseCase, logger *zap.Logger) *StationHandler {
	return &StationHandler{
		stationUC: stationUC,
		placeUC:   placeUC,
		logger:    logger,
	}
}

// SearchStations godoc
// @Summary Поиск станций
// @Description Автодополнение по названию станции или города. Запрос короче 2 символов возвращает пустой список.
// @Tags Stations
// @Produce json
// @Param q query string true "Поисковый запрос"
// @Param country query string false "ISO код страны"
// @Param limit query int false "Максимум результатов" default(10)
// @Success 200 {object} dto.StationSearchResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/stations/search [get]
func (h *StationHandler) SearchStations(c *fiber.Ctx) error {
	var req dto.StationSearchRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.stationUC.Search(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}

// SearchPlaces godoc
// @Summary Поиск мест
// @Description Подобранные точки интереса для слоя мечт с фильтром по категории
// @Tags Places
// @Produce json
// @Param q query string false "Поисковый запрос"
// @Param category query string false "Категория"
// @Param limit query int false "Максимум результатов" default(100)
// @Success 200 {object} dto.PlaceSearchResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/places/search [get]
func (h *StationHandler) SearchPlaces(c *fiber.Ctx) error {
	var req dto.PlaceSearchRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.placeUC.Search(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}
