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

// AnalyticsHandler - события телеметрии и сводки для кампании
type AnalyticsHandler struct {
	analyticsUC *usecase.AnalyticsUseCase
	logger      *zap.Logger
}

func NewAnalyticsHandler(analyticsUC *usecase.AnalyticsUseCase, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsUC: analyticsUC,
		logger:      logger,
	}
}

// TrackEvent godoc
// @Summary Событие аналитики
// @Description Сохраняет событие только при consent=true. Без согласия событие отбрасывается с 204.
// @Tags Analytics
// @Accept json
// @Produce json
// @Param request body dto.AnalyticsEventRequest true "Событие"
// @Success 202 {object} dto.AnalyticsEventResponse
// @Success 204 "Событие отброшено без согласия"
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/analytics/events [post]
func (h *AnalyticsHandler) TrackEvent(c *fiber.Ctx) error {
	var req dto.AnalyticsEventRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	result, err := h.analyticsUC.Track(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	if !result.Accepted {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return utils.SendJSON(c, fiber.StatusAccepted, result)
}

// Advocacy godoc
// @Summary Сводка для кампании
// @Description Топ станций отправления, направлений и коридоров, счётчики событий
// @Tags Analytics
// @Produce json
// @Param limit query int false "Размер топов" default(10)
// @Success 200 {object} domain.AdvocacySummary
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/analytics/advocacy [get]
func (h *AnalyticsHandler) Advocacy(c *fiber.Ctx) error {
	var req dto.AdvocacyRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.analyticsUC.Advocacy(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}
