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

// DreamHandler - приём и выдача мечт
type DreamHandler struct {
	dreamUC *usecase.DreamUseCase
	logger  *zap.Logger
}

// NewDreamHandler - создание нового DreamHandler
func NewDreamHandler(dreamUC *usecase.DreamUseCase, logger *zap.Logger) *DreamHandler {
	return &DreamHandler{
		dreamUC: dreamUC,
		logger:  logger,
	}
}

// CreateDream godoc
// @Summary Отправить мечту
// @Description Сохраняет маршрут мечты. Принимает snake_case (dreamer_name, origin_station, destination_city) и старые имена (dreamerName, from, to). Если на станции набралось сообщество, в ответе будет community_message.
// @Tags Dreams
// @Accept json
// @Produce json
// @Param request body dto.DreamRequest true "Мечта"
// @Success 201 {object} dto.CreateDreamResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/dreams [post]
func (h *DreamHandler) CreateDream(c *fiber.Ctx) error {
	var req dto.DreamRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("Invalid dream body", zap.Error(err))
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	result, err := h.dreamUC.Create(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, result)
}

// ListDreams godoc
// @Summary Список мечт
// @Description Страница мечт, новые первыми. Email не возвращается.
// @Tags Dreams
// @Produce json
// @Param limit query int false "Размер страницы" default(50)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} dto.DreamListResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/dreams [get]
func (h *DreamHandler) ListDreams(c *fiber.Ctx) error {
	var req dto.ListDreamsRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.dreamUC.List(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}
