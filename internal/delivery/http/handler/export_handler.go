package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/utils"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase/dto"
)

// ExportHandler - картинка карты и ссылки «поделиться»
type ExportHandler struct {
	exportUC *usecase.ExportUseCase
	logger   *zap.Logger
}

func NewExportHandler(exportUC *usecase.ExportUseCase, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		exportUC: exportUC,
		logger:   logger,
	}
}

// ExportMap godoc
// @Summary PNG карты для соцсетей
// @Description Снимок карты с заголовком, водяным знаком и атрибуцией
// @Tags Export
// @Produce image/png
// @Param lat query number true "Широта центра"
// @Param lng query number true "Долгота центра"
// @Param zoom query number true "Zoom"
// @Param width query int false "Ширина" default(1200)
// @Param height query int false "Высота" default(630)
// @Param title query string false "Заголовок"
// @Param subtitle query string false "Подзаголовок"
// @Param style query string false "Стиль Mapbox (username/style_id)"
// @Success 200 {file} binary
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/export/map.png [get]
func (h *ExportHandler) ExportMap(c *fiber.Ctx) error {
	var req dto.ExportMapRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	result, err := h.exportUC.ExportMap(c.Context(), req)
	if err != nil {
		h.logger.Warn("Map export failed", zap.Error(err))
		return utils.SendError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", result.Filename))
	return c.Send(result.PNG)
}

// ShareLinks godoc
// @Summary Ссылки «поделиться»
// @Description Готовые ссылки для X/Twitter, Facebook, LinkedIn, WhatsApp, Telegram и email
// @Tags Export
// @Produce json
// @Param url query string false "Адрес страницы"
// @Param text query string false "Текст"
// @Success 200 {object} dto.ShareLinksResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/export/share [get]
func (h *ExportHandler) ShareLinks(c *fiber.Ctx) error {
	var req dto.ShareLinksRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	result, err := h.exportUC.ShareLinks(req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}
