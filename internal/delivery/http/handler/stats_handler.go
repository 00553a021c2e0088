package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/utils"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase"
)

// StatsHandler обрабатывает запросы для статистики
type StatsHandler struct {
	statsUC *usecase.StatsUseCase
	logger  *zap.Logger
}

// NewStatsHandler создает новый экземпляр StatsHandler
func NewStatsHandler(statsUC *usecase.StatsUseCase, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsUC: statsUC,
		logger:  logger,
	}
}

// GetStats godoc
// @Summary Platform statistics
// @Description Общее количество мечт, активные станции, формирующиеся сообщества и активность по дням
// @Tags Statistics
// @Produce json
// @Success 200 {object} domain.PlatformStats
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/stats [get]
func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.statsUC.GetStats(c.Context())
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, stats)
}
