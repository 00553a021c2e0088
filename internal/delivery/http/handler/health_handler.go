package handler

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/utils"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase/dto"
)

// HealthCheck проверяет одну зависимость сервиса
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// HealthHandler - состояние сервиса и его зависимостей
type HealthHandler struct {
	checks map[string]HealthCheck
	logger *zap.Logger
}

func NewHealthHandler(checks map[string]HealthCheck, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: logger,
	}
}

// Health godoc
// @Summary Health check
// @Description Пингует БД и Redis. 503, если хотя бы одна зависимость недоступна.
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /api/health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := dto.HealthResponse{
		Status:   "healthy",
		Time:     time.Now().UTC(),
		Services: make(map[string]string, len(names)),
	}
	status := fiber.StatusOK

	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("service", name), zap.Error(err))
			resp.Services[name] = "down"
			resp.Status = "unhealthy"
			status = fiber.StatusServiceUnavailable
			continue
		}
		resp.Services[name] = "up"
	}

	return utils.SendJSON(c, status, resp)
}
