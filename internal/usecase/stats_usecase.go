package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
)

// StatsUseCase обрабатывает бизнес-логику для статистики
type StatsUseCase struct {
	statsRepo    repository.StatsRepository
	cacheRepo    repository.CacheRepository
	logger       *zap.Logger
	cacheTTL     time.Duration
	activityDays int
}

// NewStatsUseCase создает новый экземпляр StatsUseCase
func NewStatsUseCase(
	statsRepo repository.StatsRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
	activityDays int,
) *StatsUseCase {
	if activityDays <= 0 {
		activityDays = 14
	}
	return &StatsUseCase{
		statsRepo:    statsRepo,
		cacheRepo:    cacheRepo,
		logger:       logger,
		cacheTTL:     cacheTTL,
		activityDays: activityDays,
	}
}

// GetStats возвращает статистику, используя кеш когда возможно
func (uc *StatsUseCase) GetStats(ctx context.Context) (*domain.PlatformStats, error) {
	// 1. Проверяем кеш
	cached, err := uc.cacheRepo.GetStats(ctx)
	if err == nil && cached != nil {
		uc.logger.Debug("Platform stats fetched from cache")
		return cached, nil
	}

	if err != nil {
		uc.logger.Warn("Failed to get stats from cache", zap.Error(err))
	}

	// 2. Получаем из БД и кешируем
	return uc.RefreshStats(ctx)
}

// RefreshStats принудительно пересчитывает статистику и обновляет кеш
func (uc *StatsUseCase) RefreshStats(ctx context.Context) (*domain.PlatformStats, error) {
	stats, err := uc.statsRepo.GetPlatformStats(ctx, uc.activityDays)
	if err != nil {
		uc.logger.Error("Failed to get platform stats", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	if err := uc.cacheRepo.SetStats(ctx, stats, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache stats", zap.Error(err))
		// Не возвращаем ошибку, т.к. данные уже получены
	}

	return stats, nil
}
