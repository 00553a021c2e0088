package repository

import (
	"context"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
)

// StatsRepository интерфейс для работы со статистикой
type StatsRepository interface {
	// GetPlatformStats возвращает агрегированную статистику.
	// activityDays - за сколько последних дней строить recent_activity
	GetPlatformStats(ctx context.Context, activityDays int) (*domain.PlatformStats, error)
}
