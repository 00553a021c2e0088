package repository

import (
	"context"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
)

// AnalyticsRepository хранит события телеметрии и строит сводки для кампании
type AnalyticsRepository interface {
	// SaveEvent сохраняет событие
	SaveEvent(ctx context.Context, event *domain.AnalyticsEvent) error

	// GetAdvocacySummary возвращает топ станций, направлений и коридоров
	GetAdvocacySummary(ctx context.Context, limit int) (*domain.AdvocacySummary, error)
}
