package repository

import (
	"context"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
)

// MapboxRepository определяет методы для работы с Mapbox API
type MapboxRepository interface {
	// StaticImage возвращает снимок карты (PNG) для экспорта
	StaticImage(ctx context.Context, req domain.StaticMapRequest) ([]byte, error)
}
