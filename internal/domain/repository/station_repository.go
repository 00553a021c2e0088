package repository

import (
	"context"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
)

// StationRepository - справочник станций (только чтение)
type StationRepository interface {
	// Search ищет станции по названию или городу. country - ISO код, пустой = без фильтра
	Search(ctx context.Context, query, country string, limit int) ([]domain.Station, error)

	// FindByName возвращает станцию по точному названию, nil если не найдена
	FindByName(ctx context.Context, name string) (*domain.Station, error)
}

// PlaceRepository - подобранные точки интереса
type PlaceRepository interface {
	// Search ищет места по названию, городу или описанию с фильтром по категории
	Search(ctx context.Context, query, category string, limit int) ([]domain.Place, error)
}
