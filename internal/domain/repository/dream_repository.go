package repository

import (
	"context"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
)

// DreamRepository определяет методы для работы с мечтами
type DreamRepository interface {
	// Create сохраняет мечту. ID и даты должны быть уже заполнены
	Create(ctx context.Context, dream *domain.Dream) error

	// List возвращает страницу мечт (новые первыми) и общее количество
	List(ctx context.Context, limit, offset int) ([]domain.Dream, int, error)

	// CountByOriginStation считает мечты с указанной станции отправления (точное совпадение)
	CountByOriginStation(ctx context.Context, station string) (int, error)

	// ListWithCoordinates возвращает мечты с координатами станции отправления,
	// новые первыми. limit <= 0 - все такие мечты.
	ListWithCoordinates(ctx context.Context, limit int) ([]domain.Dream, error)

	// OriginStationCounts агрегирует количество мечт по станциям отправления
	OriginStationCounts(ctx context.Context, limit int) ([]domain.StationDreamCount, error)
}
