package repository

import (
	"context"
	"time"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу. nil, nil - промах
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX атомарно записывает значение, только если ключа ещё нет.
	// true - ключ записан этим вызовом
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// Exists проверяет существование ключа
	Exists(ctx context.Context, key string) (bool, error)

	// Incr атомарно увеличивает счётчик и возвращает новое значение
	Incr(ctx context.Context, key string) (int64, error)

	// GetTile получает тайл мечт указанной версии из кеша
	GetTile(ctx context.Context, version int64, z, x, y int) ([]byte, error)

	// SetTile сохраняет тайл в кеше
	SetTile(ctx context.Context, version int64, z, x, y int, data []byte, ttl time.Duration) error

	// GetStats получает статистику из кеша
	GetStats(ctx context.Context) (*domain.PlatformStats, error)

	// SetStats сохраняет статистику в кеше
	SetStats(ctx context.Context, stats *domain.PlatformStats, ttl time.Duration) error

	// InvalidateStats сбрасывает закешированную статистику
	InvalidateStats(ctx context.Context) error
}
