package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
)

const (
	statsKey = "stats:current"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		r.logger.Error("Failed to set cache key if absent", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache setnx error: %w", err)
	}
	return ok, nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return val > 0, nil
}

func (r *cacheRepository) Incr(ctx context.Context, key string) (int64, error) {
	val, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to increment counter", zap.String("key", key), zap.Error(err))
		return 0, fmt.Errorf("cache incr error: %w", err)
	}
	return val, nil
}

func tileKey(version int64, z, x, y int) string {
	return fmt.Sprintf("tile:dreams:v%d:%d:%d:%d", version, z, x, y)
}

func (r *cacheRepository) GetTile(ctx context.Context, version int64, z, x, y int) ([]byte, error) {
	return r.Get(ctx, tileKey(version, z, x, y))
}

func (r *cacheRepository) SetTile(ctx context.Context, version int64, z, x, y int, data []byte, ttl time.Duration) error {
	return r.Set(ctx, tileKey(version, z, x, y), data, ttl)
}

// GetStats получает статистику из кеша
func (r *cacheRepository) GetStats(ctx context.Context) (*domain.PlatformStats, error) {
	data, err := r.Get(ctx, statsKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var stats domain.PlatformStats
	if err := json.Unmarshal(data, &stats); err != nil {
		r.logger.Error("Failed to unmarshal stats from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}

	return &stats, nil
}

// SetStats сохраняет статистику в кеше
func (r *cacheRepository) SetStats(ctx context.Context, stats *domain.PlatformStats, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		r.logger.Error("Failed to marshal stats", zap.Error(err))
		return fmt.Errorf("marshal stats: %w", err)
	}

	return r.Set(ctx, statsKey, data, ttl)
}

func (r *cacheRepository) InvalidateStats(ctx context.Context) error {
	return r.Delete(ctx, statsKey)
}
