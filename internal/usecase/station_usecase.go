package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase/dto"
)

const (
	// MinStationQueryLength - короче этого поиск не выполняется
	MinStationQueryLength = 2

	defaultStationLimit = 10
	maxStationLimit     = 50
)

// StationUseCase - автодополнение по справочнику станций
type StationUseCase struct {
	stationRepo repository.StationRepository
	cacheRepo   repository.CacheRepository
	logger      *zap.Logger
	cacheTTL    time.Duration
}

// NewStationUseCase - создание нового StationUseCase
func NewStationUseCase(
	stationRepo repository.StationRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *StationUseCase {
	return &StationUseCase{
		stationRepo: stationRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
		cacheTTL:    cacheTTL,
	}
}

// StationCacheKey - ключ кеша поиска: нормализованный запрос, страна, лимит
func StationCacheKey(query, country string, limit int) string {
	return fmt.Sprintf("stations:search:%s:%s:%d",
		strings.ToLower(strings.TrimSpace(query)),
		strings.ToUpper(strings.TrimSpace(country)),
		limit)
}

// Search ищет станции. Запрос короче двух символов даёт пустой список без обращения к БД
func (uc *StationUseCase) Search(ctx context.Context, req dto.StationSearchRequest) (*dto.StationSearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(query) < MinStationQueryLength {
		return &dto.StationSearchResponse{Stations: []domain.Station{}}, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultStationLimit
	}
	if limit > maxStationLimit {
		limit = maxStationLimit
	}
	country := strings.ToUpper(strings.TrimSpace(req.Country))

	// 1. Проверяем кеш
	key := StationCacheKey(query, country, limit)
	cached, err := uc.cacheRepo.Get(ctx, key)
	if err != nil {
		uc.logger.Warn("Failed to get stations from cache", zap.String("key", key), zap.Error(err))
	}
	if err == nil && cached != nil {
		var stations []domain.Station
		if err := json.Unmarshal(cached, &stations); err == nil {
			uc.logger.Debug("Stations fetched from cache", zap.String("key", key))
			return &dto.StationSearchResponse{Stations: stations}, nil
		}
		uc.logger.Warn("Failed to unmarshal cached stations", zap.String("key", key))
	}

	// 2. Ищем в БД
	stations, err := uc.stationRepo.Search(ctx, query, country, limit)
	if err != nil {
		uc.logger.Error("Failed to search stations", zap.String("query", query), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	if stations == nil {
		stations = []domain.Station{}
	}

	// 3. Кешируем
	if data, err := json.Marshal(stations); err == nil {
		if err := uc.cacheRepo.Set(ctx, key, data, uc.cacheTTL); err != nil {
			uc.logger.Warn("Failed to cache stations", zap.String("key", key), zap.Error(err))
		}
	}

	return &dto.StationSearchResponse{Stations: stations}, nil
}
