package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase/dto"
	"github.com/giovanto/pyjama-party-platform-sub000/pkg/mapview"
)

const (
	defaultCriticalMassLimit = 100
	// allDreams - слой мечт показывает каждую мечту с координатами
	allDreams = 0
)

// MapLayerUseCase отдаёт данные для слоёв карты: GeoJSON мечт, готовность станций и тепловую карту
type MapLayerUseCase struct {
	dreamRepo repository.DreamRepository
	logger    *zap.Logger

	// мемо тепловой карты: пересчёт только при изменении набора маршрутов
	heatMu     sync.Mutex
	heatKey    string
	heatPoints []mapview.HeatPoint
	heatRuns   int
}

func NewMapLayerUseCase(dreamRepo repository.DreamRepository, logger *zap.Logger) *MapLayerUseCase {
	return &MapLayerUseCase{
		dreamRepo: dreamRepo,
		logger:    logger,
	}
}

// DreamGeoJSON - точки отправления и линии маршрутов одной коллекцией
func (uc *MapLayerUseCase) DreamGeoJSON(ctx context.Context) (*geojson.FeatureCollection, error) {
	dreams, err := uc.dreamRepo.ListWithCoordinates(ctx, allDreams)
	if err != nil {
		uc.logger.Error("Failed to load dreams for map", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return mapview.DreamFeatures(dreams), nil
}

// CriticalMass - станции по убыванию количества мечт с уровнем готовности
func (uc *MapLayerUseCase) CriticalMass(ctx context.Context, req dto.CriticalMassRequest) (*dto.CriticalMassResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultCriticalMassLimit
	}

	counts, err := uc.dreamRepo.OriginStationCounts(ctx, limit)
	if err != nil {
		uc.logger.Error("Failed to count dreams by station", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	entries := domain.BuildCriticalMass(counts)
	return &dto.CriticalMassResponse{
		Stations: entries,
		Total:    len(entries),
	}, nil
}

// Heatmap строит облако точек по маршрутам мечт
func (uc *MapLayerUseCase) Heatmap(ctx context.Context, req dto.HeatmapRequest) (*dto.HeatmapResponse, error) {
	dreams, err := uc.dreamRepo.ListWithCoordinates(ctx, allDreams)
	if err != nil {
		uc.logger.Error("Failed to load dreams for heatmap", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	routes := domain.RoutesFromDreams(dreams)
	key := fmt.Sprintf("%d|%s", req.Samples, mapview.RoutesKey(routes))

	uc.heatMu.Lock()
	defer uc.heatMu.Unlock()

	if key != uc.heatKey {
		uc.heatPoints = mapview.ComputeHeatPoints(routes, req.Samples)
		uc.heatKey = key
		uc.heatRuns++
		uc.logger.Debug("Heatmap recomputed",
			zap.Int("routes", len(routes)),
			zap.Int("points", len(uc.heatPoints)))
	}

	return &dto.HeatmapResponse{
		Points: uc.heatPoints,
		Count:  len(uc.heatPoints),
		Routes: len(routes),
	}, nil
}

// HeatmapComputations - сколько раз пересчитывалась тепловая карта
func (uc *MapLayerUseCase) HeatmapComputations() int {
	uc.heatMu.Lock()
	defer uc.heatMu.Unlock()
	return uc.heatRuns
}
