package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/simplify"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/utils"
	"github.com/giovanto/pyjama-party-platform-sub000/pkg/mapview"
)

const (
	// DreamTileLayer и DreamRouteTileLayer - имена слоёв внутри MVT
	DreamTileLayer      = "dreams"
	DreamRouteTileLayer = "routes"
)

// TileUseCase генерирует векторные тайлы мечт
type TileUseCase struct {
	dreamRepo    repository.DreamRepository
	cacheRepo    repository.CacheRepository
	logger       *zap.Logger
	tileCacheTTL time.Duration
}

func NewTileUseCase(
	dreamRepo repository.DreamRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	tileCacheTTL time.Duration,
) *TileUseCase {
	return &TileUseCase{
		dreamRepo:    dreamRepo,
		cacheRepo:    cacheRepo,
		logger:       logger,
		tileCacheTTL: tileCacheTTL,
	}
}

// GetDreamTile возвращает gzip MVT с точками отправления и линиями маршрутов.
// Кеш версионируется счётчиком DreamTileVersionKey, который увеличивается при каждой новой мечте.
func (uc *TileUseCase) GetDreamTile(ctx context.Context, z, x, y int) ([]byte, error) {
	if !utils.ValidateTile(z, x, y) {
		return nil, errors.ErrInvalidTileCoordinates
	}

	// 1. Текущая версия тайлов
	version := uc.tileVersion(ctx)

	// 2. Проверяем кеш
	cached, err := uc.cacheRepo.GetTile(ctx, version, z, x, y)
	if err == nil && cached != nil {
		uc.logger.Debug("Dream tile fetched from cache",
			zap.Int("z", z), zap.Int("x", x), zap.Int("y", y))
		return cached, nil
	}
	if err != nil {
		uc.logger.Warn("Failed to get tile from cache", zap.Error(err))
	}

	// 3. Собираем тайл из БД
	dreams, err := uc.dreamRepo.ListWithCoordinates(ctx, allDreams)
	if err != nil {
		uc.logger.Error("Failed to load dreams for tile", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	tile := maptile.New(uint32(x), uint32(y), maptile.Zoom(z))
	points, lines := mapview.SplitByGeometry(mapview.DreamFeatures(dreams))

	data, err := encodeTile(tile, map[string]*geojson.FeatureCollection{
		DreamTileLayer:      points,
		DreamRouteTileLayer: lines,
	})
	if err != nil {
		uc.logger.Error("Failed to encode dream tile", zap.Error(err))
		return nil, errors.ErrInternalServer
	}

	// 4. Сохраняем в кеш
	if err := uc.cacheRepo.SetTile(ctx, version, z, x, y, data, uc.tileCacheTTL); err != nil {
		uc.logger.Warn("Failed to cache tile", zap.Error(err))
	}

	return data, nil
}

func (uc *TileUseCase) tileVersion(ctx context.Context) int64 {
	raw, err := uc.cacheRepo.Get(ctx, DreamTileVersionKey)
	if err != nil {
		uc.logger.Warn("Failed to read tile version", zap.Error(err))
		return 0
	}
	if raw == nil {
		return 0
	}

	version, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0
	}
	return version
}

// encodeTile отбирает фичи тайла и кодирует слои в gzip protobuf
func encodeTile(tile maptile.Tile, collections map[string]*geojson.FeatureCollection) ([]byte, error) {
	bound := tile.Bound()
	layers := make(mvt.Layers, 0, len(collections))

	for _, name := range []string{DreamTileLayer, DreamRouteTileLayer} {
		fc := collections[name]
		if fc == nil {
			continue
		}

		// Clip и ProjectToTile меняют геометрию на месте, поэтому в слой попадают только фичи тайла
		inTile := geojson.NewFeatureCollection()
		for _, f := range fc.Features {
			if f.Geometry == nil || !f.Geometry.Bound().Intersects(bound) {
				continue
			}
			if p, ok := f.Geometry.(orb.Point); ok && !bound.Contains(p) {
				continue
			}
			inTile.Append(f)
		}

		layer := mvt.NewLayer(name, inTile)
		if tile.Z < 8 {
			layer.Simplify(simplify.DouglasPeucker(simplifyEpsilon(tile.Z)))
		}
		layer.Clip(bound)
		layer.ProjectToTile(tile)
		layer.RemoveEmpty(0.5, 0.5)

		layers = append(layers, layer)
	}

	return mvt.MarshalGzipped(layers)
}

// simplifyEpsilon - допуск упрощения в градусах для мелких масштабов
func simplifyEpsilon(z maptile.Zoom) float64 {
	switch {
	case z < 4:
		return 0.05
	case z < 6:
		return 0.01
	default:
		return 0.001
	}
}
