package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase/dto"
	"github.com/giovanto/pyjama-party-platform-sub000/pkg/mapview"
)

// RealityUseCase - сеть действующих ночных поездов.
// Если БД недоступна или пуста, отдаётся статический GeoJSON.
type RealityUseCase struct {
	realityRepo  repository.RealityRepository
	fallbackPath string
	logger       *zap.Logger

	fallbackOnce sync.Once
	fallback     *dto.RealityMapResponse
	fallbackErr  error
}

func NewRealityUseCase(realityRepo repository.RealityRepository, fallbackPath string, logger *zap.Logger) *RealityUseCase {
	return &RealityUseCase{
		realityRepo:  realityRepo,
		fallbackPath: fallbackPath,
		logger:       logger,
	}
}

// GetMap возвращает станции и маршруты как две FeatureCollection
func (uc *RealityUseCase) GetMap(ctx context.Context) (*dto.RealityMapResponse, error) {
	network, err := uc.realityRepo.GetNetwork(ctx)
	if err == nil && network != nil && (len(network.Stations) > 0 || len(network.Routes) > 0) {
		stations, routes := mapview.RealityFeatures(*network)
		return &dto.RealityMapResponse{
			Stations: stations,
			Routes:   routes,
			Source:   dto.RealitySourceDatabase,
		}, nil
	}

	if err != nil {
		uc.logger.Warn("Failed to load reality network, using fallback", zap.Error(err))
	}

	fallback, ferr := uc.loadFallback()
	if ferr != nil {
		uc.logger.Error("Reality fallback unavailable", zap.String("path", uc.fallbackPath), zap.Error(ferr))
		return nil, errors.ErrRealityUnavailable
	}
	return fallback, nil
}

// loadFallback читает файл один раз; формат {"stations": FeatureCollection, "routes": FeatureCollection}
func (uc *RealityUseCase) loadFallback() (*dto.RealityMapResponse, error) {
	uc.fallbackOnce.Do(func() {
		if uc.fallbackPath == "" {
			uc.fallbackErr = fmt.Errorf("fallback path is not configured")
			return
		}

		data, err := os.ReadFile(uc.fallbackPath)
		if err != nil {
			uc.fallbackErr = fmt.Errorf("read fallback: %w", err)
			return
		}

		var resp dto.RealityMapResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			uc.fallbackErr = fmt.Errorf("parse fallback: %w", err)
			return
		}
		if resp.Stations == nil || resp.Routes == nil {
			uc.fallbackErr = fmt.Errorf("fallback must contain stations and routes")
			return
		}

		resp.Source = dto.RealitySourceFallback
		uc.fallback = &resp
	})

	return uc.fallback, uc.fallbackErr
}
