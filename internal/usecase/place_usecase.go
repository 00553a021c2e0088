package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase/dto"
)

const defaultPlaceLimit = 100

// PlaceUseCase - точки интереса слоя мечт
type PlaceUseCase struct {
	placeRepo repository.PlaceRepository
	logger    *zap.Logger
}

func NewPlaceUseCase(placeRepo repository.PlaceRepository, logger *zap.Logger) *PlaceUseCase {
	return &PlaceUseCase{
		placeRepo: placeRepo,
		logger:    logger,
	}
}

// Search - пустой запрос возвращает все места (до лимита)
func (uc *PlaceUseCase) Search(ctx context.Context, req dto.PlaceSearchRequest) (*dto.PlaceSearchResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPlaceLimit
	}

	places, err := uc.placeRepo.Search(ctx, strings.TrimSpace(req.Query), strings.TrimSpace(req.Category), limit)
	if err != nil {
		uc.logger.Error("Failed to search places", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	if places == nil {
		places = []domain.Place{}
	}

	return &dto.PlaceSearchResponse{Places: places}, nil
}
