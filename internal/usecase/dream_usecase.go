package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/validator"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase/dto"
)

const (
	// DreamTileVersionKey - счётчик версии тайлов мечт, растёт с каждой новой мечтой
	DreamTileVersionKey = "tiles:dreams:version"

	defaultDreamLimit = 50
	maxDreamLimit     = 500
)

// DreamUseCase - приём и выдача мечт
type DreamUseCase struct {
	dreamRepo   repository.DreamRepository
	stationRepo repository.StationRepository
	cacheRepo   repository.CacheRepository
	streamRepo  repository.StreamRepository
	logger      *zap.Logger
}

// NewDreamUseCase - создание нового DreamUseCase
func NewDreamUseCase(
	dreamRepo repository.DreamRepository,
	stationRepo repository.StationRepository,
	cacheRepo repository.CacheRepository,
	streamRepo repository.StreamRepository,
	logger *zap.Logger,
) *DreamUseCase {
	return &DreamUseCase{
		dreamRepo:   dreamRepo,
		stationRepo: stationRepo,
		cacheRepo:   cacheRepo,
		streamRepo:  streamRepo,
		logger:      logger,
	}
}

// Create валидирует и сохраняет мечту. Если после вставки на станции отправления
// набралось сообщество, в ответе будет community_message.
func (uc *DreamUseCase) Create(ctx context.Context, req dto.DreamRequest) (*dto.CreateDreamResponse, error) {
	in := req.Normalize()
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	dream := domain.Dream{
		ID:                 uuid.NewString(),
		DreamerName:        in.DreamerName,
		OriginStation:      in.OriginStation,
		OriginCountry:      in.OriginCountry,
		OriginLat:          in.OriginLat,
		OriginLng:          in.OriginLng,
		DestinationCity:    in.DestinationCity,
		DestinationCountry: in.DestinationCountry,
		DestinationLat:     in.DestinationLat,
		DestinationLng:     in.DestinationLng,
	}
	if in.Email != "" {
		email := in.Email
		dream.Email = &email
	}

	// 1. Координаты станции из справочника, если клиент их не прислал
	if !dream.HasOriginCoordinates() {
		uc.geocodeOrigin(ctx, &dream)
	}

	// 2. Сохраняем
	dream.StampCreated(time.Now())
	if err := uc.dreamRepo.Create(ctx, &dream); err != nil {
		uc.logger.Error("Failed to create dream", zap.String("origin", dream.OriginStation), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	uc.logger.Info("Dream created",
		zap.String("id", dream.ID),
		zap.String("origin", dream.OriginStation),
		zap.String("destination", dream.DestinationCity))

	// 3. Проверяем сообщество
	resp := &dto.CreateDreamResponse{Success: true, Dream: dream.Public()}
	count, err := uc.dreamRepo.CountByOriginStation(ctx, dream.OriginStation)
	if err != nil {
		uc.logger.Warn("Failed to count dreams for station", zap.String("station", dream.OriginStation), zap.Error(err))
	} else if msg := domain.CommunityMessage(dream.OriginStation, count); msg != "" {
		resp.CommunityMessage = &msg
	}

	// 4. Побочные эффекты не должны ломать ответ
	uc.afterCreate(ctx, &dream)

	return resp, nil
}

func (uc *DreamUseCase) geocodeOrigin(ctx context.Context, dream *domain.Dream) {
	station, err := uc.stationRepo.FindByName(ctx, dream.OriginStation)
	if err != nil {
		uc.logger.Warn("Failed to look up origin station", zap.String("station", dream.OriginStation), zap.Error(err))
		return
	}
	if station == nil {
		return
	}

	lat, lng := station.Lat, station.Lng
	dream.OriginLat = &lat
	dream.OriginLng = &lng
	if dream.OriginCountry == nil && station.Country != "" {
		country := station.Country
		dream.OriginCountry = &country
	}
}

func (uc *DreamUseCase) afterCreate(ctx context.Context, dream *domain.Dream) {
	if err := uc.cacheRepo.InvalidateStats(ctx); err != nil {
		uc.logger.Warn("Failed to invalidate stats cache", zap.Error(err))
	}

	if _, err := uc.cacheRepo.Incr(ctx, DreamTileVersionKey); err != nil {
		uc.logger.Warn("Failed to bump dream tile version", zap.Error(err))
	}

	if uc.streamRepo == nil {
		return
	}
	event := domain.DreamSubmittedEvent{
		DreamID:         dream.ID,
		OriginStation:   dream.OriginStation,
		DestinationCity: dream.DestinationCity,
		HasCoordinates:  dream.HasOriginCoordinates(),
		SubmittedAt:     dream.CreatedAt,
	}
	if err := uc.streamRepo.PublishToStream(ctx, domain.StreamDreamSubmitted, event); err != nil {
		uc.logger.Warn("Failed to publish dream submitted event", zap.String("id", dream.ID), zap.Error(err))
	}
}

// List возвращает страницу мечт без email
func (uc *DreamUseCase) List(ctx context.Context, req dto.ListDreamsRequest) (*dto.DreamListResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultDreamLimit
	}
	if limit > maxDreamLimit {
		limit = maxDreamLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	dreams, total, err := uc.dreamRepo.List(ctx, limit, offset)
	if err != nil {
		uc.logger.Error("Failed to list dreams", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	public := make([]domain.Dream, len(dreams))
	for i, d := range dreams {
		public[i] = d.Public()
	}

	return &dto.DreamListResponse{
		Dreams: public,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}
