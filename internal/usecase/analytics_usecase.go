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

const defaultAdvocacyLimit = 10

// AnalyticsUseCase - телеметрия по согласию и сводки для кампании
type AnalyticsUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	logger        *zap.Logger
}

func NewAnalyticsUseCase(analyticsRepo repository.AnalyticsRepository, logger *zap.Logger) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		analyticsRepo: analyticsRepo,
		logger:        logger,
	}
}

// Track сохраняет событие. Без согласия событие отбрасывается: Accepted=false, ошибки нет
func (uc *AnalyticsUseCase) Track(ctx context.Context, req dto.AnalyticsEventRequest) (*dto.AnalyticsEventResponse, error) {
	if !req.Consent {
		uc.logger.Debug("Analytics event dropped without consent", zap.String("event_type", req.EventType))
		return &dto.AnalyticsEventResponse{Accepted: false}, nil
	}

	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	event := &domain.AnalyticsEvent{
		ID:         uuid.NewString(),
		EventType:  req.EventType,
		SessionID:  req.SessionID,
		Properties: req.Properties,
		CreatedAt:  time.Now().UTC(),
	}

	if err := uc.analyticsRepo.SaveEvent(ctx, event); err != nil {
		uc.logger.Error("Failed to save analytics event", zap.String("event_type", req.EventType), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	return &dto.AnalyticsEventResponse{Accepted: true, ID: event.ID}, nil
}

// Advocacy - топ станций, направлений и коридоров
func (uc *AnalyticsUseCase) Advocacy(ctx context.Context, req dto.AdvocacyRequest) (*domain.AdvocacySummary, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultAdvocacyLimit
	}

	summary, err := uc.analyticsRepo.GetAdvocacySummary(ctx, limit)
	if err != nil {
		uc.logger.Error("Failed to build advocacy summary", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return summary, nil
}
