package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	apperrors "github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase/dto"
)

func TestAnalyticsUseCase_Track(t *testing.T) {
	ctx := context.Background()

	t.Run("dropped without consent", func(t *testing.T) {
		repo := &MockAnalyticsRepository{}
		uc := usecase.NewAnalyticsUseCase(repo, zap.NewNop())

		resp, err := uc.Track(ctx, dto.AnalyticsEventRequest{EventType: "dream_submitted"})
		require.NoError(t, err)
		assert.False(t, resp.Accepted)
		assert.Empty(t, resp.ID)
		repo.AssertNotCalled(t, "SaveEvent", mock.Anything, mock.Anything)
	})

	t.Run("accepted with consent", func(t *testing.T) {
		repo := &MockAnalyticsRepository{}
		uc := usecase.NewAnalyticsUseCase(repo, zap.NewNop())

		repo.On("SaveEvent", ctx, mock.MatchedBy(func(e *domain.AnalyticsEvent) bool {
			return e.EventType == "layer_switched" && e.SessionID == "s-1" && e.ID != "" && !e.CreatedAt.IsZero()
		})).Return(nil)

		resp, err := uc.Track(ctx, dto.AnalyticsEventRequest{
			EventType:  "layer_switched",
			SessionID:  "s-1",
			Properties: map[string]interface{}{"to": "reality"},
			Consent:    true,
		})
		require.NoError(t, err)
		assert.True(t, resp.Accepted)
		assert.NotEmpty(t, resp.ID)
		repo.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		repo := &MockAnalyticsRepository{}
		uc := usecase.NewAnalyticsUseCase(repo, zap.NewNop())

		_, err := uc.Track(ctx, dto.AnalyticsEventRequest{Consent: true})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("database error", func(t *testing.T) {
		repo := &MockAnalyticsRepository{}
		uc := usecase.NewAnalyticsUseCase(repo, zap.NewNop())

		repo.On("SaveEvent", ctx, mock.Anything).Return(errors.New("boom"))

		_, err := uc.Track(ctx, dto.AnalyticsEventRequest{EventType: "x", Consent: true})
		assert.ErrorIs(t, err, apperrors.ErrDatabaseError)
	})
}

func TestAnalyticsUseCase_Advocacy(t *testing.T) {
	ctx := context.Background()

	t.Run("default limit", func(t *testing.T) {
		repo := &MockAnalyticsRepository{}
		uc := usecase.NewAnalyticsUseCase(repo, zap.NewNop())

		summary := &domain.AdvocacySummary{TopOrigins: []domain.RankedItem{{Name: "Berlin Hbf", Count: 12}}}
		repo.On("GetAdvocacySummary", ctx, 10).Return(summary, nil)

		got, err := uc.Advocacy(ctx, dto.AdvocacyRequest{})
		require.NoError(t, err)
		assert.Equal(t, "Berlin Hbf", got.TopOrigins[0].Name)
	})

	t.Run("database error", func(t *testing.T) {
		repo := &MockAnalyticsRepository{}
		uc := usecase.NewAnalyticsUseCase(repo, zap.NewNop())

		repo.On("GetAdvocacySummary", ctx, 3).Return(nil, errors.New("boom"))

		_, err := uc.Advocacy(ctx, dto.AdvocacyRequest{Limit: 3})
		assert.ErrorIs(t, err, apperrors.ErrDatabaseError)
	})
}
