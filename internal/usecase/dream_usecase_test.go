package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	apperrors "github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/usecase/dto"
)

type dreamMocks struct {
	dreams   *MockDreamRepository
	stations *MockStationRepository
	cache    *MockCacheRepository
	stream   *MockStreamRepository
}

func newDreamUseCase() (*usecase.DreamUseCase, dreamMocks) {
	m := dreamMocks{
		dreams:   &MockDreamRepository{},
		stations: &MockStationRepository{},
		cache:    &MockCacheRepository{},
		stream:   &MockStreamRepository{},
	}
	uc := usecase.NewDreamUseCase(m.dreams, m.stations, m.cache, m.stream, zap.NewNop())
	return uc, m
}

func (m dreamMocks) expectSideEffects(ctx context.Context) {
	m.cache.On("InvalidateStats", ctx).Return(nil)
	m.cache.On("Incr", ctx, usecase.DreamTileVersionKey).Return(int64(1), nil)
	m.stream.On("PublishToStream", ctx, domain.StreamDreamSubmitted, mock.AnythingOfType("domain.DreamSubmittedEvent")).Return(nil)
}

func TestDreamUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("first dream at station has no community message", func(t *testing.T) {
		uc, m := newDreamUseCase()

		m.dreams.On("Create", ctx, mock.MatchedBy(func(d *domain.Dream) bool {
			return d.DreamerName == "Alice" &&
				d.OriginStation == "Berlin Hbf" &&
				d.DestinationCity == "Barcelona" &&
				d.ID != "" &&
				d.ExpiresAt.Sub(d.CreatedAt) == domain.DreamRetention
		})).Return(nil)
		m.dreams.On("CountByOriginStation", ctx, "Berlin Hbf").Return(1, nil)
		m.expectSideEffects(ctx)

		resp, err := uc.Create(ctx, dto.DreamRequest{
			DreamerName:     " Alice ",
			OriginStation:   "Berlin Hbf",
			OriginLat:       ptrFloat64(52.525),
			OriginLng:       ptrFloat64(13.369),
			DestinationCity: "Barcelona",
		})

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.CommunityMessage)
		assert.Equal(t, "Alice", resp.Dream.DreamerName)
		m.stations.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
		m.dreams.AssertExpectations(t)
		m.cache.AssertExpectations(t)
		m.stream.AssertExpectations(t)
	})

	t.Run("second dream forms a community", func(t *testing.T) {
		uc, m := newDreamUseCase()

		m.stations.On("FindByName", ctx, "Wien Hbf").Return(&domain.Station{Name: "Wien Hbf", Country: "AT", Lat: 48.185, Lng: 16.376}, nil)
		m.dreams.On("Create", ctx, mock.MatchedBy(func(d *domain.Dream) bool {
			return d.HasOriginCoordinates() && *d.OriginLat == 48.185 && d.OriginCountry != nil && *d.OriginCountry == "AT"
		})).Return(nil)
		m.dreams.On("CountByOriginStation", ctx, "Wien Hbf").Return(2, nil)
		m.expectSideEffects(ctx)

		resp, err := uc.Create(ctx, dto.DreamRequest{
			DreamerNameAlt: "Bob",
			From:           "Wien Hbf",
			To:             "Paris",
		})

		require.NoError(t, err)
		require.NotNil(t, resp.CommunityMessage)
		assert.Contains(t, *resp.CommunityMessage, "Wien Hbf")
	})

	t.Run("email is never returned", func(t *testing.T) {
		uc, m := newDreamUseCase()

		m.stations.On("FindByName", ctx, "Milano Centrale").Return(nil, nil)
		m.dreams.On("Create", ctx, mock.MatchedBy(func(d *domain.Dream) bool {
			return d.Email != nil && *d.Email == "carla@example.com"
		})).Return(nil)
		m.dreams.On("CountByOriginStation", ctx, "Milano Centrale").Return(1, nil)
		m.expectSideEffects(ctx)

		resp, err := uc.Create(ctx, dto.DreamRequest{
			DreamerName:     "Carla",
			OriginStation:   "Milano Centrale",
			DestinationCity: "Stockholm",
			Email:           "carla@example.com",
			JoinPajamaParty: true,
		})

		require.NoError(t, err)
		assert.Nil(t, resp.Dream.Email)
	})

	t.Run("validation errors", func(t *testing.T) {
		cases := []struct {
			name string
			req  dto.DreamRequest
		}{
			{"missing name", dto.DreamRequest{OriginStation: "A", DestinationCity: "B"}},
			{"blank origin", dto.DreamRequest{DreamerName: "A", OriginStation: "   ", DestinationCity: "B"}},
			{"missing destination", dto.DreamRequest{DreamerName: "A", OriginStation: "B"}},
			{"party without email", dto.DreamRequest{DreamerName: "A", OriginStation: "B", DestinationCity: "C", JoinPajamaParty: true}},
			{"invalid email", dto.DreamRequest{DreamerName: "A", OriginStation: "B", DestinationCity: "C", Email: "not-an-email"}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				uc, m := newDreamUseCase()

				resp, err := uc.Create(ctx, tc.req)
				assert.Nil(t, resp)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				m.dreams.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("database failure", func(t *testing.T) {
		uc, m := newDreamUseCase()

		m.stations.On("FindByName", ctx, "Praha hl.n.").Return(nil, errors.New("lookup failed"))
		m.dreams.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))

		_, err := uc.Create(ctx, dto.DreamRequest{DreamerName: "D", OriginStation: "Praha hl.n.", DestinationCity: "Roma"})
		assert.ErrorIs(t, err, apperrors.ErrDatabaseError)
		m.stream.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("side effect failures do not fail the request", func(t *testing.T) {
		uc, m := newDreamUseCase()

		m.dreams.On("Create", ctx, mock.Anything).Return(nil)
		m.dreams.On("CountByOriginStation", ctx, "Zürich HB").Return(0, errors.New("count failed"))
		m.cache.On("InvalidateStats", ctx).Return(errors.New("redis down"))
		m.cache.On("Incr", ctx, usecase.DreamTileVersionKey).Return(int64(0), errors.New("redis down"))
		m.stream.On("PublishToStream", ctx, domain.StreamDreamSubmitted, mock.Anything).Return(errors.New("redis down"))

		resp, err := uc.Create(ctx, dto.DreamRequest{
			DreamerName:     "E",
			OriginStation:   "Zürich HB",
			OriginLat:       ptrFloat64(47.378),
			OriginLng:       ptrFloat64(8.540),
			DestinationCity: "Amsterdam",
		})

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.CommunityMessage)
	})

	t.Run("no stream configured", func(t *testing.T) {
		dreams := &MockDreamRepository{}
		cache := &MockCacheRepository{}
		uc := usecase.NewDreamUseCase(dreams, &MockStationRepository{}, cache, nil, zap.NewNop())

		dreams.On("Create", ctx, mock.Anything).Return(nil)
		dreams.On("CountByOriginStation", ctx, "Köln Hbf").Return(1, nil)
		cache.On("InvalidateStats", ctx).Return(nil)
		cache.On("Incr", ctx, usecase.DreamTileVersionKey).Return(int64(3), nil)

		_, err := uc.Create(ctx, dto.DreamRequest{
			DreamerName:     "F",
			OriginStation:   "Köln Hbf",
			OriginLat:       ptrFloat64(50.943),
			OriginLng:       ptrFloat64(6.958),
			DestinationCity: "Venezia",
		})
		require.NoError(t, err)
	})
}

func TestDreamUseCase_List(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults and hides email", func(t *testing.T) {
		uc, m := newDreamUseCase()

		email := "x@example.com"
		m.dreams.On("List", ctx, 50, 0).Return([]domain.Dream{
			{ID: "1", DreamerName: "A", Email: &email, CreatedAt: time.Now()},
		}, 1, nil)

		resp, err := uc.List(ctx, dto.ListDreamsRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, 50, resp.Limit)
		require.Len(t, resp.Dreams, 1)
		assert.Nil(t, resp.Dreams[0].Email)
	})

	t.Run("limit is clamped", func(t *testing.T) {
		uc, m := newDreamUseCase()

		m.dreams.On("List", ctx, 500, 10).Return([]domain.Dream{}, 0, nil)

		resp, err := uc.List(ctx, dto.ListDreamsRequest{Limit: 10000, Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, 500, resp.Limit)
		assert.Equal(t, 10, resp.Offset)
	})

	t.Run("repository error", func(t *testing.T) {
		uc, m := newDreamUseCase()

		m.dreams.On("List", ctx, 50, 0).Return(nil, 0, errors.New("boom"))

		_, err := uc.List(ctx, dto.ListDreamsRequest{})
		assert.ErrorIs(t, err, apperrors.ErrDatabaseError)
	})
}
