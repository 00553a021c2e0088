package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
)

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) Incr(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepository) GetTile(ctx context.Context, version int64, z, x, y int) ([]byte, error) {
	args := m.Called(ctx, version, z, x, y)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) SetTile(ctx context.Context, version int64, z, x, y int, data []byte, ttl time.Duration) error {
	args := m.Called(ctx, version, z, x, y, data, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) GetStats(ctx context.Context) (*domain.PlatformStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlatformStats), args.Error(1)
}

func (m *MockCacheRepository) SetStats(ctx context.Context, stats *domain.PlatformStats, ttl time.Duration) error {
	args := m.Called(ctx, stats, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) InvalidateStats(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockDreamRepository is a mock of DreamRepository
type MockDreamRepository struct {
	mock.Mock
}

func (m *MockDreamRepository) Create(ctx context.Context, dream *domain.Dream) error {
	args := m.Called(ctx, dream)
	return args.Error(0)
}

func (m *MockDreamRepository) List(ctx context.Context, limit, offset int) ([]domain.Dream, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Dream), args.Int(1), args.Error(2)
}

func (m *MockDreamRepository) CountByOriginStation(ctx context.Context, station string) (int, error) {
	args := m.Called(ctx, station)
	return args.Int(0), args.Error(1)
}

func (m *MockDreamRepository) ListWithCoordinates(ctx context.Context, limit int) ([]domain.Dream, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Dream), args.Error(1)
}

func (m *MockDreamRepository) OriginStationCounts(ctx context.Context, limit int) ([]domain.StationDreamCount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StationDreamCount), args.Error(1)
}

// MockStationRepository is a mock of StationRepository
type MockStationRepository struct {
	mock.Mock
}

func (m *MockStationRepository) Search(ctx context.Context, query, country string, limit int) ([]domain.Station, error) {
	args := m.Called(ctx, query, country, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Station), args.Error(1)
}

func (m *MockStationRepository) FindByName(ctx context.Context, name string) (*domain.Station, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Station), args.Error(1)
}

// MockPlaceRepository is a mock of PlaceRepository
type MockPlaceRepository struct {
	mock.Mock
}

func (m *MockPlaceRepository) Search(ctx context.Context, query, category string, limit int) ([]domain.Place, error) {
	args := m.Called(ctx, query, category, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Place), args.Error(1)
}

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	args := m.Called(ctx, stream, group, messageIDs)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockStatsRepository is a mock of StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) GetPlatformStats(ctx context.Context, activityDays int) (*domain.PlatformStats, error) {
	args := m.Called(ctx, activityDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlatformStats), args.Error(1)
}

// MockRealityRepository is a mock of RealityRepository
type MockRealityRepository struct {
	mock.Mock
}

func (m *MockRealityRepository) GetNetwork(ctx context.Context) (*domain.RealityNetwork, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RealityNetwork), args.Error(1)
}

// MockAnalyticsRepository is a mock of AnalyticsRepository
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) SaveEvent(ctx context.Context, event *domain.AnalyticsEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAnalyticsRepository) GetAdvocacySummary(ctx context.Context, limit int) (*domain.AdvocacySummary, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdvocacySummary), args.Error(1)
}

// MockMapboxRepository is a mock of MapboxRepository
type MockMapboxRepository struct {
	mock.Mock
}

func (m *MockMapboxRepository) StaticImage(ctx context.Context, req domain.StaticMapRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func ptrFloat64(v float64) *float64 {
	return &v
}

func ptrString(v string) *string {
	return &v
}
