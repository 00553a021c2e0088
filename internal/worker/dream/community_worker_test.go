package dream_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/worker/dream"
)

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

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, maxCount int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, maxCount)
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

// MockDreamRepository реализует только подсчет, остальное воркеру не нужно
type MockDreamRepository struct {
	repository.DreamRepository
	mock.Mock
}

func (m *MockDreamRepository) CountByOriginStation(ctx context.Context, station string) (int, error) {
	args := m.Called(ctx, station)
	return args.Int(0), args.Error(1)
}

// memoryCache - ключи в памяти для отметок об объявленных сообществах
type memoryCache struct {
	repository.CacheRepository
	mu   sync.Mutex
	keys map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{keys: make(map[string][]byte)}
}

func (c *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.keys[key]
	return ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[key] = value
	return nil
}

func (c *memoryCache) SetNX(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.keys[key]; ok {
		return false, nil
	}
	c.keys[key] = value
	return true, nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.keys, key)
	return nil
}

type countingRefresher struct {
	calls int
	err   error
}

func (r *countingRefresher) RefreshStats(context.Context) (*domain.PlatformStats, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &domain.PlatformStats{}, nil
}

const testGroup = "community-test"

func submitted(t *testing.T, id, station string) domain.StreamMessage {
	t.Helper()
	data, err := json.Marshal(domain.DreamSubmittedEvent{
		DreamID:         "dream-" + id,
		OriginStation:   station,
		DestinationCity: "Barcelona",
		SubmittedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)
	return domain.StreamMessage{ID: id, Data: string(data)}
}

func newWorker(stream *MockStreamRepository, dreams *MockDreamRepository, cache *memoryCache, stats dream.StatsRefresher) *dream.CommunityWorker {
	return dream.NewCommunityWorker(stream, dreams, cache, stats, testGroup, 2, zap.NewNop())
}

func TestCommunityWorker_ProcessBatch_PublishesOnThreshold(t *testing.T) {
	ctx := context.Background()
	stream := new(MockStreamRepository)
	dreams := new(MockDreamRepository)
	cache := newMemoryCache()
	stats := &countingRefresher{}

	messages := []domain.StreamMessage{
		submitted(t, "1-0", "Berlin Hbf"),
		submitted(t, "2-0", "Berlin Hbf"),
		submitted(t, "3-0", "Wien Hbf"),
	}

	stream.On("ConsumeBatch", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything, 20).Return(messages, nil).Once()
	dreams.On("CountByOriginStation", ctx, "Berlin Hbf").Return(2, nil).Once()
	dreams.On("CountByOriginStation", ctx, "Wien Hbf").Return(1, nil).Once()
	stream.On("PublishToStream", ctx, domain.StreamCommunityForming, mock.MatchedBy(func(e domain.CommunityFormingEvent) bool {
		return e.Station == "Berlin Hbf" && e.DreamCount == 2 && !e.DetectedAt.IsZero()
	})).Return(nil).Once()
	stream.On("AckMessages", ctx, domain.StreamDreamSubmitted, testGroup, []string{"1-0", "2-0", "3-0"}).Return(nil).Once()

	w := newWorker(stream, dreams, cache, stats)
	processed, err := w.ProcessBatch(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, processed)
	assert.Equal(t, 1, stats.calls)
	assert.EqualValues(t, 3, w.Processed())
	assert.False(t, w.LastBatchAt().IsZero())
	stream.AssertExpectations(t)
	dreams.AssertExpectations(t)
}

func TestCommunityWorker_ProcessBatch_AnnouncesOnce(t *testing.T) {
	ctx := context.Background()
	stream := new(MockStreamRepository)
	dreams := new(MockDreamRepository)
	cache := newMemoryCache()

	stream.On("ConsumeBatch", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything, 20).
		Return([]domain.StreamMessage{submitted(t, "1-0", "Paris Nord")}, nil).Once()
	stream.On("ConsumeBatch", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything, 20).
		Return([]domain.StreamMessage{submitted(t, "2-0", "Paris Nord")}, nil).Once()
	dreams.On("CountByOriginStation", ctx, "Paris Nord").Return(2, nil).Once()
	dreams.On("CountByOriginStation", ctx, "Paris Nord").Return(3, nil).Once()
	stream.On("PublishToStream", ctx, domain.StreamCommunityForming, mock.Anything).Return(nil).Once()
	stream.On("AckMessages", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything).Return(nil).Twice()

	w := newWorker(stream, dreams, cache, nil)

	_, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	_, err = w.ProcessBatch(ctx)
	require.NoError(t, err)

	// Вторая мечта не порождает повторного объявления
	stream.AssertNumberOfCalls(t, "PublishToStream", 1)
	stream.AssertExpectations(t)
}

func TestCommunityWorker_ProcessBatch_ReplicasAnnounceOnce(t *testing.T) {
	ctx := context.Background()
	stream := new(MockStreamRepository)
	dreams := new(MockDreamRepository)
	cache := newMemoryCache()

	stream.On("ConsumeBatch", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything, 20).
		Return([]domain.StreamMessage{submitted(t, "1-0", "Praha hl.n.")}, nil).Twice()
	dreams.On("CountByOriginStation", ctx, "Praha hl.n.").Return(2, nil)
	stream.On("PublishToStream", ctx, domain.StreamCommunityForming, mock.Anything).Return(nil)
	stream.On("AckMessages", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything).Return(nil)

	// две реплики делят одно хранилище отметок
	replicas := []*dream.CommunityWorker{
		newWorker(stream, dreams, cache, nil),
		newWorker(stream, dreams, cache, nil),
	}

	var wg sync.WaitGroup
	for _, w := range replicas {
		wg.Add(1)
		go func(w *dream.CommunityWorker) {
			defer wg.Done()
			_, err := w.ProcessBatch(ctx)
			assert.NoError(t, err)
		}(w)
	}
	wg.Wait()

	stream.AssertNumberOfCalls(t, "PublishToStream", 1)
}

func TestCommunityWorker_ProcessBatch_PublishFailureReleasesClaim(t *testing.T) {
	ctx := context.Background()
	stream := new(MockStreamRepository)
	dreams := new(MockDreamRepository)
	cache := newMemoryCache()

	stream.On("ConsumeBatch", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything, 20).
		Return([]domain.StreamMessage{submitted(t, "1-0", "Milano Centrale")}, nil).Once()
	stream.On("ConsumeBatch", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything, 20).
		Return([]domain.StreamMessage{submitted(t, "2-0", "Milano Centrale")}, nil).Once()
	dreams.On("CountByOriginStation", ctx, "Milano Centrale").Return(2, nil).Once()
	dreams.On("CountByOriginStation", ctx, "Milano Centrale").Return(3, nil).Once()
	stream.On("PublishToStream", ctx, domain.StreamCommunityForming, mock.Anything).Return(errors.New("redis down")).Once()
	stream.On("PublishToStream", ctx, domain.StreamCommunityForming, mock.Anything).Return(nil).Once()
	stream.On("AckMessages", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything).Return(nil).Twice()

	w := newWorker(stream, dreams, cache, nil)

	_, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	announced, _ := cache.Exists(ctx, "community:announced:Milano Centrale")
	assert.False(t, announced)

	_, err = w.ProcessBatch(ctx)
	require.NoError(t, err)
	announced, _ = cache.Exists(ctx, "community:announced:Milano Centrale")
	assert.True(t, announced)
	stream.AssertNumberOfCalls(t, "PublishToStream", 2)
}

func TestCommunityWorker_ProcessBatch_MalformedMessagesAcked(t *testing.T) {
	ctx := context.Background()
	stream := new(MockStreamRepository)
	dreams := new(MockDreamRepository)
	stats := &countingRefresher{}

	messages := []domain.StreamMessage{
		{ID: "1-0", Data: "{not json"},
		{ID: "2-0", Data: ""},
		{ID: "3-0", Data: `{"dream_id":"x"}`},
	}
	stream.On("ConsumeBatch", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything, 20).Return(messages, nil).Once()
	stream.On("AckMessages", ctx, domain.StreamDreamSubmitted, testGroup, []string{"1-0", "2-0", "3-0"}).Return(nil).Once()

	w := newWorker(stream, dreams, newMemoryCache(), stats)
	processed, err := w.ProcessBatch(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, processed)
	assert.Zero(t, stats.calls)
	dreams.AssertNotCalled(t, "CountByOriginStation", mock.Anything, mock.Anything)
	stream.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
	stream.AssertExpectations(t)
}

func TestCommunityWorker_ProcessBatch_EmptyQueue(t *testing.T) {
	ctx := context.Background()
	stream := new(MockStreamRepository)

	stream.On("ConsumeBatch", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything, 20).Return(nil, nil).Once()

	w := newWorker(stream, new(MockDreamRepository), newMemoryCache(), nil)
	processed, err := w.ProcessBatch(ctx)

	require.NoError(t, err)
	assert.Zero(t, processed)
	stream.AssertNotCalled(t, "AckMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCommunityWorker_ProcessBatch_ConsumeError(t *testing.T) {
	ctx := context.Background()
	stream := new(MockStreamRepository)

	stream.On("ConsumeBatch", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything, 20).
		Return(nil, errors.New("redis down")).Once()

	w := newWorker(stream, new(MockDreamRepository), newMemoryCache(), nil)
	_, err := w.ProcessBatch(ctx)

	assert.Error(t, err)
}

func TestCommunityWorker_ProcessBatch_CountRetried(t *testing.T) {
	ctx := context.Background()
	stream := new(MockStreamRepository)
	dreams := new(MockDreamRepository)
	stats := &countingRefresher{err: errors.New("stats failed")}

	stream.On("ConsumeBatch", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything, 20).
		Return([]domain.StreamMessage{submitted(t, "1-0", "Milano Centrale")}, nil).Once()
	dreams.On("CountByOriginStation", ctx, "Milano Centrale").Return(0, errors.New("timeout")).Once()
	dreams.On("CountByOriginStation", ctx, "Milano Centrale").Return(2, nil).Once()
	stream.On("PublishToStream", ctx, domain.StreamCommunityForming, mock.Anything).Return(nil).Once()
	stream.On("AckMessages", ctx, domain.StreamDreamSubmitted, testGroup, []string{"1-0"}).Return(nil).Once()

	w := newWorker(stream, dreams, newMemoryCache(), stats)
	processed, err := w.ProcessBatch(ctx)

	// Ошибка статистики не прерывает обработку
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, stats.calls)
	dreams.AssertExpectations(t)
	stream.AssertExpectations(t)
}

func TestCommunityWorker_ProcessBatch_CountFailsStillAcks(t *testing.T) {
	ctx := context.Background()
	stream := new(MockStreamRepository)
	dreams := new(MockDreamRepository)

	stream.On("ConsumeBatch", ctx, domain.StreamDreamSubmitted, testGroup, mock.Anything, 20).
		Return([]domain.StreamMessage{submitted(t, "1-0", "Lyon Part-Dieu")}, nil).Once()
	dreams.On("CountByOriginStation", ctx, "Lyon Part-Dieu").Return(0, errors.New("db down")).Twice()
	stream.On("AckMessages", ctx, domain.StreamDreamSubmitted, testGroup, []string{"1-0"}).Return(nil).Once()

	w := newWorker(stream, dreams, newMemoryCache(), nil)
	_, err := w.ProcessBatch(ctx)

	require.NoError(t, err)
	stream.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
	stream.AssertExpectations(t)
}

func TestCommunityWorker_StartStop(t *testing.T) {
	stream := new(MockStreamRepository)

	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamDreamSubmitted, testGroup).Return(nil).Once()
	stream.On("ConsumeBatch", mock.Anything, domain.StreamDreamSubmitted, testGroup, mock.Anything, 20).Return(nil, nil)

	w := newWorker(stream, new(MockDreamRepository), newMemoryCache(), nil)
	assert.Equal(t, "dream-community", w.Name())

	done := make(chan error, 1)
	go func() {
		done <- w.Start(context.Background())
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, w.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.True(t, w.IsStopped())
}

func TestCommunityWorker_StartFailsWithoutGroup(t *testing.T) {
	stream := new(MockStreamRepository)
	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamDreamSubmitted, testGroup).
		Return(errors.New("NOPERM")).Once()

	w := newWorker(stream, new(MockDreamRepository), newMemoryCache(), nil)
	err := w.Start(context.Background())

	assert.Error(t, err)
}
