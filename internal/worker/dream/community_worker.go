package dream

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/worker"
)

const (
	maxBatchSize    = 20                     // максимум сообщений за раз
	emptyQueueSleep = 100 * time.Millisecond // пауза если очередь пуста
	errorSleep      = time.Second
	retryDelay      = 50 * time.Millisecond

	// announcedKeyPrefix - отметка, что о сообществе на станции уже объявлено
	announcedKeyPrefix = "community:announced:"
)

// StatsRefresher пересчитывает закешированную статистику
type StatsRefresher interface {
	RefreshStats(ctx context.Context) (*domain.PlatformStats, error)
}

// CommunityWorker читает новые мечты и объявляет о сообществах на станциях отправления
type CommunityWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	dreamRepo    repository.DreamRepository
	cacheRepo    repository.CacheRepository
	stats        StatsRefresher
	consumerName string
	maxRetries   int
}

// NewCommunityWorker создает новый CommunityWorker
func NewCommunityWorker(
	streamRepo repository.StreamRepository,
	dreamRepo repository.DreamRepository,
	cacheRepo repository.CacheRepository,
	stats StatsRefresher,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *CommunityWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	if maxRetries < 1 {
		maxRetries = 1
	}

	return &CommunityWorker{
		BaseWorker:   worker.NewBaseWorker("dream-community", consumerGroup, logger),
		streamRepo:   streamRepo,
		dreamRepo:    dreamRepo,
		cacheRepo:    cacheRepo,
		stats:        stats,
		consumerName: consumerName,
		maxRetries:   maxRetries,
	}
}

// Start запускает воркер
func (w *CommunityWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting CommunityWorker (batch mode)",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_batch_size", maxBatchSize))

	// Создаем consumer group
	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamDreamSubmitted, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	// Основной цикл обработки
	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
		}

		processed, err := w.ProcessBatch(ctx)
		switch {
		case err != nil:
			logger.Error("Failed to process batch", zap.Error(err))
			w.pause(ctx, errorSleep)
		case processed == 0:
			w.pause(ctx, emptyQueueSleep)
		}
	}
}

func (w *CommunityWorker) pause(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-w.StopChan():
	case <-ctx.Done():
	}
}

// ProcessBatch читает и обрабатывает batch сообщений.
// Возвращает количество прочитанных сообщений.
func (w *CommunityWorker) ProcessBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	// 1. Читаем до maxBatchSize сообщений
	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamDreamSubmitted,
		w.ConsumerGroup(),
		w.consumerName,
		maxBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil // очередь пуста
	}

	logger.Debug("Processing batch", zap.Int("message_count", len(messages)))

	// 2. Парсим события, одна проверка на станцию за batch
	messageIDs := make([]string, 0, len(messages))
	stations := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, msg := range messages {
		messageIDs = append(messageIDs, msg.ID)

		event, err := parseMessage(msg)
		if err != nil {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			continue
		}

		if _, ok := seen[event.OriginStation]; ok {
			continue
		}
		seen[event.OriginStation] = struct{}{}
		stations = append(stations, event.OriginStation)
	}

	// 3. Проверяем сообщества
	for _, station := range stations {
		if err := w.checkCommunity(ctx, station); err != nil {
			logger.Error("Failed to check community",
				zap.String("station", station),
				zap.Error(err))
			// Продолжаем с остальными
		}
	}

	// 4. Пересчитываем статистику
	if len(stations) > 0 && w.stats != nil {
		if _, err := w.stats.RefreshStats(ctx); err != nil {
			logger.Warn("Failed to refresh stats", zap.Error(err))
		}
	}

	// 5. ACK всех сообщений, включая битые, чтобы не застревали
	if err := w.streamRepo.AckMessages(ctx, domain.StreamDreamSubmitted, w.ConsumerGroup(), messageIDs); err != nil {
		logger.Error("Failed to ack messages", zap.Error(err))
		// Не критично - сообщения будут переобработаны
	}

	w.MarkBatch(len(messages))

	return len(messages), nil
}

// checkCommunity публикует CommunityFormingEvent один раз на станцию,
// когда число мечт достигает порога
func (w *CommunityWorker) checkCommunity(ctx context.Context, station string) error {
	count, err := w.countWithRetry(ctx, station)
	if err != nil {
		return err
	}

	if !domain.IsCommunityForming(count) {
		return nil
	}

	// отметка ставится до публикации: из нескольких реплик объявляет одна
	key := announcedKeyPrefix + station
	claimed, err := w.cacheRepo.SetNX(ctx, key, []byte("1"), domain.DreamRetention)
	if err != nil {
		return fmt.Errorf("claim announcement: %w", err)
	}
	if !claimed {
		return nil
	}

	event := domain.CommunityFormingEvent{
		Station:    station,
		DreamCount: count,
		DetectedAt: time.Now().UTC(),
	}
	if err := w.streamRepo.PublishToStream(ctx, domain.StreamCommunityForming, event); err != nil {
		// снимаем отметку, чтобы следующая мечта станции повторила объявление
		if delErr := w.cacheRepo.Delete(ctx, key); delErr != nil {
			w.Logger().Warn("Failed to release announcement claim", zap.String("station", station), zap.Error(delErr))
		}
		return fmt.Errorf("publish community event: %w", err)
	}

	w.Logger().Info("Community forming",
		zap.String("station", station),
		zap.Int("dream_count", count))

	return nil
}

func (w *CommunityWorker) countWithRetry(ctx context.Context, station string) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		count, err := w.dreamRepo.CountByOriginStation(ctx, station)
		if err == nil {
			return count, nil
		}
		lastErr = err

		if attempt < w.maxRetries {
			select {
			case <-time.After(retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
	}
	return 0, fmt.Errorf("count dreams after %d attempts: %w", w.maxRetries, lastErr)
}

// parseMessage парсит сообщение из stream
func parseMessage(msg domain.StreamMessage) (*domain.DreamSubmittedEvent, error) {
	var event domain.DreamSubmittedEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.OriginStation == "" {
		return nil, fmt.Errorf("event has no origin station")
	}
	return &event, nil
}
