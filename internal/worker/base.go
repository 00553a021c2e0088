package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// BaseWorker содержит общую логику воркеров, читающих Redis Streams
type BaseWorker struct {
	name          string
	logger        *zap.Logger
	stopChan      chan struct{}
	stopped       bool
	mu            sync.Mutex
	consumerGroup string

	processed atomic.Int64
	lastBatch atomic.Int64 // unix nano
}

// NewBaseWorker создает новый BaseWorker
func NewBaseWorker(name, consumerGroup string, logger *zap.Logger) *BaseWorker {
	return &BaseWorker{
		name:          name,
		logger:        logger.With(zap.String("worker", name)),
		stopChan:      make(chan struct{}),
		consumerGroup: consumerGroup,
	}
}

// Name возвращает имя воркера
func (w *BaseWorker) Name() string {
	return w.name
}

// Stop останавливает воркер. Повторный вызов ничего не делает
func (w *BaseWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	w.logger.Info("Stopping worker")
	close(w.stopChan)
	w.stopped = true

	return nil
}

// IsStopped проверяет, остановлен ли воркер
func (w *BaseWorker) IsStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

// StopChan возвращает канал остановки
func (w *BaseWorker) StopChan() <-chan struct{} {
	return w.stopChan
}

// ConsumerGroup возвращает имя consumer group
func (w *BaseWorker) ConsumerGroup() string {
	return w.consumerGroup
}

// Logger возвращает логгер с полем worker
func (w *BaseWorker) Logger() *zap.Logger {
	return w.logger
}

// MarkBatch учитывает обработанный batch
func (w *BaseWorker) MarkBatch(messages int) {
	w.processed.Add(int64(messages))
	w.lastBatch.Store(time.Now().UnixNano())
}

// Processed - сколько сообщений обработано с момента запуска
func (w *BaseWorker) Processed() int64 {
	return w.processed.Load()
}

// LastBatchAt - время последнего непустого batch, нулевое если его не было
func (w *BaseWorker) LastBatchAt() time.Time {
	ns := w.lastBatch.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
