package worker

import (
	"context"
)

// Worker - фоновый обработчик, управляемый WorkerManager
type Worker interface {
	// Start блокируется до остановки или отмены контекста
	Start(ctx context.Context) error

	// Stop сигнализирует воркеру завершиться
	Stop() error

	// Name возвращает имя воркера
	Name() string
}
