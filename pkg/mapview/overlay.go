package mapview

import (
	"fmt"

	"go.uber.org/zap"
)

// OverlayOption настраивает оверлей
type OverlayOption func(*overlayBase)

// WithReadyCheck - оверлей трогает карту только когда fn возвращает true
// (обычно LayerManager.Ready)
func WithReadyCheck(fn func() bool) OverlayOption {
	return func(o *overlayBase) { o.ready = fn }
}

// WithOverlayLogger задаёт логгер оверлея
func WithOverlayLogger(l *zap.Logger) OverlayOption {
	return func(o *overlayBase) {
		if l != nil {
			o.logger = l
		}
	}
}

// overlayBase - общий доступ оверлеев к разделяемой карте.
// Все изменения проверяют существование источника или слоя.
type overlayBase struct {
	handle MapHandle
	ready  func() bool
	logger *zap.Logger
}

func newOverlayBase(handle MapHandle, opts []OverlayOption) overlayBase {
	o := overlayBase{handle: handle, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *overlayBase) available() bool {
	if o.handle == nil || !o.handle.Loaded() {
		return false
	}
	return o.ready == nil || o.ready()
}

// ensure создаёт источник и слои, если их ещё нет
func (o *overlayBase) ensure(src SourceSpec, layers ...LayerSpec) error {
	if !o.handle.HasSource(src.ID) {
		if err := o.handle.AddSource(src); err != nil {
			return fmt.Errorf("add source %s: %w", src.ID, err)
		}
	}
	for _, l := range layers {
		if o.handle.HasLayer(l.ID) {
			continue
		}
		if err := o.handle.AddLayer(l); err != nil {
			return fmt.Errorf("add layer %s: %w", l.ID, err)
		}
	}
	return nil
}

func (o *overlayBase) setVisibility(visible bool, layerIDs ...string) {
	for _, id := range layerIDs {
		if !o.handle.HasLayer(id) {
			continue
		}
		if err := o.handle.SetVisibility(id, visible); err != nil {
			o.logger.Warn("Failed to set overlay visibility", zap.String("layer", id), zap.Error(err))
		}
	}
}
