package mapview

import (
	"context"
	"image"
)

// CanvasCapturer снимает текущий холст карты. Подходит как share.Capturer
type CanvasCapturer struct {
	Handle MapHandle
	// Ready - дополнительная проверка готовности (обычно LayerManager.Ready)
	Ready func() bool
}

func (c CanvasCapturer) Capture(ctx context.Context, width, height int) (image.Image, error) {
	if c.Handle == nil || !c.Handle.Loaded() {
		return nil, ErrMapUnavailable
	}
	if c.Ready != nil && !c.Ready() {
		return nil, ErrMapUnavailable
	}
	return c.Handle.CaptureCanvas(ctx, width, height)
}
