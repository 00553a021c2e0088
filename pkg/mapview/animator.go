package mapview

import (
	"context"
	"sync"
	"time"
)

// FrameFunc вызывается на каждом кадре с временем от старта анимации
type FrameFunc func(elapsed time.Duration)

// Animator крутит FrameFunc по тикеру до отмены.
// FrameFunc не должна вызывать Stop того же аниматора.
type Animator struct {
	interval time.Duration
	frame    FrameFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAnimator(interval time.Duration, frame FrameFunc) *Animator {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Animator{interval: interval, frame: frame}
}

// Start запускает анимацию. false, если она уже идёт
func (a *Animator) Start(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.runningLocked() {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done

	go a.loop(ctx, done)
	return true
}

func (a *Animator) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.frame(now.Sub(start))
		}
	}
}

// Stop отменяет анимацию и ждёт завершения горутины
func (a *Animator) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runningLocked()
}

func (a *Animator) runningLocked() bool {
	if a.done == nil {
		return false
	}
	select {
	case <-a.done:
		return false
	default:
		return true
	}
}
