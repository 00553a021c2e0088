package mapview

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"go.uber.org/zap"
)

const (
	pulsePeriod    = 1500 * time.Millisecond
	pulseFrameRate = 50 * time.Millisecond
)

// CriticalMassOverlay - маркеры готовности станций с пульсацией станций высокого спроса.
// Пульсация работает только пока оверлей виден.
type CriticalMassOverlay struct {
	overlayBase
	animator *Animator

	mu           sync.Mutex
	key          string
	pushedKey    string
	entries      []domain.CriticalMassEntry
	visible      bool
	closed       bool
	computations int
}

func NewCriticalMassOverlay(handle MapHandle, opts ...OverlayOption) *CriticalMassOverlay {
	o := &CriticalMassOverlay{overlayBase: newOverlayBase(handle, opts)}
	o.animator = NewAnimator(pulseFrameRate, o.pulseFrame)
	return o
}

// Update заменяет записи, если они изменились
func (o *CriticalMassOverlay) Update(entries []domain.CriticalMassEntry) (bool, error) {
	key := entriesKey(entries)

	o.mu.Lock()
	recomputed := false
	if key != o.key {
		o.entries = append([]domain.CriticalMassEntry(nil), entries...)
		o.key = key
		o.computations++
		recomputed = true
	}

	var err error
	if o.pushedKey != o.key && o.available() {
		if err = o.push(); err == nil {
			o.pushedKey = o.key
		}
	}
	if err == nil {
		o.syncAnimationLocked()
	}
	o.mu.Unlock()

	return recomputed, err
}

func (o *CriticalMassOverlay) push() error {
	fc := CriticalMassFeatures(o.entries)
	if o.handle.HasSource(SourceCriticalMass) {
		if err := o.handle.SetSourceData(SourceCriticalMass, fc); err != nil {
			return fmt.Errorf("update critical mass source: %w", err)
		}
	}

	return o.ensure(SourceSpec{ID: SourceCriticalMass, Data: fc},
		LayerSpec{
			ID:      LayerCriticalMassPulse,
			Source:  SourceCriticalMass,
			Type:    TypeCircle,
			Filter:  []interface{}{"==", []interface{}{"get", "pulse"}, true},
			Visible: o.visible,
			Paint: map[string]interface{}{
				"circle-color":   "#ef4444",
				"circle-radius":  10,
				"circle-opacity": 0.4,
			},
		},
		LayerSpec{
			ID:      LayerCriticalMass,
			Source:  SourceCriticalMass,
			Type:    TypeCircle,
			Visible: o.visible,
			Paint: map[string]interface{}{
				"circle-color": []interface{}{
					"match", []interface{}{"get", "readiness_level"},
					string(domain.ReadinessCritical), "#dc2626",
					string(domain.ReadinessHigh), "#f97316",
					string(domain.ReadinessMedium), "#eab308",
					"#94a3b8",
				},
				"circle-radius": []interface{}{"interpolate", []interface{}{"linear"}, []interface{}{"get", "readiness_score"}, 0, 4, 100, 12},
			},
		},
	)
}

// SetVisible показывает или скрывает маркеры; при скрытии пульсация останавливается
func (o *CriticalMassOverlay) SetVisible(visible bool) {
	o.mu.Lock()
	o.visible = visible
	if o.available() {
		if o.pushedKey != o.key {
			if err := o.push(); err != nil {
				o.logger.Warn("Failed to push critical mass markers", zap.Error(err))
			} else {
				o.pushedKey = o.key
			}
		}
		o.setVisibility(visible, LayerCriticalMassPulse, LayerCriticalMass)
	}
	o.syncAnimationLocked()
	o.mu.Unlock()
}

// syncAnimationLocked запускает или останавливает пульсацию по текущему
// состоянию. Вызывается под o.mu; кадры анимации o.mu не берут.
func (o *CriticalMassOverlay) syncAnimationLocked() {
	run := o.visible && !o.closed && o.hasPulseLocked()
	if run && o.available() {
		o.animator.Start(context.Background())
		return
	}
	o.animator.Stop()
}

func (o *CriticalMassOverlay) pulseFrame(elapsed time.Duration) {
	if !o.available() || !o.handle.HasLayer(LayerCriticalMassPulse) {
		return
	}

	phase := (math.Sin(2*math.Pi*float64(elapsed)/float64(pulsePeriod)) + 1) / 2
	_ = o.handle.SetPaintProperty(LayerCriticalMassPulse, "circle-radius", 10+8*phase)
	_ = o.handle.SetPaintProperty(LayerCriticalMassPulse, "circle-opacity", 0.1+0.5*(1-phase))
}

func (o *CriticalMassOverlay) hasPulseLocked() bool {
	for _, e := range o.entries {
		if isHighDemand(e.ReadinessLevel) {
			return true
		}
	}
	return false
}

// Animating - идёт ли пульсация
func (o *CriticalMassOverlay) Animating() bool {
	return o.animator.Running()
}

func (o *CriticalMassOverlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

func (o *CriticalMassOverlay) Computations() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.computations
}

// Close останавливает анимацию. После Close пульсация больше не запускается.
func (o *CriticalMassOverlay) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.animator.Stop()
}

func entriesKey(entries []domain.CriticalMassEntry) string {
	h := xxhash.New()
	for _, e := range entries {
		_, _ = h.WriteString(e.Station)
		_, _ = h.WriteString("|")
		_, _ = h.WriteString(strconv.Itoa(e.DreamCount))
		_, _ = h.WriteString("|")
		_, _ = h.WriteString(formatCoord(e.Coordinates))
		_, _ = h.WriteString("\n")
	}
	return fmt.Sprintf("%d:%016x", len(entries), h.Sum64())
}
