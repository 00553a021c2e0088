package mapview

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MemoryMap - MapHandle без отрисовки: хранит источники и слои в памяти.
// Используется в тестах и при серверном рендеринге состояния.
type MemoryMap struct {
	mu       sync.RWMutex
	loaded   bool
	failed   error
	sources  map[string]SourceSpec
	layers   map[string]*memoryLayer
	order    []string
	handlers map[EventType][]subscription
	nextSub  int

	center orb.Point
	zoom   float64

	// ExpansionZoom - что вернёт ClusterExpansionZoom
	ExpansionZoom func(sourceID string, clusterID int64) (float64, error)
	// Capture - что вернёт CaptureCanvas, по умолчанию однотонное изображение
	Capture func(ctx context.Context, width, height int) (image.Image, error)

	ops map[string]int
}

type memoryLayer struct {
	spec    LayerSpec
	visible bool
	paint   map[string]interface{}
}

type subscription struct {
	id      int
	layerID string
	handler EventHandler
}

// NewMemoryMap создаёт незагруженную карту. Загрузку имитирует EmitLoad
func NewMemoryMap() *MemoryMap {
	return &MemoryMap{
		sources:  make(map[string]SourceSpec),
		layers:   make(map[string]*memoryLayer),
		handlers: make(map[EventType][]subscription),
		ops:      make(map[string]int),
	}
}

func (m *MemoryMap) count(op string) {
	m.ops[op]++
}

// Ops - сколько раз вызывалась мутирующая операция (AddSource, SetVisibility, ...)
func (m *MemoryMap) Ops(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ops[op]
}

// EmitLoad помечает карту загруженной и вызывает обработчики load
func (m *MemoryMap) EmitLoad() {
	m.mu.Lock()
	m.loaded = true
	m.mu.Unlock()
	m.emit(Event{Type: EventLoad})
}

// EmitError имитирует ошибку загрузки стиля
func (m *MemoryMap) EmitError(err error) {
	m.mu.Lock()
	m.failed = err
	m.mu.Unlock()
	m.emit(Event{Type: EventError, Err: err})
}

// Click имитирует клик по объекту слоя
func (m *MemoryMap) Click(layerID string, feature *geojson.Feature) {
	ev := Event{Type: EventClick, LayerID: layerID, Feature: feature}
	if feature != nil {
		if p, ok := feature.Geometry.(orb.Point); ok {
			ev.LngLat = p
		}
	}
	m.emit(ev)
}

func (m *MemoryMap) emit(ev Event) {
	m.mu.RLock()
	subs := make([]subscription, len(m.handlers[ev.Type]))
	copy(subs, m.handlers[ev.Type])
	m.mu.RUnlock()

	for _, s := range subs {
		if ev.Type == EventClick && s.layerID != "" && s.layerID != ev.LayerID {
			continue
		}
		s.handler(ev)
	}
}

func (m *MemoryMap) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded && m.failed == nil
}

func (m *MemoryMap) HasSource(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sources[id]
	return ok
}

func (m *MemoryMap) AddSource(src SourceSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[src.ID]; ok {
		return fmt.Errorf("source %q already exists", src.ID)
	}
	m.count("AddSource")
	m.sources[src.ID] = src
	return nil
}

func (m *MemoryMap) SetSourceData(id string, fc *geojson.FeatureCollection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.sources[id]
	if !ok {
		return fmt.Errorf("source %q not found", id)
	}
	m.count("SetSourceData")
	src.Data = fc
	m.sources[id] = src
	return nil
}

func (m *MemoryMap) RemoveSource(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; !ok {
		return fmt.Errorf("source %q not found", id)
	}
	for _, l := range m.layers {
		if l.spec.Source == id {
			return fmt.Errorf("source %q is used by layer %q", id, l.spec.ID)
		}
	}
	m.count("RemoveSource")
	delete(m.sources, id)
	return nil
}

// SourceData возвращает текущие данные источника
func (m *MemoryMap) SourceData(id string) *geojson.FeatureCollection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sources[id].Data
}

func (m *MemoryMap) HasLayer(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.layers[id]
	return ok
}

func (m *MemoryMap) AddLayer(layer LayerSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.layers[layer.ID]; ok {
		return fmt.Errorf("layer %q already exists", layer.ID)
	}
	if _, ok := m.sources[layer.Source]; !ok {
		return fmt.Errorf("layer %q references missing source %q", layer.ID, layer.Source)
	}
	m.count("AddLayer")
	paint := make(map[string]interface{}, len(layer.Paint))
	for k, v := range layer.Paint {
		paint[k] = v
	}
	m.layers[layer.ID] = &memoryLayer{spec: layer, visible: layer.Visible, paint: paint}
	m.order = append(m.order, layer.ID)
	return nil
}

func (m *MemoryMap) RemoveLayer(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.layers[id]; !ok {
		return fmt.Errorf("layer %q not found", id)
	}
	m.count("RemoveLayer")
	delete(m.layers, id)
	for i, l := range m.order {
		if l == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryMap) SetVisibility(layerID string, visible bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.layers[layerID]
	if !ok {
		return fmt.Errorf("layer %q not found", layerID)
	}
	m.count("SetVisibility")
	l.visible = visible
	return nil
}

// Visible - видим ли слой. Несуществующий слой невидим
func (m *MemoryMap) Visible(layerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.layers[layerID]
	return ok && l.visible
}

func (m *MemoryMap) SetPaintProperty(layerID, name string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.layers[layerID]
	if !ok {
		return fmt.Errorf("layer %q not found", layerID)
	}
	m.count("SetPaintProperty")
	l.paint[name] = value
	return nil
}

// PaintProperty возвращает текущее значение свойства отрисовки
func (m *MemoryMap) PaintProperty(layerID, name string) interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.layers[layerID]; ok {
		return l.paint[name]
	}
	return nil
}

// Layers - ID слоёв в порядке добавления
func (m *MemoryMap) Layers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *MemoryMap) ClusterExpansionZoom(sourceID string, clusterID int64) (float64, error) {
	m.mu.RLock()
	src, ok := m.sources[sourceID]
	fn := m.ExpansionZoom
	m.mu.RUnlock()

	if !ok {
		return 0, fmt.Errorf("source %q not found", sourceID)
	}
	if !src.Cluster {
		return 0, fmt.Errorf("source %q is not clustered", sourceID)
	}
	if fn != nil {
		return fn(sourceID, clusterID)
	}
	return m.Zoom() + 2, nil
}

func (m *MemoryMap) EaseTo(center orb.Point, zoom float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("EaseTo")
	m.center = center
	m.zoom = zoom
	return nil
}

// Camera - текущий центр и зум
func (m *MemoryMap) Camera() (orb.Point, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.center, m.zoom
}

// Zoom - текущий зум
func (m *MemoryMap) Zoom() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.zoom
}

func (m *MemoryMap) On(event EventType, layerID string, handler EventHandler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSub++
	id := m.nextSub
	m.handlers[event] = append(m.handlers[event], subscription{id: id, layerID: layerID, handler: handler})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subs := m.handlers[event]
		for i, s := range subs {
			if s.id == id {
				m.handlers[event] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Subscribers - число подписчиков события
func (m *MemoryMap) Subscribers(event EventType) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}

func (m *MemoryMap) CaptureCanvas(ctx context.Context, width, height int) (image.Image, error) {
	if !m.Loaded() {
		return nil, ErrMapUnavailable
	}
	if fn := m.Capture; fn != nil {
		return fn(ctx, width, height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{0x1B, 0x26, 0x3B, 0xFF}}, image.Point{}, draw.Src)
	return img, nil
}
