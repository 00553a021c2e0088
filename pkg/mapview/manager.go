package mapview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// DefaultTransitionDelay - через сколько снимается блокировка переключения
const DefaultTransitionDelay = 600 * time.Millisecond

// Status - состояние карты с точки зрения менеджера
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// GroupLoader загружает данные источников группы: source ID -> коллекция
type GroupLoader func(ctx context.Context, group LayerGroup) (map[string]*geojson.FeatureCollection, error)

// Detail - содержимое детальной панели (попап станции или панель кампании для маршрута)
type Detail struct {
	Kind       DetailKind
	LayerID    string
	Title      string
	Properties map[string]interface{}
	LngLat     orb.Point
}

// DetailPresenter показывает и скрывает детальную панель
type DetailPresenter interface {
	Show(d Detail)
	Hide(d Detail)
}

type Option func(*LayerManager)

// WithTransitionDelay задаёт время блокировки повторного переключения
func WithTransitionDelay(d time.Duration) Option {
	return func(m *LayerManager) {
		if d > 0 {
			m.delay = d
		}
	}
}

// WithLoader задаёт загрузчик данных групп
func WithLoader(l GroupLoader) Option {
	return func(m *LayerManager) { m.loader = l }
}

// WithLogger задаёт логгер
func WithLogger(l *zap.Logger) Option {
	return func(m *LayerManager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithDetailPresenter задаёт отображение детальных панелей
func WithDetailPresenter(p DetailPresenter) Option {
	return func(m *LayerManager) { m.presenter = p }
}

// WithInitialGroup задаёт группу, показываемую после загрузки карты
func WithInitialGroup(g LayerGroup) Option {
	return func(m *LayerManager) { m.initial = g }
}

// LayerManager владеет источниками и слоями карты и переключает группы.
// Активна ровно одна группа. Группа создаётся при первом показе,
// дальше переключение только меняет видимость.
type LayerManager struct {
	handle    MapHandle
	registry  *LayerRegistry
	loader    GroupLoader
	presenter DetailPresenter
	logger    *zap.Logger
	delay     time.Duration
	initial   LayerGroup

	// switchMu упорядочивает изменения видимости между переключениями
	switchMu sync.Mutex

	mu            sync.Mutex
	baseCtx       context.Context
	status        Status
	err           error
	active        LayerGroup
	initializing  bool
	transitioning bool
	generation    uint64
	guard         *time.Timer
	created       map[LayerGroup]bool
	detail        *Detail
	unsubs        []func()
	closed        bool
}

// NewLayerManager создаёт менеджер. Подписка на события карты - в Attach
func NewLayerManager(handle MapHandle, registry *LayerRegistry, opts ...Option) *LayerManager {
	if registry == nil {
		registry = DefaultRegistry()
	}
	m := &LayerManager{
		handle:   handle,
		registry: registry,
		logger:   zap.NewNop(),
		delay:    DefaultTransitionDelay,
		initial:  GroupDream,
		status:   StatusLoading,
		created:  make(map[LayerGroup]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Attach подписывается на load/error/click. Если карта уже загружена,
// начальная группа показывается сразу. ctx используется для загрузки данных.
func (m *LayerManager) Attach(ctx context.Context) {
	m.mu.Lock()
	m.baseCtx = ctx
	m.mu.Unlock()

	unsubs := []func(){
		m.handle.On(EventLoad, "", func(Event) { m.onLoad() }),
		m.handle.On(EventError, "", func(ev Event) { m.fail(ev.Err) }),
		m.handle.On(EventClick, "", m.handleClick),
	}

	m.mu.Lock()
	m.unsubs = append(m.unsubs, unsubs...)
	m.mu.Unlock()

	if m.handle.Loaded() {
		m.onLoad()
	}
}

func (m *LayerManager) onLoad() {
	m.mu.Lock()
	if m.status != StatusLoading || m.closed || m.initializing {
		m.mu.Unlock()
		return
	}
	m.initializing = true
	ctx := m.baseCtx
	initial := m.initial
	m.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	if err := m.buildGroup(initial); err != nil {
		m.fail(err)
		return
	}
	m.setGroupVisibility(initial, true)

	m.mu.Lock()
	m.created[initial] = true
	m.active = initial
	m.status = StatusReady
	m.mu.Unlock()

	m.logger.Info("Map ready", zap.String("group", string(initial)))

	if err := m.loadGroupData(ctx, initial); err != nil {
		m.logger.Warn("Initial layer data failed to load", zap.String("group", string(initial)), zap.Error(err))
	}
}

// fail переводит менеджер в терминальное состояние ошибки
func (m *LayerManager) fail(err error) {
	if err == nil {
		err = ErrMapUnavailable
	}

	m.mu.Lock()
	if m.status == StatusFailed {
		m.mu.Unlock()
		return
	}
	m.status = StatusFailed
	m.err = err
	m.transitioning = false
	if m.guard != nil {
		m.guard.Stop()
		m.guard = nil
	}
	m.mu.Unlock()

	m.logger.Error("Map failed to load", zap.Error(err))
}

// SwitchTo делает target активной группой. Ничего не делает, если карта
// не готова, target уже активна или идёт другое переключение.
// Видимость и active меняются до загрузки данных, поэтому снятие защиты
// по таймеру не пускает параллельное переключение в ту же секцию.
// switched=true и err!=nil означает, что группа показана, но её данные не загрузились.
func (m *LayerManager) SwitchTo(ctx context.Context, target LayerGroup) (switched bool, err error) {
	m.mu.Lock()
	if m.status != StatusReady || m.closed || m.transitioning || target == m.active {
		m.mu.Unlock()
		return false, nil
	}
	if _, ok := m.registry.Group(target); !ok {
		m.mu.Unlock()
		return false, fmt.Errorf("unknown layer group %q", target)
	}

	m.transitioning = true
	m.generation++
	gen := m.generation
	m.guard = time.AfterFunc(m.delay, m.clearGuard)
	m.mu.Unlock()

	m.CloseDetail()

	prev, needCreate, ok, err := m.applySwitch(gen, target)
	if err != nil {
		m.logger.Error("Failed to create layer group", zap.String("group", string(target)), zap.Error(err))
		return false, err
	}
	if !ok {
		m.logger.Debug("Superseded layer switch dropped", zap.String("to", string(target)))
		return false, nil
	}

	m.logger.Debug("Layer group switched",
		zap.String("from", string(prev)),
		zap.String("to", string(target)),
		zap.Bool("created", needCreate))

	if !needCreate {
		return true, nil
	}
	if dataErr := m.loadGroupData(ctx, target); dataErr != nil {
		return true, fmt.Errorf("load %s layer data: %w", target, dataErr)
	}
	return true, nil
}

// applySwitch создаёт группу при первом показе и переключает видимость.
// ok=false, если за это время началось более новое переключение.
func (m *LayerManager) applySwitch(gen uint64, target LayerGroup) (prev LayerGroup, created, ok bool, err error) {
	m.switchMu.Lock()
	defer m.switchMu.Unlock()

	m.mu.Lock()
	if gen != m.generation || m.status != StatusReady || m.closed {
		m.mu.Unlock()
		return "", false, false, nil
	}
	prev = m.active
	created = !m.created[target]
	m.mu.Unlock()

	if created {
		if err := m.buildGroup(target); err != nil {
			return prev, false, false, err
		}
		m.mu.Lock()
		m.created[target] = true
		m.mu.Unlock()
	}

	m.setGroupVisibility(prev, false)
	m.setGroupVisibility(target, true)

	m.mu.Lock()
	m.active = target
	m.mu.Unlock()

	return prev, created, true, nil
}

func (m *LayerManager) clearGuard() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitioning = false
	m.guard = nil
}

// Reload перезагружает данные уже созданной группы (например, после новой мечты)
func (m *LayerManager) Reload(ctx context.Context, group LayerGroup) error {
	m.mu.Lock()
	ok := m.status == StatusReady && !m.closed && m.created[group]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return m.loadGroupData(ctx, group)
}

// buildGroup создаёт недостающие источники и скрытые слои группы
func (m *LayerManager) buildGroup(group LayerGroup) error {
	spec, ok := m.registry.Group(group)
	if !ok {
		return fmt.Errorf("unknown layer group %q", group)
	}

	for _, src := range spec.Sources {
		if m.handle.HasSource(src.ID) {
			continue
		}
		if src.Data == nil {
			src.Data = geojson.NewFeatureCollection()
		}
		if err := m.handle.AddSource(src); err != nil {
			return fmt.Errorf("add source %s: %w", src.ID, err)
		}
	}

	for _, layer := range spec.Layers {
		if m.handle.HasLayer(layer.ID) {
			continue
		}
		layer.Visible = false
		if err := m.handle.AddLayer(layer); err != nil {
			return fmt.Errorf("add layer %s: %w", layer.ID, err)
		}
	}

	return nil
}

func (m *LayerManager) loadGroupData(ctx context.Context, group LayerGroup) error {
	if m.loader == nil {
		return nil
	}

	// при ошибке загрузчик может вернуть часть данных, применяем что есть
	data, err := m.loader(ctx, group)
	for id, fc := range data {
		if fc == nil || !m.handle.HasSource(id) {
			continue
		}
		if setErr := m.handle.SetSourceData(id, fc); setErr != nil {
			m.logger.Warn("Failed to update source data", zap.String("source", id), zap.Error(setErr))
		}
	}
	return err
}

func (m *LayerManager) setGroupVisibility(group LayerGroup, visible bool) {
	if group == "" {
		return
	}
	for _, id := range m.registry.LayerIDs(group) {
		if !m.handle.HasLayer(id) {
			continue
		}
		if err := m.handle.SetVisibility(id, visible); err != nil {
			m.logger.Warn("Failed to set layer visibility", zap.String("layer", id), zap.Error(err))
		}
	}
}

func (m *LayerManager) handleClick(ev Event) {
	if !m.Ready() || ev.Feature == nil {
		return
	}

	group, layer, ok := m.registry.lookupLayer(ev.LayerID)
	if !ok || group != m.Active() {
		return
	}
	spec, _ := m.registry.Group(group)

	if spec.Clusters[layer.ID] {
		m.zoomToCluster(layer.Source, ev)
		return
	}

	kind := spec.Clickable[layer.ID]
	if kind == DetailNone {
		return
	}

	lngLat := ev.LngLat
	if p, ok := ev.Feature.Geometry.(orb.Point); ok {
		lngLat = p
	}

	m.openDetail(Detail{
		Kind:       kind,
		LayerID:    layer.ID,
		Title:      detailTitle(kind, ev.Feature.Properties),
		Properties: ev.Feature.Properties,
		LngLat:     lngLat,
	})
}

// zoomToCluster приближает карту до зума, на котором кластер распадается
func (m *LayerManager) zoomToCluster(sourceID string, ev Event) {
	clusterID, ok := toInt64(ev.Feature.Properties["cluster_id"])
	if !ok {
		return
	}

	zoom, err := m.handle.ClusterExpansionZoom(sourceID, clusterID)
	if err != nil {
		m.logger.Warn("Failed to get cluster expansion zoom", zap.Int64("cluster_id", clusterID), zap.Error(err))
		return
	}

	center := ev.LngLat
	if p, ok := ev.Feature.Geometry.(orb.Point); ok {
		center = p
	}
	if err := m.handle.EaseTo(center, zoom); err != nil {
		m.logger.Warn("Failed to ease to cluster", zap.Error(err))
	}
}

func (m *LayerManager) openDetail(d Detail) {
	m.mu.Lock()
	prev := m.detail
	m.detail = &d
	m.mu.Unlock()

	if m.presenter == nil {
		return
	}
	if prev != nil {
		m.presenter.Hide(*prev)
	}
	m.presenter.Show(d)
}

// CloseDetail закрывает открытую детальную панель
func (m *LayerManager) CloseDetail() {
	m.mu.Lock()
	prev := m.detail
	m.detail = nil
	m.mu.Unlock()

	if prev != nil && m.presenter != nil {
		m.presenter.Hide(*prev)
	}
}

// CurrentDetail - открытая панель или nil
func (m *LayerManager) CurrentDetail() *Detail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detail == nil {
		return nil
	}
	d := *m.detail
	return &d
}

func (m *LayerManager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Err - причина StatusFailed
func (m *LayerManager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Ready - карта загружена и менеджер не закрыт
func (m *LayerManager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == StatusReady && !m.closed
}

func (m *LayerManager) Active() LayerGroup {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *LayerManager) IsTransitioning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitioning
}

// Close отписывается от карты и останавливает таймер блокировки
func (m *LayerManager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	if m.guard != nil {
		m.guard.Stop()
		m.guard = nil
	}
	m.transitioning = false
	unsubs := m.unsubs
	m.unsubs = nil
	m.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
}

func detailTitle(kind DetailKind, props map[string]interface{}) string {
	str := func(key string) string {
		s, _ := props[key].(string)
		return s
	}

	switch kind {
	case DetailRoute:
		from, to := str("from"), str("to")
		if from != "" && to != "" {
			return from + " → " + to
		}
		return str("name")
	case DetailStation:
		if s := str("origin_station"); s != "" {
			return s
		}
		return str("name")
	default:
		return str("name")
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}
