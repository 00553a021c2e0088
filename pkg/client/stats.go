package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
)

const (
	DefaultStatsInterval = 60 * time.Second

	// trendWindow - сколько последних точек активности сравнивается с предыдущими
	trendWindow = 3
)

// GrowthMetrics - метрики, выведенные из статистики
type GrowthMetrics struct {
	AverageDreamsPerStation float64 `json:"average_dreams_per_station"`
	CommunityFormationRate  float64 `json:"community_formation_rate"`
}

// Trends - последние точки активности против предыдущих
type Trends struct {
	RecentAverage   float64 `json:"recent_average"`
	PreviousAverage float64 `json:"previous_average"`
	ChangePercent   float64 `json:"change_percent"`
	IsGrowing       bool    `json:"is_growing"`
}

// DerivedStats - всё, что считается на клиенте
type DerivedStats struct {
	GrowthMetrics GrowthMetrics `json:"growth_metrics"`
	Trends        Trends        `json:"trends"`
}

// Derive считает производные метрики из одного ответа сервера
func Derive(stats domain.PlatformStats) DerivedStats {
	var d DerivedStats

	if stats.ActiveStations > 0 {
		d.GrowthMetrics.AverageDreamsPerStation = float64(stats.TotalDreams) / float64(stats.ActiveStations)
		d.GrowthMetrics.CommunityFormationRate = float64(stats.CommunitiesForming) / float64(stats.ActiveStations)
	}

	activity := stats.RecentActivity
	if len(activity) == 0 {
		return d
	}

	split := len(activity) - trendWindow
	if split < 0 {
		split = 0
	}
	d.Trends.RecentAverage = averageDreams(activity[split:])

	prevStart := split - trendWindow
	if prevStart < 0 {
		prevStart = 0
	}
	if split > prevStart {
		d.Trends.PreviousAverage = averageDreams(activity[prevStart:split])
		d.Trends.IsGrowing = d.Trends.RecentAverage > d.Trends.PreviousAverage
		if d.Trends.PreviousAverage > 0 {
			d.Trends.ChangePercent = (d.Trends.RecentAverage - d.Trends.PreviousAverage) / d.Trends.PreviousAverage * 100
		}
	}

	return d
}

func averageDreams(points []domain.ActivityPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := 0
	for _, p := range points {
		sum += p.Dreams
	}
	return float64(sum) / float64(len(points))
}

// StatsSnapshot - состояние для UI. При ошибке Stats остаются последними удачными
type StatsSnapshot struct {
	Stats     *domain.PlatformStats
	Derived   *DerivedStats
	IsLoading bool
	Err       error
	FetchedAt time.Time
}

// StatsAPI - то, что нужно StatsPoller от Client
type StatsAPI interface {
	Stats(ctx context.Context) (*domain.PlatformStats, error)
}

// StatsPoller периодически обновляет статистику платформы
type StatsPoller struct {
	api      StatsAPI
	interval time.Duration
	onUpdate func(StatsSnapshot)
	logger   *zap.Logger

	mu       sync.Mutex
	snapshot StatsSnapshot
	seq      uint64
	cancel   context.CancelFunc

	stop chan struct{}
	done chan struct{}
}

// StatsOption настраивает StatsPoller
type StatsOption func(*StatsPoller)

func WithInterval(d time.Duration) StatsOption {
	return func(p *StatsPoller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithStatsUpdate(fn func(StatsSnapshot)) StatsOption {
	return func(p *StatsPoller) { p.onUpdate = fn }
}

func WithStatsLogger(l *zap.Logger) StatsOption {
	return func(p *StatsPoller) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewStatsPoller(api StatsAPI, opts ...StatsOption) *StatsPoller {
	p := &StatsPoller{
		api:      api,
		interval: DefaultStatsInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start загружает статистику сразу и затем раз в interval, пока не вызван Stop
// или не отменен ctx. Повторный Start ничего не делает.
func (p *StatsPoller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.stop != nil {
		p.mu.Unlock()
		return
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	stop, done := p.stop, p.done
	p.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		_ = p.Refresh(ctx)
		for {
			select {
			case <-ticker.C:
				_ = p.Refresh(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop останавливает опрос и ждет завершения цикла
func (p *StatsPoller) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.seq++
	p.snapshot.IsLoading = false
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Refresh загружает статистику, отменяя предыдущую незавершенную загрузку
func (p *StatsPoller) Refresh(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.seq++
	seq := p.seq
	fetchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.snapshot.IsLoading = true
	snapshot := p.snapshot
	p.mu.Unlock()
	defer cancel()

	p.notify(snapshot)

	stats, err := p.api.Stats(fetchCtx)

	p.mu.Lock()
	if seq != p.seq {
		// Загрузку заменила более новая
		p.mu.Unlock()
		return context.Canceled
	}
	p.cancel = nil
	p.snapshot.IsLoading = false

	if err != nil {
		p.snapshot.Err = err
		p.logger.Warn("Failed to refresh stats", zap.Error(err))
	} else {
		derived := Derive(*stats)
		p.snapshot.Stats = stats
		p.snapshot.Derived = &derived
		p.snapshot.Err = nil
		p.snapshot.FetchedAt = time.Now()
	}
	snapshot = p.snapshot
	p.mu.Unlock()

	p.notify(snapshot)
	return err
}

// VisibilityChanged - страница снова видна; обновляем, если данные старше interval.
// Возвращает true, если обновление было запущено.
func (p *StatsPoller) VisibilityChanged(ctx context.Context, visible bool) bool {
	if !visible || !p.Stale() {
		return false
	}
	_ = p.Refresh(ctx)
	return true
}

// Stale - данных нет или они старше interval
func (p *StatsPoller) Stale() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot.FetchedAt.IsZero() || time.Since(p.snapshot.FetchedAt) >= p.interval
}

// Snapshot - текущее состояние
func (p *StatsPoller) Snapshot() StatsSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

func (p *StatsPoller) notify(s StatsSnapshot) {
	if p.onUpdate != nil {
		p.onUpdate(s)
	}
}
