package mapview

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"go.uber.org/zap"
)

// Параметры тепловой карты
const (
	DefaultHeatSamples = 10
	MaxHeatSamples     = 100

	demandWeight     = 0.7
	popularityWeight = 0.3
	endpointBoost    = 1.2
)

// HeatPoint - взвешенная точка тепловой карты
type HeatPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Intensity float64 `json:"intensity"` // 0-1
}

type heatPair struct {
	route  domain.DreamRoute
	demand int
}

// ComputeHeatPoints строит облако точек вдоль маршрутов.
// demand - сумма Count маршрутов с теми же концами, popularity - число мечт
// из станции отправления плюс в пункт назначения. Обе величины нормируются по максимуму,
// intensity = demand*0.7 + popularity*0.3. На концах маршрута вес умножается на 1.2.
func ComputeHeatPoints(routes []domain.DreamRoute, samples int) []HeatPoint {
	samples = normalizeSamples(samples)

	pairs := make([]*heatPair, 0, len(routes))
	byKey := make(map[string]*heatPair, len(routes))
	originCount := make(map[string]int)
	destCount := make(map[string]int)

	for _, r := range routes {
		count := r.Count
		if count <= 0 {
			count = 1
		}
		originCount[r.From.Name] += count
		destCount[r.To.Name] += count

		key := r.From.Name + "\x00" + r.To.Name
		if p, ok := byKey[key]; ok {
			p.demand += count
			continue
		}
		p := &heatPair{route: r, demand: count}
		byKey[key] = p
		pairs = append(pairs, p)
	}

	maxDemand, maxPopularity := 0, 0
	popularity := make([]int, len(pairs))
	for i, p := range pairs {
		popularity[i] = originCount[p.route.From.Name] + destCount[p.route.To.Name]
		if p.demand > maxDemand {
			maxDemand = p.demand
		}
		if popularity[i] > maxPopularity {
			maxPopularity = popularity[i]
		}
	}

	points := make([]HeatPoint, 0, len(pairs)*samples)
	for i, p := range pairs {
		intensity := clamp01(normalize(p.demand, maxDemand)*demandWeight + normalize(popularity[i], maxPopularity)*popularityWeight)

		from, to := p.route.From.Coordinates, p.route.To.Coordinates
		for s := 0; s < samples; s++ {
			t := float64(s) / float64(samples-1)
			w := intensity
			if s == 0 || s == samples-1 {
				w = clamp01(w * endpointBoost)
			}
			points = append(points, HeatPoint{
				Lng:       from[0] + (to[0]-from[0])*t,
				Lat:       from[1] + (to[1]-from[1])*t,
				Intensity: w,
			})
		}
	}

	return points
}

func normalizeSamples(samples int) int {
	if samples <= 0 {
		return DefaultHeatSamples
	}
	if samples < 2 {
		return 2
	}
	if samples > MaxHeatSamples {
		return MaxHeatSamples
	}
	return samples
}

func normalize(v, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(v) / float64(max)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// RoutesKey - отпечаток набора маршрутов, не зависящий от порядка
func RoutesKey(routes []domain.DreamRoute) string {
	sigs := make([]string, len(routes))
	for i, r := range routes {
		sigs[i] = r.ID + "|" + r.From.Name + "|" + formatCoord(r.From.Coordinates) +
			"|" + r.To.Name + "|" + formatCoord(r.To.Coordinates) + "|" + strconv.Itoa(r.Count)
	}
	sort.Strings(sigs)

	h := xxhash.New()
	for _, s := range sigs {
		_, _ = h.WriteString(s)
		_, _ = h.WriteString("\n")
	}
	return fmt.Sprintf("%d:%016x", len(routes), h.Sum64())
}

func formatCoord(c [2]float64) string {
	return strconv.FormatFloat(c[0], 'f', 6, 64) + "," + strconv.FormatFloat(c[1], 'f', 6, 64)
}

// HeatmapOverlay - тепловая карта поверх слоя мечт.
// Пересчёт только при смене набора маршрутов, переключение видимости не пересчитывает.
type HeatmapOverlay struct {
	overlayBase
	samples int

	mu           sync.Mutex
	key          string
	pushedKey    string
	points       []HeatPoint
	visible      bool
	computations int
}

// NewHeatmapOverlay создаёт оверлей; samples <= 0 - значение по умолчанию
func NewHeatmapOverlay(handle MapHandle, samples int, opts ...OverlayOption) *HeatmapOverlay {
	return &HeatmapOverlay{
		overlayBase: newOverlayBase(handle, opts),
		samples:     normalizeSamples(samples),
	}
}

// Update пересчитывает точки, если набор маршрутов изменился, и отправляет их в источник.
// Возвращает true, если был пересчёт.
func (o *HeatmapOverlay) Update(routes []domain.DreamRoute) (bool, error) {
	key := RoutesKey(routes)

	o.mu.Lock()
	defer o.mu.Unlock()

	recomputed := false
	if key != o.key {
		o.points = ComputeHeatPoints(routes, o.samples)
		o.key = key
		o.computations++
		recomputed = true
		o.logger.Debug("Heatmap recomputed", zap.Int("routes", len(routes)), zap.Int("points", len(o.points)))
	}

	if o.pushedKey == o.key || !o.available() {
		return recomputed, nil
	}

	if err := o.push(); err != nil {
		return recomputed, err
	}
	o.pushedKey = o.key
	return recomputed, nil
}

func (o *HeatmapOverlay) push() error {
	fc := HeatFeatures(o.points)
	if o.handle.HasSource(SourceHeat) {
		if err := o.handle.SetSourceData(SourceHeat, fc); err != nil {
			return fmt.Errorf("update heatmap source: %w", err)
		}
	}
	return o.ensure(SourceSpec{ID: SourceHeat, Data: fc}, o.layerSpec())
}

func (o *HeatmapOverlay) layerSpec() LayerSpec {
	return LayerSpec{
		ID:      LayerHeatmap,
		Source:  SourceHeat,
		Type:    TypeHeatmap,
		Visible: o.visible,
		Paint: map[string]interface{}{
			"heatmap-weight":    []interface{}{"get", "intensity"},
			"heatmap-intensity": []interface{}{"interpolate", []interface{}{"linear"}, []interface{}{"zoom"}, 0, 1, 9, 3},
			"heatmap-radius":    []interface{}{"interpolate", []interface{}{"linear"}, []interface{}{"zoom"}, 0, 2, 9, 20},
			"heatmap-opacity":   0.8,
		},
	}
}

// SetVisible показывает или скрывает слой без пересчёта
func (o *HeatmapOverlay) SetVisible(visible bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.visible = visible
	if !o.available() {
		return
	}
	if o.pushedKey != o.key {
		if err := o.push(); err != nil {
			o.logger.Warn("Failed to push heatmap", zap.Error(err))
			return
		}
		o.pushedKey = o.key
	}
	o.setVisibility(visible, LayerHeatmap)
}

func (o *HeatmapOverlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

// Points - последние вычисленные точки
func (o *HeatmapOverlay) Points() []HeatPoint {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]HeatPoint, len(o.points))
	copy(out, o.points)
	return out
}

// Computations - сколько раз выполнялся пересчёт
func (o *HeatmapOverlay) Computations() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.computations
}
