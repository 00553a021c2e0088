package mapview

import (
	"fmt"
	"sort"
)

// LayerGroup - группа слоёв, переключаемая целиком
type LayerGroup string

const (
	GroupDream   LayerGroup = "dream"
	GroupReality LayerGroup = "reality"
)

// ID источников и слоёв
const (
	SourceDreams        = "dreams"
	SourceDreamRoutes   = "dream-routes"
	SourcePlaces        = "places"
	SourceRealityRoutes = "reality-routes"
	SourceRealityNodes  = "reality-stations"
	SourceHeat          = "dream-heat"
	SourceCriticalMass  = "critical-mass"

	LayerDreamClusters     = "dream-clusters"
	LayerDreamClusterCount = "dream-cluster-count"
	LayerDreamPoints       = "dream-points"
	LayerDreamRoutes       = "dream-routes"
	LayerPlaces            = "places"
	LayerRealityRoutes     = "reality-routes"
	LayerRealityStations   = "reality-stations"
	LayerHeatmap           = "dream-heatmap"
	LayerCriticalMass      = "critical-mass-markers"
	LayerCriticalMassPulse = "critical-mass-pulse"
)

// DetailKind - какую панель открывает клик по слою
type DetailKind string

const (
	DetailNone    DetailKind = ""
	DetailStation DetailKind = "station"
	DetailRoute   DetailKind = "route"
	DetailPlace   DetailKind = "place"
)

// GroupSpec - источники и слои одной группы
type GroupSpec struct {
	Sources []SourceSpec
	Layers  []LayerSpec
	// Clickable - слой -> тип детальной панели
	Clickable map[string]DetailKind
	// Clusters - слои кластеров, клик по которым приближает карту
	Clusters map[string]bool
}

// LayerRegistry - типизированное отображение группы на её источники и слои
type LayerRegistry struct {
	groups map[LayerGroup]GroupSpec
}

// NewLayerRegistry создаёт пустой реестр
func NewLayerRegistry() *LayerRegistry {
	return &LayerRegistry{groups: make(map[LayerGroup]GroupSpec)}
}

// Register добавляет группу. Повторная регистрация заменяет описание
func (r *LayerRegistry) Register(group LayerGroup, spec GroupSpec) error {
	sources := make(map[string]bool, len(spec.Sources))
	for _, s := range spec.Sources {
		sources[s.ID] = true
	}
	for _, l := range spec.Layers {
		if !sources[l.Source] {
			return fmt.Errorf("layer %q of group %q references unknown source %q", l.ID, group, l.Source)
		}
	}
	r.groups[group] = spec
	return nil
}

// Group возвращает описание группы
func (r *LayerRegistry) Group(group LayerGroup) (GroupSpec, bool) {
	spec, ok := r.groups[group]
	return spec, ok
}

// Groups - зарегистрированные группы в стабильном порядке
func (r *LayerRegistry) Groups() []LayerGroup {
	out := make([]LayerGroup, 0, len(r.groups))
	for g := range r.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LayerIDs - ID слоёв группы
func (r *LayerRegistry) LayerIDs(group LayerGroup) []string {
	spec := r.groups[group]
	ids := make([]string, len(spec.Layers))
	for i, l := range spec.Layers {
		ids[i] = l.ID
	}
	return ids
}

// lookupLayer находит группу и описание слоя по ID
func (r *LayerRegistry) lookupLayer(layerID string) (LayerGroup, LayerSpec, bool) {
	for g, spec := range r.groups {
		for _, l := range spec.Layers {
			if l.ID == layerID {
				return g, l, true
			}
		}
	}
	return "", LayerSpec{}, false
}

// DefaultRegistry - слои «Мечты» и «Реальности»
func DefaultRegistry() *LayerRegistry {
	r := NewLayerRegistry()

	_ = r.Register(GroupDream, GroupSpec{
		Sources: []SourceSpec{
			{ID: SourceDreams, Cluster: true, ClusterRadius: 50, ClusterMaxZoom: 14},
			{ID: SourceDreamRoutes},
			{ID: SourcePlaces},
		},
		Layers: []LayerSpec{
			{
				ID: LayerDreamRoutes, Source: SourceDreamRoutes, Type: TypeLine,
				Paint: map[string]interface{}{
					"line-color":   "#a855f7",
					"line-width":   2,
					"line-opacity": 0.6,
				},
			},
			{
				ID: LayerDreamClusters, Source: SourceDreams, Type: TypeCircle,
				Filter: []interface{}{"has", "point_count"},
				Paint: map[string]interface{}{
					"circle-color":  "#8b5cf6",
					"circle-radius": []interface{}{"step", []interface{}{"get", "point_count"}, 18, 10, 24, 50, 32},
				},
			},
			{
				ID: LayerDreamClusterCount, Source: SourceDreams, Type: TypeSymbol,
				Filter: []interface{}{"has", "point_count"},
				Layout: map[string]interface{}{
					"text-field": "{point_count_abbreviated}",
					"text-size":  12,
				},
			},
			{
				ID: LayerDreamPoints, Source: SourceDreams, Type: TypeCircle,
				Filter: []interface{}{"!", []interface{}{"has", "point_count"}},
				Paint: map[string]interface{}{
					"circle-color":        "#c084fc",
					"circle-radius":       7,
					"circle-stroke-width": 1,
					"circle-stroke-color": "#ffffff",
				},
			},
			{
				ID: LayerPlaces, Source: SourcePlaces, Type: TypeCircle,
				Paint: map[string]interface{}{
					"circle-color":  "#f59e0b",
					"circle-radius": 5,
				},
			},
		},
		Clickable: map[string]DetailKind{
			LayerDreamPoints: DetailStation,
			LayerDreamRoutes: DetailRoute,
			LayerPlaces:      DetailPlace,
		},
		Clusters: map[string]bool{LayerDreamClusters: true},
	})

	_ = r.Register(GroupReality, GroupSpec{
		Sources: []SourceSpec{
			{ID: SourceRealityRoutes},
			{ID: SourceRealityNodes},
		},
		Layers: []LayerSpec{
			{
				ID: LayerRealityRoutes, Source: SourceRealityRoutes, Type: TypeLine,
				Paint: map[string]interface{}{
					"line-color": "#22c55e",
					"line-width": 3,
				},
			},
			{
				ID: LayerRealityStations, Source: SourceRealityNodes, Type: TypeCircle,
				Paint: map[string]interface{}{
					"circle-color":  "#16a34a",
					"circle-radius": 6,
				},
			},
		},
		Clickable: map[string]DetailKind{
			LayerRealityRoutes:   DetailRoute,
			LayerRealityStations: DetailStation,
		},
	})

	return r
}
