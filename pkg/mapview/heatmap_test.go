package mapview_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/pkg/mapview"
)

var (
	berlin    = domain.RouteEndpoint{Name: "Berlin Hauptbahnhof", Coordinates: [2]float64{13.0, 52.0}}
	barcelona = domain.RouteEndpoint{Name: "Barcelona", Coordinates: [2]float64{2.0, 41.0}}
	roma      = domain.RouteEndpoint{Name: "Roma", Coordinates: [2]float64{12.0, 42.0}}
)

func sampleRoutes() []domain.DreamRoute {
	return []domain.DreamRoute{
		{ID: "r1", From: berlin, To: barcelona, Count: 1},
		{ID: "r2", From: berlin, To: barcelona, Count: 1},
		{ID: "r3", From: berlin, To: roma, Count: 1},
	}
}

func TestComputeHeatPoints_Weights(t *testing.T) {
	points := mapview.ComputeHeatPoints(sampleRoutes(), 5)

	// one sample set per unique endpoint pair
	require.Len(t, points, 10)

	// Berlin→Barcelona: max demand and max popularity
	assert.InDelta(t, 1.0, points[0].Intensity, 1e-9)
	assert.InDelta(t, 1.0, points[2].Intensity, 1e-9)
	assert.InDelta(t, 7.5, points[2].Lng, 1e-9)
	assert.InDelta(t, 46.5, points[2].Lat, 1e-9)

	// Berlin→Roma: demand 1/2, popularity 4/5
	base := 0.5*0.7 + 0.8*0.3
	assert.InDelta(t, base*1.2, points[5].Intensity, 1e-9)
	assert.InDelta(t, base, points[7].Intensity, 1e-9)
	assert.InDelta(t, base*1.2, points[9].Intensity, 1e-9)
	assert.Equal(t, 13.0, points[5].Lng)
	assert.Equal(t, 52.0, points[5].Lat)
	assert.Equal(t, 12.0, points[9].Lng)
	assert.Equal(t, 42.0, points[9].Lat)
}

func TestComputeHeatPoints_Bounds(t *testing.T) {
	for _, p := range mapview.ComputeHeatPoints(sampleRoutes(), 0) {
		assert.GreaterOrEqual(t, p.Intensity, 0.0)
		assert.LessOrEqual(t, p.Intensity, 1.0)
	}

	assert.Len(t, mapview.ComputeHeatPoints(sampleRoutes(), 0), 2*mapview.DefaultHeatSamples)
	assert.Len(t, mapview.ComputeHeatPoints(sampleRoutes(), 1), 4)
	assert.Empty(t, mapview.ComputeHeatPoints(nil, 10))
}

func TestRoutesKey_IgnoresOrder(t *testing.T) {
	routes := sampleRoutes()
	reversed := []domain.DreamRoute{routes[2], routes[1], routes[0]}

	assert.Equal(t, mapview.RoutesKey(routes), mapview.RoutesKey(reversed))
	assert.NotEqual(t, mapview.RoutesKey(routes), mapview.RoutesKey(routes[:2]))
}

func TestHeatmapOverlay_ToggleDoesNotRecompute(t *testing.T) {
	m := mapview.NewMemoryMap()
	m.EmitLoad()
	overlay := mapview.NewHeatmapOverlay(m, 5)

	recomputed, err := overlay.Update(sampleRoutes())
	require.NoError(t, err)
	assert.True(t, recomputed)
	require.True(t, m.HasLayer(mapview.LayerHeatmap))
	assert.False(t, m.Visible(mapview.LayerHeatmap))
	assert.Len(t, m.SourceData(mapview.SourceHeat).Features, 10)

	pushes := m.Ops("SetSourceData")

	overlay.SetVisible(true)
	assert.True(t, m.Visible(mapview.LayerHeatmap))
	overlay.SetVisible(false)
	assert.False(t, m.Visible(mapview.LayerHeatmap))

	routes := sampleRoutes()
	recomputed, err = overlay.Update([]domain.DreamRoute{routes[1], routes[0], routes[2]})
	require.NoError(t, err)
	assert.False(t, recomputed)

	assert.Equal(t, 1, overlay.Computations())
	assert.Equal(t, pushes, m.Ops("SetSourceData"))
}

func TestHeatmapOverlay_RecomputesOnNewRoutes(t *testing.T) {
	m := mapview.NewMemoryMap()
	m.EmitLoad()
	overlay := mapview.NewHeatmapOverlay(m, 5)

	_, err := overlay.Update(sampleRoutes()[:1])
	require.NoError(t, err)

	recomputed, err := overlay.Update(sampleRoutes())
	require.NoError(t, err)

	assert.True(t, recomputed)
	assert.Equal(t, 2, overlay.Computations())
	assert.Equal(t, 1, m.Ops("SetSourceData"))
	assert.Len(t, m.SourceData(mapview.SourceHeat).Features, 10)
}

func TestHeatmapOverlay_WaitsForMap(t *testing.T) {
	m := mapview.NewMemoryMap()
	overlay := mapview.NewHeatmapOverlay(m, 5)

	recomputed, err := overlay.Update(sampleRoutes())
	require.NoError(t, err)
	assert.True(t, recomputed)
	assert.False(t, m.HasSource(mapview.SourceHeat))

	m.EmitLoad()
	recomputed, err = overlay.Update(sampleRoutes())
	require.NoError(t, err)

	assert.False(t, recomputed)
	assert.True(t, m.HasSource(mapview.SourceHeat))
	assert.Equal(t, 1, overlay.Computations())
}

func TestHeatmapOverlay_ReadyCheck(t *testing.T) {
	m := mapview.NewMemoryMap()
	m.EmitLoad()
	ready := false
	overlay := mapview.NewHeatmapOverlay(m, 5, mapview.WithReadyCheck(func() bool { return ready }))

	_, err := overlay.Update(sampleRoutes())
	require.NoError(t, err)
	overlay.SetVisible(true)
	assert.False(t, m.HasLayer(mapview.LayerHeatmap))

	ready = true
	overlay.SetVisible(true)
	assert.True(t, m.Visible(mapview.LayerHeatmap))
	assert.True(t, overlay.Visible())
}
