package mapview_test

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/pkg/mapview"
)

type fakeFeatureSource struct {
	dreams    *geojson.FeatureCollection
	placesErr error
	network   domain.RealityNetwork
}

func (f *fakeFeatureSource) DreamFeatures(ctx context.Context) (*geojson.FeatureCollection, error) {
	return f.dreams, nil
}

func (f *fakeFeatureSource) PlaceFeatures(ctx context.Context) (*geojson.FeatureCollection, error) {
	if f.placesErr != nil {
		return nil, f.placesErr
	}
	return mapview.PlaceFeatures([]domain.Place{{ID: "p1", Name: "Museum Island", Lat: 52.5169, Lng: 13.4019}}), nil
}

func (f *fakeFeatureSource) RealityFeatures(ctx context.Context) (*geojson.FeatureCollection, *geojson.FeatureCollection, error) {
	stations, routes := mapview.RealityFeatures(f.network)
	return stations, routes, nil
}

func newFakeSource() *fakeFeatureSource {
	return &fakeFeatureSource{
		dreams: mapview.DreamFeatures([]domain.Dream{{
			ID:              "d1",
			OriginStation:   "Berlin Hauptbahnhof",
			OriginLat:       ptr(52.5251),
			OriginLng:       ptr(13.3694),
			DestinationCity: "Barcelona",
			DestinationLat:  ptr(41.3874),
			DestinationLng:  ptr(2.1686),
		}}),
		network: domain.RealityNetwork{
			Stations: []domain.RealityStation{{ID: "wien-hbf", Name: "Wien Hauptbahnhof", Lat: 48.1851, Lng: 16.3755}},
			Routes:   []domain.RealityRoute{{ID: "nj", Path: [][2]float64{{16.3755, 48.1851}, {13.3694, 52.5251}}}},
		},
	}
}

func TestAPILoader_FillsManagerSources(t *testing.T) {
	m, mgr := newLoadedManager(t, mapview.WithLoader(mapview.APILoader(newFakeSource())))

	require.Len(t, m.SourceData(mapview.SourceDreams).Features, 1)
	assert.Equal(t, orb.Point{13.3694, 52.5251}, m.SourceData(mapview.SourceDreams).Features[0].Geometry)
	assert.Len(t, m.SourceData(mapview.SourceDreamRoutes).Features, 1)
	assert.Len(t, m.SourceData(mapview.SourcePlaces).Features, 1)

	_, err := mgr.SwitchTo(context.Background(), mapview.GroupReality)
	require.NoError(t, err)
	assert.Len(t, m.SourceData(mapview.SourceRealityNodes).Features, 1)
	assert.Len(t, m.SourceData(mapview.SourceRealityRoutes).Features, 1)
}

func TestAPILoader_PlacesFailureKeepsDreams(t *testing.T) {
	src := newFakeSource()
	src.placesErr = errors.New("places unavailable")

	data, err := mapview.APILoader(src)(context.Background(), mapview.GroupDream)

	assert.ErrorContains(t, err, "places unavailable")
	assert.Len(t, data[mapview.SourceDreams].Features, 1)
	assert.Nil(t, data[mapview.SourcePlaces])
}

func TestCanvasCapturer(t *testing.T) {
	m := mapview.NewMemoryMap()
	capturer := mapview.CanvasCapturer{Handle: m}

	_, err := capturer.Capture(context.Background(), 100, 50)
	assert.ErrorIs(t, err, mapview.ErrMapUnavailable)

	m.EmitLoad()
	img, err := capturer.Capture(context.Background(), 100, 50)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 50), img.Bounds())

	capturer.Ready = func() bool { return false }
	_, err = capturer.Capture(context.Background(), 100, 50)
	assert.ErrorIs(t, err, mapview.ErrMapUnavailable)
}
