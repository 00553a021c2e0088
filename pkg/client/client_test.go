package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giovanto/pyjama-party-platform-sub000/pkg/client"
)

func newServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *client.Client) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, client.New(srv.URL)
}

func TestSearchStations_ResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "wrapped", body: `{"stations":[{"id":"1","name":"Berlin Hbf","lat":52.52,"lng":13.37}]}`},
		{name: "bare array", body: `[{"id":"1","name":"Berlin Hbf","lat":52.52,"lng":13.37}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/stations/search", r.URL.Path)
				assert.Equal(t, "ber", r.URL.Query().Get("q"))
				assert.Equal(t, "DE", r.URL.Query().Get("country"))
				assert.Equal(t, "5", r.URL.Query().Get("limit"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})

			stations, err := c.SearchStations(context.Background(), client.StationQuery{Query: "ber", Country: "DE", Limit: 5})

			require.NoError(t, err)
			require.Len(t, stations, 1)
			assert.Equal(t, "Berlin Hbf", stations[0].Name)
			assert.InDelta(t, 13.37, stations[0].Lng, 1e-9)
		})
	}
}

func TestServerErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    string
		wantMessage string
	}{
		{
			name:        "string error",
			status:      http.StatusBadRequest,
			body:        `{"error":"Name is required"}`,
			wantMessage: "Name is required",
		},
		{
			name:        "structured error",
			status:      http.StatusBadRequest,
			body:        `{"error":{"code":"VALIDATION_FAILED","message":"Validation failed","details":{"email":"is required"}}}`,
			wantCode:    "VALIDATION_FAILED",
			wantMessage: "Validation failed",
		},
		{
			name:        "no body",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: client.MessageServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Stats(context.Background())

			var serverErr *client.ServerError
			require.ErrorAs(t, err, &serverErr)
			assert.Equal(t, tt.status, serverErr.Status)
			assert.Equal(t, tt.wantCode, serverErr.Code)
			assert.Equal(t, tt.wantMessage, client.UserMessage(err))
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := client.New(url)
	_, err := c.Stats(context.Background())

	var transportErr *client.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, client.MessageConnection, client.UserMessage(err))
}

func TestCancelledContextIsNotTransportError(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Stats(ctx)

	assert.True(t, errors.Is(err, context.Canceled))
	var transportErr *client.TransportError
	assert.False(t, errors.As(err, &transportErr))
}

const realityBody = `{
  "stations": {"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[16.37,48.18]},"properties":{"name":"Wien"}}]},
  "routes": {"type":"FeatureCollection","features":[]}
}`

func TestReality_FallsBackToStaticFile(t *testing.T) {
	var paths []string
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/api/reality/map" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(realityBody))
	})

	stations, routes, err := c.RealityFeatures(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"/api/reality/map", "/reality-network.geojson"}, paths)
	require.Len(t, stations.Features, 1)
	assert.Equal(t, orb.Point{16.37, 48.18}, stations.Features[0].Geometry)
	assert.Empty(t, routes.Features)
}

func TestReality_BothFail(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})

	_, err := c.Reality(context.Background())

	var serverErr *client.ServerError
	require.ErrorAs(t, err, &serverErr)
}

func TestDreamAndPlaceFeatures(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dreams/geojson":
			_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[13.37,52.52]},"properties":{"origin_station":"Berlin Hbf"}}]}`))
		case "/api/places/search":
			assert.Equal(t, "500", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"places":[{"id":"p1","name":"Sagrada","category":"landmark","lat":41.40,"lng":2.17}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	dreams, err := c.DreamFeatures(context.Background())
	require.NoError(t, err)
	require.Len(t, dreams.Features, 1)
	// [lng, lat] без перестановки
	assert.Equal(t, orb.Point{13.37, 52.52}, dreams.Features[0].Geometry)

	places, err := c.PlaceFeatures(context.Background())
	require.NoError(t, err)
	require.Len(t, places.Features, 1)
	assert.Equal(t, orb.Point{2.17, 41.40}, places.Features[0].Geometry)
	assert.Equal(t, "Sagrada", places.Features[0].Properties["name"])
}

func TestValidationErrorMessage(t *testing.T) {
	err := &client.ValidationError{Fields: map[string]string{"email": "is required", "dreamer_name": "is required"}}
	assert.Equal(t, "validation failed: dreamer_name is required; email is required", client.UserMessage(err))
}
