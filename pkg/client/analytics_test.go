package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giovanto/pyjama-party-platform-sub000/pkg/client"
)

func TestAnalytics_InertWithoutConsent(t *testing.T) {
	var hits atomic.Int32
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusAccepted)
	})

	analytics := client.NewAnalytics(c, client.NewMemoryConsentStore(false), nil)

	sent, err := analytics.Track(context.Background(), "map_layer_switched", map[string]interface{}{"layer": "reality"})
	require.NoError(t, err)
	assert.False(t, sent)

	_, err = analytics.Advocacy(context.Background(), 10)
	assert.ErrorIs(t, err, client.ErrConsentRequired)

	assert.Zero(t, hits.Load())
}

func TestAnalytics_SendsWithConsent(t *testing.T) {
	var received client.Event
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/analytics/events":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"accepted":true,"id":"e1"}`))
		case "/api/analytics/advocacy":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"top_origins":[{"name":"Berlin Hbf","count":12}],"event_counts":{"dream_submitted":3}}`))
		}
	})

	consent := client.NewMemoryConsentStore(false)
	analytics := client.NewAnalytics(c, consent, nil)
	require.NoError(t, consent.SetConsent(true))

	sent, err := analytics.Track(context.Background(), "dream_submitted", map[string]interface{}{"origin": "Berlin Hbf"})
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, "dream_submitted", received.EventType)
	assert.True(t, received.Consent)
	assert.Equal(t, analytics.SessionID(), received.SessionID)
	assert.Equal(t, "Berlin Hbf", received.Properties["origin"])

	summary, err := analytics.Advocacy(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, summary.TopOrigins, 1)
	assert.Equal(t, 12, summary.TopOrigins[0].Count)
	assert.Equal(t, 3, summary.EventCounts["dream_submitted"])
}

func TestFileConsentStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "consent.json")
	store := client.NewFileConsentStore(path)

	granted, err := store.Consent()
	require.NoError(t, err)
	assert.False(t, granted, "missing file means no consent")

	require.NoError(t, store.SetConsent(true))
	granted, err = client.NewFileConsentStore(path).Consent()
	require.NoError(t, err)
	assert.True(t, granted)

	require.NoError(t, store.SetConsent(false))
	granted, err = store.Consent()
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestFileConsentStore_CorruptFileMeansNoTracking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consent.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	var hits atomic.Int32
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })

	analytics := client.NewAnalytics(c, client.NewFileConsentStore(path), nil)
	sent, err := analytics.Track(context.Background(), "page_view", nil)

	require.NoError(t, err)
	assert.False(t, sent)
	assert.Zero(t, hits.Load())
}
