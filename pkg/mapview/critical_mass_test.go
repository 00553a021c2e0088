package mapview_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/pkg/mapview"
)

func criticalEntries() []domain.CriticalMassEntry {
	return domain.BuildCriticalMass([]domain.StationDreamCount{
		{Station: "Berlin Hauptbahnhof", Lat: ptr(52.52), Lng: ptr(13.37), Count: 24},
		{Station: "Wien Hauptbahnhof", Lat: ptr(48.18), Lng: ptr(16.37), Count: 3},
	})
}

func TestCriticalMassOverlay_PulseFollowsVisibility(t *testing.T) {
	m := mapview.NewMemoryMap()
	m.EmitLoad()
	overlay := mapview.NewCriticalMassOverlay(m)
	defer overlay.Close()

	recomputed, err := overlay.Update(criticalEntries())
	require.NoError(t, err)
	assert.True(t, recomputed)
	assert.False(t, overlay.Animating())

	overlay.SetVisible(true)
	assert.True(t, m.Visible(mapview.LayerCriticalMass))
	assert.True(t, overlay.Animating())
	require.Eventually(t, func() bool { return m.Ops("SetPaintProperty") > 0 }, time.Second, 10*time.Millisecond)

	overlay.SetVisible(false)
	assert.False(t, overlay.Animating())
	assert.False(t, m.Visible(mapview.LayerCriticalMassPulse))

	frames := m.Ops("SetPaintProperty")
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, frames, m.Ops("SetPaintProperty"))
}

func TestCriticalMassOverlay_NoPulseWithoutHighDemand(t *testing.T) {
	m := mapview.NewMemoryMap()
	m.EmitLoad()
	overlay := mapview.NewCriticalMassOverlay(m)
	defer overlay.Close()

	_, err := overlay.Update(criticalEntries()[1:])
	require.NoError(t, err)
	overlay.SetVisible(true)

	assert.True(t, m.Visible(mapview.LayerCriticalMass))
	assert.False(t, overlay.Animating())
}

func TestCriticalMassOverlay_CloseStopsAnimation(t *testing.T) {
	m := mapview.NewMemoryMap()
	m.EmitLoad()
	overlay := mapview.NewCriticalMassOverlay(m)

	_, err := overlay.Update(criticalEntries())
	require.NoError(t, err)
	overlay.SetVisible(true)
	require.True(t, overlay.Animating())

	overlay.Close()

	assert.False(t, overlay.Animating())
}

func TestCriticalMassOverlay_NoRestartAfterClose(t *testing.T) {
	m := mapview.NewMemoryMap()
	m.EmitLoad()
	overlay := mapview.NewCriticalMassOverlay(m)

	_, err := overlay.Update(criticalEntries())
	require.NoError(t, err)
	overlay.Close()

	overlay.SetVisible(true)
	assert.False(t, overlay.Animating())

	_, err = overlay.Update(criticalEntries()[:1])
	require.NoError(t, err)
	assert.False(t, overlay.Animating())
}

func TestCriticalMassOverlay_HiddenAfterConcurrentUpdates(t *testing.T) {
	m := mapview.NewMemoryMap()
	m.EmitLoad()
	overlay := mapview.NewCriticalMassOverlay(m)
	defer overlay.Close()

	overlay.SetVisible(true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			entries := criticalEntries()
			if i%2 == 0 {
				entries = entries[:1]
			}
			_, _ = overlay.Update(entries)
		}(i)
		go func(i int) {
			defer wg.Done()
			overlay.SetVisible(i%2 == 0)
		}(i)
	}
	wg.Wait()

	overlay.SetVisible(false)
	assert.False(t, overlay.Animating())

	_, err := overlay.Update(criticalEntries())
	require.NoError(t, err)
	assert.False(t, overlay.Animating())
}

func TestCriticalMassOverlay_SameEntriesNotRecomputed(t *testing.T) {
	m := mapview.NewMemoryMap()
	m.EmitLoad()
	overlay := mapview.NewCriticalMassOverlay(m)
	defer overlay.Close()

	_, err := overlay.Update(criticalEntries())
	require.NoError(t, err)
	recomputed, err := overlay.Update(criticalEntries())
	require.NoError(t, err)

	assert.False(t, recomputed)
	assert.Equal(t, 1, overlay.Computations())
	assert.Len(t, m.SourceData(mapview.SourceCriticalMass).Features, 2)
}

func TestAnimator_StartStop(t *testing.T) {
	var frames atomic.Int32
	a := mapview.NewAnimator(5*time.Millisecond, func(time.Duration) { frames.Add(1) })

	require.True(t, a.Start(context.Background()))
	assert.False(t, a.Start(context.Background()))
	require.Eventually(t, func() bool { return frames.Load() > 2 }, time.Second, 5*time.Millisecond)

	a.Stop()
	assert.False(t, a.Running())

	stopped := frames.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, frames.Load())

	// Stop is idempotent and the animator can be restarted
	a.Stop()
	assert.True(t, a.Start(context.Background()))
	a.Stop()
}

func TestAnimator_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := mapview.NewAnimator(5*time.Millisecond, func(time.Duration) {})

	require.True(t, a.Start(ctx))
	cancel()

	require.Eventually(t, func() bool { return !a.Running() }, time.Second, 5*time.Millisecond)
	a.Stop()
}
