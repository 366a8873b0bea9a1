package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/catalog"
	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/couchcryptid/saferoute-scoring-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type fixedCatalog struct {
	snapshot catalog.Snapshot
	hours    uint
	calls    int
}

func (f *fixedCatalog) Snapshot(_ context.Context, hours uint, _, _ domain.Coordinate) catalog.Snapshot {
	f.calls++
	f.hours = hours
	return f.snapshot
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.RouteSetScored
}

func (p *recordingPublisher) Enqueue(e domain.RouteSetScored) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return true
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	testNow   = time.Date(2024, 4, 27, 12, 0, 0, 0, time.UTC)
	equator   = domain.Coordinate{Lat: 0, Lon: 0}
	equatorE  = domain.Coordinate{Lat: 0, Lon: 0.1}
	midHazard = domain.Hazard{ID: "1", Location: domain.Coordinate{Lat: 0, Lon: 0.05}, Category: domain.CategoryUnsafe}
)

func newTestEngine(snap catalog.Snapshot, pub Publisher) (*Engine, *fixedCatalog, *observability.Metrics) {
	cat := &fixedCatalog{snapshot: snap}
	metrics := observability.NewMetricsForTesting()
	return New(cat, 48, pub, clockwork.NewFakeClockAt(testNow), discardLogger(), metrics), cat, metrics
}

// --- tests ---

func TestComputeRoutes_RankedAndScored(t *testing.T) {
	e, cat, metrics := newTestEngine(catalog.Snapshot{Hazards: []domain.Hazard{midHazard}, Origin: catalog.OriginLive}, nil)

	set, err := e.ComputeRoutes(context.Background(), equator, equatorE)
	require.NoError(t, err)

	assert.Equal(t, uint(48), cat.hours)
	assert.Equal(t, catalog.OriginLive, set.HazardSource)
	require.Len(t, set.Routes, 3)
	assert.Equal(t, []int{2, 3, 1}, []int{set.Routes[0].ID, set.Routes[1].ID, set.Routes[2].ID})

	fast, ok := set.Route(1)
	require.True(t, ok)
	assert.Equal(t, 1, fast.HazardCount)
	assert.Equal(t, 85, fast.SafetyScore)
	assert.InDelta(t, 11.1, fast.DistanceKm, 1e-9)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RouteSetsComputed), 0)
}

func TestComputeRoutes_RejectsInvalidCoordinates(t *testing.T) {
	e, cat, _ := newTestEngine(catalog.Snapshot{}, nil)

	_, err := e.ComputeRoutes(context.Background(), domain.Coordinate{Lat: 91}, equatorE)
	require.ErrorIs(t, err, domain.ErrInvalidCoordinate)

	_, err = e.ComputeRoutes(context.Background(), equator, domain.Coordinate{Lon: -181})
	require.ErrorIs(t, err, domain.ErrInvalidCoordinate)

	assert.Zero(t, cat.calls, "catalog must not be queried for rejected input")
}

func TestComputeRoutes_SyntheticFallbackStillYieldsThreeRoutes(t *testing.T) {
	gen := catalog.NewGenerator(17)
	cat := catalog.New(nil, gen, time.Second, discardLogger(), observability.NewMetricsForTesting())
	e := New(cat, 48, nil, clockwork.NewFakeClockAt(testNow), discardLogger(), observability.NewMetricsForTesting())

	start := domain.Coordinate{Lat: 40.7128, Lon: -74.0060}
	end := domain.Coordinate{Lat: 40.7328, Lon: -73.9860}
	set, err := e.ComputeRoutes(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, catalog.OriginSynthetic, set.HazardSource)
	assert.GreaterOrEqual(t, len(set.Hazards), 5)
	assert.LessOrEqual(t, len(set.Hazards), 8)
	require.Len(t, set.Routes, 3)
	for _, r := range set.Routes {
		assert.Equal(t, domain.CountNearby(r.Path, set.Hazards, domain.CorridorRadiusKm), r.HazardCount)
	}
}

func TestComputeRoutes_DeterministicForFixedSnapshot(t *testing.T) {
	e, _, _ := newTestEngine(catalog.Snapshot{Hazards: []domain.Hazard{midHazard}, Origin: catalog.OriginLive}, nil)

	a, err := e.ComputeRoutes(context.Background(), equator, equatorE)
	require.NoError(t, err)
	b, err := e.ComputeRoutes(context.Background(), equator, equatorE)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestComputeRoutes_PublishesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	e, _, _ := newTestEngine(catalog.Snapshot{Hazards: []domain.Hazard{midHazard}, Origin: catalog.OriginSynthetic}, pub)

	_, err := e.ComputeRoutes(context.Background(), equator, equatorE)
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "synthetic", ev.HazardSource)
	assert.Equal(t, 1, ev.HazardsSeen)
	assert.Equal(t, testNow, ev.ComputedAt)
	assert.Equal(t, equator, ev.Start)
	assert.Equal(t, equatorE, ev.End)
	require.Len(t, ev.Routes, 3)
	assert.Equal(t, domain.VariantSafe, ev.Routes[0].Variant)
}
