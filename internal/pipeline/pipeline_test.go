package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/couchcryptid/saferoute-scoring-service/internal/observability"
	"github.com/couchcryptid/saferoute-scoring-service/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RouteSetScored
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RouteSetScored, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate an idle queue
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, ev domain.RouteSetScored) (domain.OutputEvent, error) {
	if m.err != nil {
		return domain.OutputEvent{}, m.err
	}
	return domain.OutputEvent{Key: []byte(ev.ID), Value: []byte(ev.HazardSource)}, nil
}

type mockLoader struct {
	mu       sync.Mutex
	failures int
	calls    int
	loaded   []domain.OutputEvent
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failures {
		return errors.New("broker unavailable")
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func (m *mockLoader) snapshot() (int, []domain.OutputEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls, append([]domain.OutputEvent(nil), m.loaded...)
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RouteSetScored{{makeEvent("evt-1"), makeEvent("evt-2")}}}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	_, loaded := ldr.snapshot()
	require.Len(t, loaded, 2)
	assert.Equal(t, []byte("evt-1"), loaded[0].Key)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.EventsPublished), 0)
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.PublisherRunning), 0)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	calls, _ := ldr.snapshot()
	assert.Zero(t, calls)
}

func TestPipeline_Run_TransformErrorSkipsEvent(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RouteSetScored{{makeEvent("evt-3")}}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{err: errors.New("bad data")}, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	calls, _ := ldr.snapshot()
	assert.Zero(t, calls)
}

func TestPipeline_Run_RetriesFailedLoad(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RouteSetScored{{makeEvent("evt-4")}}}
	ldr := &mockLoader{failures: 1}
	metrics := newTestMetrics()

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	calls, loaded := ldr.snapshot()
	assert.Equal(t, 2, calls)
	assert.Len(t, loaded, 1)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.PublishErrors), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.EventsPublished), 0)
}

func TestPipeline_CheckReadiness(t *testing.T) {
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, &mockLoader{}, slog.Default(), newTestMetrics(), 10)
	require.Error(t, p.CheckReadiness(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return p.CheckReadiness(context.Background()) == nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestEventSerializer_Transform(t *testing.T) {
	ev := makeEvent("evt-5")

	out, err := pipeline.NewTransformer().Transform(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, []byte("evt-5"), out.Key)
	assert.Equal(t, "live", out.Headers["hazard_source"])
	assert.Equal(t, "2026-03-01T12:00:00Z", out.Headers["computed_at"])

	var got domain.RouteSetScored
	require.NoError(t, json.Unmarshal(out.Value, &got))
	if diff := cmp.Diff(ev, got); diff != "" {
		t.Fatalf("decoded event mismatch (-want +got):\n%s", diff)
	}
}

// --- helpers ---

func makeEvent(id string) domain.RouteSetScored {
	start := domain.Coordinate{Lat: 40.7128, Lon: -74.0060}
	end := domain.Coordinate{Lat: 40.7580, Lon: -73.9855}
	routes := []domain.Route{domain.NewRoute(domain.VariantFast, domain.Synthesize(start, end)[domain.VariantFast], 0)}
	return domain.NewRouteSetScored(id, start, end, "live", 3, routes,
		time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
}
