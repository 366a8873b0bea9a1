package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/couchcryptid/saferoute-scoring-service/internal/observability"
)

// Queue is a bounded in-process buffer of route set events awaiting
// publication. It implements engine.Publisher and BatchExtractor.
type Queue struct {
	events        chan domain.RouteSetScored
	flushInterval time.Duration
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewQueue creates a queue holding at most capacity events. ExtractBatch waits
// at most flushInterval for a batch to fill once it has its first event.
func NewQueue(capacity int, flushInterval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Queue {
	return &Queue{
		events:        make(chan domain.RouteSetScored, capacity),
		flushInterval: flushInterval,
		logger:        logger,
		metrics:       metrics,
	}
}

// Enqueue adds an event without blocking. A full queue drops the event.
func (q *Queue) Enqueue(event domain.RouteSetScored) bool {
	select {
	case q.events <- event:
		return true
	default:
		q.metrics.EventsDropped.Inc()
		q.logger.Warn("publish queue full, dropping event", "event_id", event.ID, "capacity", cap(q.events))
		return false
	}
}

// ExtractBatch blocks until at least one event is available, then collects
// up to batchSize events or until the flush interval elapses.
func (q *Queue) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RouteSetScored, error) {
	var batch []domain.RouteSetScored

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case ev := <-q.events:
		batch = append(batch, ev)
	}

	timer := time.NewTimer(q.flushInterval)
	defer timer.Stop()

	for len(batch) < batchSize {
		select {
		case <-ctx.Done():
			return batch, nil
		case <-timer.C:
			return batch, nil
		case ev := <-q.events:
			batch = append(batch, ev)
		}
	}
	return batch, nil
}

// Len reports the number of queued events.
func (q *Queue) Len() int { return len(q.events) }
