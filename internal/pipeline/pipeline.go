package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/couchcryptid/saferoute-scoring-service/internal/observability"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
)

// maxLoadAttempts bounds retries of one batch before it is dropped.
const maxLoadAttempts = 5

// BatchExtractor reads up to batchSize events awaiting publication.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RouteSetScored, error)
}

// Transformer converts a route set event into an output message.
type Transformer interface {
	Transform(ctx context.Context, event domain.RouteSetScored) (domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline drains queued route set events and publishes them in batches.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	running     atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil while the publish loop is running.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.running.Load() {
		return errors.New("event publisher is not running")
	}
	return nil
}

// Run executes the publish loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("publisher started", "batch_size", p.batchSize)
	p.running.Store(true)
	p.metrics.PublisherRunning.Set(1)
	defer func() {
		p.running.Store(false)
		p.metrics.PublisherRunning.Set(0)
	}()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("publisher stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx) {
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context) bool {
	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return sharedretry.SleepWithContext(ctx, 200*time.Millisecond)
	}
	if len(batch) == 0 {
		return ctx.Err() == nil
	}
	p.metrics.PublishBatchSize.Observe(float64(len(batch)))

	out := make([]domain.OutputEvent, 0, len(batch))
	for _, ev := range batch {
		msg, err := p.transformer.Transform(ctx, ev)
		if err != nil {
			p.logger.Warn("transform failed, skipping event", "error", err, "event_id", ev.ID)
			continue
		}
		out = append(out, msg)
	}
	if len(out) == 0 {
		return true
	}

	return p.loadWithRetry(ctx, out)
}

// loadWithRetry writes a batch with exponential backoff: start at 200ms,
// double each retry, cap at 5s. After maxLoadAttempts the batch is dropped.
// Returns false if the pipeline should stop.
func (p *Pipeline) loadWithRetry(ctx context.Context, out []domain.OutputEvent) bool {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for attempt := 1; ; attempt++ {
		err := p.loader.LoadBatch(ctx, out)
		if err == nil {
			p.metrics.EventsPublished.Add(float64(len(out)))
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		p.metrics.PublishErrors.Inc()
		if attempt >= maxLoadAttempts {
			p.logger.Error("load batch failed, dropping batch",
				"error", err, "batch_size", len(out), "attempts", attempt)
			return true
		}
		p.logger.Warn("load batch failed, retrying",
			"error", err, "batch_size", len(out), "attempt", attempt, "backoff", backoff)
		if !sharedretry.SleepWithContext(ctx, backoff) {
			return false
		}
		backoff = sharedretry.NextBackoff(backoff, maxBackoff)
	}
}
