package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/couchcryptid/saferoute-scoring-service/internal/observability"
)

// Origin says where the hazards of a snapshot came from.
type Origin string

const (
	OriginLive      Origin = "live"
	OriginCache     Origin = "cache"
	OriginSynthetic Origin = "synthetic"
)

// Fallback reasons, reported in logs and the hazard_fallbacks_total metric.
const (
	ReasonSourceError        = "source_error"
	ReasonSourceUnsuccessful = "source_unsuccessful"
	ReasonSourceEmpty        = "source_empty"
	ReasonNoSource           = "no_source"
)

// Snapshot is the set of hazards used to score one request.
type Snapshot struct {
	Hazards        []domain.Hazard
	Origin         Origin
	FallbackReason string
}

// Catalog serves hazard snapshots from a Source, substituting synthetic
// hazards whenever the source has nothing usable.
type Catalog struct {
	source    Source
	generator *Generator
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Catalog. A nil source always yields synthetic snapshots.
func New(source Source, generator *Generator, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Catalog {
	return &Catalog{
		source:    source,
		generator: generator,
		timeout:   timeout,
		logger:    logger,
		metrics:   metrics,
	}
}

// Snapshot returns hazards reported within the last hours. The source call is
// bounded by the catalog timeout. If it fails, times out, reports
// success=false, or returns no hazards, synthetic hazards along start-end are
// returned instead. Snapshot never fails.
func (c *Catalog) Snapshot(ctx context.Context, hours uint, start, end domain.Coordinate) Snapshot {
	if c.source == nil {
		return c.fallback(start, end, ReasonNoSource, nil)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	began := time.Now()
	res, err := c.source.Hazards(fetchCtx, hours)
	c.metrics.HazardSourceDuration.Observe(time.Since(began).Seconds())

	switch {
	case err != nil:
		return c.fallback(start, end, ReasonSourceError, err)
	case !res.Success:
		return c.fallback(start, end, ReasonSourceUnsuccessful, nil)
	case len(res.Hazards) == 0:
		return c.fallback(start, end, ReasonSourceEmpty, nil)
	}

	origin := OriginLive
	if res.Cached {
		origin = OriginCache
	}
	c.metrics.HazardSnapshots.WithLabelValues(string(origin)).Inc()
	c.logger.Debug("hazard snapshot",
		"hazard_source", origin,
		"hours", hours,
		"hazards", len(res.Hazards),
	)
	return Snapshot{Hazards: res.Hazards, Origin: origin}
}

func (c *Catalog) fallback(start, end domain.Coordinate, reason string, err error) Snapshot {
	hazards := c.generator.Generate(start, end)

	attrs := []any{
		"hazard_source", OriginSynthetic,
		"reason", reason,
		"hazards", len(hazards),
		"start", start.String(),
		"end", end.String(),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	c.logger.Warn("hazard source unavailable, using synthetic hazards", attrs...)

	c.metrics.HazardFallbacks.WithLabelValues(reason).Inc()
	c.metrics.HazardSnapshots.WithLabelValues(string(OriginSynthetic)).Inc()
	return Snapshot{Hazards: hazards, Origin: OriginSynthetic, FallbackReason: reason}
}
