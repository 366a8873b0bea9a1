// Package engine computes scored route sets and tracks route selection per
// browsing session.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/catalog"
	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/couchcryptid/saferoute-scoring-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// HazardCatalog supplies the hazard snapshot for a request.
type HazardCatalog interface {
	Snapshot(ctx context.Context, hours uint, start, end domain.Coordinate) catalog.Snapshot
}

// Publisher accepts scored route set events. Enqueue must not block.
type Publisher interface {
	Enqueue(event domain.RouteSetScored) bool
}

// RouteSet is the ranked result of one computation.
type RouteSet struct {
	Start        domain.Coordinate
	End          domain.Coordinate
	Routes       []domain.Route // safe, balanced, fast
	Hazards      []domain.Hazard
	HazardSource catalog.Origin
}

// Route returns the route with the given id.
func (s RouteSet) Route(id int) (domain.Route, bool) {
	for _, r := range s.Routes {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Route{}, false
}

// Engine runs the scoring pipeline: snapshot, synthesize, score, rank.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	catalog   HazardCatalog
	hours     uint
	publisher Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates an Engine. A nil publisher disables event publishing.
func New(cat HazardCatalog, hours uint, publisher Publisher, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		catalog:   cat,
		hours:     hours,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// ComputeRoutes scores the three route variants between start and end and
// returns them in presentation order. Only invalid coordinates fail; an
// unavailable hazard source is absorbed by the catalog.
func (e *Engine) ComputeRoutes(ctx context.Context, start, end domain.Coordinate) (RouteSet, error) {
	began := time.Now()

	if err := start.Validate(); err != nil {
		return RouteSet{}, fmt.Errorf("compute routes: start: %w", err)
	}
	if err := end.Validate(); err != nil {
		return RouteSet{}, fmt.Errorf("compute routes: end: %w", err)
	}

	snap := e.catalog.Snapshot(ctx, e.hours, start, end)
	routes := domain.ScoreRoutes(start, end, snap.Hazards)
	for _, r := range routes {
		e.metrics.RouteHazardCount.WithLabelValues(string(r.Variant)).Observe(float64(r.HazardCount))
	}
	ranked := domain.Rank(routes)

	e.metrics.RouteSetsComputed.Inc()
	e.metrics.RouteComputeDuration.Observe(time.Since(began).Seconds())
	e.logger.Info("routes computed",
		"start", start.String(),
		"end", end.String(),
		"hazard_source", snap.Origin,
		"hazards", len(snap.Hazards),
		"safe_score", scoreOf(ranked, domain.VariantSafe),
		"balanced_score", scoreOf(ranked, domain.VariantBalanced),
		"fast_score", scoreOf(ranked, domain.VariantFast),
	)

	if e.publisher != nil {
		event := domain.NewRouteSetScored(uuid.NewString(), start, end, string(snap.Origin), len(snap.Hazards), ranked, e.clock.Now())
		e.publisher.Enqueue(event)
	}

	return RouteSet{
		Start:        start,
		End:          end,
		Routes:       ranked,
		Hazards:      snap.Hazards,
		HazardSource: snap.Origin,
	}, nil
}

func scoreOf(routes []domain.Route, v domain.Variant) int {
	for _, r := range routes {
		if r.Variant == v {
			return r.SafetyScore
		}
	}
	return -1
}
