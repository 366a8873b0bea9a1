package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "saferoute"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// scoring service.
type Metrics struct {
	RouteSetsComputed    prometheus.Counter
	RouteComputeDuration prometheus.Histogram
	RouteHazardCount     *prometheus.HistogramVec // labels: variant={fast,safe,balanced}

	// Hazard catalog metrics.
	HazardSnapshots      *prometheus.CounterVec // labels: source={live,cache,synthetic}
	HazardFallbacks      *prometheus.CounterVec // labels: reason={source_error,source_unsuccessful,source_empty,no_source}
	HazardSourceDuration prometheus.Histogram

	SessionsActive prometheus.Gauge

	// Event publishing metrics.
	EventsPublished  prometheus.Counter
	EventsDropped    prometheus.Counter
	PublishErrors    prometheus.Counter
	PublisherRunning prometheus.Gauge
	PublishBatchSize prometheus.Histogram

	// Place search geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RouteSetsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_sets_computed_total",
			Help:      "Total route sets synthesized and scored.",
		}),
		RouteComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "route_compute_duration_seconds",
			Help:      "Duration of a complete computeRoutes call, including the hazard snapshot.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		RouteHazardCount: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "route_hazard_count",
			Help:      "Hazard (vertex, hazard) pairs counted per route.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}, []string{"variant"}),
		HazardSnapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hazard_snapshots_total",
			Help:      "Hazard snapshots served, by origin.",
		}, []string{"source"}),
		HazardFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hazard_fallbacks_total",
			Help:      "Synthetic hazard fallbacks, by reason.",
		}, []string{"reason"}),
		HazardSourceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hazard_source_duration_seconds",
			Help:      "Hazard source request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Route selection sessions currently held in memory.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Route set events written to Kafka.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Route set events dropped because the publish queue was full.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed Kafka batch writes.",
		}),
		PublisherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publisher_running",
			Help:      "1 when the event publisher is active, 0 when shut down.",
		}),
		PublishBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_batch_size",
			Help:      "Number of events per batch written to Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Place search geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Place search cache lookups by result.",
		}, []string{"result"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when Mapbox place search is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.RouteSetsComputed,
		m.RouteComputeDuration,
		m.RouteHazardCount,
		m.HazardSnapshots,
		m.HazardFallbacks,
		m.HazardSourceDuration,
		m.SessionsActive,
		m.EventsPublished,
		m.EventsDropped,
		m.PublishErrors,
		m.PublisherRunning,
		m.PublishBatchSize,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RouteSetsComputed:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "route_sets_computed_total"}),
		RouteComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "route_compute_duration_seconds"}),
		RouteHazardCount:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "route_hazard_count"}, []string{"variant"}),
		HazardSnapshots:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "hazard_snapshots_total"}, []string{"source"}),
		HazardFallbacks:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "hazard_fallbacks_total"}, []string{"reason"}),
		HazardSourceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "hazard_source_duration_seconds"}),
		SessionsActive:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "sessions_active"}),
		EventsPublished:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "events_published_total"}),
		EventsDropped:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "events_dropped_total"}),
		PublishErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "publish_errors_total"}),
		PublisherRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "publisher_running"}),
		PublishBatchSize:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "publish_batch_size"}),
		GeocodeRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeEnabled:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "geocode_enabled"}),
	}
}
