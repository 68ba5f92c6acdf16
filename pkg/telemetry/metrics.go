package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics provides Prometheus metrics for openfacts. All record methods
// are safe on a disabled instance, so callers never need to gate on the
// configuration themselves.
type Metrics struct {
	config MetricsConfig

	// Group resolution metrics
	groupResolutions *prometheus.CounterVec
	groupDuration    *prometheus.HistogramVec

	// Query metrics
	queries *prometheus.CounterVec

	// Custom fact metrics
	customFactsLoaded prometheus.Counter
	scriptErrors      prometheus.Counter

	// Cache metrics
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// System metrics
	factsCollected prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		groupResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "group_resolutions_total",
				Help:      "Total number of fact group resolution passes",
			},
			[]string{"group", "status"},
		),
		groupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "group_resolution_duration_seconds",
				Help:      "Duration of fact group resolution passes in seconds",
				Buckets:   buckets,
			},
			[]string{"group"},
		),

		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of fact queries",
			},
			[]string{"result"},
		),

		customFactsLoaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "custom_facts_loaded_total",
				Help:      "Total number of custom facts registered by scripts",
			},
		),
		scriptErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "script_errors_total",
				Help:      "Total number of custom fact script errors",
			},
		),

		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of persistent cache hits",
			},
			[]string{"group"},
		),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of persistent cache misses",
			},
			[]string{"group"},
		),

		factsCollected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "facts_collected",
				Help:      "Current number of facts in the collection",
			},
		),
	}

	registry.MustRegister(
		m.groupResolutions,
		m.groupDuration,
		m.queries,
		m.customFactsLoaded,
		m.scriptErrors,
		m.cacheHits,
		m.cacheMisses,
		m.factsCollected,
	)

	return m, nil
}

// GroupResolved records the outcome of a fact group resolution pass. It
// satisfies the collection's resolution observer, so wiring a Metrics
// into a collection is enough to count every pass.
func (m *Metrics) GroupResolved(group string, err error) {
	if m.groupResolutions == nil {
		return
	}
	status := "succeeded"
	if err != nil {
		status = "failed"
	}
	m.groupResolutions.WithLabelValues(group, status).Inc()
}

// RecordGroupResolution records a resolution pass with its duration.
func (m *Metrics) RecordGroupResolution(group, status string, duration time.Duration) {
	if m.groupResolutions == nil {
		return
	}
	m.groupResolutions.WithLabelValues(group, status).Inc()
	m.groupDuration.WithLabelValues(group).Observe(duration.Seconds())
}

// RecordQuery records a fact query and whether it found a value.
func (m *Metrics) RecordQuery(found bool) {
	if m.queries == nil {
		return
	}
	result := "found"
	if !found {
		result = "missing"
	}
	m.queries.WithLabelValues(result).Inc()
}

// RecordCustomFactLoaded increments the custom fact counter.
func (m *Metrics) RecordCustomFactLoaded() {
	if m.customFactsLoaded == nil {
		return
	}
	m.customFactsLoaded.Inc()
}

// RecordScriptError increments the script error counter.
func (m *Metrics) RecordScriptError() {
	if m.scriptErrors == nil {
		return
	}
	m.scriptErrors.Inc()
}

// RecordCacheHit records a persistent cache hit for a group.
func (m *Metrics) RecordCacheHit(group string) {
	if m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues(group).Inc()
}

// RecordCacheMiss records a persistent cache miss for a group.
func (m *Metrics) RecordCacheMiss(group string) {
	if m.cacheMisses == nil {
		return
	}
	m.cacheMisses.WithLabelValues(group).Inc()
}

// SetFactsCollected sets the current fact count gauge.
func (m *Metrics) SetFactsCollected(count float64) {
	if m.factsCollected == nil {
		return
	}
	m.factsCollected.Set(count)
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration is a helper to time an operation and record it.
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()

	return nil
}
