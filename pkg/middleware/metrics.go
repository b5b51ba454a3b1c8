package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/weft-dev/weft/pkg/protocol"
	"github.com/weft-dev/weft/pkg/server"
)

// MetricsConfig configures the Prometheus middleware.
type MetricsConfig struct {
	// Namespace prefixes every metric name (default: "weft").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "weft",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the registered collectors. One set per process; the
// first Prometheus() call creates it.
type metrics struct {
	eventsTotal    *prometheus.CounterVec
	eventDuration  *prometheus.HistogramVec
	eventErrors    *prometheus.CounterVec
	activeSessions prometheus.Gauge
	patchesSent    prometheus.Counter
	uploadsTotal   *prometheus.CounterVec
	uploadBytes    prometheus.Counter
}

var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func current() *metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	return globalMetrics
}

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "events_total",
			Help:        "Events processed, by event name",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "event_duration_seconds",
			Help:        "Event handling duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"event"}),

		eventErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "event_errors_total",
			Help:        "Event handling failures, by event name and error kind",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "error"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "active_sessions",
			Help:        "Number of live sessions",
			ConstLabels: config.ConstLabels,
		}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "patches_sent_total",
			Help:        "Patches sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "uploads_total",
			Help:        "Upload intake requests, by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		uploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "upload_bytes_total",
			Help:        "Request body bytes of accepted uploads",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus returns middleware that counts and times every event.
//
// The first call registers the collectors; later calls reuse them and
// ignore their options. Failures recorded against the event (handler
// panics, unroutable events, server.RecordEventError) count in
// weft_event_errors_total under a bounded error kind.
//
// Session and patch metrics record through RecordSessionStart,
// RecordSessionClose, and RecordPatches; wire those to the server
// callbacks. Upload metrics record through InstrumentUploads.
func Prometheus(opts ...MetricsOption) server.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return func(next server.EventHandlerFunc) server.EventHandlerFunc {
		return func(ctx server.Ctx, frame *protocol.EventFrame) {
			event := eventName(frame)
			start := time.Now()

			next(ctx, frame)

			m.eventDuration.WithLabelValues(event).Observe(time.Since(start).Seconds())
			m.eventsTotal.WithLabelValues(event).Inc()
			if err := server.EventError(ctx); err != nil {
				m.eventErrors.WithLabelValues(event, categorizeError(err)).Inc()
			}
		}
	}
}

// categorizeError folds err into one of a few fixed kinds. The label
// set must stay bounded; raw error text does not qualify.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, server.ErrNoHandler):
		return "no_handler"
	case errors.Is(err, server.ErrHandlerPanic):
		return "panic"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

// RecordSessionStart records a session starting. Wire it to
// ServerConfig.OnSessionStart. No-op until Prometheus() has run.
func RecordSessionStart() {
	if m := current(); m != nil {
		m.activeSessions.Inc()
	}
}

// RecordSessionClose records a session closing. Wire it to
// ServerConfig.OnSessionClose.
func RecordSessionClose() {
	if m := current(); m != nil {
		m.activeSessions.Dec()
	}
}

// RecordPatches records patches sent to a client. Wire it to
// ServerConfig.OnPatchesSent.
func RecordPatches(count int) {
	if m := current(); m != nil {
		m.patchesSent.Add(float64(count))
	}
}

// RecordUpload records one upload intake request and, for accepted
// uploads, the bytes received. InstrumentUploads calls this; handlers
// built without it can call it directly.
func RecordUpload(outcome string, bytes int64) {
	m := current()
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(outcome).Inc()
	if bytes > 0 {
		m.uploadBytes.Add(float64(bytes))
	}
}
