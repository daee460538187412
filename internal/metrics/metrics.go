package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for bookmark operations.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
)

// Reasons a request is turned away before reaching a handler.
const (
	RejectRateLimited = "rate_limited"
	RejectHost        = "host"
	RejectCIDR        = "cidr"
)

// Collector holds the Prometheus metrics of the application.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	Operations    *prometheus.CounterVec
	StorageErrors *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
}

// New creates a collector with its own registry so tests can build as many
// as they need without duplicate registration panics.
func New(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bookmark_operations_total",
				Help:      "Bookmark store operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		StorageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_errors_total",
				Help:      "Persistence backend failures seen by the bookmark store",
			},
			[]string{"op"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_rejections_total",
				Help:      "Requests refused by access or rate-limit middleware",
			},
			[]string{"reason", "route"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Operations,
		c.StorageErrors,
		c.Rejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Operation records the outcome of one store operation.
func (c *Collector) Operation(op, outcome string) {
	if c == nil {
		return
	}
	c.Operations.WithLabelValues(op, outcome).Inc()
	if outcome == OutcomeError {
		c.StorageErrors.WithLabelValues(op).Inc()
	}
}

// HTTPRequest records one served request.
func (c *Collector) HTTPRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Rejected records one request refused by middleware for reason.
func (c *Collector) Rejected(reason, route string) {
	if c == nil {
		return
	}
	c.Rejections.WithLabelValues(reason, route).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
