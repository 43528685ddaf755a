// Package metrics exposes the storefront's Prometheus collectors.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/validation"
)

const namespace = "storefront"

// Metrics holds the collectors on a private registry. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	PagesComposed    *prometheus.CounterVec
	ComposeDuration  prometheus.Histogram
	FormFailures     *prometheus.CounterVec
	Registrations    *prometheus.CounterVec
	Newsletters      prometheus.Counter
	CacheWarmRuns    *prometheus.CounterVec
	UpstreamRequests *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New creates a Metrics instance with every collector registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PagesComposed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_composed_total",
			Help:      "Pages composed by store and page kind.",
		}, []string{"store", "kind"}),
		ComposeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compose_duration_seconds",
			Help:      "Duration of page composition including upstream lookups.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		FormFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_validation_failures_total",
			Help:      "Form submissions rejected by field validation.",
		}, []string{"form"}),
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
		Newsletters: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "newsletter_signups_total",
			Help:      "Registrations that granted marketing consent.",
		}),
		CacheWarmRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_warm_runs_total",
			Help:      "Cache warm runs by result.",
		}, []string{"result"}),
		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "GraphQL requests by operation and result.",
		}, []string{"operation", "result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled.",
		}, []string{"method", "pattern", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "pattern"}),
	}
}

// Registry returns the private registry, for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registered collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePage records a composed page.
func (m *Metrics) ObservePage(storeCode, kind string, start time.Time) {
	if m == nil {
		return
	}
	m.PagesComposed.WithLabelValues(storeCode, kind).Inc()
	m.ComposeDuration.Observe(time.Since(start).Seconds())
}

// FormFailed records a rejected form submission.
func (m *Metrics) FormFailed(form string) {
	if m == nil {
		return
	}
	m.FormFailures.WithLabelValues(form).Inc()
}

// CacheWarmed records a cache warm run.
func (m *Metrics) CacheWarmed(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CacheWarmRuns.WithLabelValues(result).Inc()
}

// Upstream records a GraphQL operation result.
func (m *Metrics) Upstream(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.UpstreamRequests.WithLabelValues(operation, result).Inc()
}

// TrackRegistration records a registration outcome.
func (m *Metrics) TrackRegistration(_ context.Context, outcome string, errs validation.Errors) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
	if len(errs) > 0 {
		m.FormFailures.WithLabelValues("register").Inc()
	}
}

// TrackNewsletter records a marketing consent signup.
func (m *Metrics) TrackNewsletter(context.Context) {
	if m == nil {
		return
	}
	m.Newsletters.Inc()
}

// InstrumentHandler wraps next with request count and duration collection.
// Requests are labelled by their ServeMux pattern to bound cardinality.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
