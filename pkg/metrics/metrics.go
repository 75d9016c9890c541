package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ritzau/casegraph/pkg/logging"
)

// Collector holds the Prometheus metrics of one casegraph process.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry  *prometheus.Registry
	namespace string

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Graph editing
	GraphMutations *prometheus.CounterVec

	// Case store
	Cases        prometheus.Gauge
	Saves        *prometheus.CounterVec
	SaveDuration prometheus.Histogram
	Reloads      prometheus.Counter

	// OCR and report services
	IngestCalls    *prometheus.CounterVec
	IngestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry:  registry,
		namespace: namespace,
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
		GraphMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_mutations_total",
				Help:      "Graph edits by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		Cases: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cases",
				Help:      "Number of cases held in memory",
			},
		),
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saves_total",
				Help:      "Persistence attempts by outcome",
			},
			[]string{"outcome"},
		),
		SaveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "save_duration_seconds",
				Help:      "Time spent writing the case list",
				Buckets:   prometheus.DefBuckets,
			},
		),
		Reloads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "Case list reloads after external changes",
			},
		),
		IngestCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_calls_total",
				Help:      "Calls to the OCR and report services by outcome",
			},
			[]string{"service", "outcome"},
		),
		IngestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingest_duration_seconds",
				Help:      "Round trip time of OCR and report calls",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"service"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.GraphMutations,
		c.Cases,
		c.Saves,
		c.SaveDuration,
		c.Reloads,
		c.IngestCalls,
		c.IngestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordMutation counts one graph edit
func (c *Collector) RecordMutation(operation string, err error) {
	if c == nil {
		return
	}
	c.GraphMutations.WithLabelValues(operation, outcome(err)).Inc()
}

// RecordSave counts one persistence attempt
func (c *Collector) RecordSave(d time.Duration, err error) {
	if c == nil {
		return
	}
	c.Saves.WithLabelValues(outcome(err)).Inc()
	c.SaveDuration.Observe(d.Seconds())
}

// RecordReload counts a reload of the case list
func (c *Collector) RecordReload() {
	if c == nil {
		return
	}
	c.Reloads.Inc()
}

// SetCases updates the in-memory case count
func (c *Collector) SetCases(n int) {
	if c == nil {
		return
	}
	c.Cases.Set(float64(n))
}

// RecordIngest counts one call to an external service
func (c *Collector) RecordIngest(service string, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.IngestCalls.WithLabelValues(service, outcome(err)).Inc()
	c.IngestDuration.WithLabelValues(service).Observe(d.Seconds())
}

// WatchSubscribers exports the live subscriber count of each topic, read
// from count at scrape time
func (c *Collector) WatchSubscribers(count func(topic string) int, topics ...string) {
	if c == nil {
		return
	}
	for _, topic := range topics {
		c.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace:   c.namespace,
				Name:        "sse_subscribers",
				Help:        "Live event stream subscriptions per topic",
				ConstLabels: prometheus.Labels{"topic": topic},
			},
			func() float64 { return float64(count(topic)) },
		))
	}
}

// Middleware records request counts and latency per mux route template
func (c *Collector) Middleware(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		rw := logging.NewResponseWriter(w)
		start := time.Now()
		next.ServeHTTP(rw, r)

		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rw.Status())).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
