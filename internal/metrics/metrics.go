// Package metrics exposes the Prometheus counters of the API and the worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gigs"

// Transition outcomes
const (
	OutcomeOK        = "ok"
	OutcomeUnchanged = "unchanged"
	OutcomeRejected  = "rejected"
	OutcomeConflict  = "conflict"
	OutcomeError     = "error"
)

type Collector struct {
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
	transitions      *prometheus.CounterVec
	versionConflicts *prometheus.CounterVec
	matchRequests    prometheus.Counter
	matchResults     prometheus.Histogram
	notifyPublished  *prometheus.CounterVec
	notifyFailed     *prometheus.CounterVec
	workerProcessed  *prometheus.CounterVec
	workerLatency    prometheus.Histogram
	rateLimited      prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_transitions_total",
			Help:      "Job lifecycle operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		versionConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_version_conflicts_total",
			Help:      "Conditional job writes that lost against a concurrent write.",
		}, []string{"operation"}),
		matchRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_requests_total",
			Help:      "Job match requests served.",
		}),
		matchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_results",
			Help:      "Number of jobs returned per match request.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		notifyPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_published_total",
			Help:      "Notification messages handed to the broker by type.",
		}, []string{"type"}),
		notifyFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_publish_failed_total",
			Help:      "Notification messages that could not be published by type.",
		}, []string{"type"}),
		workerProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_messages_total",
			Help:      "Messages handled by the notification worker by result.",
		}, []string{"result"}),
		workerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "worker_process_duration_seconds",
			Help:      "Time spent persisting one notification message.",
			Buckets:   prometheus.DefBuckets,
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.transitions,
		c.versionConflicts,
		c.matchRequests,
		c.matchResults,
		c.notifyPublished,
		c.notifyFailed,
		c.workerProcessed,
		c.workerLatency,
		c.rateLimited,
	)

	return c
}

func (c *Collector) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(d.Seconds())
}

func (c *Collector) RecordTransition(operation, outcome string) {
	c.transitions.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) RecordVersionConflict(operation string) {
	c.versionConflicts.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordMatch(results int) {
	c.matchRequests.Inc()
	c.matchResults.Observe(float64(results))
}

func (c *Collector) RecordNotificationPublished(notificationType string) {
	c.notifyPublished.WithLabelValues(notificationType).Inc()
}

func (c *Collector) RecordNotificationFailed(notificationType string) {
	c.notifyFailed.WithLabelValues(notificationType).Inc()
}

func (c *Collector) RecordWorkerMessage(result string, d time.Duration) {
	c.workerProcessed.WithLabelValues(result).Inc()
	c.workerLatency.Observe(d.Seconds())
}

func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

// Handler serves the registry in the Prometheus exposition format
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NewServer returns an HTTP server exposing only the scrape endpoint, for
// processes without an API router.
func NewServer(addr, path string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, Handler(gatherer))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
