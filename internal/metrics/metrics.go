// ============================================================================
// Actor-Exec Metrics - Prometheus Monitoring
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Purpose: Collect and expose Prometheus metrics for an actor executor.
//          Adapted from the teacher's job-queue-shaped collector: the same
//          RED-style counter/histogram/gauge layout, renamed from "jobs" to
//          the events an actor executor actually has -- posted,
//          dispatched, completed/failed, and declared-broken -- plus the
//          queue depth gauges the management task can report every loop
//          iteration.
//
// Metric Categories:
//
//   1. Counters - Cumulative, monotonically increasing:
//      - actorexec_posted_total: Total messages posted
//      - actorexec_dispatched_total: Total messages handed to the worker
//      - actorexec_completed_total: Total results delivered successfully
//      - actorexec_failed_total: Total handler errors delivered
//      - actorexec_broken_total: Total times a worker was declared broken
//
//   2. Performance Metrics (Histogram):
//      - actorexec_post_latency_seconds: Time from Post to a delivered
//        result, successful or not
//
//   3. Status Metrics (Gauge):
//      - actorexec_pending: Messages admitted but not yet dispatched
//      - actorexec_in_flight: Messages dispatched, awaiting a result
//
// HTTP Endpoint:
//   Exposed via /metrics, scraped by Prometheus. Default port: 9090.
//
// ============================================================================

package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects Prometheus metrics for one or more executors sharing a
// process. Construct one per program, not per executor.
type Collector struct {
	posted     prometheus.Counter
	dispatched prometheus.Counter
	completed  prometheus.Counter
	failed     prometheus.Counter
	broken     prometheus.Counter

	postLatency prometheus.Histogram

	pending  prometheus.Gauge
	inFlight prometheus.Gauge
}

// NewCollector creates and registers a new metrics collector.
func NewCollector() *Collector {
	c := &Collector{
		posted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actorexec_posted_total",
			Help: "Total number of messages posted to an actor",
		}),
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actorexec_dispatched_total",
			Help: "Total number of messages handed to a worker",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actorexec_completed_total",
			Help: "Total number of results delivered successfully",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actorexec_failed_total",
			Help: "Total number of handler errors delivered",
		}),
		broken: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actorexec_broken_total",
			Help: "Total number of times a worker was declared broken",
		}),
		postLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "actorexec_post_latency_seconds",
			Help:    "Time from Post to a delivered result, in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "actorexec_pending",
			Help: "Messages admitted but not yet dispatched to the worker",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "actorexec_in_flight",
			Help: "Messages dispatched to the worker, awaiting a result",
		}),
	}

	prometheus.MustRegister(
		c.posted, c.dispatched, c.completed, c.failed, c.broken,
		c.postLatency, c.pending, c.inFlight,
	)

	return c
}

// RecordPosted records a successful Post call.
func (c *Collector) RecordPosted() { c.posted.Inc() }

// RecordDispatched records a message handed to the worker.
func (c *Collector) RecordDispatched() { c.dispatched.Inc() }

// RecordCompleted records a successful result, with its post-to-completion
// latency.
func (c *Collector) RecordCompleted(latencySeconds float64) {
	c.completed.Inc()
	c.postLatency.Observe(latencySeconds)
}

// RecordFailed records a handler error delivered to a future, with its
// post-to-completion latency.
func (c *Collector) RecordFailed(latencySeconds float64) {
	c.failed.Inc()
	c.postLatency.Observe(latencySeconds)
}

// RecordBroken records a worker being declared broken.
func (c *Collector) RecordBroken() { c.broken.Inc() }

// UpdateQueueStats updates the pending/in-flight gauges. The management
// task calls this once per loop iteration.
func (c *Collector) UpdateQueueStats(pendingCount, inFlightCount int) {
	c.pending.Set(float64(pendingCount))
	c.inFlight.Set(float64(inFlightCount))
}

// StartServer starts the Prometheus metrics HTTP server. Blocks until the
// server stops or fails.
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, mux)
}
