// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector aggregates the engine's prometheus metrics. A nil *Collector
// is a valid no-op receiver so instrumentation points never need nil
// checks at call sites.
type Collector struct {
	pipelineRunsTotal   *prometheus.CounterVec
	pipelineRunDuration *prometheus.HistogramVec

	nodeExecutionsTotal *prometheus.CounterVec
	nodeDuration        *prometheus.HistogramVec

	retrievalRequestsTotal *prometheus.CounterVec
	retrievalMatches       *prometheus.HistogramVec

	embeddingFailuresTotal prometheus.Counter

	logger *zap.Logger
}

// NewCollector creates and registers the engine collectors under the
// given namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.pipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"pipeline", "status"},
	)

	c.pipelineRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_run_duration_seconds",
			Help:      "Pipeline run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"pipeline"},
	)

	c.nodeExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_executions_total",
			Help:      "Total number of node executions",
		},
		[]string{"type", "status"},
	)

	c.nodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_duration_seconds",
			Help:      "Node execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	c.retrievalRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_requests_total",
			Help:      "Total number of knowledge retrieval requests",
		},
		[]string{"source", "path"}, // path: vector_store, local
	)

	c.retrievalMatches = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_matches",
			Help:      "Number of matches returned per retrieval",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
		[]string{"source"},
	)

	c.embeddingFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_failures_total",
			Help:      "Total number of failed embedding calls",
		},
	)

	return c
}

// RecordRun records a completed pipeline run.
func (c *Collector) RecordRun(pipeline, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.pipelineRunsTotal.WithLabelValues(pipeline, status).Inc()
	c.pipelineRunDuration.WithLabelValues(pipeline).Observe(duration.Seconds())
}

// RecordNode records a single node execution.
func (c *Collector) RecordNode(nodeType, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.nodeExecutionsTotal.WithLabelValues(nodeType, status).Inc()
	c.nodeDuration.WithLabelValues(nodeType).Observe(duration.Seconds())
}

// RecordRetrieval records a knowledge retrieval and which path served it.
func (c *Collector) RecordRetrieval(source, path string, matches int) {
	if c == nil {
		return
	}
	c.retrievalRequestsTotal.WithLabelValues(source, path).Inc()
	c.retrievalMatches.WithLabelValues(source).Observe(float64(matches))
}

// RecordEmbeddingFailure records a failed embedding call.
func (c *Collector) RecordEmbeddingFailure() {
	if c == nil {
		return
	}
	c.embeddingFailuresTotal.Inc()
}
