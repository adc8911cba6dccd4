// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector gathers workflow and memory metrics. All methods are safe on
// a nil receiver so instrumentation points never need a nil check.
type Collector struct {
	nodeExecutionsTotal   *prometheus.CounterVec
	nodeExecutionDuration *prometheus.HistogramVec
	checkpointSavesTotal  prometheus.Counter
	runsFinishedTotal     *prometheus.CounterVec
	memoryLookupsTotal    *prometheus.CounterVec
	memoryIndexedTotal    prometheus.Counter
}

// NewCollector creates a collector and registers its metrics with reg.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	c := &Collector{
		nodeExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_executions_total",
				Help:      "Total number of graph node activations",
			},
			[]string{"node", "outcome"},
		),
		nodeExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "node_execution_duration_seconds",
				Help:      "Graph node execution duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"node"},
		),
		checkpointSavesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkpoint_saves_total",
				Help:      "Total number of committed state checkpoints",
			},
		),
		runsFinishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_finished_total",
				Help:      "Total number of runs reaching a terminal state",
			},
			[]string{"status"},
		),
		memoryLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "memory_lookups_total",
				Help:      "Total number of semantic memory searches",
			},
			[]string{"outcome"},
		),
		memoryIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "memory_indexed_total",
				Help:      "Total number of drafts indexed into semantic memory",
			},
		),
	}
	reg.MustRegister(
		c.nodeExecutionsTotal,
		c.nodeExecutionDuration,
		c.checkpointSavesTotal,
		c.runsFinishedTotal,
		c.memoryLookupsTotal,
		c.memoryIndexedTotal,
	)
	return c
}

// ObserveNode records one node activation.
func (c *Collector) ObserveNode(node string, d time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.nodeExecutionsTotal.WithLabelValues(node, outcome).Inc()
	c.nodeExecutionDuration.WithLabelValues(node).Observe(d.Seconds())
}

// CheckpointSaved records one committed checkpoint.
func (c *Collector) CheckpointSaved() {
	if c == nil {
		return
	}
	c.checkpointSavesTotal.Inc()
}

// RunFinished records a run reaching a terminal state.
func (c *Collector) RunFinished(status string) {
	if c == nil {
		return
	}
	c.runsFinishedTotal.WithLabelValues(status).Inc()
}

// MemoryLookup records a semantic search and whether it found a match.
func (c *Collector) MemoryLookup(found bool) {
	if c == nil {
		return
	}
	outcome := "miss"
	if found {
		outcome = "hit"
	}
	c.memoryLookupsTotal.WithLabelValues(outcome).Inc()
}

// MemoryIndexed records one indexed draft.
func (c *Collector) MemoryIndexed() {
	if c == nil {
		return
	}
	c.memoryIndexedTotal.Inc()
}
