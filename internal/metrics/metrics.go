// Package metrics exposes Prometheus instrumentation for the dispatcher,
// state store and lock registry: command throughput and latency, queue
// depth, lock contention, and eviction sweeps.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric the engine records.
type Collector struct {
	commandsSubmitted *prometheus.CounterVec
	commandLatency    prometheus.Histogram
	commandsCorrupted prometheus.Counter

	lockWaitLatency prometheus.Histogram
	lockTimeouts    prometheus.Counter

	evictedTotal *prometheus.CounterVec

	queueDepth *prometheus.GaugeVec
	jobsByState *prometheus.GaugeVec
}

// NewCollector builds and registers the collector's metrics against the
// default Prometheus registry.
func NewCollector() *Collector {
	c := &Collector{
		commandsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobcore_commands_submitted_total",
			Help: "Total number of commands submitted to the dispatcher, by kind.",
		}, []string{"kind"}),
		commandLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobcore_command_latency_seconds",
			Help:    "Dispatcher submission-to-completion latency.",
			Buckets: prometheus.DefBuckets,
		}),
		commandsCorrupted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobcore_dispatcher_corrupted_total",
			Help: "Number of times the dispatcher transitioned to the corrupted state.",
		}),
		lockWaitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobcore_lock_wait_seconds",
			Help:    "Time spent waiting to acquire a named lock.",
			Buckets: prometheus.DefBuckets,
		}),
		lockTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobcore_lock_timeouts_total",
			Help: "Number of lock acquisitions that exceeded their deadline.",
		}),
		evictedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobcore_evicted_entries_total",
			Help: "Entries removed by the eviction sweep, by container kind.",
		}, []string{"kind"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "jobcore_queue_depth",
			Help: "Current number of job keys queued, by queue name.",
		}, []string{"queue"}),
		jobsByState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "jobcore_jobs_by_state",
			Help: "Current number of jobs in each state.",
		}, []string{"state"}),
	}

	prometheus.MustRegister(
		c.commandsSubmitted, c.commandLatency, c.commandsCorrupted,
		c.lockWaitLatency, c.lockTimeouts, c.evictedTotal,
		c.queueDepth, c.jobsByState,
	)
	return c
}

func (c *Collector) RecordCommand(kind string, latencySeconds float64) {
	c.commandsSubmitted.WithLabelValues(kind).Inc()
	c.commandLatency.Observe(latencySeconds)
}

func (c *Collector) RecordCorrupted() {
	c.commandsCorrupted.Inc()
}

func (c *Collector) RecordLockWait(latencySeconds float64) {
	c.lockWaitLatency.Observe(latencySeconds)
}

func (c *Collector) RecordLockTimeout() {
	c.lockTimeouts.Inc()
}

func (c *Collector) RecordEviction(kind string, n int) {
	if n <= 0 {
		return
	}
	c.evictedTotal.WithLabelValues(kind).Add(float64(n))
}

func (c *Collector) SetQueueDepth(queue string, depth int) {
	c.queueDepth.WithLabelValues(queue).Set(float64(depth))
}

func (c *Collector) SetJobsByState(state string, count int) {
	c.jobsByState.WithLabelValues(state).Set(float64(count))
}

// StartServer serves /metrics on the given port until the process exits.
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
