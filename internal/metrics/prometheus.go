package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fieldline/planboard/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// It provides concrete instrumentation for projection and mutation metrics
// and defers per-worker gauges to embedded NopMetrics where cardinality would
// be unbounded, ensuring full interface coverage without label explosion.
type PrometheusCollector struct {
	*NopMetrics

	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	rosterSize        prometheus.Gauge
	rosterChanges     *prometheus.CounterVec
	skippedWorkers    *prometheus.CounterVec
	droppedRecords    *prometheus.CounterVec
	indexSubs         prometheus.Gauge
	snapshotWorkers   prometheus.Gauge
	snapshotEvents    prometheus.Gauge
	snapshotDuration  prometheus.Histogram
	snapshotRebuilds  prometheus.Counter
	feedErrors        *prometheus.CounterVec
	mutationResults   *prometheus.CounterVec
	confirmLatency    prometheus.Histogram
	confirmTimeouts   prometheus.Counter
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "planboard" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "planboard"
	}

	return &PrometheusCollector{NopMetrics: NewNop(), reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.rosterSize = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "roster",
			Name:      "workers_current",
			Help:      "Current number of workers in the roster.",
		})

		p.rosterChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "roster",
			Name:      "worker_changes_total",
			Help:      "Total worker topology changes by kind (added/removed).",
		}, []string{"kind"})

		p.skippedWorkers = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "roster",
			Name:      "skipped_workers_total",
			Help:      "Worker documents dropped during intake by reason.",
		}, []string{"reason"})

		p.droppedRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "index",
			Name:      "dropped_records_total",
			Help:      "Job records excluded from projection by reason.",
		}, []string{"reason"})

		p.indexSubs = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "index",
			Name:      "worker_subscriptions_current",
			Help:      "Current number of live per-worker index subscriptions.",
		})

		p.snapshotWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "projector",
			Name:      "snapshot_workers",
			Help:      "Workers in the most recently published snapshot.",
		})

		p.snapshotEvents = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "projector",
			Name:      "snapshot_events",
			Help:      "Events in the most recently published snapshot.",
		})

		p.snapshotDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "projector",
			Name:      "rebuild_duration_seconds",
			Help:      "Snapshot recomputation duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 100µs .. ~0.4s
		})

		p.snapshotRebuilds = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "projector",
			Name:      "rebuilds_total",
			Help:      "Total snapshot recomputations.",
		})

		p.feedErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "projector",
			Name:      "feed_errors_total",
			Help:      "Upstream feed failures by feed (workers/jobs).",
		}, []string{"feed"})

		p.mutationResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "mutations_total",
			Help:      "Mutation outcomes by kind (create/edit) and result (success/failure).",
		}, []string{"kind", "result"})

		p.confirmLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "confirmation_latency_seconds",
			Help:      "Latency from store accept to snapshot observation in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		})

		p.confirmTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "confirmation_timeouts_total",
			Help:      "Accepted mutations not observed back within the confirmation window.",
		})

		p.reg.MustRegister(p.rosterSize)
		p.reg.MustRegister(p.rosterChanges)
		p.reg.MustRegister(p.skippedWorkers)
		p.reg.MustRegister(p.droppedRecords)
		p.reg.MustRegister(p.indexSubs)
		p.reg.MustRegister(p.snapshotWorkers)
		p.reg.MustRegister(p.snapshotEvents)
		p.reg.MustRegister(p.snapshotDuration)
		p.reg.MustRegister(p.snapshotRebuilds)
		p.reg.MustRegister(p.feedErrors)
		p.reg.MustRegister(p.mutationResults)
		p.reg.MustRegister(p.confirmLatency)
		p.reg.MustRegister(p.confirmTimeouts)
	})
}

// RosterMetrics implementation

// RecordRosterSize sets the roster size gauge.
func (p *PrometheusCollector) RecordRosterSize(count int) {
	p.ensureRegistered()
	p.rosterSize.Set(float64(count))
}

// RecordRosterChange increments added/removed worker counters.
func (p *PrometheusCollector) RecordRosterChange(added, removed int) {
	p.ensureRegistered()
	if added > 0 {
		p.rosterChanges.WithLabelValues("added").Add(float64(added))
	}
	if removed > 0 {
		p.rosterChanges.WithLabelValues("removed").Add(float64(removed))
	}
}

// IncrementSkippedWorker increments the skipped worker counter for the reason.
func (p *PrometheusCollector) IncrementSkippedWorker(reason string) {
	p.ensureRegistered()
	p.skippedWorkers.WithLabelValues(reason).Inc()
}

// IndexMetrics implementation

// IncrementDroppedRecord increments the dropped record counter for the reason.
func (p *PrometheusCollector) IncrementDroppedRecord(reason string) {
	p.ensureRegistered()
	p.droppedRecords.WithLabelValues(reason).Inc()
}

// RecordIndexSubscriptions sets the live subscription count gauge.
func (p *PrometheusCollector) RecordIndexSubscriptions(count int) {
	p.ensureRegistered()
	p.indexSubs.Set(float64(count))
}

// ProjectorMetrics implementation

// RecordSnapshotRebuild records one completed snapshot recomputation.
func (p *PrometheusCollector) RecordSnapshotRebuild(workers, events int, seconds float64) {
	p.ensureRegistered()
	p.snapshotWorkers.Set(float64(workers))
	p.snapshotEvents.Set(float64(events))
	p.snapshotDuration.Observe(seconds)
	p.snapshotRebuilds.Inc()
}

// IncrementFeedError increments the feed error counter for the feed.
func (p *PrometheusCollector) IncrementFeedError(feed string) {
	p.ensureRegistered()
	p.feedErrors.WithLabelValues(feed).Inc()
}

// MutationMetrics implementation

// RecordMutation records a mutation outcome.
func (p *PrometheusCollector) RecordMutation(kind string, success bool) {
	p.ensureRegistered()
	result := "failure"
	if success {
		result = "success"
	}
	p.mutationResults.WithLabelValues(kind, result).Inc()
}

// RecordConfirmationLatency observes the accept-to-observe latency.
func (p *PrometheusCollector) RecordConfirmationLatency(seconds float64) {
	p.ensureRegistered()
	p.confirmLatency.Observe(seconds)
}

// IncrementConfirmationTimeout increments the confirmation timeout counter.
func (p *PrometheusCollector) IncrementConfirmationTimeout() {
	p.ensureRegistered()
	p.confirmTimeouts.Inc()
}
