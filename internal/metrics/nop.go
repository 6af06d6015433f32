// Package metrics provides metrics collector implementations for the planboard library.
package metrics

import "github.com/fieldline/planboard/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RosterMetrics implementation

// RecordRosterSize discards the roster size metric.
func (n *NopMetrics) RecordRosterSize(_ /* count */ int) {
	// No-op
}

// RecordRosterChange discards the roster change metric.
func (n *NopMetrics) RecordRosterChange(_ /* added */, _ /* removed */ int) {
	// No-op
}

// IncrementSkippedWorker discards the skipped worker counter.
func (n *NopMetrics) IncrementSkippedWorker(_ /* reason */ string) {
	// No-op
}

// IndexMetrics implementation

// RecordIndexedEvents discards the indexed events metric.
func (n *NopMetrics) RecordIndexedEvents(_ /* workerID */ string, _ /* count */ int) {
	// No-op
}

// IncrementDroppedRecord discards the dropped record counter.
func (n *NopMetrics) IncrementDroppedRecord(_ /* reason */ string) {
	// No-op
}

// RecordIndexSubscriptions discards the subscription count metric.
func (n *NopMetrics) RecordIndexSubscriptions(_ /* count */ int) {
	// No-op
}

// ProjectorMetrics implementation

// RecordSnapshotRebuild discards the snapshot rebuild metric.
func (n *NopMetrics) RecordSnapshotRebuild(_ /* workers */, _ /* events */ int, _ /* seconds */ float64) {
	// No-op
}

// IncrementFeedError discards the feed error counter.
func (n *NopMetrics) IncrementFeedError(_ /* feed */ string) {
	// No-op
}

// MutationMetrics implementation

// RecordMutation discards the mutation outcome metric.
func (n *NopMetrics) RecordMutation(_ /* kind */ string, _ /* success */ bool) {
	// No-op
}

// RecordConfirmationLatency discards the confirmation latency metric.
func (n *NopMetrics) RecordConfirmationLatency(_ /* seconds */ float64) {
	// No-op
}

// IncrementConfirmationTimeout discards the confirmation timeout counter.
func (n *NopMetrics) IncrementConfirmationTimeout() {
	// No-op
}
