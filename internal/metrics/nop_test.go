package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNop(t *testing.T) {
	metrics := NewNop()

	require.NotNil(t, metrics)
	require.IsType(t, &NopMetrics{}, metrics)
}

func TestNopMetrics_RosterMetrics(t *testing.T) {
	metrics := NewNop()

	// Should not panic with various inputs
	require.NotPanics(t, func() {
		metrics.RecordRosterSize(5)
		metrics.RecordRosterSize(0)
		metrics.RecordRosterChange(3, 1)
		metrics.RecordRosterChange(0, 0)
		metrics.IncrementSkippedWorker("missing_id")
		metrics.IncrementSkippedWorker("")
	})
}

func TestNopMetrics_IndexMetrics(t *testing.T) {
	metrics := NewNop()

	// Should not panic with various inputs
	require.NotPanics(t, func() {
		metrics.RecordIndexedEvents("W-001", 12)
		metrics.RecordIndexedEvents("", 0)
		metrics.IncrementDroppedRecord("invalid_time")
		metrics.RecordIndexSubscriptions(7)
		metrics.RecordIndexSubscriptions(0)
	})
}

func TestNopMetrics_ProjectorMetrics(t *testing.T) {
	metrics := NewNop()

	// Should not panic with various inputs
	require.NotPanics(t, func() {
		metrics.RecordSnapshotRebuild(4, 20, 0.002)
		metrics.RecordSnapshotRebuild(0, 0, 0)
		metrics.IncrementFeedError("workers")
		metrics.IncrementFeedError("jobs")
	})
}

func TestNopMetrics_MutationMetrics(t *testing.T) {
	metrics := NewNop()

	// Should not panic with various inputs
	require.NotPanics(t, func() {
		metrics.RecordMutation("create", true)
		metrics.RecordMutation("edit", false)
		metrics.RecordConfirmationLatency(0.1)
		metrics.RecordConfirmationLatency(-1)
		metrics.IncrementConfirmationTimeout()
	})
}
