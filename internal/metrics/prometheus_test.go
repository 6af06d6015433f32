package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheus(t *testing.T) {
	t.Run("defaults registerer and namespace", func(t *testing.T) {
		collector := NewPrometheus(nil, "")

		require.NotNil(t, collector)
		require.Equal(t, "planboard", collector.namespace)
	})

	t.Run("registers collectors lazily on first use", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		collector := NewPrometheus(reg, "planboard_test")

		families, err := reg.Gather()
		require.NoError(t, err)
		require.Empty(t, families, "nothing should register before first use")

		collector.RecordRosterSize(3)

		families, err = reg.Gather()
		require.NoError(t, err)
		require.NotEmpty(t, families)
	})
}

func TestPrometheusCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewPrometheus(reg, "planboard_test")

	collector.RecordRosterSize(4)
	collector.RecordRosterChange(2, 1)
	collector.RecordRosterChange(0, 0)
	collector.IncrementSkippedWorker("missing_id")
	collector.IncrementDroppedRecord("invalid_time")
	collector.RecordIndexSubscriptions(4)
	collector.RecordSnapshotRebuild(4, 17, 0.0015)
	collector.IncrementFeedError("jobs")
	collector.RecordMutation("create", true)
	collector.RecordMutation("edit", false)
	collector.RecordConfirmationLatency(0.2)
	collector.IncrementConfirmationTimeout()

	// Per-worker event gauges are deliberately left to the Nop embed to keep
	// label cardinality bounded; the call must still be safe.
	require.NotPanics(t, func() {
		collector.RecordIndexedEvents("W-001", 9)
	})

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]struct{}, len(families))
	for _, f := range families {
		names[f.GetName()] = struct{}{}
	}

	for _, expected := range []string{
		"planboard_test_roster_workers_current",
		"planboard_test_roster_worker_changes_total",
		"planboard_test_roster_skipped_workers_total",
		"planboard_test_index_dropped_records_total",
		"planboard_test_index_worker_subscriptions_current",
		"planboard_test_projector_snapshot_workers",
		"planboard_test_projector_snapshot_events",
		"planboard_test_projector_rebuild_duration_seconds",
		"planboard_test_projector_rebuilds_total",
		"planboard_test_projector_feed_errors_total",
		"planboard_test_controller_mutations_total",
		"planboard_test_controller_confirmation_latency_seconds",
		"planboard_test_controller_confirmation_timeouts_total",
	} {
		_, ok := names[expected]
		require.True(t, ok, "metric family %s not registered", expected)
	}
}

func TestPrometheusCollector_IdempotentRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewPrometheus(reg, "planboard_test")

	// Repeated use must not re-register (MustRegister would panic).
	require.NotPanics(t, func() {
		for i := 0; i < 10; i++ {
			collector.RecordRosterSize(i)
			collector.IncrementConfirmationTimeout()
		}
	})
}
