package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from internal goroutines and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	RosterMetrics
	IndexMetrics
	ProjectorMetrics
	MutationMetrics
}

// RosterMetrics defines metrics for roster-level operations.
type RosterMetrics interface {
	// RecordRosterSize sets the current roster size (gauge metric).
	RecordRosterSize(count int)

	// RecordRosterChange records worker topology changes per feed batch.
	//
	// Parameters:
	//   - added: Number of workers added (0 if none)
	//   - removed: Number of workers removed (0 if none)
	RecordRosterChange(added, removed int)

	// IncrementSkippedWorker counts worker documents dropped during intake.
	//
	// Parameters:
	//   - reason: Drop reason ("missing_id")
	IncrementSkippedWorker(reason string)
}

// IndexMetrics defines metrics for per-worker assignment indexing.
type IndexMetrics interface {
	// RecordIndexedEvents sets the event count produced for a worker on the
	// latest batch.
	RecordIndexedEvents(workerID string, count int)

	// IncrementDroppedRecord counts job records excluded from projection.
	//
	// Parameters:
	//   - reason: Drop reason ("invalid_time", "missing_id")
	IncrementDroppedRecord(reason string)

	// RecordIndexSubscriptions sets the current per-worker subscription count
	// (gauge metric; equals roster size when nothing leaks).
	RecordIndexSubscriptions(count int)
}

// ProjectorMetrics defines metrics for snapshot recomputation.
type ProjectorMetrics interface {
	// RecordSnapshotRebuild records one completed snapshot recomputation.
	//
	// Parameters:
	//   - workers: Workers in the published snapshot
	//   - events: Events in the published snapshot
	//   - seconds: Recomputation duration in seconds
	RecordSnapshotRebuild(workers, events int, seconds float64)

	// IncrementFeedError counts upstream feed failures by feed name.
	IncrementFeedError(feed string)
}

// MutationMetrics defines metrics for controller mutations.
type MutationMetrics interface {
	// RecordMutation records a mutation outcome.
	//
	// Parameters:
	//   - kind: "create" or "edit"
	//   - success: true if the store accepted the mutation
	RecordMutation(kind string, success bool)

	// RecordConfirmationLatency records the store-accept to snapshot-observed
	// latency in seconds.
	RecordConfirmationLatency(seconds float64)

	// IncrementConfirmationTimeout counts confirmations that timed out.
	IncrementConfirmationTimeout()
}
