package types

import "context"

// Hooks defines callbacks for projector and controller lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// to avoid blocking recomputation. Hooks receive the owning component's
// lifecycle context which is cancelled during shutdown.
//
// Best practices for hook implementation:
//   - Complete quickly (< 1 second recommended)
//   - Respect context cancellation
//   - Don't block on long I/O operations
//   - Make hooks idempotent (may be called multiple times)
//   - Handle errors gracefully (return error for logging)
type Hooks struct {
	// OnSnapshotChanged is called after each published snapshot.
	// old is the previously published snapshot (zero value before the first).
	OnSnapshotChanged func(ctx context.Context, old, new ScheduleSnapshot) error

	// OnFeedError is called when an upstream feed fails. The component keeps
	// serving its last-known-good state; this hook is how the UI raises its
	// banner. feed is "workers" or "jobs".
	OnFeedError func(ctx context.Context, feed string, err error) error

	// OnMutationStateChanged is called when the controller's mutation state
	// machine transitions.
	OnMutationStateChanged func(ctx context.Context, from, to MutationState) error

	// OnConfirmationTimeout is called when an accepted mutation was not
	// observed back in a snapshot within the confirmation timeout.
	OnConfirmationTimeout func(ctx context.Context, jobID string) error
}
