package types

import "context"

// Subscription is an explicit handle for a live feed or component
// subscription.
//
// Every subscribe call returns its own handle; releasing the resource is the
// caller's responsibility. Unsubscribe must be idempotent: the first call
// tears the subscription down, later calls return nil.
type Subscription interface {
	// Unsubscribe releases the subscription. Safe to call multiple times.
	Unsubscribe() error
}

// WorkerBatchHandler receives one worker feed emission.
//
// Each emission is the authoritative complete worker set at that instant, not
// a delta. Handlers are invoked synchronously in the feed's delivery order.
type WorkerBatchHandler func(workers []Worker)

// JobBatchHandler receives one job feed emission.
//
// Each emission is the authoritative complete job set at that instant, not a
// delta. Handlers are invoked synchronously in the feed's delivery order.
type JobBatchHandler func(jobs []JobRecord)

// FeedErrorHandler receives upstream feed failures.
//
// Feed errors are non-fatal: the consuming component freezes at its
// last-known-good state rather than going empty.
type FeedErrorHandler func(err error)

// WorkerFeed is the upstream worker change feed.
//
// Implementations push the complete current worker set to the handler on
// every upstream change, and once immediately after subscribing (initial
// state). Delivery order must be preserved per subscription; handlers for one
// subscription are never invoked concurrently with each other.
type WorkerFeed interface {
	// SubscribeWorkers registers a handler for worker batches.
	//
	// Parameters:
	//   - ctx: Context bounding the subscription's setup; cancellation of ctx
	//     does not tear down an established subscription
	//   - handler: Receives each full-state worker batch
	//   - onError: Receives feed failures (may be nil)
	//
	// Returns:
	//   - Subscription: Handle to release the subscription
	//   - error: Setup failure
	SubscribeWorkers(ctx context.Context, handler WorkerBatchHandler, onError FeedErrorHandler) (Subscription, error)
}

// JobFeed is the upstream job change feed.
//
// Same full-state and ordering semantics as WorkerFeed. The core filters
// client-side per worker; the feed itself is unfiltered.
type JobFeed interface {
	// SubscribeJobs registers a handler for job batches.
	//
	// Parameters:
	//   - ctx: Context bounding the subscription's setup
	//   - handler: Receives each full-state job batch
	//   - onError: Receives feed failures (may be nil)
	//
	// Returns:
	//   - Subscription: Handle to release the subscription
	//   - error: Setup failure
	SubscribeJobs(ctx context.Context, handler JobBatchHandler, onError FeedErrorHandler) (Subscription, error)
}

// JobStore is the external job mutation API.
//
// Mutations are atomic at the store: a request either fully applies or does
// not apply at all. A request whose context is cancelled before the store
// acknowledged it must not be left pending to silently complete later.
// Mutations surface back through the JobFeed; implementations never invoke
// local callbacks on success.
type JobStore interface {
	// CreateJob creates a new job from the draft.
	//
	// Returns:
	//   - string: The externally assigned job ID
	//   - error: Transport or validation failure (the job was not created)
	CreateJob(ctx context.Context, draft JobDraft) (string, error)

	// UpdateJob applies the patch to an existing job.
	//
	// Returns:
	//   - error: Transport or validation failure (the job is unchanged)
	UpdateJob(ctx context.Context, jobID string, patch JobPatch) error
}
