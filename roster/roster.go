package roster

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/fieldline/planboard/internal/logging"
	"github.com/fieldline/planboard/internal/metrics"
	"github.com/fieldline/planboard/types"
)

// Roster holds a read-only cached projection of the upstream worker set.
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - State is written only by the feed delivery path (single-writer)
//   - Subscribers observe emissions in the feed's delivery order
//
// Lifecycle:
//   - Create with New()
//   - Call Start() to subscribe to the worker feed
//   - Call Stop() to release the feed subscription and drop subscribers
type Roster struct {
	feed    types.WorkerFeed
	logger  types.Logger
	metrics types.RosterMetrics
	onError func(error)

	mu      sync.Mutex
	workers []types.Worker
	started bool
	feedSub types.Subscription

	subscribers *xsync.Map[uint64, *subscriber]
	nextSubID   atomic.Uint64
}

type subscriber struct {
	filter types.WorkerFilter
	fn     func([]types.Worker)
}

// Option configures a Roster.
type Option func(*Roster)

// WithLogger sets the logger (defaults to a no-op logger).
func WithLogger(logger types.Logger) Option {
	return func(r *Roster) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector (defaults to no-op metrics).
func WithMetrics(m types.RosterMetrics) Option {
	return func(r *Roster) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithErrorHandler sets a callback invoked on worker feed failures.
//
// The roster freezes at its last-known-good state on feed failure; the
// handler is how the owner surfaces the error (e.g. a UI banner). The
// handler is called synchronously from the feed's error path.
func WithErrorHandler(fn func(error)) Option {
	return func(r *Roster) {
		r.onError = fn
	}
}

// New creates a roster over the given worker feed.
//
// Parameters:
//   - feed: Upstream worker change feed
//   - opts: Optional configuration (logger, metrics, error handler)
//
// Returns:
//   - *Roster: Initialized roster (not yet subscribed; call Start)
func New(feed types.WorkerFeed, opts ...Option) *Roster {
	r := &Roster{
		feed:        feed,
		logger:      logging.NewNop(),
		metrics:     metrics.NewNop(),
		subscribers: xsync.NewMap[uint64, *subscriber](),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Start subscribes the roster to the worker feed.
//
// The feed delivers the initial full state synchronously or shortly after
// subscribing; until then Current() returns an empty list.
//
// Parameters:
//   - ctx: Context bounding subscription setup
//
// Returns:
//   - error: types.ErrAlreadyStarted, or a wrapped setup failure
func (r *Roster) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()

		return types.ErrAlreadyStarted
	}
	r.started = true
	r.mu.Unlock()

	sub, err := r.feed.SubscribeWorkers(ctx, r.handleBatch, r.handleFeedError)
	if err != nil {
		r.mu.Lock()
		r.started = false
		r.mu.Unlock()

		return fmt.Errorf("%w: %w", types.ErrSubscriptionFailed, err)
	}

	r.mu.Lock()
	r.feedSub = sub
	r.mu.Unlock()

	return nil
}

// Stop releases the feed subscription and drops all roster subscribers.
//
// Returns:
//   - error: types.ErrNotStarted, or the feed unsubscribe error
func (r *Roster) Stop() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()

		return types.ErrNotStarted
	}
	r.started = false
	sub := r.feedSub
	r.feedSub = nil
	r.mu.Unlock()

	r.subscribers.Clear()

	if sub != nil {
		if err := sub.Unsubscribe(); err != nil {
			return fmt.Errorf("failed to unsubscribe worker feed: %w", err)
		}
	}

	return nil
}

// Current returns a copy of the current authoritative worker list, in roster
// order.
func (r *Roster) Current() []types.Worker {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]types.Worker, len(r.workers))
	copy(out, r.workers)

	return out
}

// Subscribe registers a handler for roster changes.
//
// The filter is applied at subscription time: each subscriber observes only
// the workers passing its filter, while the roster stores the unfiltered set.
// The current filtered list is delivered synchronously before Subscribe
// returns, then again on every feed batch.
//
// Parameters:
//   - filter: Per-subscription view filter (zero value matches everything)
//   - fn: Receives the filtered worker list on each change
//
// Returns:
//   - types.Subscription: Handle releasing this subscription
func (r *Roster) Subscribe(filter types.WorkerFilter, fn func([]types.Worker)) types.Subscription {
	id := r.nextSubID.Add(1)
	sub := &subscriber{filter: filter, fn: fn}
	r.subscribers.Store(id, sub)

	// Deliver the current state immediately so late subscribers do not wait
	// for the next upstream change.
	fn(filterWorkers(r.Current(), filter))

	return &handle{roster: r, id: id}
}

// SubscriberCount returns the number of live roster subscriptions.
func (r *Roster) SubscriberCount() int {
	return r.subscribers.Size()
}

// handleBatch ingests one full-state emission from the worker feed.
func (r *Roster) handleBatch(workers []types.Worker) {
	next := make([]types.Worker, 0, len(workers))
	byID := make(map[string]int, len(workers))

	for _, w := range workers {
		if w.ID == "" {
			// Inconsistent id resolution upstream would silently fragment a
			// worker's assignments; refuse the document instead.
			r.logger.Warn("skipping worker document without id", "display_name", w.DisplayName)
			r.metrics.IncrementSkippedWorker("missing_id")

			continue
		}
		if i, ok := byID[w.ID]; ok {
			// Last write wins within a batch, position of first occurrence kept.
			next[i] = w

			continue
		}
		byID[w.ID] = len(next)
		next = append(next, w)
	}

	r.mu.Lock()
	prev := r.workers
	r.workers = next
	r.mu.Unlock()

	added, removed := diffWorkers(prev, next)
	r.metrics.RecordRosterSize(len(next))
	r.metrics.RecordRosterChange(added, removed)

	if added > 0 || removed > 0 {
		r.logger.Debug("roster updated", "workers", len(next), "added", added, "removed", removed)
	}

	r.subscribers.Range(func(_ uint64, sub *subscriber) bool {
		sub.fn(filterWorkers(next, sub.filter))

		return true
	})
}

// handleFeedError surfaces a feed failure without touching cached state.
func (r *Roster) handleFeedError(err error) {
	r.logger.Error("worker feed failed, serving last-known-good roster", "error", err)
	if r.onError != nil {
		r.onError(err)
	}
}

// handle implements types.Subscription for roster subscribers.
type handle struct {
	roster *Roster
	id     uint64
	once   sync.Once
}

// Unsubscribe releases the subscription. Safe to call multiple times.
func (h *handle) Unsubscribe() error {
	h.once.Do(func() {
		h.roster.subscribers.Delete(h.id)
	})

	return nil
}

// filterWorkers returns the workers passing the filter, preserving order.
func filterWorkers(workers []types.Worker, filter types.WorkerFilter) []types.Worker {
	out := make([]types.Worker, 0, len(workers))
	for _, w := range workers {
		if filter.Matches(w) {
			out = append(out, w)
		}
	}

	return out
}

// diffWorkers counts id-level additions and removals between two batches.
func diffWorkers(prev, next []types.Worker) (added, removed int) {
	prevIDs := make(map[string]struct{}, len(prev))
	for _, w := range prev {
		prevIDs[w.ID] = struct{}{}
	}
	nextIDs := make(map[string]struct{}, len(next))
	for _, w := range next {
		nextIDs[w.ID] = struct{}{}
	}

	for id := range nextIDs {
		if _, ok := prevIDs[id]; !ok {
			added++
		}
	}
	for id := range prevIDs {
		if _, ok := nextIDs[id]; !ok {
			removed++
		}
	}

	return added, removed
}
