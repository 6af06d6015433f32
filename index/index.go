package index

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/fieldline/planboard/color"
	"github.com/fieldline/planboard/internal/logging"
	"github.com/fieldline/planboard/internal/metrics"
	"github.com/fieldline/planboard/timespec"
	"github.com/fieldline/planboard/types"
)

// Index derives per-worker schedule events from the job change feed.
//
// One logical subscription exists per worker currently in the roster; the
// owner creates and tears down per-worker subscriptions as the roster churns.
// SubscriptionCount() exposes the live count so the no-leak invariant
// (count == roster size) stays testable.
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Cached job state is written only by the feed delivery path
type Index struct {
	feed    types.JobFeed
	colors  *color.Assigner
	loc     *time.Location
	logger  types.Logger
	metrics types.IndexMetrics
	onError func(error)

	mu      sync.Mutex
	jobs    []types.JobRecord
	seeded  bool
	started bool
	feedSub types.Subscription

	subscribers *xsync.Map[uint64, *workerSub]
	nextSubID   atomic.Uint64
}

type workerSub struct {
	worker types.Worker
	fn     func([]types.ScheduleEvent)
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger (defaults to a no-op logger).
func WithLogger(logger types.Logger) Option {
	return func(ix *Index) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector (defaults to no-op metrics).
func WithMetrics(m types.IndexMetrics) Option {
	return func(ix *Index) {
		if m != nil {
			ix.metrics = m
		}
	}
}

// WithLocation sets the location used to interpret zone-less raw times
// (defaults to UTC).
func WithLocation(loc *time.Location) Option {
	return func(ix *Index) {
		if loc != nil {
			ix.loc = loc
		}
	}
}

// WithErrorHandler sets a callback invoked on job feed failures.
//
// The index freezes at its last-known-good state on feed failure.
func WithErrorHandler(fn func(error)) Option {
	return func(ix *Index) {
		ix.onError = fn
	}
}

// New creates an index over the given job feed.
//
// Parameters:
//   - feed: Upstream job change feed
//   - colors: Color assigner used when mapping records to events
//   - opts: Optional configuration (logger, metrics, location, error handler)
//
// Returns:
//   - *Index: Initialized index (not yet subscribed; call Start)
func New(feed types.JobFeed, colors *color.Assigner, opts ...Option) *Index {
	ix := &Index{
		feed:        feed,
		colors:      colors,
		loc:         time.UTC,
		logger:      logging.NewNop(),
		metrics:     metrics.NewNop(),
		subscribers: xsync.NewMap[uint64, *workerSub](),
	}

	for _, opt := range opts {
		opt(ix)
	}

	return ix
}

// Start subscribes the index to the job feed.
//
// Parameters:
//   - ctx: Context bounding subscription setup
//
// Returns:
//   - error: types.ErrAlreadyStarted, or a wrapped setup failure
func (ix *Index) Start(ctx context.Context) error {
	ix.mu.Lock()
	if ix.started {
		ix.mu.Unlock()

		return types.ErrAlreadyStarted
	}
	ix.started = true
	ix.mu.Unlock()

	sub, err := ix.feed.SubscribeJobs(ctx, ix.handleBatch, ix.handleFeedError)
	if err != nil {
		ix.mu.Lock()
		ix.started = false
		ix.mu.Unlock()

		return fmt.Errorf("%w: %w", types.ErrSubscriptionFailed, err)
	}

	ix.mu.Lock()
	ix.feedSub = sub
	ix.mu.Unlock()

	return nil
}

// Stop releases the feed subscription and drops all per-worker subscribers.
//
// Returns:
//   - error: types.ErrNotStarted, or the feed unsubscribe error
func (ix *Index) Stop() error {
	ix.mu.Lock()
	if !ix.started {
		ix.mu.Unlock()

		return types.ErrNotStarted
	}
	ix.started = false
	sub := ix.feedSub
	ix.feedSub = nil
	ix.mu.Unlock()

	ix.subscribers.Clear()
	ix.metrics.RecordIndexSubscriptions(0)

	if sub != nil {
		if err := sub.Unsubscribe(); err != nil {
			return fmt.Errorf("failed to unsubscribe job feed: %w", err)
		}
	}

	return nil
}

// Subscribe registers a per-worker event list handler.
//
// If the feed has already delivered a batch, the worker's current event list
// is delivered synchronously before Subscribe returns; otherwise the worker
// contributes an empty list until the first batch arrives. Each delivery
// replaces the previous list wholesale.
//
// Parameters:
//   - worker: The worker whose assignments to track
//   - fn: Receives the worker's full current event list on each change
//
// Returns:
//   - types.Subscription: Handle releasing this per-worker subscription
func (ix *Index) Subscribe(worker types.Worker, fn func([]types.ScheduleEvent)) types.Subscription {
	id := ix.nextSubID.Add(1)
	ix.subscribers.Store(id, &workerSub{worker: worker, fn: fn})
	ix.metrics.RecordIndexSubscriptions(ix.subscribers.Size())

	ix.mu.Lock()
	jobs, seeded := ix.jobs, ix.seeded
	ix.mu.Unlock()

	if seeded {
		fn(ix.eventsFor(worker, jobs))
	}

	return &handle{index: ix, id: id}
}

// SubscriptionCount returns the number of live per-worker subscriptions.
//
// After any sequence of roster adds/removes this must equal the number of
// workers currently tracked by the owner; a higher value is a leak.
func (ix *Index) SubscriptionCount() int {
	return ix.subscribers.Size()
}

// handleBatch ingests one full-state emission from the job feed and fans the
// recomputed per-worker event lists out to subscribers.
func (ix *Index) handleBatch(jobs []types.JobRecord) {
	ix.mu.Lock()
	ix.jobs = jobs
	ix.seeded = true
	ix.mu.Unlock()

	ix.subscribers.Range(func(_ uint64, sub *workerSub) bool {
		events := ix.eventsFor(sub.worker, jobs)
		ix.metrics.RecordIndexedEvents(sub.worker.ID, len(events))
		sub.fn(events)

		return true
	})
}

// handleFeedError surfaces a feed failure without touching cached state.
func (ix *Index) handleFeedError(err error) {
	ix.logger.Error("job feed failed, serving last-known-good assignments", "error", err)
	if ix.onError != nil {
		ix.onError(err)
	}
}

// eventsFor maps the jobs assigned to the worker into schedule events.
//
// Records that fail normalization are dropped with a warning; a job that
// lists the same worker twice yields a single event.
func (ix *Index) eventsFor(worker types.Worker, jobs []types.JobRecord) []types.ScheduleEvent {
	events := make([]types.ScheduleEvent, 0, len(jobs))
	seen := make(map[string]struct{}, len(jobs))

	for _, job := range jobs {
		if job.ID == "" {
			ix.metrics.IncrementDroppedRecord("missing_id")

			continue
		}
		if !job.AssignedTo(worker.ID) {
			continue
		}
		if _, dup := seen[job.ID]; dup {
			continue
		}

		start, end, err := timespec.NormalizeInterval(job.Start, job.End, ix.loc)
		if err != nil {
			ix.logger.Warn("dropping job with invalid time interval",
				"job_id", job.ID,
				"worker_id", worker.ID,
				"error", err,
			)
			ix.metrics.IncrementDroppedRecord("invalid_time")

			continue
		}

		seen[job.ID] = struct{}{}
		events = append(events, types.ScheduleEvent{
			JobID:           job.ID,
			WorkerID:        worker.ID,
			Title:           job.Title,
			Start:           start,
			End:             end,
			Status:          job.Status,
			Priority:        job.Priority,
			Color:           ix.colors.ColorFor(worker.ID),
			AssignedWorkers: job.AssignedWorkers,
		})
	}

	return events
}

// handle implements types.Subscription for per-worker subscribers.
type handle struct {
	index *Index
	id    uint64
	once  sync.Once
}

// Unsubscribe releases the subscription. Safe to call multiple times.
func (h *handle) Unsubscribe() error {
	h.once.Do(func() {
		h.index.subscribers.Delete(h.id)
		h.index.metrics.RecordIndexSubscriptions(h.index.subscribers.Size())
	})

	return nil
}
