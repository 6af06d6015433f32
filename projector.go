package planboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/fieldline/planboard/color"
	"github.com/fieldline/planboard/index"
	"github.com/fieldline/planboard/internal/hooks"
	"github.com/fieldline/planboard/internal/logging"
	"github.com/fieldline/planboard/internal/metrics"
	"github.com/fieldline/planboard/roster"
	"github.com/fieldline/planboard/types"
)

// Projector combines the worker roster, the per-worker assignment index and
// color assignment into one immutable, render-ready schedule snapshot.
//
// Projector is the main entry point of the planboard library. It handles:
//   - Subscribing to the worker and job change feeds
//   - Maintaining one per-worker index subscription per roster member
//   - Total, synchronous snapshot recomputation on every upstream change
//   - Leak-free teardown of per-worker subscriptions on roster churn and Stop
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Projection state has a single-writer discipline guarded by one mutex
//   - Published snapshots are immutable copies; consumers never observe a
//     partially assembled snapshot or a mix of old roster with new events
//
// Lifecycle:
//   - Create with NewProjector()
//   - Call Start() to subscribe to both feeds
//   - Call Stop() for graceful teardown (transitively unsubscribes everything)
//
// Testing:
// Consumers can define minimal interfaces for mocking:
//
//	type ScheduleSource interface {
//	    CurrentSnapshot() planboard.ScheduleSnapshot
//	    Subscribe(fn func(planboard.ScheduleSnapshot)) planboard.Subscription
//	}
type Projector struct {
	cfg        Config
	workerFeed types.WorkerFeed
	jobFeed    types.JobFeed

	// Optional dependencies
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
	colors  *color.Assigner

	// Internal components
	roster *roster.Roster
	index  *index.Index

	// Projection state (single writer per field group, guarded by mu)
	mu             sync.Mutex
	rosterView     []types.Worker
	eventsByWorker map[string][]types.ScheduleEvent
	workerSubs     map[string]types.Subscription
	version        int64
	last           types.ScheduleSnapshot

	// publishMu serializes snapshot publication so subscribers observe
	// snapshots in version order.
	publishMu sync.Mutex
	snapshot  atomic.Value // types.ScheduleSnapshot

	subscribers *xsync.Map[uint64, func(types.ScheduleSnapshot)]
	nextSubID   atomic.Uint64

	// Lifecycle management
	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	stopped     bool
	rosterSub   types.Subscription
}

// NewProjector creates a new Projector instance with the provided configuration.
//
// Returns a concrete *Projector struct following the "accept interfaces,
// return structs" principle. Consumers can define their own interfaces for
// testing if needed.
//
// Parameters:
//   - cfg: Runtime configuration with parsed durations
//   - workerFeed: Upstream worker change feed
//   - jobFeed: Upstream job change feed
//   - opts: Optional configuration (hooks, metrics, logger, color assigner)
//
// Returns:
//   - *Projector: Initialized projector instance
//   - error: Validation error if configuration is invalid
//
// Example:
//
//	cfg := planboard.DefaultConfig()
//	proj, err := planboard.NewProjector(&cfg, workerFeed, jobFeed)
func NewProjector(cfg *Config, workerFeed types.WorkerFeed, jobFeed types.JobFeed, opts ...Option) (*Projector, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if workerFeed == nil {
		return nil, ErrWorkerFeedRequired
	}
	if jobFeed == nil {
		return nil, ErrJobFeedRequired
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Apply options
	options := &componentOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	// Validate with warnings after logger is available
	cfg.ValidateWithWarnings(loggerInstance)

	hooksInstance := options.hooks
	if hooksInstance == nil {
		nopHooks := hooks.NewNop()
		hooksInstance = &nopHooks
	}

	colorsInstance := options.colors
	if colorsInstance == nil {
		colorsInstance = color.New()
	}

	loc, _ := cfg.Location() // already validated

	p := &Projector{
		cfg:            *cfg,
		workerFeed:     workerFeed,
		jobFeed:        jobFeed,
		hooks:          hooksInstance,
		metrics:        metricsCollector,
		logger:         loggerInstance,
		colors:         colorsInstance,
		eventsByWorker: make(map[string][]types.ScheduleEvent),
		workerSubs:     make(map[string]types.Subscription),
		subscribers:    xsync.NewMap[uint64, func(types.ScheduleSnapshot)](),
	}

	p.roster = roster.New(workerFeed,
		roster.WithLogger(loggerInstance),
		roster.WithMetrics(metricsCollector),
		roster.WithErrorHandler(func(err error) { p.onFeedError("workers", err) }),
	)
	p.index = index.New(jobFeed, colorsInstance,
		index.WithLogger(loggerInstance),
		index.WithMetrics(metricsCollector),
		index.WithLocation(loc),
		index.WithErrorHandler(func(err error) { p.onFeedError("jobs", err) }),
	)

	p.snapshot.Store(types.ScheduleSnapshot{})

	return p, nil
}

// Start subscribes the projector to both upstream feeds.
//
// An initial snapshot (possibly empty) is published before Start returns, so
// CurrentSnapshot() is always meaningful afterwards.
//
// Parameters:
//   - ctx: Context for startup cancellation and timeout
//
// Returns:
//   - error: Startup error or context cancellation
func (p *Projector) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	if p.ctx != nil {
		p.lifecycleMu.Unlock()

		return ErrAlreadyStarted
	}

	// Create projector context with its own lifetime; the startup context
	// only bounds subscription setup.
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.lifecycleMu.Unlock()

	startupCtx := ctx
	if p.cfg.StartupTimeout > 0 {
		var cancel context.CancelFunc
		startupCtx, cancel = context.WithTimeout(ctx, p.cfg.StartupTimeout)
		defer cancel()
	}

	// Subscribe the index to the job feed first so per-worker subscriptions
	// created by the first roster batch can be seeded immediately.
	if err := p.index.Start(startupCtx); err != nil {
		return fmt.Errorf("failed to start assignment index: %w", err)
	}

	if err := p.roster.Start(startupCtx); err != nil {
		if stopErr := p.index.Stop(); stopErr != nil {
			p.logger.Error("failed to stop index after roster start failure", "error", stopErr)
		}

		return fmt.Errorf("failed to start roster: %w", err)
	}

	// The subscription delivers the current (possibly empty) roster
	// synchronously, which publishes the initial snapshot.
	p.lifecycleMu.Lock()
	p.rosterSub = p.roster.Subscribe(p.cfg.RosterFilter, p.handleRoster)
	p.lifecycleMu.Unlock()

	p.logger.Info("projector started", "workers", len(p.roster.Current()))

	return nil
}

// Stop gracefully tears down the projector.
//
// Teardown transitively unsubscribes the roster subscription and every live
// per-worker index subscription, then stops both components. Mutation
// requests in flight elsewhere may complete in the background, but no
// callback reaches a stopped projector. Safe to call multiple times -
// subsequent calls return ErrNotStarted.
//
// Parameters:
//   - ctx: Context for shutdown timeout (currently advisory)
//
// Returns:
//   - error: First teardown error encountered
func (p *Projector) Stop(_ context.Context) error {
	p.lifecycleMu.Lock()
	if p.ctx == nil || p.stopped {
		p.lifecycleMu.Unlock()

		return ErrNotStarted
	}
	p.stopped = true
	p.cancel()
	rosterSub := p.rosterSub
	p.rosterSub = nil
	p.lifecycleMu.Unlock()

	var shutdownErr error

	if rosterSub != nil {
		if err := rosterSub.Unsubscribe(); err != nil {
			shutdownErr = fmt.Errorf("roster unsubscribe failed: %w", err)
		}
	}

	// Drain the per-worker subscription arena.
	p.mu.Lock()
	subs := make([]types.Subscription, 0, len(p.workerSubs))
	for _, sub := range p.workerSubs {
		if sub != nil {
			subs = append(subs, sub)
		}
	}
	p.workerSubs = make(map[string]types.Subscription)
	p.eventsByWorker = make(map[string][]types.ScheduleEvent)
	p.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil && shutdownErr == nil {
			shutdownErr = fmt.Errorf("worker subscription teardown failed: %w", err)
		}
	}

	if err := p.roster.Stop(); err != nil && shutdownErr == nil {
		shutdownErr = fmt.Errorf("roster stop failed: %w", err)
	}
	if err := p.index.Stop(); err != nil && shutdownErr == nil {
		shutdownErr = fmt.Errorf("index stop failed: %w", err)
	}

	p.subscribers.Clear()

	p.logger.Info("projector stopped")

	return shutdownErr
}

// CurrentSnapshot returns the most recently published snapshot.
//
// The returned value is immutable; callers may retain it across
// recomputations.
//
// Returns:
//   - ScheduleSnapshot: Current snapshot (zero value before Start)
func (p *Projector) CurrentSnapshot() ScheduleSnapshot {
	if s := p.snapshot.Load(); s != nil {
		if snap, ok := s.(types.ScheduleSnapshot); ok {
			return snap
		}
	}

	return ScheduleSnapshot{}
}

// Subscribe registers a handler for published snapshots.
//
// The current snapshot is delivered synchronously before Subscribe returns,
// then every subsequent publication in version order.
//
// Parameters:
//   - fn: Receives each published snapshot
//
// Returns:
//   - Subscription: Handle releasing this subscription
func (p *Projector) Subscribe(fn func(ScheduleSnapshot)) Subscription {
	id := p.nextSubID.Add(1)
	p.subscribers.Store(id, fn)

	fn(p.CurrentSnapshot())

	return &snapshotHandle{projector: p, id: id}
}

// WorkerSubscriptions returns the number of live per-worker index
// subscriptions held by the projector.
//
// After any sequence of roster adds/removes this equals the roster size; a
// larger value is a resource leak.
func (p *Projector) WorkerSubscriptions() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.workerSubs)
}

// WaitSnapshot waits for a published snapshot satisfying the predicate.
//
// The method returns a read-only channel that will receive exactly one value:
//   - nil if a matching snapshot is observed within the timeout
//   - context.DeadlineExceeded if the timeout expires first
//
// The channel is closed after sending the result, allowing safe use in
// select statements.
//
// Parameters:
//   - pred: Predicate evaluated against each observed snapshot
//   - timeout: Maximum duration to wait
//
// Returns:
//   - <-chan error: A channel that receives the result (nil on success, error on timeout)
//
// Example:
//
//	errCh := proj.WaitSnapshot(func(s planboard.ScheduleSnapshot) bool {
//	    return s.HasJob("J42")
//	}, 5*time.Second)
//	if err := <-errCh; err != nil {
//	    log.Printf("job J42 never appeared: %v", err)
//	}
func (p *Projector) WaitSnapshot(pred func(ScheduleSnapshot) bool, timeout time.Duration) <-chan error {
	ch := make(chan error, 1) // Buffered to prevent goroutine leak

	go func() {
		defer close(ch)

		if pred(p.CurrentSnapshot()) {
			ch <- nil
			return
		}

		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()

		timeoutTimer := time.NewTimer(timeout)
		defer timeoutTimer.Stop()

		for {
			select {
			case <-ticker.C:
				if pred(p.CurrentSnapshot()) {
					ch <- nil
					return
				}
			case <-timeoutTimer.C:
				ch <- context.DeadlineExceeded
				return
			}
		}
	}()

	return ch
}

// handleRoster ingests one (filtered) roster emission and reconciles the
// per-worker subscription arena against it.
//
// Roster emissions for one subscription arrive sequentially, so the arena is
// only ever reconciled by one goroutine at a time; the index's job-batch
// deliveries may interleave but touch only eventsByWorker under mu.
func (p *Projector) handleRoster(workers []types.Worker) {
	p.mu.Lock()
	p.rosterView = workers

	desired := make(map[string]types.Worker, len(workers))
	for _, w := range workers {
		desired[w.ID] = w
	}

	var toRemove []types.Subscription
	for id, sub := range p.workerSubs {
		if _, ok := desired[id]; ok {
			continue
		}
		if sub != nil {
			toRemove = append(toRemove, sub)
		}
		delete(p.workerSubs, id)
		delete(p.eventsByWorker, id)
	}

	var toAdd []types.Worker
	for _, w := range workers {
		if _, ok := p.workerSubs[w.ID]; !ok {
			// Reserve the slot so event deliveries racing ahead of the
			// handle assignment below are accepted, not dropped.
			p.workerSubs[w.ID] = nil
			toAdd = append(toAdd, w)
		}
	}
	p.mu.Unlock()

	// Release removed workers outside the lock; Unsubscribe is idempotent.
	for _, sub := range toRemove {
		if err := sub.Unsubscribe(); err != nil {
			p.logger.Error("failed to release worker subscription", "error", err)
		}
	}

	// Acquire subscriptions for new workers outside the lock: the index
	// delivers the worker's current events synchronously from Subscribe,
	// which re-enters handleWorkerEvents.
	for _, w := range toAdd {
		worker := w
		sub := p.index.Subscribe(worker, func(events []types.ScheduleEvent) {
			p.handleWorkerEvents(worker.ID, events)
		})

		p.mu.Lock()
		if _, ok := p.workerSubs[worker.ID]; ok {
			p.workerSubs[worker.ID] = sub
			p.mu.Unlock()
		} else {
			// Arena was drained by Stop while we were subscribing.
			p.mu.Unlock()
			if err := sub.Unsubscribe(); err != nil {
				p.logger.Error("failed to release orphaned worker subscription", "worker_id", worker.ID, "error", err)
			}
		}
	}

	p.publish()
}

// handleWorkerEvents stores one worker's recomputed event list.
//
// Deliveries for workers no longer in the arena are stale and ignored; this
// is what keeps a removed worker's events from resurfacing after teardown of
// its subscription.
func (p *Projector) handleWorkerEvents(workerID string, events []types.ScheduleEvent) {
	p.mu.Lock()
	if _, ok := p.workerSubs[workerID]; !ok {
		p.mu.Unlock()

		return
	}
	p.eventsByWorker[workerID] = events
	p.mu.Unlock()

	p.publish()
}

// publish assembles and publishes a new snapshot from current cached state.
//
// Recomputation is synchronous and total: the snapshot is derived entirely
// from the cached roster view and per-worker event lists, never from a diff,
// so roster and job updates arriving in either order converge to the same
// result. If the assembled content equals the previous snapshot, the
// previous value (same version) is republished unchanged.
func (p *Projector) publish() {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	began := time.Now()

	p.mu.Lock()
	old := p.last
	snap := p.assembleLocked()
	if snapshotEqual(p.last, snap) {
		snap = p.last
	} else {
		p.version++
		snap.Version = p.version
		p.last = snap
	}
	p.mu.Unlock()

	p.snapshot.Store(snap)
	p.metrics.RecordSnapshotRebuild(len(snap.Workers), len(snap.Events), time.Since(began).Seconds())

	p.subscribers.Range(func(_ uint64, fn func(types.ScheduleSnapshot)) bool {
		fn(snap)

		return true
	})

	if p.hooks.OnSnapshotChanged != nil && snap.Version != old.Version {
		// Run hook in background to avoid blocking recomputation
		go func() {
			if err := p.hooks.OnSnapshotChanged(p.lifecycleCtx(), old, snap); err != nil {
				p.logger.Error("snapshot change hook error", "version", snap.Version, "error", err)
			}
		}()
	}
}

// assembleLocked builds a snapshot from cached state. Caller holds p.mu.
func (p *Projector) assembleLocked() types.ScheduleSnapshot {
	workers := make([]types.RosterEntry, 0, len(p.rosterView))
	for _, w := range p.rosterView {
		workers = append(workers, types.RosterEntry{
			Worker: w,
			Color:  p.colors.ColorFor(w.ID),
		})
	}

	events := make([]types.ScheduleEvent, 0, len(p.rosterView))
	seen := make(map[string]struct{})
	for _, w := range p.rosterView {
		for _, ev := range p.eventsByWorker[w.ID] {
			key := ev.JobID + "\x00" + ev.WorkerID
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			events = append(events, ev)
		}
	}

	return types.ScheduleSnapshot{Workers: workers, Events: events}
}

// onFeedError surfaces an upstream feed failure.
//
// The projector keeps serving its last valid snapshot; the failure reaches
// the UI through the OnFeedError hook (typically rendered as a banner).
func (p *Projector) onFeedError(feed string, err error) {
	p.metrics.IncrementFeedError(feed)

	if p.hooks.OnFeedError != nil {
		go func() {
			if hookErr := p.hooks.OnFeedError(p.lifecycleCtx(), feed, err); hookErr != nil {
				p.logger.Error("feed error hook error", "feed", feed, "error", hookErr)
			}
		}()
	}
}

// lifecycleCtx returns the projector's lifecycle context, or a background
// context before Start.
func (p *Projector) lifecycleCtx() context.Context {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.ctx != nil {
		return p.ctx
	}

	return context.Background()
}

// snapshotHandle implements types.Subscription for snapshot subscribers.
type snapshotHandle struct {
	projector *Projector
	id        uint64
	once      sync.Once
}

// Unsubscribe releases the subscription. Safe to call multiple times.
func (h *snapshotHandle) Unsubscribe() error {
	h.once.Do(func() {
		h.projector.subscribers.Delete(h.id)
	})

	return nil
}

// snapshotEqual reports whether two snapshots have identical content,
// ignoring the version counter.
func snapshotEqual(a, b types.ScheduleSnapshot) bool {
	if len(a.Workers) != len(b.Workers) || len(a.Events) != len(b.Events) {
		return false
	}
	for i := range a.Workers {
		if a.Workers[i] != b.Workers[i] {
			return false
		}
	}
	for i := range a.Events {
		if !eventEqual(a.Events[i], b.Events[i]) {
			return false
		}
	}

	return true
}

// eventEqual compares events field-wise, using time.Time.Equal for instants.
func eventEqual(a, b types.ScheduleEvent) bool {
	if a.JobID != b.JobID || a.WorkerID != b.WorkerID || a.Title != b.Title ||
		a.Status != b.Status || a.Priority != b.Priority || a.Color != b.Color {
		return false
	}
	if !a.Start.Equal(b.Start) || !a.End.Equal(b.End) {
		return false
	}
	if len(a.AssignedWorkers) != len(b.AssignedWorkers) {
		return false
	}
	for i := range a.AssignedWorkers {
		if a.AssignedWorkers[i] != b.AssignedWorkers[i] {
			return false
		}
	}

	return true
}
