package planboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fieldline/planboard/internal/hooks"
	"github.com/fieldline/planboard/internal/logging"
	"github.com/fieldline/planboard/internal/metrics"
	"github.com/fieldline/planboard/timespec"
	"github.com/fieldline/planboard/types"
)

// Controller drives job mutations against the external store and tracks one
// in-flight mutation through an explicit state machine:
//
//	Idle → Submitting → {Confirmed, Failed}
//
// A mutation never mutates local projection state directly: the store is the
// single writer, and the change surfaces back through the job feed like any
// other upstream edit. Confirmed therefore returns to Idle only once the
// mutated job is observed in a published snapshot, bounded by the
// confirmation timeout.
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - At most one mutation is in flight at a time; concurrent attempts fail
//     fast with ErrMutationInFlight instead of queueing
type Controller struct {
	cfg       Config
	store     types.JobStore
	projector *Projector

	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
	loc     *time.Location

	// Mutation state machine
	stateMu sync.Mutex
	state   types.MutationState

	// Lifecycle management
	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	stopped     bool
	wg          sync.WaitGroup
}

// NewController creates a new Controller instance.
//
// Parameters:
//   - cfg: Runtime configuration (scheduling window and timeout settings)
//   - store: External job mutation API
//   - projector: Projector whose snapshots confirm accepted mutations
//   - opts: Optional configuration (hooks, metrics, logger)
//
// Returns:
//   - *Controller: Initialized controller instance
//   - error: Validation error if configuration or dependencies are invalid
func NewController(cfg *Config, store types.JobStore, projector *Projector, opts ...Option) (*Controller, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if store == nil {
		return nil, ErrJobStoreRequired
	}
	if projector == nil {
		return nil, ErrProjectorRequired
	}

	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	options := &componentOptions{}
	for _, opt := range opts {
		opt(options)
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	hooksInstance := options.hooks
	if hooksInstance == nil {
		nopHooks := hooks.NewNop()
		hooksInstance = &nopHooks
	}

	loc, _ := cfg.Location() // already validated

	return &Controller{
		cfg:       *cfg,
		store:     store,
		projector: projector,
		hooks:     hooksInstance,
		metrics:   metricsCollector,
		logger:    loggerInstance,
		loc:       loc,
		state:     types.MutationIdle,
	}, nil
}

// Start prepares the controller for accepting mutations.
//
// Returns:
//   - error: ErrAlreadyStarted if already started
func (c *Controller) Start(_ context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.ctx != nil {
		return ErrAlreadyStarted
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.logger.Info("controller started",
		"scheduling_horizon", c.cfg.SchedulingHorizon,
		"scheduling_backfill", c.cfg.SchedulingBackfill,
		"confirmation_timeout", c.cfg.ConfirmationTimeout)

	return nil
}

// Stop gracefully shuts down the controller.
//
// Waits for in-flight confirmation watchers to finish, bounded by the
// configured shutdown timeout. Callbacks never reach a stopped projector.
//
// Parameters:
//   - ctx: Context for shutdown cancellation
//
// Returns:
//   - error: ErrNotStarted if not started, context error on timeout
func (c *Controller) Stop(ctx context.Context) error {
	c.lifecycleMu.Lock()
	if c.ctx == nil || c.stopped {
		c.lifecycleMu.Unlock()

		return ErrNotStarted
	}
	c.stopped = true
	c.cancel()
	c.lifecycleMu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	timeout := c.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		c.logger.Warn("shutdown timeout waiting for confirmation watchers")
	case <-ctx.Done():
		return ctx.Err()
	}

	c.logger.Info("controller stopped")

	return nil
}

// State returns the current mutation state.
func (c *Controller) State() MutationState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	return c.state
}

// CreateJob creates a new job assigned to the worker over [start, end).
//
// The interval must be strictly ordered and lie within the configured
// scheduling window around now. The draft's assignee list is extended with
// workerID when missing, so the resulting event is guaranteed to land in
// that worker's lane.
//
// CreateJob returns once the store has accepted or rejected the request;
// confirmation against a published snapshot continues in the background. On
// rejection the local projection is untouched and no retry is attempted.
//
// Parameters:
//   - ctx: Context for cancellation (bounded by the operation timeout)
//   - workerID: Worker the job is created for
//   - start: Interval start (inclusive)
//   - end: Interval end (exclusive, must be after start)
//   - draft: Remaining job fields
//
// Returns:
//   - string: The externally assigned job ID
//   - error: ErrInvalidTime, ErrIntervalOutOfWindow, ErrMutationInFlight,
//     or a store failure wrapped in ErrCreationRejected
func (c *Controller) CreateJob(ctx context.Context, workerID string, start, end time.Time, draft JobDraft) (string, error) {
	if err := c.requireStarted(); err != nil {
		return "", err
	}
	if workerID == "" {
		return "", fmt.Errorf("%w: worker id is required", ErrCreationRejected)
	}
	if err := c.validateInterval(start, end); err != nil {
		return "", err
	}

	if !c.transition(types.MutationIdle, types.MutationSubmitting) {
		return "", ErrMutationInFlight
	}

	draft.Start = rawSpecFromTime(start, c.loc)
	draft.End = rawSpecFromTime(end, c.loc)
	if !draftAssignedTo(draft, workerID) {
		draft.AssignedWorkers = append(draft.AssignedWorkers, types.AssignedWorker{WorkerID: workerID})
	}
	if draft.Status == "" {
		draft.Status = types.JobStatusScheduled
	}
	if draft.Priority == "" {
		draft.Priority = types.JobPriorityMedium
	}

	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OperationTimeout)
	defer cancel()

	submitted := time.Now()
	jobID, err := c.store.CreateJob(opCtx, draft)
	if err != nil {
		c.metrics.RecordMutation("create", false)
		c.fail()

		return "", fmt.Errorf("%w: %w", ErrCreationRejected, err)
	}

	c.metrics.RecordMutation("create", true)
	c.transition(types.MutationSubmitting, types.MutationConfirmed)
	c.logger.Info("job created", "job_id", jobID, "worker_id", workerID)

	c.watchConfirmation(jobID, submitted, func(snap ScheduleSnapshot) bool {
		return snap.HasEvent(jobID, workerID)
	})

	return jobID, nil
}

// EditJob applies a partial update to an existing job.
//
// Interval fields in the patch are validated against the scheduling window
// before submission; all other fields pass through to the store untouched.
// Like CreateJob, the local projection is only updated once the store's
// change surfaces back through the job feed.
//
// Parameters:
//   - ctx: Context for cancellation (bounded by the operation timeout)
//   - jobID: Job to update
//   - patch: Fields to change; nil fields are left untouched
//
// Returns:
//   - error: ErrEmptyPatch, ErrInvalidTime, ErrIntervalOutOfWindow,
//     ErrMutationInFlight, or a store failure wrapped in ErrEditRejected
func (c *Controller) EditJob(ctx context.Context, jobID string, patch JobPatch) error {
	if err := c.requireStarted(); err != nil {
		return err
	}
	if jobID == "" {
		return fmt.Errorf("%w: job id is required", ErrEditRejected)
	}
	if patch.IsEmpty() {
		return ErrEmptyPatch
	}

	patchedStart, patchedEnd, err := c.validatePatchInterval(patch)
	if err != nil {
		return err
	}

	if !c.transition(types.MutationIdle, types.MutationSubmitting) {
		return ErrMutationInFlight
	}

	baseVersion := c.projector.CurrentSnapshot().Version

	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OperationTimeout)
	defer cancel()

	submitted := time.Now()
	if err := c.store.UpdateJob(opCtx, jobID, patch); err != nil {
		c.metrics.RecordMutation("edit", false)
		c.fail()

		return fmt.Errorf("%w: %w", ErrEditRejected, err)
	}

	c.metrics.RecordMutation("edit", true)
	c.transition(types.MutationSubmitting, types.MutationConfirmed)
	c.logger.Info("job updated", "job_id", jobID)

	c.watchConfirmation(jobID, submitted, func(snap ScheduleSnapshot) bool {
		if snap.Version <= baseVersion {
			return false
		}
		if patchedStart.IsZero() || patchedEnd.IsZero() {
			return true
		}
		// When the patch moves the interval, require the moved event to be
		// visible; an unassignment patch removes the job entirely, which also
		// counts as observed.
		if !snap.HasJob(jobID) {
			return true
		}
		for _, ev := range snap.Events {
			if ev.JobID == jobID && ev.Start.Equal(patchedStart) && ev.End.Equal(patchedEnd) {
				return true
			}
		}

		return false
	})

	return nil
}

// watchConfirmation waits in the background for the accepted mutation to be
// observed in a snapshot, then returns the state machine to Idle.
func (c *Controller) watchConfirmation(jobID string, submitted time.Time, pred func(ScheduleSnapshot) bool) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.transition(types.MutationConfirmed, types.MutationIdle)

		select {
		case err := <-c.projector.WaitSnapshot(pred, c.cfg.ConfirmationTimeout):
			if err == nil {
				c.metrics.RecordConfirmationLatency(time.Since(submitted).Seconds())

				return
			}
		case <-c.lifecycleCtx().Done():
			return
		}

		c.metrics.IncrementConfirmationTimeout()
		c.logger.Warn("mutation accepted but not yet observed in a snapshot",
			"job_id", jobID,
			"timeout", c.cfg.ConfirmationTimeout)

		if c.hooks.OnConfirmationTimeout != nil {
			if err := c.hooks.OnConfirmationTimeout(c.lifecycleCtx(), jobID); err != nil {
				c.logger.Error("confirmation timeout hook error", "job_id", jobID, "error", err)
			}
		}
	}()
}

// fail records a rejected mutation and returns the machine to Idle once the
// error has been handed to the caller.
func (c *Controller) fail() {
	c.transition(types.MutationSubmitting, types.MutationFailed)
	c.transition(types.MutationFailed, types.MutationIdle)
}

// transition attempts a state machine transition, firing the
// OnMutationStateChanged hook when it succeeds.
func (c *Controller) transition(from, to types.MutationState) bool {
	c.stateMu.Lock()
	if c.state != from {
		c.stateMu.Unlock()

		return false
	}
	c.state = to
	c.stateMu.Unlock()

	c.logger.Debug("mutation state changed", "from", from.String(), "to", to.String())

	if c.hooks.OnMutationStateChanged != nil {
		go func() {
			if err := c.hooks.OnMutationStateChanged(c.lifecycleCtx(), from, to); err != nil {
				c.logger.Error("mutation state hook error", "from", from.String(), "to", to.String(), "error", err)
			}
		}()
	}

	return true
}

// validateInterval checks ordering and the scheduling window around now.
func (c *Controller) validateInterval(start, end time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidTime, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	now := time.Now()
	lower := now.Add(-c.cfg.SchedulingBackfill)
	upper := now.Add(c.cfg.SchedulingHorizon)
	if start.Before(lower) || end.After(upper) {
		return fmt.Errorf("%w: interval [%s, %s) outside window [%s, %s)",
			ErrIntervalOutOfWindow,
			start.Format(time.RFC3339), end.Format(time.RFC3339),
			lower.Format(time.RFC3339), upper.Format(time.RFC3339))
	}

	return nil
}

// validatePatchInterval validates interval fields carried by a patch.
//
// When both bounds are patched they are normalized and validated as an
// interval; the normalized bounds feed the confirmation predicate. A patch
// touching only one bound cannot be validated in isolation and is left to
// the store.
func (c *Controller) validatePatchInterval(patch types.JobPatch) (time.Time, time.Time, error) {
	if patch.Start == nil && patch.End == nil {
		return time.Time{}, time.Time{}, nil
	}

	if patch.Start != nil {
		if _, err := timespec.Normalize(*patch.Start, c.loc); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid start: %w", ErrInvalidTime, err)
		}
	}
	if patch.End != nil {
		if _, err := timespec.Normalize(*patch.End, c.loc); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid end: %w", ErrInvalidTime, err)
		}
	}

	if patch.Start == nil || patch.End == nil {
		return time.Time{}, time.Time{}, nil
	}

	start, end, err := timespec.NormalizeInterval(*patch.Start, *patch.End, c.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := c.validateInterval(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}

// requireStarted returns ErrNotStarted when the controller is not running.
func (c *Controller) requireStarted() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.ctx == nil || c.stopped {
		return ErrNotStarted
	}

	return nil
}

// lifecycleCtx returns the controller's lifecycle context, or a background
// context before Start.
func (c *Controller) lifecycleCtx() context.Context {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.ctx != nil {
		return c.ctx
	}

	return context.Background()
}

// rawSpecFromTime renders a concrete instant as a full ISO-8601 raw spec.
func rawSpecFromTime(t time.Time, loc *time.Location) types.RawTimeSpec {
	return types.RawTimeSpec{Value: t.In(loc).Format(time.RFC3339)}
}

// draftAssignedTo reports whether the draft's assignee list references the
// worker id.
func draftAssignedTo(draft types.JobDraft, workerID string) bool {
	for _, a := range draft.AssignedWorkers {
		if a.WorkerID == workerID {
			return true
		}
	}

	return false
}
