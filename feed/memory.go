package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/fieldline/planboard/types"
)

// ErrJobNotFound is returned by Memory.UpdateJob when the job id is unknown.
var ErrJobNotFound = errors.New("feed: job not found")

// Memory implements an in-process worker feed, job feed and job store backed
// by plain slices.
//
// Every SetWorkers/SetJobs call and every accepted mutation re-emits the full
// document set to all live subscribers, matching the full-state contract of
// the feed interfaces. Useful for testing and for embedding planboard in a
// single process without external infrastructure.
type Memory struct {
	mu      sync.Mutex
	workers []types.Worker
	jobs    []types.JobRecord
	nextID  atomic.Uint64

	// emitMu serializes deliveries so each subscriber observes emissions in
	// order.
	emitMu sync.Mutex

	workerSubs *xsync.Map[uint64, *memoryWorkerSub]
	jobSubs    *xsync.Map[uint64, *memoryJobSub]
	nextSubID  atomic.Uint64

	// Injected failures (testing)
	failMu    sync.Mutex
	createErr error
	updateErr error
}

var (
	_ types.WorkerFeed = (*Memory)(nil)
	_ types.JobFeed    = (*Memory)(nil)
	_ types.JobStore   = (*Memory)(nil)
)

type memoryWorkerSub struct {
	handler types.WorkerBatchHandler
	onError types.FeedErrorHandler
}

type memoryJobSub struct {
	handler types.JobBatchHandler
	onError types.FeedErrorHandler
}

// NewMemory creates a new empty in-memory feed.
//
// Returns:
//   - *Memory: Initialized feed with no workers and no jobs
//
// Example:
//
//	feed := feed.NewMemory()
//	feed.SetWorkers([]types.Worker{{ID: "W-001", DisplayName: "Dana"}})
//	proj, err := planboard.NewProjector(&cfg, feed, feed)
func NewMemory() *Memory {
	return &Memory{
		workerSubs: xsync.NewMap[uint64, *memoryWorkerSub](),
		jobSubs:    xsync.NewMap[uint64, *memoryJobSub](),
	}
}

// SetWorkers replaces the worker set and emits it to all subscribers.
func (m *Memory) SetWorkers(workers []types.Worker) {
	m.mu.Lock()
	m.workers = make([]types.Worker, len(workers))
	copy(m.workers, workers)
	snapshot := m.workers
	m.mu.Unlock()

	m.emitWorkers(snapshot)
}

// SetJobs replaces the job set and emits it to all subscribers.
func (m *Memory) SetJobs(jobs []types.JobRecord) {
	m.mu.Lock()
	m.jobs = make([]types.JobRecord, len(jobs))
	copy(m.jobs, jobs)
	snapshot := m.jobs
	m.mu.Unlock()

	m.emitJobs(snapshot)
}

// Workers returns a copy of the current worker set.
func (m *Memory) Workers() []types.Worker {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]types.Worker, len(m.workers))
	copy(result, m.workers)

	return result
}

// Jobs returns a copy of the current job set.
func (m *Memory) Jobs() []types.JobRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]types.JobRecord, len(m.jobs))
	copy(result, m.jobs)

	return result
}

// SubscribeWorkers registers a handler for worker batches.
//
// The current worker set is delivered synchronously before SubscribeWorkers
// returns.
func (m *Memory) SubscribeWorkers(_ context.Context, handler types.WorkerBatchHandler, onError types.FeedErrorHandler) (types.Subscription, error) {
	id := m.nextSubID.Add(1)
	m.workerSubs.Store(id, &memoryWorkerSub{handler: handler, onError: onError})

	m.emitMu.Lock()
	handler(m.Workers())
	m.emitMu.Unlock()

	return &memoryHandle{release: func() { m.workerSubs.Delete(id) }}, nil
}

// SubscribeJobs registers a handler for job batches.
//
// The current job set is delivered synchronously before SubscribeJobs
// returns.
func (m *Memory) SubscribeJobs(_ context.Context, handler types.JobBatchHandler, onError types.FeedErrorHandler) (types.Subscription, error) {
	id := m.nextSubID.Add(1)
	m.jobSubs.Store(id, &memoryJobSub{handler: handler, onError: onError})

	m.emitMu.Lock()
	handler(m.Jobs())
	m.emitMu.Unlock()

	return &memoryHandle{release: func() { m.jobSubs.Delete(id) }}, nil
}

// CreateJob creates a new job from the draft and emits the updated job set.
//
// Returns:
//   - string: Assigned job id ("J-<n>")
//   - error: Injected failure or context cancellation
func (m *Memory) CreateJob(ctx context.Context, draft types.JobDraft) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.failMu.Lock()
	injected := m.createErr
	m.failMu.Unlock()
	if injected != nil {
		return "", injected
	}

	jobID := fmt.Sprintf("J-%d", m.nextID.Add(1))

	assignees := make([]types.AssignedWorker, len(draft.AssignedWorkers))
	copy(assignees, draft.AssignedWorkers)

	m.mu.Lock()
	m.jobs = append(m.jobs, types.JobRecord{
		ID:              jobID,
		Title:           draft.Title,
		Description:     draft.Description,
		Status:          draft.Status,
		Priority:        draft.Priority,
		CustomerName:    draft.CustomerName,
		LocationName:    draft.LocationName,
		AssignedWorkers: assignees,
		Start:           draft.Start,
		End:             draft.End,
	})
	snapshot := make([]types.JobRecord, len(m.jobs))
	copy(snapshot, m.jobs)
	m.mu.Unlock()

	m.emitJobs(snapshot)

	return jobID, nil
}

// UpdateJob applies the patch to an existing job and emits the updated set.
//
// Returns:
//   - error: ErrJobNotFound, injected failure or context cancellation
func (m *Memory) UpdateJob(ctx context.Context, jobID string, patch types.JobPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.failMu.Lock()
	injected := m.updateErr
	m.failMu.Unlock()
	if injected != nil {
		return injected
	}

	// Rebuild rather than patch in place: previously emitted batches may
	// still alias the old backing array.
	m.mu.Lock()
	found := false
	jobs := make([]types.JobRecord, len(m.jobs))
	copy(jobs, m.jobs)
	for i := range jobs {
		if jobs[i].ID == jobID {
			jobs[i] = patch.Apply(jobs[i])
			found = true
			break
		}
	}
	m.jobs = jobs
	snapshot := jobs
	m.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	m.emitJobs(snapshot)

	return nil
}

// FailWorkers pushes a feed failure to all worker subscribers.
func (m *Memory) FailWorkers(err error) {
	m.workerSubs.Range(func(_ uint64, sub *memoryWorkerSub) bool {
		if sub.onError != nil {
			sub.onError(err)
		}

		return true
	})
}

// FailJobs pushes a feed failure to all job subscribers.
func (m *Memory) FailJobs(err error) {
	m.jobSubs.Range(func(_ uint64, sub *memoryJobSub) bool {
		if sub.onError != nil {
			sub.onError(err)
		}

		return true
	})
}

// FailCreate makes subsequent CreateJob calls fail with err (nil clears).
func (m *Memory) FailCreate(err error) {
	m.failMu.Lock()
	m.createErr = err
	m.failMu.Unlock()
}

// FailUpdate makes subsequent UpdateJob calls fail with err (nil clears).
func (m *Memory) FailUpdate(err error) {
	m.failMu.Lock()
	m.updateErr = err
	m.failMu.Unlock()
}

// WorkerSubscriberCount returns the number of live worker subscriptions.
func (m *Memory) WorkerSubscriberCount() int {
	return m.workerSubs.Size()
}

// JobSubscriberCount returns the number of live job subscriptions.
func (m *Memory) JobSubscriberCount() int {
	return m.jobSubs.Size()
}

func (m *Memory) emitWorkers(workers []types.Worker) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.workerSubs.Range(func(_ uint64, sub *memoryWorkerSub) bool {
		sub.handler(workers)

		return true
	})
}

func (m *Memory) emitJobs(jobs []types.JobRecord) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.jobSubs.Range(func(_ uint64, sub *memoryJobSub) bool {
		sub.handler(jobs)

		return true
	})
}

// memoryHandle implements types.Subscription for Memory subscribers.
type memoryHandle struct {
	release func()
	once    sync.Once
}

// Unsubscribe releases the subscription. Safe to call multiple times.
func (h *memoryHandle) Unsubscribe() error {
	h.once.Do(h.release)

	return nil
}
