package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/nuid"

	"github.com/fieldline/planboard/internal/kvutil"
	"github.com/fieldline/planboard/types"
)

// Default bucket names for the NATS feed.
const (
	DefaultWorkerBucket = "planboard-workers"
	DefaultJobBucket    = "planboard-jobs"
)

// ErrJobExists is returned by NATS.CreateJob when the generated job id
// collides with an existing key.
var ErrJobExists = errors.New("feed: job already exists")

// NATSConfig configures the JetStream-backed feed.
type NATSConfig struct {
	// WorkerBucket is the KV bucket holding worker documents keyed by worker id.
	// Defaults to DefaultWorkerBucket.
	WorkerBucket string

	// JobBucket is the KV bucket holding job documents keyed by job id.
	// Defaults to DefaultJobBucket.
	JobBucket string

	// Replicas is the KV bucket replica count. Defaults to 1.
	Replicas int

	// Logger receives decode warnings for malformed documents. Optional.
	Logger types.Logger
}

func (c *NATSConfig) setDefaults() {
	if c.WorkerBucket == "" {
		c.WorkerBucket = DefaultWorkerBucket
	}
	if c.JobBucket == "" {
		c.JobBucket = DefaultJobBucket
	}
	if c.Replicas <= 0 {
		c.Replicas = 1
	}
}

// NATS implements the worker feed, job feed and job store on top of
// JetStream KeyValue buckets.
//
// Each document lives under its id as a JSON value. A watcher per
// subscription accumulates the bucket's contents and emits the complete
// document set after every change, so consumers see full state exactly as
// with the in-memory feed. Malformed documents are skipped with a warning
// rather than failing the feed.
type NATS struct {
	js  jetstream.JetStream
	cfg NATSConfig

	mu       sync.Mutex
	workerKV jetstream.KeyValue
	jobKV    jetstream.KeyValue
}

var (
	_ types.WorkerFeed = (*NATS)(nil)
	_ types.JobFeed    = (*NATS)(nil)
	_ types.JobStore   = (*NATS)(nil)
)

// NewNATS creates a feed backed by JetStream KV buckets.
//
// Buckets are created lazily on first use; NewNATS performs no I/O.
//
// Parameters:
//   - js: JetStream context
//   - cfg: Bucket configuration (zero value uses defaults)
//
// Returns:
//   - *NATS: Initialized feed
func NewNATS(js jetstream.JetStream, cfg NATSConfig) *NATS {
	cfg.setDefaults()

	return &NATS{js: js, cfg: cfg}
}

// SubscribeWorkers watches the worker bucket and emits full worker sets.
//
// The current bucket contents are delivered as the first emission once the
// initial replay completes.
func (n *NATS) SubscribeWorkers(ctx context.Context, handler types.WorkerBatchHandler, onError types.FeedErrorHandler) (types.Subscription, error) {
	kv, err := n.ensureWorkerKV(ctx)
	if err != nil {
		return nil, err
	}

	return watchBucket(ctx, kv, onError, func(docs map[string][]byte) {
		workers := make([]types.Worker, 0, len(docs))
		for _, key := range sortedKeys(docs) {
			var w types.Worker
			if err := json.Unmarshal(docs[key], &w); err != nil {
				n.warn("skipping malformed worker document", key, err)
				continue
			}
			workers = append(workers, w)
		}
		handler(workers)
	})
}

// SubscribeJobs watches the job bucket and emits full job sets.
func (n *NATS) SubscribeJobs(ctx context.Context, handler types.JobBatchHandler, onError types.FeedErrorHandler) (types.Subscription, error) {
	kv, err := n.ensureJobKV(ctx)
	if err != nil {
		return nil, err
	}

	return watchBucket(ctx, kv, onError, func(docs map[string][]byte) {
		jobs := make([]types.JobRecord, 0, len(docs))
		for _, key := range sortedKeys(docs) {
			var j types.JobRecord
			if err := json.Unmarshal(docs[key], &j); err != nil {
				n.warn("skipping malformed job document", key, err)
				continue
			}
			jobs = append(jobs, j)
		}
		handler(jobs)
	})
}

// PutWorker writes one worker document keyed by its id.
func (n *NATS) PutWorker(ctx context.Context, worker types.Worker) error {
	if worker.ID == "" {
		return errors.New("feed: worker id is required")
	}

	kv, err := n.ensureWorkerKV(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(worker)
	if err != nil {
		return fmt.Errorf("failed to encode worker %s: %w", worker.ID, err)
	}

	if _, err := kv.Put(ctx, worker.ID, data); err != nil {
		return fmt.Errorf("failed to store worker %s: %w", worker.ID, err)
	}

	return nil
}

// DeleteWorker removes one worker document.
func (n *NATS) DeleteWorker(ctx context.Context, workerID string) error {
	kv, err := n.ensureWorkerKV(ctx)
	if err != nil {
		return err
	}

	if err := kv.Delete(ctx, workerID); err != nil {
		return fmt.Errorf("failed to delete worker %s: %w", workerID, err)
	}

	return nil
}

// PutJob writes one job document keyed by its id.
func (n *NATS) PutJob(ctx context.Context, job types.JobRecord) error {
	if job.ID == "" {
		return errors.New("feed: job id is required")
	}

	kv, err := n.ensureJobKV(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}

	if _, err := kv.Put(ctx, job.ID, data); err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}

	return nil
}

// DeleteJob removes one job document.
func (n *NATS) DeleteJob(ctx context.Context, jobID string) error {
	kv, err := n.ensureJobKV(ctx)
	if err != nil {
		return err
	}

	if err := kv.Delete(ctx, jobID); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", jobID, err)
	}

	return nil
}

// CreateJob creates a new job document with a generated id.
//
// Uses KV Create (not Put) so a colliding id fails instead of silently
// overwriting; the write is atomic at the bucket.
//
// Returns:
//   - string: Generated job id
//   - error: Encoding or KV failure (the job was not created)
func (n *NATS) CreateJob(ctx context.Context, draft types.JobDraft) (string, error) {
	kv, err := n.ensureJobKV(ctx)
	if err != nil {
		return "", err
	}

	jobID := "J-" + nuid.Next()
	job := types.JobRecord{
		ID:              jobID,
		Title:           draft.Title,
		Description:     draft.Description,
		Status:          draft.Status,
		Priority:        draft.Priority,
		CustomerName:    draft.CustomerName,
		LocationName:    draft.LocationName,
		AssignedWorkers: draft.AssignedWorkers,
		Start:           draft.Start,
		End:             draft.End,
	}

	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to encode job: %w", err)
	}

	if _, err := kv.Create(ctx, jobID, data); err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return "", fmt.Errorf("%w: %s", ErrJobExists, jobID)
		}

		return "", fmt.Errorf("failed to create job: %w", err)
	}

	return jobID, nil
}

// UpdateJob applies the patch to an existing job document.
//
// Uses a compare-and-swap on the KV revision so a concurrent writer causes a
// clean failure instead of a lost update.
//
// Returns:
//   - error: ErrJobNotFound, decode failure or KV failure (job unchanged)
func (n *NATS) UpdateJob(ctx context.Context, jobID string, patch types.JobPatch) error {
	kv, err := n.ensureJobKV(ctx)
	if err != nil {
		return err
	}

	entry, err := kv.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}

		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	var job types.JobRecord
	if err := json.Unmarshal(entry.Value(), &job); err != nil {
		return fmt.Errorf("failed to decode job %s: %w", jobID, err)
	}

	data, err := json.Marshal(patch.Apply(job))
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", jobID, err)
	}

	if _, err := kv.Update(ctx, jobID, data, entry.Revision()); err != nil {
		return fmt.Errorf("failed to update job %s: %w", jobID, err)
	}

	return nil
}

func (n *NATS) ensureWorkerKV(ctx context.Context) (jetstream.KeyValue, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.workerKV != nil {
		return n.workerKV, nil
	}

	kv, err := kvutil.EnsureBucketWithRetry(ctx, n.js, jetstream.KeyValueConfig{
		Bucket:   n.cfg.WorkerBucket,
		Replicas: n.cfg.Replicas,
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure worker bucket: %w", err)
	}
	n.workerKV = kv

	return kv, nil
}

func (n *NATS) ensureJobKV(ctx context.Context) (jetstream.KeyValue, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.jobKV != nil {
		return n.jobKV, nil
	}

	kv, err := kvutil.EnsureBucketWithRetry(ctx, n.js, jetstream.KeyValueConfig{
		Bucket:   n.cfg.JobBucket,
		Replicas: n.cfg.Replicas,
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure job bucket: %w", err)
	}
	n.jobKV = kv

	return kv, nil
}

func (n *NATS) warn(msg, key string, err error) {
	if n.cfg.Logger != nil {
		n.cfg.Logger.Warn(msg, "key", key, "error", err)
	}
}

// watchBucket runs a KV watcher that accumulates the bucket contents and
// invokes emit with the complete document set after the initial replay and
// after every subsequent change.
func watchBucket(ctx context.Context, kv jetstream.KeyValue, onError types.FeedErrorHandler, emit func(docs map[string][]byte)) (types.Subscription, error) {
	// The watcher outlives the setup context; cancellation happens via
	// Unsubscribe.
	watchCtx, cancel := context.WithCancel(context.Background())

	watcher, err := kv.WatchAll(watchCtx)
	if err != nil {
		cancel()

		return nil, fmt.Errorf("%w: %w", types.ErrSubscriptionFailed, err)
	}

	ready := make(chan struct{})
	go func() {
		docs := make(map[string][]byte)
		replayed := false

		for {
			select {
			case <-watchCtx.Done():
				return
			case entry, ok := <-watcher.Updates():
				if !ok {
					if onError != nil && watchCtx.Err() == nil {
						onError(errors.New("feed: watcher closed unexpectedly"))
					}

					return
				}
				if entry == nil {
					// End-of-replay marker: the accumulated map is now the
					// complete current state.
					if !replayed {
						replayed = true
						emit(cloneDocs(docs))
						close(ready)
					}
					continue
				}

				switch entry.Operation() {
				case jetstream.KeyValueDelete, jetstream.KeyValuePurge:
					delete(docs, entry.Key())
				default:
					value := make([]byte, len(entry.Value()))
					copy(value, entry.Value())
					docs[entry.Key()] = value
				}

				if replayed {
					emit(cloneDocs(docs))
				}
			}
		}
	}()

	// Wait for the initial replay so the subscription contract (first
	// emission is current state) holds before returning.
	select {
	case <-ready:
	case <-ctx.Done():
		cancel()
		_ = watcher.Stop()

		return nil, fmt.Errorf("%w: %w", types.ErrSubscriptionFailed, ctx.Err())
	}

	return &natsHandle{cancel: cancel, watcher: watcher}, nil
}

// cloneDocs copies the accumulator so emissions never alias mutable state.
func cloneDocs(docs map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(docs))
	for k, v := range docs {
		out[k] = v
	}

	return out
}

// sortedKeys returns the document keys in ascending order so emissions are
// deterministic.
func sortedKeys(docs map[string][]byte) []string {
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// natsHandle implements types.Subscription for KV watchers.
type natsHandle struct {
	cancel  context.CancelFunc
	watcher jetstream.KeyWatcher
	once    sync.Once
}

// Unsubscribe stops the watcher. Safe to call multiple times.
func (h *natsHandle) Unsubscribe() error {
	h.once.Do(func() {
		h.cancel()
		_ = h.watcher.Stop()
	})

	return nil
}
