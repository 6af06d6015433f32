package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldline/planboard/types"
)

func TestMemory_Workers(t *testing.T) {
	t.Run("subscriber receives current state synchronously", func(t *testing.T) {
		m := NewMemory()
		m.SetWorkers([]types.Worker{{ID: "W-001"}, {ID: "W-002"}})

		var got []types.Worker
		sub, err := m.SubscribeWorkers(context.Background(), func(workers []types.Worker) {
			got = workers
		}, nil)
		require.NoError(t, err)
		defer sub.Unsubscribe() //nolint:errcheck

		require.Len(t, got, 2)
	})

	t.Run("every set emits the full state", func(t *testing.T) {
		m := NewMemory()

		var batches [][]types.Worker
		sub, err := m.SubscribeWorkers(context.Background(), func(workers []types.Worker) {
			batches = append(batches, workers)
		}, nil)
		require.NoError(t, err)
		defer sub.Unsubscribe() //nolint:errcheck

		m.SetWorkers([]types.Worker{{ID: "W-001"}})
		m.SetWorkers([]types.Worker{{ID: "W-002"}})

		require.Len(t, batches, 3)
		require.Empty(t, batches[0])
		require.Equal(t, "W-001", batches[1][0].ID)
		require.Equal(t, "W-002", batches[2][0].ID)
	})

	t.Run("unsubscribe stops deliveries", func(t *testing.T) {
		m := NewMemory()

		var deliveries int
		sub, err := m.SubscribeWorkers(context.Background(), func([]types.Worker) { deliveries++ }, nil)
		require.NoError(t, err)

		require.NoError(t, sub.Unsubscribe())
		require.NoError(t, sub.Unsubscribe())
		require.Equal(t, 0, m.WorkerSubscriberCount())

		m.SetWorkers([]types.Worker{{ID: "W-001"}})
		require.Equal(t, 1, deliveries)
	})

	t.Run("failure reaches the error handler", func(t *testing.T) {
		m := NewMemory()

		var seen error
		sub, err := m.SubscribeWorkers(context.Background(), func([]types.Worker) {}, func(err error) {
			seen = err
		})
		require.NoError(t, err)
		defer sub.Unsubscribe() //nolint:errcheck

		feedErr := errors.New("boom")
		m.FailWorkers(feedErr)

		require.ErrorIs(t, seen, feedErr)
	})
}

func TestMemory_Store(t *testing.T) {
	t.Run("create assigns an id and emits the new job set", func(t *testing.T) {
		m := NewMemory()

		var got []types.JobRecord
		sub, err := m.SubscribeJobs(context.Background(), func(jobs []types.JobRecord) {
			got = jobs
		}, nil)
		require.NoError(t, err)
		defer sub.Unsubscribe() //nolint:errcheck

		jobID, err := m.CreateJob(context.Background(), types.JobDraft{
			Title:           "New installation",
			AssignedWorkers: []types.AssignedWorker{{WorkerID: "W-001"}},
		})
		require.NoError(t, err)
		require.NotEmpty(t, jobID)

		require.Len(t, got, 1)
		require.Equal(t, jobID, got[0].ID)
		require.Equal(t, "New installation", got[0].Title)
	})

	t.Run("ids are unique", func(t *testing.T) {
		m := NewMemory()

		first, err := m.CreateJob(context.Background(), types.JobDraft{})
		require.NoError(t, err)
		second, err := m.CreateJob(context.Background(), types.JobDraft{})
		require.NoError(t, err)

		require.NotEqual(t, first, second)
	})

	t.Run("update patches the job and emits", func(t *testing.T) {
		m := NewMemory()
		m.SetJobs([]types.JobRecord{{ID: "J1", Title: "old"}})

		title := "new"
		require.NoError(t, m.UpdateJob(context.Background(), "J1", types.JobPatch{Title: &title}))

		jobs := m.Jobs()
		require.Len(t, jobs, 1)
		require.Equal(t, "new", jobs[0].Title)
	})

	t.Run("update does not mutate previously emitted batches", func(t *testing.T) {
		m := NewMemory()
		m.SetJobs([]types.JobRecord{{ID: "J1", Title: "old"}})

		var firstBatch []types.JobRecord
		sub, err := m.SubscribeJobs(context.Background(), func(jobs []types.JobRecord) {
			if firstBatch == nil {
				firstBatch = jobs
			}
		}, nil)
		require.NoError(t, err)
		defer sub.Unsubscribe() //nolint:errcheck

		title := "new"
		require.NoError(t, m.UpdateJob(context.Background(), "J1", types.JobPatch{Title: &title}))

		require.Equal(t, "old", firstBatch[0].Title)
	})

	t.Run("update of unknown job fails", func(t *testing.T) {
		m := NewMemory()

		title := "x"
		err := m.UpdateJob(context.Background(), "J-missing", types.JobPatch{Title: &title})

		require.ErrorIs(t, err, ErrJobNotFound)
	})

	t.Run("injected failures surface and clear", func(t *testing.T) {
		m := NewMemory()

		storeErr := errors.New("rejected")
		m.FailCreate(storeErr)
		_, err := m.CreateJob(context.Background(), types.JobDraft{})
		require.ErrorIs(t, err, storeErr)
		require.Empty(t, m.Jobs(), "a rejected create must not persist")

		m.FailCreate(nil)
		_, err = m.CreateJob(context.Background(), types.JobDraft{})
		require.NoError(t, err)
	})

	t.Run("cancelled context aborts before the write", func(t *testing.T) {
		m := NewMemory()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := m.CreateJob(ctx, types.JobDraft{})
		require.ErrorIs(t, err, context.Canceled)
		require.Empty(t, m.Jobs())
	})
}
