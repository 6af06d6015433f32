package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldline/planboard/feed"
	"github.com/fieldline/planboard/types"
)

func startRoster(t *testing.T, f *feed.Memory, opts ...Option) *Roster {
	t.Helper()

	r := New(f, opts...)
	require.NoError(t, r.Start(context.Background()))
	t.Cleanup(func() { _ = r.Stop() })

	return r
}

func TestRoster_Lifecycle(t *testing.T) {
	t.Run("double start fails", func(t *testing.T) {
		r := startRoster(t, feed.NewMemory())

		require.ErrorIs(t, r.Start(context.Background()), types.ErrAlreadyStarted)
	})

	t.Run("stop before start fails", func(t *testing.T) {
		r := New(feed.NewMemory())

		require.ErrorIs(t, r.Stop(), types.ErrNotStarted)
	})

	t.Run("stop releases the feed subscription", func(t *testing.T) {
		f := feed.NewMemory()
		r := New(f)
		require.NoError(t, r.Start(context.Background()))
		require.Equal(t, 1, f.WorkerSubscriberCount())

		require.NoError(t, r.Stop())
		require.Equal(t, 0, f.WorkerSubscriberCount())
	})
}

func TestRoster_Intake(t *testing.T) {
	t.Run("stores the initial feed state", func(t *testing.T) {
		f := feed.NewMemory()
		f.SetWorkers([]types.Worker{
			{ID: "W-001", DisplayName: "Dana", Active: true},
			{ID: "W-002", DisplayName: "Sam", Active: true},
		})

		r := startRoster(t, f)

		require.Len(t, r.Current(), 2)
	})

	t.Run("each batch replaces the previous state", func(t *testing.T) {
		f := feed.NewMemory()
		f.SetWorkers([]types.Worker{{ID: "W-001", Active: true}})
		r := startRoster(t, f)

		f.SetWorkers([]types.Worker{{ID: "W-002", Active: true}})

		current := r.Current()
		require.Len(t, current, 1)
		require.Equal(t, "W-002", current[0].ID)
	})

	t.Run("skips worker documents without an id", func(t *testing.T) {
		f := feed.NewMemory()
		f.SetWorkers([]types.Worker{
			{ID: "", DisplayName: "ghost"},
			{ID: "W-001", DisplayName: "Dana"},
		})

		r := startRoster(t, f)

		current := r.Current()
		require.Len(t, current, 1)
		require.Equal(t, "W-001", current[0].ID)
	})

	t.Run("last write wins for duplicate ids within a batch", func(t *testing.T) {
		f := feed.NewMemory()
		f.SetWorkers([]types.Worker{
			{ID: "W-001", DisplayName: "first"},
			{ID: "W-002", DisplayName: "other"},
			{ID: "W-001", DisplayName: "second"},
		})

		r := startRoster(t, f)

		current := r.Current()
		require.Len(t, current, 2)
		// Position of first occurrence kept, content of last occurrence wins.
		require.Equal(t, "W-001", current[0].ID)
		require.Equal(t, "second", current[0].DisplayName)
	})

	t.Run("feeding the same batch twice converges to identical state", func(t *testing.T) {
		f := feed.NewMemory()
		workers := []types.Worker{
			{ID: "W-001", DisplayName: "Dana", Active: true},
			{ID: "W-002", DisplayName: "Sam", Active: true},
		}

		f.SetWorkers(workers)
		r := startRoster(t, f)
		first := r.Current()

		f.SetWorkers(workers)
		second := r.Current()

		require.Equal(t, first, second)
	})
}

func TestRoster_Subscribe(t *testing.T) {
	t.Run("delivers current filtered state synchronously", func(t *testing.T) {
		f := feed.NewMemory()
		f.SetWorkers([]types.Worker{
			{ID: "W-001", Role: types.RoleWorker, Active: true},
			{ID: "W-002", Role: types.RoleSupervisor, Active: true},
			{ID: "W-003", Role: types.RoleWorker, Active: false},
		})
		r := startRoster(t, f)

		var got []types.Worker
		sub := r.Subscribe(types.WorkerFilter{Role: types.RoleWorker, ActiveOnly: true}, func(workers []types.Worker) {
			got = workers
		})
		defer sub.Unsubscribe() //nolint:errcheck

		require.Len(t, got, 1)
		require.Equal(t, "W-001", got[0].ID)
	})

	t.Run("zero filter matches everything", func(t *testing.T) {
		f := feed.NewMemory()
		f.SetWorkers([]types.Worker{
			{ID: "W-001", Role: types.RoleAdmin, Active: false},
			{ID: "W-002", Role: types.RoleWorker, Active: true},
		})
		r := startRoster(t, f)

		var got []types.Worker
		sub := r.Subscribe(types.WorkerFilter{}, func(workers []types.Worker) {
			got = workers
		})
		defer sub.Unsubscribe() //nolint:errcheck

		require.Len(t, got, 2)
	})

	t.Run("notifies on every feed batch", func(t *testing.T) {
		f := feed.NewMemory()
		r := startRoster(t, f)

		var deliveries int
		sub := r.Subscribe(types.WorkerFilter{}, func([]types.Worker) {
			deliveries++
		})
		defer sub.Unsubscribe() //nolint:errcheck

		f.SetWorkers([]types.Worker{{ID: "W-001"}})
		f.SetWorkers([]types.Worker{{ID: "W-001"}, {ID: "W-002"}})

		require.Equal(t, 3, deliveries) // initial + two batches
	})

	t.Run("unsubscribe is idempotent and stops deliveries", func(t *testing.T) {
		f := feed.NewMemory()
		r := startRoster(t, f)

		var deliveries int
		sub := r.Subscribe(types.WorkerFilter{}, func([]types.Worker) {
			deliveries++
		})

		require.NoError(t, sub.Unsubscribe())
		require.NoError(t, sub.Unsubscribe())
		require.Equal(t, 0, r.SubscriberCount())

		f.SetWorkers([]types.Worker{{ID: "W-001"}})
		require.Equal(t, 1, deliveries) // only the initial delivery
	})
}

func TestRoster_FeedError(t *testing.T) {
	t.Run("freezes last-known-good state and surfaces the error", func(t *testing.T) {
		f := feed.NewMemory()
		f.SetWorkers([]types.Worker{{ID: "W-001", Active: true}})

		var seen error
		r := startRoster(t, f, WithErrorHandler(func(err error) { seen = err }))

		feedErr := errors.New("connection lost")
		f.FailWorkers(feedErr)

		require.ErrorIs(t, seen, feedErr)
		require.Len(t, r.Current(), 1, "roster must not go empty on feed failure")
	})
}
