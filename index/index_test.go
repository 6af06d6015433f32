package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldline/planboard/color"
	"github.com/fieldline/planboard/feed"
	"github.com/fieldline/planboard/types"
)

func job(id, title string, workerIDs ...string) types.JobRecord {
	assignees := make([]types.AssignedWorker, 0, len(workerIDs))
	for _, w := range workerIDs {
		assignees = append(assignees, types.AssignedWorker{WorkerID: w})
	}

	return types.JobRecord{
		ID:              id,
		Title:           title,
		Status:          types.JobStatusScheduled,
		Priority:        types.JobPriorityMedium,
		AssignedWorkers: assignees,
		Start:           types.RawTimeSpec{Value: "2024-11-12", TimeOfDay: "09:00"},
		End:             types.RawTimeSpec{Value: "2024-11-12", TimeOfDay: "10:00"},
	}
}

func startIndex(t *testing.T, f *feed.Memory, opts ...Option) *Index {
	t.Helper()

	ix := New(f, color.New(), opts...)
	require.NoError(t, ix.Start(context.Background()))
	t.Cleanup(func() { _ = ix.Stop() })

	return ix
}

func TestIndex_Lifecycle(t *testing.T) {
	t.Run("double start fails", func(t *testing.T) {
		ix := startIndex(t, feed.NewMemory())

		require.ErrorIs(t, ix.Start(context.Background()), types.ErrAlreadyStarted)
	})

	t.Run("stop before start fails", func(t *testing.T) {
		ix := New(feed.NewMemory(), color.New())

		require.ErrorIs(t, ix.Stop(), types.ErrNotStarted)
	})

	t.Run("stop drops all per-worker subscribers", func(t *testing.T) {
		f := feed.NewMemory()
		ix := New(f, color.New())
		require.NoError(t, ix.Start(context.Background()))

		ix.Subscribe(types.Worker{ID: "W-001"}, func([]types.ScheduleEvent) {})
		ix.Subscribe(types.Worker{ID: "W-002"}, func([]types.ScheduleEvent) {})
		require.Equal(t, 2, ix.SubscriptionCount())

		require.NoError(t, ix.Stop())
		require.Equal(t, 0, ix.SubscriptionCount())
		require.Equal(t, 0, f.JobSubscriberCount())
	})
}

func TestIndex_Subscribe(t *testing.T) {
	t.Run("delivers current events synchronously once seeded", func(t *testing.T) {
		f := feed.NewMemory()
		f.SetJobs([]types.JobRecord{job("J1", "Boiler inspection", "W-001")})
		ix := startIndex(t, f)

		var got []types.ScheduleEvent
		sub := ix.Subscribe(types.Worker{ID: "W-001"}, func(events []types.ScheduleEvent) {
			got = events
		})
		defer sub.Unsubscribe() //nolint:errcheck

		require.Len(t, got, 1)
		require.Equal(t, "J1", got[0].JobID)
		require.Equal(t, "W-001", got[0].WorkerID)
	})

	t.Run("filters by assignment", func(t *testing.T) {
		f := feed.NewMemory()
		f.SetJobs([]types.JobRecord{
			job("J1", "a", "W-001"),
			job("J2", "b", "W-002"),
			job("J3", "c", "W-001", "W-002"),
		})
		ix := startIndex(t, f)

		var got []types.ScheduleEvent
		sub := ix.Subscribe(types.Worker{ID: "W-001"}, func(events []types.ScheduleEvent) {
			got = events
		})
		defer sub.Unsubscribe() //nolint:errcheck

		require.Len(t, got, 2)
		for _, ev := range got {
			require.Equal(t, "W-001", ev.WorkerID)
		}
	})

	t.Run("multi-assignee job yields one event per worker with per-worker colors", func(t *testing.T) {
		f := feed.NewMemory()
		f.SetJobs([]types.JobRecord{job("J2", "Shared install", "W-001", "W-002")})
		ix := startIndex(t, f)

		colors := color.New()
		var forA, forB []types.ScheduleEvent
		subA := ix.Subscribe(types.Worker{ID: "W-001"}, func(events []types.ScheduleEvent) { forA = events })
		defer subA.Unsubscribe() //nolint:errcheck
		subB := ix.Subscribe(types.Worker{ID: "W-002"}, func(events []types.ScheduleEvent) { forB = events })
		defer subB.Unsubscribe() //nolint:errcheck

		require.Len(t, forA, 1)
		require.Len(t, forB, 1)
		require.Equal(t, colors.ColorFor("W-001"), forA[0].Color)
		require.Equal(t, colors.ColorFor("W-002"), forB[0].Color)
		// Both events carry the full assignee list for shared-job rendering.
		require.Len(t, forA[0].AssignedWorkers, 2)
	})

	t.Run("job listing the same worker twice yields a single event", func(t *testing.T) {
		f := feed.NewMemory()
		f.SetJobs([]types.JobRecord{job("J1", "dup", "W-001", "W-001")})
		ix := startIndex(t, f)

		var got []types.ScheduleEvent
		sub := ix.Subscribe(types.Worker{ID: "W-001"}, func(events []types.ScheduleEvent) { got = events })
		defer sub.Unsubscribe() //nolint:errcheck

		require.Len(t, got, 1)
	})

	t.Run("unsubscribe stops deliveries and is idempotent", func(t *testing.T) {
		f := feed.NewMemory()
		ix := startIndex(t, f)

		var deliveries int
		sub := ix.Subscribe(types.Worker{ID: "W-001"}, func([]types.ScheduleEvent) { deliveries++ })

		require.NoError(t, sub.Unsubscribe())
		require.NoError(t, sub.Unsubscribe())

		f.SetJobs([]types.JobRecord{job("J1", "late", "W-001")})
		require.Equal(t, 0, deliveries) // feed was not seeded at subscribe time
		require.Equal(t, 0, ix.SubscriptionCount())
	})
}

func TestIndex_Normalization(t *testing.T) {
	t.Run("drops records with invalid intervals", func(t *testing.T) {
		bad := job("J-bad", "inverted", "W-001")
		bad.Start = types.RawTimeSpec{Value: "2024-11-12T10:00:00Z"}
		bad.End = types.RawTimeSpec{Value: "2024-11-12T09:00:00Z"}

		f := feed.NewMemory()
		f.SetJobs([]types.JobRecord{bad, job("J-ok", "fine", "W-001")})
		ix := startIndex(t, f)

		var got []types.ScheduleEvent
		sub := ix.Subscribe(types.Worker{ID: "W-001"}, func(events []types.ScheduleEvent) { got = events })
		defer sub.Unsubscribe() //nolint:errcheck

		require.Len(t, got, 1)
		require.Equal(t, "J-ok", got[0].JobID)
	})

	t.Run("drops records with a missing end time", func(t *testing.T) {
		// A missing end time-of-day defaults to midnight, collapsing the
		// interval; the record must be dropped, not rendered at a made-up time.
		bad := job("J-noend", "open ended", "W-001")
		bad.Start = types.RawTimeSpec{Value: "2024-11-12", TimeOfDay: "09:00"}
		bad.End = types.RawTimeSpec{Value: "2024-11-12"}

		f := feed.NewMemory()
		f.SetJobs([]types.JobRecord{bad})
		ix := startIndex(t, f)

		var got []types.ScheduleEvent
		sub := ix.Subscribe(types.Worker{ID: "W-001"}, func(events []types.ScheduleEvent) { got = events })
		defer sub.Unsubscribe() //nolint:errcheck

		require.Empty(t, got)
	})

	t.Run("drops records without a job id", func(t *testing.T) {
		anonymous := job("", "no id", "W-001")

		f := feed.NewMemory()
		f.SetJobs([]types.JobRecord{anonymous})
		ix := startIndex(t, f)

		var got []types.ScheduleEvent
		sub := ix.Subscribe(types.Worker{ID: "W-001"}, func(events []types.ScheduleEvent) { got = events })
		defer sub.Unsubscribe() //nolint:errcheck

		require.Empty(t, got)
	})

	t.Run("recomputes wholesale on every batch", func(t *testing.T) {
		f := feed.NewMemory()
		f.SetJobs([]types.JobRecord{job("J1", "first", "W-001")})
		ix := startIndex(t, f)

		var got []types.ScheduleEvent
		sub := ix.Subscribe(types.Worker{ID: "W-001"}, func(events []types.ScheduleEvent) { got = events })
		defer sub.Unsubscribe() //nolint:errcheck

		f.SetJobs([]types.JobRecord{job("J2", "second", "W-001")})

		require.Len(t, got, 1)
		require.Equal(t, "J2", got[0].JobID)
	})
}
