package types

import "time"

// Color is a display color in "#RRGGBB" hex form.
type Color string

// ScheduleEvent is one derived, immutable (job, worker) pairing with a
// normalized time interval.
//
// Events exist only inside snapshots; they are recreated, never patched, on
// every recomputation. Invariant: Start < End strictly. A record whose times
// are invalid or missing is dropped during projection, never rendered with a
// fabricated time.
type ScheduleEvent struct {
	// JobID identifies the upstream job this event was derived from.
	JobID string `json:"jobId"`

	// WorkerID identifies the assignee this event is rendered for.
	// A job with multiple assignees yields one event per assignee.
	WorkerID string `json:"workerId"`

	// Title is the job title.
	Title string `json:"title"`

	// Start and End are the normalized absolute interval bounds (Start < End).
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Status and Priority mirror the upstream job fields.
	Status   JobStatus   `json:"status"`
	Priority JobPriority `json:"priority"`

	// Color is the assignee's display color.
	Color Color `json:"color"`

	// AssignedWorkers is the job's full assignee list, carried for rendering
	// shared jobs (e.g. "also assigned to" badges).
	AssignedWorkers []AssignedWorker `json:"assignedWorkers,omitempty"`
}

// RosterEntry is a worker with its resolved display color, as rendered in a
// snapshot's worker column.
type RosterEntry struct {
	Worker Worker `json:"worker"`
	Color  Color  `json:"color"`
}

// ScheduleSnapshot is one immutable, fully-consistent rendering of workers and
// their events at a point in time.
//
// Invariants:
//   - every event's WorkerID appears in Workers
//   - Events contains no duplicate (JobID, WorkerID) pair
//   - a snapshot is fully replaced, never mutated in place; consumers always
//     observe a consistent cross-section of both feeds
//
// No ordering is guaranteed within Events; callers sort by Start for display.
// Workers preserves roster order.
type ScheduleSnapshot struct {
	// Version increases by one on every recomputation.
	Version int64 `json:"version"`

	// Workers is the roster at snapshot time, in roster order, with colors
	// resolved.
	Workers []RosterEntry `json:"workers"`

	// Events is the deduplicated union of every worker's current event list.
	Events []ScheduleEvent `json:"events"`
}

// HasEvent reports whether the snapshot contains an event for the
// (jobID, workerID) pair.
func (s ScheduleSnapshot) HasEvent(jobID, workerID string) bool {
	for _, ev := range s.Events {
		if ev.JobID == jobID && ev.WorkerID == workerID {
			return true
		}
	}

	return false
}

// HasJob reports whether any event in the snapshot was derived from the job.
func (s ScheduleSnapshot) HasJob(jobID string) bool {
	for _, ev := range s.Events {
		if ev.JobID == jobID {
			return true
		}
	}

	return false
}

// EventsFor returns the events rendered for the worker, in snapshot order.
func (s ScheduleSnapshot) EventsFor(workerID string) []ScheduleEvent {
	var events []ScheduleEvent
	for _, ev := range s.Events {
		if ev.WorkerID == workerID {
			events = append(events, ev)
		}
	}

	return events
}
