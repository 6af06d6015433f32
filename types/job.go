package types

// JobStatus is the upstream lifecycle status of a job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "Pending"
	JobStatusScheduled  JobStatus = "Scheduled"
	JobStatusInProgress JobStatus = "InProgress"
	JobStatusCompleted  JobStatus = "Completed"
	JobStatusCancelled  JobStatus = "Cancelled"
)

// JobPriority is the upstream priority of a job.
type JobPriority string

const (
	JobPriorityLow    JobPriority = "Low"
	JobPriorityMedium JobPriority = "Medium"
	JobPriorityHigh   JobPriority = "High"
)

// RawTimeSpec is an unnormalized point in time as delivered by the upstream
// document store.
//
// Two shapes occur in real data:
//   - Value carries a full ISO-8601 instant ("2024-11-12T09:00:00Z") and
//     TimeOfDay is ignored
//   - Value carries a bare date ("2024-11-12") and TimeOfDay carries the
//     clock time ("09:00"); a missing TimeOfDay defaults to "00:00"
//
// Both shapes must be normalized (timespec package) before use; a
// RawTimeSpec is never compared or rendered directly.
type RawTimeSpec struct {
	// Value is the date or full instant string.
	Value string `json:"value"`

	// TimeOfDay is the "HH:MM" or "HH:MM:SS" clock time when Value is a bare date.
	TimeOfDay string `json:"timeOfDay,omitempty"`
}

// IsZero reports whether the spec carries no data at all.
func (r RawTimeSpec) IsZero() bool {
	return r.Value == "" && r.TimeOfDay == ""
}

// AssignedWorker is one entry of a job's assignee list.
type AssignedWorker struct {
	// WorkerID is the canonical worker identifier. Assignment matching uses
	// only this field; WorkerName is display metadata.
	WorkerID string `json:"workerId"`

	// WorkerName is the display name recorded at assignment time.
	WorkerName string `json:"workerName,omitempty"`
}

// JobRecord is an upstream job document.
//
// The authoritative copy lives upstream; the index holds a read-only cache
// replaced wholesale on every job feed emission.
type JobRecord struct {
	// ID is the stable job identifier.
	ID string `json:"id"`

	// Title is the short job title shown on the timeline.
	Title string `json:"title"`

	// Description is the free-form job description.
	Description string `json:"description,omitempty"`

	// Status is the upstream lifecycle status.
	Status JobStatus `json:"status"`

	// Priority is the upstream priority.
	Priority JobPriority `json:"priority"`

	// CustomerName identifies the customer the job is for.
	CustomerName string `json:"customerName,omitempty"`

	// LocationName identifies the site the job takes place at.
	LocationName string `json:"locationName,omitempty"`

	// AssignedWorkers is the set of workers assigned to this job.
	// The same job may reference multiple workers; each reference yields one
	// ScheduleEvent colored per that worker.
	AssignedWorkers []AssignedWorker `json:"assignedWorkers,omitempty"`

	// Start and End are the raw, unnormalized interval bounds.
	Start RawTimeSpec `json:"start"`
	End   RawTimeSpec `json:"end"`
}

// AssignedTo reports whether the job's assignee list references the worker id.
func (j JobRecord) AssignedTo(workerID string) bool {
	if workerID == "" {
		return false
	}
	for _, a := range j.AssignedWorkers {
		if a.WorkerID == workerID {
			return true
		}
	}

	return false
}

// JobDraft is the payload for creating a new job through the external store.
type JobDraft struct {
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	Status          JobStatus        `json:"status"`
	Priority        JobPriority      `json:"priority"`
	CustomerName    string           `json:"customerName,omitempty"`
	LocationName    string           `json:"locationName,omitempty"`
	AssignedWorkers []AssignedWorker `json:"assignedWorkers,omitempty"`
	Start           RawTimeSpec      `json:"start"`
	End             RawTimeSpec      `json:"end"`
}

// JobPatch is a partial update applied to an existing job.
//
// Nil fields are left unchanged by the store.
type JobPatch struct {
	Title           *string           `json:"title,omitempty"`
	Description     *string           `json:"description,omitempty"`
	Status          *JobStatus        `json:"status,omitempty"`
	Priority        *JobPriority      `json:"priority,omitempty"`
	CustomerName    *string           `json:"customerName,omitempty"`
	LocationName    *string           `json:"locationName,omitempty"`
	AssignedWorkers *[]AssignedWorker `json:"assignedWorkers,omitempty"`
	Start           *RawTimeSpec      `json:"start,omitempty"`
	End             *RawTimeSpec      `json:"end,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p JobPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.CustomerName == nil && p.LocationName == nil &&
		p.AssignedWorkers == nil && p.Start == nil && p.End == nil
}

// Apply returns a copy of the job with the patch's non-nil fields applied.
func (p JobPatch) Apply(job JobRecord) JobRecord {
	if p.Title != nil {
		job.Title = *p.Title
	}
	if p.Description != nil {
		job.Description = *p.Description
	}
	if p.Status != nil {
		job.Status = *p.Status
	}
	if p.Priority != nil {
		job.Priority = *p.Priority
	}
	if p.CustomerName != nil {
		job.CustomerName = *p.CustomerName
	}
	if p.LocationName != nil {
		job.LocationName = *p.LocationName
	}
	if p.AssignedWorkers != nil {
		assignees := make([]AssignedWorker, len(*p.AssignedWorkers))
		copy(assignees, *p.AssignedWorkers)
		job.AssignedWorkers = assignees
	}
	if p.Start != nil {
		job.Start = *p.Start
	}
	if p.End != nil {
		job.End = *p.End
	}

	return job
}
