package types

// Role classifies a person document in the upstream directory.
type Role string

const (
	// RoleWorker is a field worker eligible for job assignment.
	RoleWorker Role = "Worker"

	// RoleSupervisor is a supervising user; excluded from the default roster filter.
	RoleSupervisor Role = "Supervisor"

	// RoleAdmin is an administrative user; excluded from the default roster filter.
	RoleAdmin Role = "Admin"
)

// Worker is a read-only cached projection of an upstream worker document.
//
// The authoritative copy lives upstream; the roster never mutates a Worker
// locally. Workers are created, updated and removed only by worker feed
// emissions.
type Worker struct {
	// ID is the stable, externally assigned worker identifier.
	// An empty ID makes the document unusable and the roster skips it.
	ID string `json:"id"`

	// DisplayName is the human-readable name shown on the timeline.
	DisplayName string `json:"displayName"`

	// Role classifies the worker document.
	Role Role `json:"role"`

	// Active reports whether the worker is currently employed/enabled.
	Active bool `json:"active"`

	// TaskCount is the upstream-maintained count of open tasks.
	TaskCount int `json:"taskCount"`
}

// WorkerFilter selects a subset of the roster at subscription time.
//
// Filtering is applied per subscription, not baked into roster storage, so
// different consumers can observe different views of the same feed.
type WorkerFilter struct {
	// Role restricts the view to workers with this role ("" matches any role).
	Role Role

	// ActiveOnly restricts the view to workers with Active set.
	ActiveOnly bool
}

// Matches reports whether the worker passes the filter.
func (f WorkerFilter) Matches(w Worker) bool {
	if f.Role != "" && w.Role != f.Role {
		return false
	}
	if f.ActiveOnly && !w.Active {
		return false
	}

	return true
}
