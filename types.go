package planboard

import "github.com/fieldline/planboard/types"

// Re-export types from the internal types package.
//
// This file provides a stable, backward-compatible public API for the library's
// core types and interfaces. It uses type aliases to re-export definitions
// from the `types` subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal packages
// to depend on `types` without depending on the root `planboard` package, while
// still providing a convenient `planboard.Worker`, `planboard.Logger`, etc. for users.
type (
	Worker           = types.Worker
	WorkerFilter     = types.WorkerFilter
	JobRecord        = types.JobRecord
	JobDraft         = types.JobDraft
	JobPatch         = types.JobPatch
	RawTimeSpec      = types.RawTimeSpec
	AssignedWorker   = types.AssignedWorker
	ScheduleEvent    = types.ScheduleEvent
	ScheduleSnapshot = types.ScheduleSnapshot
	RosterEntry      = types.RosterEntry
	Color            = types.Color
	MutationState    = types.MutationState
)

// Re-export interfaces from the internal types package for convenience.
type (
	WorkerFeed       = types.WorkerFeed
	JobFeed          = types.JobFeed
	JobStore         = types.JobStore
	Subscription     = types.Subscription
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export enum constants from the internal types package.
const (
	RoleWorker     = types.RoleWorker
	RoleSupervisor = types.RoleSupervisor
	RoleAdmin      = types.RoleAdmin

	JobStatusPending    = types.JobStatusPending
	JobStatusScheduled  = types.JobStatusScheduled
	JobStatusInProgress = types.JobStatusInProgress
	JobStatusCompleted  = types.JobStatusCompleted
	JobStatusCancelled  = types.JobStatusCancelled

	JobPriorityLow    = types.JobPriorityLow
	JobPriorityMedium = types.JobPriorityMedium
	JobPriorityHigh   = types.JobPriorityHigh
)

// Re-export MutationState constants from the internal types package.
const (
	MutationIdle       = types.MutationIdle
	MutationSubmitting = types.MutationSubmitting
	MutationConfirmed  = types.MutationConfirmed
	MutationFailed     = types.MutationFailed
)
