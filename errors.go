package planboard

import "github.com/fieldline/planboard/types"

// Sentinel errors returned by the Projector and Controller.
//
// Aliased from the types package so components and consumers check the same
// values with errors.Is().
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrWorkerFeedRequired is returned when the worker feed is nil.
	ErrWorkerFeedRequired = types.ErrWorkerFeedRequired

	// ErrJobFeedRequired is returned when the job feed is nil.
	ErrJobFeedRequired = types.ErrJobFeedRequired

	// ErrJobStoreRequired is returned when the job store is nil.
	ErrJobStoreRequired = types.ErrJobStoreRequired

	// ErrProjectorRequired is returned when the projector is nil.
	ErrProjectorRequired = types.ErrProjectorRequired

	// ErrAlreadyStarted is returned when Start is called on a running component.
	ErrAlreadyStarted = types.ErrAlreadyStarted

	// ErrNotStarted is returned when operations require a started component.
	ErrNotStarted = types.ErrNotStarted

	// ErrSubscriptionFailed is returned when an upstream feed subscription fails.
	ErrSubscriptionFailed = types.ErrSubscriptionFailed

	// ErrInvalidTime is returned for malformed or contradictory time intervals.
	ErrInvalidTime = types.ErrInvalidTime

	// ErrCreationRejected is returned when the external store rejects a job creation.
	ErrCreationRejected = types.ErrCreationRejected

	// ErrEditRejected is returned when the external store rejects a job edit.
	ErrEditRejected = types.ErrEditRejected

	// ErrIntervalOutOfWindow is returned when a mutation interval falls outside
	// the configured scheduling window.
	ErrIntervalOutOfWindow = types.ErrIntervalOutOfWindow

	// ErrMutationInFlight is returned when a mutation is submitted while a
	// previous one has not yet settled.
	ErrMutationInFlight = types.ErrMutationInFlight

	// ErrEmptyPatch is returned when an edit carries no changes.
	ErrEmptyPatch = types.ErrEmptyPatch

	// ErrConfirmationTimeout indicates a mutation was accepted but not observed
	// back within the expected window.
	ErrConfirmationTimeout = types.ErrConfirmationTimeout
)
