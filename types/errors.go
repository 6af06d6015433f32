package types

import "errors"

// Sentinel errors for the planboard library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).

// Projector errors - Public API errors returned by the Projector component.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrWorkerFeedRequired is returned when the worker feed is nil.
	ErrWorkerFeedRequired = errors.New("worker feed is required")

	// ErrJobFeedRequired is returned when the job feed is nil.
	ErrJobFeedRequired = errors.New("job feed is required")

	// ErrJobStoreRequired is returned when the job store is nil.
	ErrJobStoreRequired = errors.New("job store is required")

	// ErrProjectorRequired is returned when the projector is nil.
	ErrProjectorRequired = errors.New("projector is required")

	// ErrAlreadyStarted is returned when Start is called on a running component.
	ErrAlreadyStarted = errors.New("already started")

	// ErrNotStarted is returned when operations require a started component.
	ErrNotStarted = errors.New("not started")

	// ErrSubscriptionFailed is returned when an upstream feed subscription
	// cannot be established or breaks. The component freezes at its
	// last-known-good state; the error is surfaced, never fatal.
	ErrSubscriptionFailed = errors.New("feed subscription failed")
)

// Normalization errors - returned by the timespec package.
var (
	// ErrInvalidTime is returned for a malformed or contradictory time
	// interval. The record carrying it is dropped, never rendered with a
	// default or fabricated time.
	ErrInvalidTime = errors.New("invalid time")
)

// Mutation errors - returned by the Controller component.
var (
	// ErrCreationRejected is returned when the external store rejects a
	// job creation. No local state is rolled back because none was
	// speculatively applied.
	ErrCreationRejected = errors.New("job creation rejected")

	// ErrEditRejected is returned when the external store rejects a job edit.
	ErrEditRejected = errors.New("job edit rejected")

	// ErrIntervalOutOfWindow is returned when a mutation interval falls
	// outside the configured scheduling window.
	ErrIntervalOutOfWindow = errors.New("interval outside scheduling window")

	// ErrMutationInFlight is returned when a mutation is submitted while a
	// previous one has not yet settled.
	ErrMutationInFlight = errors.New("mutation already in flight")

	// ErrEmptyPatch is returned when an edit carries no changes.
	ErrEmptyPatch = errors.New("empty patch")

	// ErrConfirmationTimeout indicates a mutation was accepted by the store
	// but not observed back through the feeds within the expected window.
	// Non-fatal: surfaced as a warning, the mutation may still land.
	ErrConfirmationTimeout = errors.New("mutation confirmation timed out")
)
