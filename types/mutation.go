package types

// MutationState is the lifecycle state of a single in-flight mutation.
//
// States follow a defined progression:
//
//	MutationIdle → MutationSubmitting → {MutationConfirmed, MutationFailed}
//
// MutationConfirmed transitions back to MutationIdle only after the
// corresponding ScheduleEvent is observed in a subsequent snapshot, bounded by
// the confirmation timeout (after which a pending-confirmation warning is
// raised instead of hanging indefinitely). MutationFailed returns to
// MutationIdle as soon as the error has been handed to the caller.
type MutationState int

const (
	// MutationIdle indicates no mutation is in flight.
	MutationIdle MutationState = iota

	// MutationSubmitting indicates the request is with the external store.
	MutationSubmitting

	// MutationConfirmed indicates the store accepted the mutation and the
	// controller is waiting to observe it in a snapshot.
	MutationConfirmed

	// MutationFailed indicates the store rejected the mutation.
	MutationFailed
)

// String returns the human-readable state name.
func (s MutationState) String() string {
	switch s {
	case MutationIdle:
		return "Idle"
	case MutationSubmitting:
		return "Submitting"
	case MutationConfirmed:
		return "Confirmed"
	case MutationFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
