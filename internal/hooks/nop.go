// Package hooks provides the default no-op hook implementation.
package hooks

import (
	"context"

	"github.com/fieldline/planboard/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnSnapshotChanged:      h.OnSnapshotChanged,
		OnFeedError:            h.OnFeedError,
		OnMutationStateChanged: h.OnMutationStateChanged,
		OnConfirmationTimeout:  h.OnConfirmationTimeout,
	}
}

// OnSnapshotChanged is a no-op implementation.
func (h *NopHooks) OnSnapshotChanged(_ context.Context, _, _ types.ScheduleSnapshot) error {
	return nil
}

// OnFeedError is a no-op implementation.
func (h *NopHooks) OnFeedError(_ context.Context, _ string, _ error) error {
	return nil
}

// OnMutationStateChanged is a no-op implementation.
func (h *NopHooks) OnMutationStateChanged(_ context.Context, _, _ types.MutationState) error {
	return nil
}

// OnConfirmationTimeout is a no-op implementation.
func (h *NopHooks) OnConfirmationTimeout(_ context.Context, _ string) error {
	return nil
}
