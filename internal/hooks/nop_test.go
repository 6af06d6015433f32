package hooks

import (
	"context"
	"testing"

	"github.com/fieldline/planboard/types"
	"github.com/stretchr/testify/require"
)

func TestNewNop(t *testing.T) {
	hooks := NewNop()

	require.NotNil(t, hooks.OnSnapshotChanged)
	require.NotNil(t, hooks.OnFeedError)
	require.NotNil(t, hooks.OnMutationStateChanged)
	require.NotNil(t, hooks.OnConfirmationTimeout)
}

func TestNopHooks_OnSnapshotChanged(t *testing.T) {
	hooks := NewNop()
	ctx := context.Background()

	old := types.ScheduleSnapshot{Version: 1}
	updated := types.ScheduleSnapshot{
		Version: 2,
		Workers: []types.RosterEntry{{Worker: types.Worker{ID: "W-001", DisplayName: "Dana"}}},
	}

	err := hooks.OnSnapshotChanged(ctx, old, updated)
	require.NoError(t, err)
}

func TestNopHooks_OnFeedError(t *testing.T) {
	hooks := NewNop()
	ctx := context.Background()

	err := hooks.OnFeedError(ctx, "jobs", context.Canceled)
	require.NoError(t, err)
}

func TestNopHooks_OnMutationStateChanged(t *testing.T) {
	hooks := NewNop()
	ctx := context.Background()

	err := hooks.OnMutationStateChanged(ctx, types.MutationIdle, types.MutationSubmitting)
	require.NoError(t, err)
}

func TestNopHooks_OnConfirmationTimeout(t *testing.T) {
	hooks := NewNop()
	ctx := context.Background()

	err := hooks.OnConfirmationTimeout(ctx, "J-42")
	require.NoError(t, err)
}
