package thread

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsTrackCreateAndKill(t *testing.T) {
	Init()
	before := Snapshot()

	victim := Create(func(arg any) {}, nil)
	require.GreaterOrEqual(t, int(victim), 0)
	Kill(victim)

	after := Snapshot()
	require.Equal(t, before.ThreadsCreated+1, after.ThreadsCreated)
	require.Equal(t, before.Kills+1, after.Kills)
}

func TestMetricsCountContextSwitches(t *testing.T) {
	Init()
	Create(func(arg any) { Yield(Any) }, nil)

	before := Snapshot()
	Yield(Any)
	after := Snapshot()

	require.Greater(t, after.ContextSwitches, before.ContextSwitches)
}
