package thread

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitRegistersMainAsZero(t *testing.T) {
	id := Init()
	require.Equal(t, Tid(0), id)
	require.Equal(t, Tid(0), ID())
}

func TestYieldAnyWithNoOtherThreadIsNone(t *testing.T) {
	Init()
	require.Equal(t, ErrNone, Yield(Any))
}

func TestYieldSelfIsNoop(t *testing.T) {
	Init()
	require.Equal(t, Tid(0), Yield(Self))
	require.Equal(t, Tid(0), Yield(0))
}

func TestYieldUnknownIDIsInvalid(t *testing.T) {
	Init()
	require.Equal(t, ErrInvalid, Yield(99))
}

// TestPingPong is the E1 scenario: two threads alternate via repeated
// Yield(Any), each appending its own marker to a shared trace, and main then
// checks that the trace strictly alternates between the two.
func TestPingPong(t *testing.T) {
	Init()

	const rounds = 20
	var trace []int

	done := make(chan struct{})
	other := Create(func(arg any) {
		for i := 0; i < rounds; i++ {
			trace = append(trace, 1)
			Yield(Any)
		}
		close(done)
	}, nil)
	require.GreaterOrEqual(t, int(other), 0)

	for i := 0; i < rounds; i++ {
		trace = append(trace, 0)
		Yield(Any)
	}

	// The other thread is parked in its last Yield; hand it the CPU once
	// more so it can leave its loop and exit.
	Yield(Any)
	<-done

	require.Len(t, trace, rounds*2)
	for i, v := range trace {
		require.Equal(t, i%2, v, "turn %d", i)
	}
}

// TestKillBeforeRun is the E2 scenario: a thread killed before it ever runs
// must never execute its entry function, and its id must become reusable.
func TestKillBeforeRun(t *testing.T) {
	Init()

	ran := false
	victim := Create(func(arg any) {
		ran = true
	}, nil)
	require.GreaterOrEqual(t, int(victim), 0)

	require.Equal(t, victim, Kill(victim))

	// Drive the scheduler so the killed thread reaches the front of the
	// ready queue and gets reaped instead of running.
	for i := 0; i < 3; i++ {
		Yield(Any)
	}

	require.False(t, ran)

	reused := Create(func(arg any) {}, nil)
	require.Equal(t, victim, reused, "id should be reusable once reaped")
}

func TestCreateExhaustsIDTable(t *testing.T) {
	Init()
	block := make(chan struct{})
	for i := 0; i < MaxThreads-1; i++ {
		id := Create(func(arg any) { <-block }, nil)
		require.GreaterOrEqual(t, int(id), 0, "thread %d", i)
	}
	require.Equal(t, ErrNoMoreIDs, Create(func(arg any) {}, nil))
	close(block)
}
