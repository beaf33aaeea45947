package thread

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSleepWithNoOtherReadyIsNone(t *testing.T) {
	Init()
	wq := NewWaitQueue()
	require.Equal(t, ErrNone, Sleep(wq))
}

func TestSleepNilQueueIsInvalid(t *testing.T) {
	Init()
	require.Equal(t, ErrInvalid, Sleep(nil))
}

// TestSleepWakeup is the E3-style scenario: a consumer sleeps on an empty
// queue, a producer appends an item and wakes it, and the consumer resumes
// to find the item already there.
func TestSleepWakeup(t *testing.T) {
	Init()

	wq := NewWaitQueue()
	var item int
	var haveItem bool
	var observed int

	consumer := Create(func(arg any) {
		for !haveItem {
			Sleep(wq)
		}
		observed = item
	}, nil)
	require.GreaterOrEqual(t, int(consumer), 0)

	// Let the consumer run up to its Sleep.
	Yield(consumer)

	item = 42
	haveItem = true
	require.Equal(t, 1, Wakeup(wq, false))

	// Drive the scheduler until the consumer has resumed and recorded it.
	for i := 0; i < 3; i++ {
		Yield(Any)
	}

	require.Equal(t, 42, observed)
}

func TestWaitJoinsOnExit(t *testing.T) {
	Init()

	finished := false
	worker := Create(func(arg any) {
		Yield(Any)
		finished = true
	}, nil)

	joiner := Create(func(arg any) {
		Wait(worker)
	}, nil)
	require.GreaterOrEqual(t, int(joiner), 0)

	for i := 0; i < 6 && !finished; i++ {
		Yield(Any)
	}

	require.True(t, finished)
}

// TestWaitOnAlreadyExitedDoesNotBlock guards against a join racing with an
// exit that already happened. worker exits immediately and hands off
// straight to waiter (never back to main), so waiter's very first action —
// Wait(worker) — runs before anyone has drained the exit queue: worker is
// EXITED but still sitting unreaped in sched.byID. Wait must notice the
// EXITED status and return immediately rather than building a join queue
// doExit already finished waking.
func TestWaitOnAlreadyExitedDoesNotBlock(t *testing.T) {
	Init()

	worker := Create(func(arg any) {}, nil)
	require.GreaterOrEqual(t, int(worker), 0)

	var gotResult Tid = -100
	waiter := Create(func(arg any) {
		gotResult = Wait(worker)
	}, nil)
	require.GreaterOrEqual(t, int(waiter), 0)

	Yield(worker)

	require.Equal(t, worker, gotResult)
}

func TestWaitUnknownIDIsInvalid(t *testing.T) {
	Init()
	require.Equal(t, ErrInvalid, Wait(77))
}

func TestWaitOwnIDIsInvalid(t *testing.T) {
	Init()
	require.Equal(t, ErrInvalid, Wait(ID()))
}
