package thread

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLockMutualExclusion has two threads increment a shared counter
// under a lock, yielding mid-critical-section to force interleaving; the
// final count must reflect every increment with none lost.
func TestLockMutualExclusion(t *testing.T) {
	Init()

	l := NewLock()
	counter := 0
	const itersPerThread = 10

	worker := func(arg any) {
		for i := 0; i < itersPerThread; i++ {
			l.Acquire()
			tmp := counter
			Yield(Any)
			counter = tmp + 1
			l.Release()
			Yield(Any)
		}
	}

	Create(worker, nil)
	Create(worker, nil)

	for i := 0; i < itersPerThread*8; i++ {
		Yield(Any)
	}

	require.Equal(t, itersPerThread*2, counter)
}

func TestLockAcquireReleaseSingleThread(t *testing.T) {
	Init()
	l := NewLock()
	l.Acquire()
	require.True(t, l.held)
	l.Release()
	require.False(t, l.held)
}
