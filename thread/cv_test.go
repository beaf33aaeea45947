package thread

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCVProducerConsumer is the E3 scenario: a bounded single-slot buffer
// guarded by a lock and two condition variables (not full / not empty).
func TestCVProducerConsumer(t *testing.T) {
	Init()

	l := NewLock()
	notEmpty := NewCV()
	notFull := NewCV()

	haveItem := false
	var slot int
	var consumed []int

	const n = 6

	Create(func(arg any) {
		for i := 0; i < n; i++ {
			l.Acquire()
			for haveItem {
				notFull.CVWait(l)
			}
			slot = i
			haveItem = true
			notEmpty.Signal()
			l.Release()
		}
	}, nil)

	Create(func(arg any) {
		for i := 0; i < n; i++ {
			l.Acquire()
			for !haveItem {
				notEmpty.CVWait(l)
			}
			consumed = append(consumed, slot)
			haveItem = false
			notFull.Signal()
			l.Release()
		}
	}, nil)

	for i := 0; i < n*12; i++ {
		Yield(Any)
	}

	require.Equal(t, []int{0, 1, 2, 3, 4, 5}, consumed)
}
