package thread

// WaitQueue is a FIFO queue of BLOCKED threads. Locks, condition variables,
// and Wait (join) are all built on top of it.
type WaitQueue struct {
	q []*descriptor
}

// NewWaitQueue allocates an empty wait queue.
func NewWaitQueue() *WaitQueue {
	return &WaitQueue{}
}

// Destroy releases wq. Any thread still parked on it is abandoned — callers
// must guarantee nothing is blocked here before calling Destroy.
func (wq *WaitQueue) Destroy() {
	wq.q = nil
}

// Sleep atomically moves the calling thread from the ready queue onto wq,
// BLOCKED, and switches to the new ready-queue head. A nil wq is
// ErrInvalid; if the caller is the only ready thread, there is nothing left
// to run and Sleep returns ErrNone without blocking.
func Sleep(wq *WaitQueue) Tid {
	if wq == nil {
		return ErrInvalid
	}
	var result Tid
	sched.runGated(func() *WaitQueue {
		if len(sched.ready) == 1 {
			result = ErrNone
			return nil
		}
		result = sched.ready[0].id
		return wq
	})
	return result
}

// Wakeup moves one (all=false) or every (all=true) thread currently
// BLOCKED on wq to the tail of the ready queue, READY, without switching.
// It returns the number of threads woken.
func Wakeup(wq *WaitQueue, all bool) int {
	if wq == nil {
		return 0
	}
	var n int
	sched.runGatedSimple(func() {
		n = sched.wakeupLocked(wq, all)
	})
	return n
}

// wakeupLocked is Wakeup's body; caller holds the gate. Threads killed
// while BLOCKED keep their EXITED status rather than being set back to
// READY — they are only reaped once they reach the front of the ready
// queue (see afterSwitchIn/trampoline).
func (s *scheduler) wakeupLocked(wq *WaitQueue, all bool) int {
	n := 0
	for len(wq.q) > 0 {
		d := wq.q[0]
		wq.q = wq.q[1:]
		if d.status != StatusExited {
			d.status = StatusReady
		}
		s.ready = append(s.ready, d)
		n++
		if !all {
			break
		}
	}
	return n
}

// Wait blocks the calling thread until tid exits (join). An unknown id, or
// the caller's own id, is ErrInvalid. If tid has already exited — it is
// EXITED but still sitting in the exit queue, waiting for some other
// thread's afterSwitchIn to reap it — Wait returns immediately rather than
// blocking on a join queue doExit already finished waking. Returns tid once
// it has exited.
func Wait(tid Tid) Tid {
	var result Tid
	sched.runGated(func() *WaitQueue {
		if tid == sched.ready[0].id {
			result = ErrInvalid
			return nil
		}
		d, ok := sched.byID[tid]
		if !ok {
			result = ErrInvalid
			return nil
		}
		if d.status == StatusExited {
			result = tid
			return nil
		}
		if d.joinWQ == nil {
			d.joinWQ = NewWaitQueue()
		}
		if len(sched.ready) == 1 {
			result = ErrNone
			return nil
		}
		result = tid
		return d.joinWQ
	})
	return result
}
