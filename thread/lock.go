package thread

// Lock is a mutual-exclusion lock built on a wait queue: Acquire spins
// through "check, and if held, sleep" atomically (via scheduler.runGated),
// Release wakes every waiter so they race to re-check rather than handing
// ownership to a single chosen thread.
type Lock struct {
	wq    *WaitQueue
	held  bool
	owner Tid
}

// NewLock allocates an unheld lock.
func NewLock() *Lock {
	return &Lock{wq: NewWaitQueue()}
}

// Destroy releases the lock's wait queue. Callers must guarantee no thread
// is blocked in Acquire before calling Destroy.
func (l *Lock) Destroy() {
	l.wq.Destroy()
}

// Acquire blocks until the calling thread holds the lock.
func (l *Lock) Acquire() {
	for {
		acquired := false
		sched.runGated(func() *WaitQueue {
			if !l.held {
				l.held = true
				l.owner = sched.ready[0].id
				acquired = true
				return nil
			}
			return l.wq
		})
		if acquired {
			return
		}
	}
}

// Release gives up the lock and wakes every thread blocked in Acquire.
func (l *Lock) Release() {
	sched.runGatedSimple(func() {
		l.held = false
		l.owner = 0
		sched.wakeupLocked(l.wq, true)
	})
}
