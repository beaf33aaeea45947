// Package thread implements a user-level cooperative thread runtime: a
// single ready queue, a deferred-reap exit queue, FIFO wait queues, locks
// and condition variables built over them, and join. Exactly one thread is
// logically running at any observation point between scheduler calls —
// there is no preemption and no multi-processor scheduling (see
// SPEC_FULL.md §8's carried non-goals).
//
// The runtime is a package-level singleton, initialized once by Init, the
// way a process has exactly one scheduler.
package thread

import (
	"fmt"

	"github.com/gooslab/oslab/internal/intr"
	"github.com/gooslab/oslab/internal/logging"
	"github.com/gooslab/oslab/internal/vthread"
)

// Tid identifies a thread. Negative values are reserved for the sentinels
// below; live thread ids start at 0.
type Tid int

// Sentinels. Each is a distinct negative value, returned in place of a live
// Tid by operations that can fail, per the external ABI.
const (
	Any          Tid = -1 // wildcard target for Yield: "any other ready thread"
	Self         Tid = -2 // wildcard target for Yield: "the calling thread"
	ErrNone      Tid = -3 // no other thread is ready to receive the request
	ErrInvalid   Tid = -4 // malformed argument or unknown/dead target id
	ErrNoMoreIDs Tid = -5 // id table exhausted
	ErrNoMemory  Tid = -6 // allocation failure
	ErrFailed    Tid = -7 // operation could not complete
)

// MaxThreads bounds the number of live threads the id table holds at once.
const MaxThreads = 128

// MinStack is the minimum stack a thread is documented to run with. Go
// goroutines grow their stacks on demand, so no fixed region is actually
// reserved; the constant is kept for ABI fidelity with callers that assert
// a stack-size lower bound.
const MinStack = 4096

// Status is a thread's scheduling state.
type Status int

const (
	StatusRunning Status = iota
	StatusReady
	StatusBlocked
	StatusExited
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusReady:
		return "READY"
	case StatusBlocked:
		return "BLOCKED"
	case StatusExited:
		return "EXITED"
	default:
		return "UNKNOWN"
	}
}

type descriptor struct {
	id     Tid
	status Status
	ctx    *vthread.Context
	joinWQ *WaitQueue // lazily created; threads Wait()-ing on this id park here
}

// scheduler is the package-level singleton set up by Init.
type scheduler struct {
	gate    intr.Gate
	ready   []*descriptor // index 0 is always the RUNNING thread
	exitQ   []*descriptor
	byID    map[Tid]*descriptor
	nextID  Tid
	metrics Metrics

	// pendingGatePrev is written by the outgoing side of a context switch
	// and read back by whichever goroutine the switch hands control to,
	// so the gate can be restored after control has actually transferred
	// rather than before (mirrors the source re-enabling interrupts only
	// once the new context is live).
	pendingGatePrev bool
}

var sched *scheduler

// Init resets the runtime and registers the calling goroutine as thread 0,
// RUNNING. It must be called exactly once before any other operation.
func Init() Tid {
	main := &descriptor{id: 0, status: StatusRunning, ctx: vthread.NewRunning()}
	sched = &scheduler{
		ready:  []*descriptor{main},
		byID:   map[Tid]*descriptor{0: main},
		nextID: 1,
	}
	logging.Debug("thread: runtime initialized", "main", 0)
	return 0
}

// ID returns the calling thread's own id. It never blocks or switches.
func ID() Tid {
	var id Tid
	sched.runGatedSimple(func() {
		id = sched.ready[0].id
	})
	return id
}

// Create allocates a new thread that will run fn(arg) the first time it is
// scheduled, and places it at the tail of the ready queue. It never
// switches to the new thread itself.
func Create(fn func(arg any), arg any) Tid {
	var result Tid
	sched.runGatedSimple(func() {
		if len(sched.byID) >= MaxThreads {
			result = ErrNoMoreIDs
			return
		}
		id := sched.allocateID()
		if id < 0 {
			result = ErrNoMoreIDs
			return
		}
		d := &descriptor{id: id, status: StatusReady}
		d.ctx = vthread.NewParked(func() { sched.trampoline(d, fn, arg) })
		sched.byID[id] = d
		sched.ready = append(sched.ready, d)
		sched.metrics.threadsCreated.Add(1)
		result = id
	})
	return result
}

// allocateID finds the lowest free id in [0, MaxThreads). Caller holds the
// gate.
func (s *scheduler) allocateID() Tid {
	for i := 0; i < MaxThreads; i++ {
		id := Tid(i)
		if _, live := s.byID[id]; !live {
			return id
		}
	}
	return ErrNoMoreIDs
}

// runGatedSimple runs fn with the gate held and no context switch.
func (s *scheduler) runGatedSimple(fn func()) {
	prev := s.gate.Disable()
	fn()
	s.gate.Restore(prev)
}

// runGated runs fn with the gate held; if fn returns a non-nil wait queue,
// the calling thread is parked on it and a switch away happens before this
// call returns — atomically with fn's check, which is the whole point of
// building locks and condition variables on top of this helper.
func (s *scheduler) runGated(fn func() *WaitQueue) {
	prev := s.gate.Disable()
	wq := fn()
	if wq == nil {
		s.gate.Restore(prev)
		return
	}
	s.blockCurrentOn(wq, prev)
}

// blockCurrentOn moves the running thread onto wq, BLOCKED, and switches to
// the new ready-queue head. Caller holds the gate (prev is its saved state);
// this function hands the gate off across the switch and restores it on the
// way back in once this thread is rescheduled.
func (s *scheduler) blockCurrentOn(wq *WaitQueue, prev bool) {
	cur := s.ready[0]
	if len(s.ready) < 2 {
		panic("thread: blockCurrentOn called with no other ready thread")
	}
	s.ready = s.ready[1:]
	cur.status = StatusBlocked
	wq.q = append(wq.q, cur)

	next := s.ready[0]
	if next.status != StatusExited {
		next.status = StatusRunning
	}
	s.pendingGatePrev = prev
	vthread.Switch(cur.ctx, next.ctx)

	sched.afterSwitchIn(cur)
}

// afterSwitchIn runs on the goroutine that just became RUNNING via a
// Switch. It restores the gate, reaps any threads parked on the exit queue
// by a previous holder, and — if this thread was killed while it was not
// running — finishes the exit instead of returning to the caller.
func (s *scheduler) afterSwitchIn(self *descriptor) {
	s.gate.Restore(s.pendingGatePrev)

	s.runGatedSimple(func() {
		drained := s.exitQ
		s.exitQ = nil
		for _, d := range drained {
			delete(s.byID, d.id)
		}
	})

	if self.status == StatusExited {
		s.doExit(self)
		return
	}
	self.status = StatusRunning
}

// trampoline is the first code a freshly Create'd thread runs.
func (s *scheduler) trampoline(self *descriptor, fn func(arg any), arg any) {
	s.gate.Restore(s.pendingGatePrev)

	if self.status == StatusExited {
		// Killed before it ever ran (see spec's "kill before run" case).
		s.doExit(self)
		return
	}
	self.status = StatusRunning
	fn(arg)
	Exit()
}

// Yield voluntarily gives up the CPU. want selects the next thread to run:
// Any picks the next ready thread in round-robin order, Self (or the
// caller's own id) is a no-op, and any other live ready id is moved to the
// front of the ready queue without disturbing the relative order of the
// rest; in both switching cases the caller goes to the tail. Returns the id
// of the thread switched to (or the caller's own id for the no-op case), or
// ErrNone/ErrInvalid.
func Yield(want Tid) Tid {
	prev := sched.gate.Disable()
	cur := sched.ready[0]

	idx := -1
	switch want {
	case Any:
		if len(sched.ready) == 1 {
			sched.gate.Restore(prev)
			return ErrNone
		}
		idx = 1
	case Self, cur.id:
		sched.gate.Restore(prev)
		return cur.id
	default:
		for i, d := range sched.ready {
			if d.id == want {
				idx = i
				break
			}
		}
		if idx <= 0 {
			sched.gate.Restore(prev)
			return ErrInvalid
		}
	}

	target := sched.ready[idx]
	reordered := make([]*descriptor, 0, len(sched.ready))
	reordered = append(reordered, target)
	reordered = append(reordered, sched.ready[1:idx]...)
	reordered = append(reordered, sched.ready[idx+1:]...)
	reordered = append(reordered, cur)
	sched.ready = reordered

	cur.status = StatusReady
	if target.status != StatusExited {
		target.status = StatusRunning
	}
	sched.pendingGatePrev = prev
	sched.metrics.contextSwitches.Add(1)
	vthread.Switch(cur.ctx, target.ctx)
	sched.afterSwitchIn(cur)

	return target.id
}

// Kill marks tid EXITED without removing it from whatever queue it is
// currently in. A BLOCKED victim is reaped the next time it is woken and
// scheduled; a READY victim is reaped the next time it would have run.
// Killing the caller's own id, or an unknown id, returns ErrInvalid.
func Kill(tid Tid) Tid {
	var result Tid
	sched.runGatedSimple(func() {
		if tid == sched.ready[0].id {
			result = ErrInvalid
			return
		}
		d, ok := sched.byID[tid]
		if !ok {
			result = ErrInvalid
			return
		}
		d.status = StatusExited
		sched.metrics.kills.Add(1)
		result = tid
	})
	return result
}

// debugState renders the ready queue for diagnostics; not part of the ABI.
func (s *scheduler) debugState() string {
	ids := make([]Tid, len(s.ready))
	for i, d := range s.ready {
		ids[i] = d.id
	}
	return fmt.Sprintf("ready=%v", ids)
}
