package thread

import (
	"runtime"

	"github.com/gooslab/oslab/internal/logging"
	"github.com/gooslab/oslab/internal/vthread"
)

// Exit terminates the calling thread. It never returns to its caller: like
// the source's "-> !" signature, control leaves via runtime.Goexit once the
// next ready thread has been handed the CPU. A thread cannot free its own
// descriptor while still executing on it, so the descriptor is only parked
// on the exit queue here; it is reaped by the next thread that resumes from
// a context switch (see afterSwitchIn). A thread starting for the first
// time (trampoline) does not drain the exit queue, so a descriptor stays
// in the id table until some thread resumes that way.
func Exit() {
	self := sched.ready[0]
	sched.doExit(self)
}

// doExit moves self from wherever it currently sits (always the ready-queue
// head, since only the running thread calls Exit, or a descriptor the
// trampoline/afterSwitchIn discovered was killed before or during its last
// sleep) onto the exit queue, wakes any joiners, and switches away. doExit
// acquires the gate itself; callers must not already hold it.
func (s *scheduler) doExit(self *descriptor) {
	prev := s.gate.Disable()
	if len(s.ready) > 0 && s.ready[0] == self {
		s.ready = s.ready[1:]
	}
	self.status = StatusExited
	s.exitQ = append(s.exitQ, self)
	s.metrics.threadsExited.Add(1)

	if self.joinWQ != nil {
		s.wakeupLocked(self.joinWQ, true)
	}

	if len(s.ready) == 0 {
		s.gate.Restore(prev)
		logging.Info("thread: last runnable thread exited", "id", self.id)
		panic(errAllThreadsExited{})
	}

	next := s.ready[0]
	next.status = StatusRunning
	s.pendingGatePrev = prev
	vthread.SwitchAway(next.ctx)
	runtime.Goexit()
}

// errAllThreadsExited is the panic value surfaced when the last runnable
// thread calls Exit. A library has no process to terminate on the caller's
// behalf the way the source's thread_exit does with a bare exit(0); the
// panic is raised on the goroutine of the thread that exits last, and
// cmd/threaddemo recovers it at the top of main and returns.
type errAllThreadsExited struct{}

func (errAllThreadsExited) Error() string { return "thread: all threads have exited" }
