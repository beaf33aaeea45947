package thread

import "sync/atomic"

// Metrics holds atomic counters for scheduler activity, in the shape of
// go-ublk's metrics.go: plain atomic fields plus a Snapshot() for a
// point-in-time read.
type Metrics struct {
	contextSwitches atomic.Uint64
	threadsCreated  atomic.Uint64
	threadsExited   atomic.Uint64
	kills           atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of Metrics' counters.
type MetricsSnapshot struct {
	ContextSwitches uint64
	ThreadsCreated  uint64
	ThreadsExited   uint64
	Kills           uint64
}

// Snapshot returns the current counter values for the runtime Init set up.
func Snapshot() MetricsSnapshot {
	if sched == nil {
		return MetricsSnapshot{}
	}
	m := &sched.metrics
	return MetricsSnapshot{
		ContextSwitches: m.contextSwitches.Load(),
		ThreadsCreated:  m.threadsCreated.Load(),
		ThreadsExited:   m.threadsExited.Load(),
		Kills:           m.kills.Load(),
	}
}
