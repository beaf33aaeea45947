// Package vthread implements the execution-context switcher the thread
// package is built over. Go has no makecontext/swapcontext: the portable
// stand-in is one parked goroutine per user-level thread, handed off over a
// rendezvous channel instead of a raw stack/register swap.
package vthread

// Context is an opaque execution context: either the goroutine that already
// happens to be running (see NewRunning) or a freshly parked goroutine
// waiting for its first resume (see NewParked).
type Context struct {
	resume chan struct{}
}

// NewRunning wraps the calling goroutine as a context. Used for the first
// thread, whose "context" is simply whatever goroutine called Init.
func NewRunning() *Context {
	return &Context{resume: make(chan struct{})}
}

// NewParked starts a goroutine that blocks until first resumed, then runs
// trampoline. trampoline plays the role of the source's thread_stub: it is
// the first code the new thread executes, and it is responsible for
// unmasking interrupts and invoking the thread's entry function.
func NewParked(trampoline func()) *Context {
	c := &Context{resume: make(chan struct{})}
	go func() {
		<-c.resume
		trampoline()
	}()
	return c
}

// Switch resumes next and blocks the calling goroutine (which must be
// running as self) until self is resumed again by some later Switch or
// SwitchAway call.
func Switch(self, next *Context) {
	next.resume <- struct{}{}
	<-self.resume
}

// SwitchAway resumes next without waiting to be resumed back. The caller's
// goroutine is expected to terminate shortly after (thread exit): there is
// no self to block on since this context will never run again.
func SwitchAway(next *Context) {
	next.resume <- struct{}{}
}
