// Package intr provides the interrupt-mask critical section the thread
// scheduler brackets every ready-queue/wait-queue mutation with. On the
// single-hardware-thread machine the source models, disable/restore is a
// plain boolean save-and-restore (nothing else can run while masked); our
// goroutine-backed scheduler has real concurrent callers, so Gate is backed
// by a mutex that also gives genuine mutual exclusion.
package intr

import "sync"

// Gate is a disable/restore critical section. Disable returns the previous
// mask state so callers can restore it on every exit path, matching the
// save/restore idiom the scheduler's public operations use throughout.
type Gate struct {
	mu       sync.Mutex
	disabled bool
}

// Disable masks the gate and returns the previous state.
func (g *Gate) Disable() bool {
	g.mu.Lock()
	prev := g.disabled
	g.disabled = true
	return prev
}

// Restore sets the mask back to prev and releases the section. Safe to call
// from a different goroutine than the one that called Disable — the thread
// package relies on this when a context switch hands control to another
// goroutine before the mask is restored.
func (g *Gate) Restore(prev bool) {
	g.disabled = prev
	g.mu.Unlock()
}
