// ============================================================================
// Actor-Exec Management Task - Shared Executor Flags
// ============================================================================
//
// Package: internal/management
// File: control.go
// Purpose: The executor lock and the flags it guards (spec.md §5:
//          "Executor flags (shutdown_requested, broken, counter): guarded
//          by the executor lock for writes; reads by the management task
//          use the same lock."). Both the façade (posting/shutdown) and
//          the management task (broken-worker detection) touch this
//          struct, so it lives in its own type rather than inside either.
//
// ============================================================================

package management

import "sync"

// Control holds the state a submitter's post/shutdown calls and the
// management task both need to coordinate through, guarded by a single
// mutex (mirrors the teacher's internal/worker/worker_pool.go pattern of a
// small mutex-guarded started/stopped pair, generalized to the three flags
// spec.md §3 names).
type Control struct {
	mu                sync.Mutex
	counter           uint64
	shutdownRequested bool
	broken            bool
}

// NextWorkID returns the next monotonically increasing work id and
// advances the counter. Work ids are never reused (spec.md §3).
func (c *Control) NextWorkID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.counter
	c.counter++
	return id
}

// RequestShutdown marks the executor as shutting down. Idempotent.
func (c *Control) RequestShutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdownRequested = true
}

// ShutdownRequested reports whether shutdown has been requested.
func (c *Control) ShutdownRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shutdownRequested
}

// MarkBroken records that the worker died or became unreachable. Once set
// it is never cleared; the executor is not recoverable (spec.md §7).
func (c *Control) MarkBroken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broken = true
	c.shutdownRequested = true
}

// Broken reports whether the worker has been declared broken.
func (c *Control) Broken() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.broken
}
