// ============================================================================
// Actor-Exec - Public Actor Contract
// ============================================================================
//
// Package: actorexec (module root)
// File: actor.go
// Purpose: The user-facing Actor contract (spec.md §1, §4.1): a stateful
//          handler constructed exactly once per executor and driven
//          single-threaded by whichever worker backs the executor. Thread-
//          and process-backed executors both accept the same interface;
//          only the packaging of "how to build one more" differs (a plain
//          closure for threads, a registered name for processes, since a
//          process boundary cannot carry a closure across exec).
//
// ============================================================================

package actorexec

// Actor is implemented by the user's stateful handler. Handle is called
// once per posted message, strictly in submission order, on a single
// goroutine (or process) dedicated to this actor -- it never needs its own
// locking to protect state private to the actor.
//
// A Handle call that panics is recovered by the worker and reported to the
// caller as an error (spec.md §4.3); it never terminates the worker.
type Actor[M any, R any] interface {
	Handle(message M) (R, error)
}

// ActorFunc adapts a plain function to the Actor interface for stateless
// handlers that don't need a constructor.
type ActorFunc[M any, R any] func(M) (R, error)

// Handle implements Actor.
func (f ActorFunc[M, R]) Handle(m M) (R, error) { return f(m) }
