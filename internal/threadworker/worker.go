// ============================================================================
// Actor-Exec Thread Worker
// ============================================================================
//
// Package: internal/threadworker
// File: worker.go
// Purpose: The in-process worker variant (spec.md §4.4's "Thread" row):
//          the actor is constructed once and run on a dedicated goroutine,
//          sharing the Call Queue / Result Queue channels directly with the
//          management task -- no marshaling, no transport. Grounded on the
//          teacher's internal/worker/worker.go single-worker loop, trimmed
//          of its gRPC/job-registry machinery (that belongs to the process
//          variant, internal/processworker) and given the panic-never-kills
//          the loop behavior spec.md §4.3 requires for a user handler that
//          panics or returns an error.
//
// ============================================================================

package threadworker

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/ChuLiYu/actor-exec/internal/management"
)

// Actor is the minimal handler contract a thread-backed executor needs.
// Any type satisfying this also satisfies the root package's Actor[M, R]
// interface, and vice versa -- Go interfaces compare structurally, so no
// import of the root package is required here.
type Actor[M any, R any] interface {
	Handle(M) (R, error)
}

// Worker runs one actor on its own goroutine, consuming CallItems and
// producing ResultEvents until it receives the termination CallItem.
type Worker[M any, R any] struct {
	actor       Actor[M, R]
	callQueue   <-chan management.CallItem[M]
	resultQueue chan<- management.ResultEvent[R]
	logger      *slog.Logger
}

// New constructs a thread worker. The actor is constructed by the caller
// (typically inside the constructor function given to the executor) exactly
// once, before Run is ever called, matching spec.md §4.1's construct-once
// contract.
func New[M any, R any](actor Actor[M, R], callQueue <-chan management.CallItem[M], resultQueue chan<- management.ResultEvent[R], logger *slog.Logger) *Worker[M, R] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker[M, R]{actor: actor, callQueue: callQueue, resultQueue: resultQueue, logger: logger}
}

// Run is the worker's main loop. It returns once the termination CallItem
// has been acknowledged; callers run it in its own goroutine.
func (w *Worker[M, R]) Run() {
	pid := os.Getpid()
	for item := range w.callQueue {
		if item.Terminate {
			w.resultQueue <- management.ShutdownAck[R](pid)
			return
		}

		value, err := w.invoke(item.Message)
		if err != nil {
			w.resultQueue <- management.Failure[R](item.WorkID, err)
		} else {
			w.resultQueue <- management.Result[R](item.WorkID, value)
		}
	}
}

// invoke calls the actor's handler, converting a panic into an error result
// instead of letting it kill the worker goroutine (spec.md §4.3, §7).
func (w *Worker[M, R]) invoke(msg M) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("actor handler panicked", "recovered", r)
			err = fmt.Errorf("actorexec: actor handler panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return w.actor.Handle(msg)
}
