// ============================================================================
// Actor-Exec Management Task
// ============================================================================
//
// Package: internal/management
// File: task.go
// Purpose: The dedicated coordination goroutine tying the Pending Table,
//          Call Queue, and Result Queue together (spec.md §4.2). Generic
//          over the transport: the thread worker feeds these channels
//          in-process; the process worker's transport goroutines feed the
//          same channels across the internal/ipc gRPC stream. This is the
//          "ManagementTask<Channel, WorkerHandle> parameterized over
//          transport" redesign spec.md §9 calls for -- here the
//          parameterization is just "who's on the other end of these two
//          channels", which needs no type parameter of its own.
//
// Loop shape (spec.md §4.2, §9's ordering note):
//
//	for {
//	    fillPhase()                 // AddCallItemsToQueue
//	    event, alive := waitForEvent()   // prefers a ready result over a
//	                                      // ready liveness-loss signal
//	    if !alive { handleBrokenWorker(); return }
//	    switch event.Kind { ... }
//	    if shuttingDown && table empty && !terminationSent { signal worker }
//	}
//
// ============================================================================

package management

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ChuLiYu/actor-exec/internal/metrics"
	"github.com/ChuLiYu/actor-exec/internal/pending"
)

// ErrBrokenWorker is delivered to every pending future, and to every future
// future Post call, once the worker is declared broken (spec.md §7).
var ErrBrokenWorker = errors.New("actorexec: worker terminated abruptly while a future was running or pending")

// Task drives the management loop for one executor.
type Task[M any, R any] struct {
	Control     *Control
	Table       *pending.Table[M, R]
	CallQueue   chan<- CallItem[M]
	ResultQueue <-chan ResultEvent[R]

	// WorkerLost fires when the worker dies unexpectedly. nil for the
	// thread variant, which cannot crash independently of the calling
	// process (spec.md §4.4).
	WorkerLost <-chan struct{}

	// Wake is nudged by Post/Shutdown after they touch the Pending Table,
	// so a management task blocked waiting for a result doesn't sleep
	// through newly admitted work. Analogous to the source's self-pipe
	// wakeup fd selected alongside the result queue's reader.
	Wake <-chan struct{}

	// JoinWorker blocks until the worker goroutine/process has fully
	// exited. Called once the loop is about to return, on every exit
	// path.
	JoinWorker func()

	// ForceTerminateWorker forcibly tears down the worker on a broken
	// detection. nil for the thread variant (spec.md §4.4's teardown
	// row: "forced terminate on broken" applies to the process variant
	// only).
	ForceTerminateWorker func()

	Logger *slog.Logger

	// Metrics is optional; every call site is nil-checked.
	Metrics *metrics.Collector

	terminationSent bool
}

// Run executes the management loop until shutdown completes or the worker
// is declared broken. It is meant to run in its own goroutine; Run returns
// once the worker has been joined.
func (t *Task[M, R]) Run() {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for {
		t.fillPhase()

		event, alive := t.waitForEvent()
		if !alive {
			t.handleBrokenWorker(logger)
			return
		}

		switch event.Kind {
		case ResultWakeup:
			// Nudge only; loop back to the fill phase.

		case ResultShutdownAck:
			if !t.Control.ShutdownRequested() {
				logger.Error("worker sent shutdown acknowledgement while not shutting down; treating as broken",
					"pid", event.PID)
				t.handleBrokenWorker(logger)
				return
			}
			logger.Info("worker exited cleanly", "pid", event.PID)
			if t.JoinWorker != nil {
				t.JoinWorker()
			}
			return

		case ResultValue:
			t.deliver(event)
		}

		if t.Metrics != nil {
			t.Metrics.UpdateQueueStats(t.Table.PendingLen(), t.Table.Len()-t.Table.PendingLen())
		}

		if t.Control.ShutdownRequested() && t.Table.Len() == 0 && !t.terminationSent {
			t.terminationSent = true
			t.CallQueue <- CallItem[M]{Terminate: true}
		}
	}
}

// fillPhase is AddCallItemsToQueue (spec.md §4.2 step 1): drain the Work ID
// Queue into the Call Queue until either is exhausted, resolving
// pre-dispatch cancellations along the way. Never blocks past what the
// bounded Call Queue already allows.
func (t *Task[M, R]) fillPhase() {
	for len(t.CallQueue) < cap(t.CallQueue) {
		item, ok := t.Table.PopNextPending()
		if !ok {
			return
		}
		if item.Resolver.SetRunningOrNotifyCancel() {
			t.CallQueue <- CallItem[M]{WorkID: item.ID, Message: item.Message}
			if t.Metrics != nil {
				t.Metrics.RecordDispatched()
			}
		} else {
			t.Table.Delete(item.ID)
		}
	}
}

// waitForEvent blocks for either a Result Queue event or the worker-lost
// signal, biased toward a ready result: spec.md §9 requires draining a
// result before honoring a liveness loss (or a shutdown request) that
// raced with it, so a final submission arriving in the same wakeup is
// never lost.
func (t *Task[M, R]) waitForEvent() (ResultEvent[R], bool) {
	select {
	case e, ok := <-t.ResultQueue:
		if ok {
			return e, true
		}
		// The transport closed the Result Queue (its stream is gone); stop
		// selecting on it so the worker-lost signal can be observed.
		t.ResultQueue = nil
	default:
	}

	// A nil WorkerLost (thread variant) never fires.
	for {
		select {
		case e, ok := <-t.ResultQueue:
			if ok {
				return e, true
			}
			t.ResultQueue = nil
		case <-t.Wake:
			return Wakeup[R](), true
		case <-t.WorkerLost:
			return ResultEvent[R]{}, false
		}
	}
}

func (t *Task[M, R]) deliver(event ResultEvent[R]) {
	item, ok := t.Table.Get(event.WorkID)
	if !ok {
		// Already purged by a broken-worker sweep; the worker's result
		// arrived after the fact and is discarded.
		return
	}
	t.Table.Delete(event.WorkID)
	latency := time.Since(item.SubmittedAt).Seconds()
	if event.Err != nil {
		item.Resolver.SetException(event.Err)
		if t.Metrics != nil {
			t.Metrics.RecordFailed(latency)
		}
	} else {
		item.Resolver.SetResult(event.Value)
		if t.Metrics != nil {
			t.Metrics.RecordCompleted(latency)
		}
	}
}

func (t *Task[M, R]) handleBrokenWorker(logger *slog.Logger) {
	t.Control.MarkBroken()
	if t.Metrics != nil {
		t.Metrics.RecordBroken()
	}

	items := t.Table.Items()
	logger.Error("worker declared broken", "pending_futures", len(items))
	for _, item := range items {
		item.Resolver.SetException(ErrBrokenWorker)
	}
	t.Table.Clear()

	if t.ForceTerminateWorker != nil {
		t.ForceTerminateWorker()
	}
	if t.JoinWorker != nil {
		t.JoinWorker()
	}
}
