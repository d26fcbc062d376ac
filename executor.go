// ============================================================================
// Actor-Exec - Executor Façade
// ============================================================================
//
// Package: actorexec (module root)
// File: executor.go
// Purpose: The public entry point (spec.md §1, §3, §6): Post submits work
//          and returns a future; Shutdown lets outstanding work drain and
//          then tears the worker down. The worker and its management
//          task are started lazily, on the first Post, exactly as the
//          source this is ported from starts its queue management thread
//          on first submission rather than at construction.
//
// ============================================================================

package actorexec

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ChuLiYu/actor-exec/internal/management"
	"github.com/ChuLiYu/actor-exec/internal/metrics"
	"github.com/ChuLiYu/actor-exec/internal/pending"
	"github.com/ChuLiYu/actor-exec/pkg/future"
)

// Option configures an Executor at construction.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Collector
}

// WithLogger overrides the default slog logger used for management-task and
// worker diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics attaches a Prometheus collector. Share one collector across
// every executor in a process; metrics.NewCollector panics on the second
// call within a process because Prometheus metric names must be unique.
func WithMetrics(collector *metrics.Collector) Option {
	return func(o *options) { o.metrics = collector }
}

func resolveOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Executor posts messages of type M to a single actor and receives results
// of type R through futures. An Executor is safe for concurrent use by
// multiple goroutines; the actor itself never is, which is the entire
// point (spec.md §1).
type Executor[M any, R any] struct {
	backend backend[M, R]
	control *management.Control
	table   *pending.Table[M, R]
	logger  *slog.Logger
	metrics *metrics.Collector

	wake chan struct{}

	startOnce sync.Once
	started   atomic.Bool
	startErr  error
	callQueue chan<- management.CallItem[M]
	taskDone  chan struct{}
}

// cleanupState is the only state the GC-driven safety net below is allowed
// to touch: references to it must never keep the Executor itself reachable,
// or the cleanup would never run.
type cleanupState struct {
	control *management.Control
	wake    chan struct{}
}

func newExecutor[M any, R any](b backend[M, R], o options) *Executor[M, R] {
	e := &Executor[M, R]{
		backend: b,
		control: &management.Control{},
		table:   pending.New[M, R](),
		logger:  o.logger,
		metrics: o.metrics,
		wake:    make(chan struct{}, 1),
	}
	// Best-effort safety net matching spec.md §9's "Close() is explicit,
	// GC-driven cleanup is an additional safety net, not the primary
	// mechanism" decision: if a caller drops an Executor without ever
	// calling Shutdown, a worker already running still gets nudged to
	// tear itself down. The closure captures only cleanupState, never e
	// itself, or the Executor would never become unreachable.
	runtime.AddCleanup(e, func(s cleanupState) {
		s.control.RequestShutdown()
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}, cleanupState{control: e.control, wake: e.wake})
	return e
}

// NewThreadExecutor creates an executor backed by a goroutine in this
// process. newActor is called exactly once, on the goroutine making the
// first Post call, before the worker goroutine starts.
func NewThreadExecutor[M any, R any](newActor func() Actor[M, R], opts ...Option) *Executor[M, R] {
	o := resolveOptions(opts)
	return newExecutor[M, R](&threadBackend[M, R]{newActor: newActor, logger: o.logger}, o)
}

// NewProcessExecutor creates an executor backed by a spawned child process
// running the actor registered under name via processworker.Register. The
// calling program's main function must call processworker.Bootstrap before
// doing anything else, so a re-exec'd child recognizes itself as a worker
// instead of running the parent's normal startup path. M and R cross the
// process boundary encoded with encoding/gob, so both must be
// gob-encodable; this is checked only at run time.
func NewProcessExecutor[M any, R any](name string, opts ...Option) *Executor[M, R] {
	o := resolveOptions(opts)
	return newExecutor[M, R](&processBackend[M, R]{name: name, logger: o.logger}, o)
}

func (e *Executor[M, R]) ensureStarted() error {
	e.startOnce.Do(func() {
		// started is set last, after taskDone exists, so that any
		// concurrent Shutdown(true) observing started==true is
		// guaranteed (via the atomic's happens-before edge) to also see
		// a non-nil taskDone -- otherwise it could read taskDone while
		// it is still nil and block on it forever.
		callQueue, resultQueue, lost, join, forceTerminate, err := e.backend.spawn()
		if err != nil {
			e.startErr = err
			e.control.MarkBroken()
			// No management task will run: hand Shutdown/Wait an
			// already-closed taskDone so they return at once.
			e.taskDone = make(chan struct{})
			close(e.taskDone)
			e.started.Store(true)
			return
		}
		e.callQueue = callQueue

		task := &management.Task[M, R]{
			Control:              e.control,
			Table:                e.table,
			CallQueue:            callQueue,
			ResultQueue:          resultQueue,
			WorkerLost:           lost,
			Wake:                 e.wake,
			JoinWorker:           join,
			ForceTerminateWorker: forceTerminate,
			Logger:               e.logger,
			Metrics:              e.metrics,
		}
		// The goroutine closes over taskDone, not e, so a running task
		// does not keep the Executor reachable.
		taskDone := make(chan struct{})
		e.taskDone = taskDone
		go func() {
			defer close(taskDone)
			task.Run()
		}()
		e.started.Store(true)
	})
	return e.startErr
}

func (e *Executor[M, R]) signalWake() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Post submits message to the actor and returns a future for its result.
// The actor is constructed and the worker started on the first call.
//
// Post returns ErrBrokenWorker once the worker has died, and ErrShutdown
// once Shutdown has been called; both are permanent for the lifetime of
// this Executor.
func (e *Executor[M, R]) Post(message M) (*future.Future[R], error) {
	if e.control.Broken() {
		return nil, ErrBrokenWorker
	}
	if e.control.ShutdownRequested() {
		return nil, ErrShutdown
	}
	if err := e.ensureStarted(); err != nil {
		return nil, err
	}
	if e.control.Broken() {
		return nil, ErrBrokenWorker
	}

	fut := future.New[R]()
	id := pending.WorkID(e.control.NextWorkID())
	e.table.Insert(id, message, fut)
	if e.metrics != nil {
		e.metrics.RecordPosted()
	}
	e.signalWake()
	return fut, nil
}

// Shutdown requests that the executor stop accepting new work and tear the
// worker down. If wait is true, Shutdown blocks until the worker has fully
// exited; if false, it signals shutdown and returns immediately, leaving
// teardown to finish in the background.
//
// Shutdown is idempotent and safe to call multiple times or concurrently
// with Post.
func (e *Executor[M, R]) Shutdown(wait bool) {
	e.control.RequestShutdown()

	// The management task may not exist yet if Post was never called:
	// there is nothing to shut down, and starting one now just to tear it
	// down immediately would spawn a worker for no reason.
	if !e.started.Load() {
		return
	}
	e.signalWake()

	if wait {
		<-e.taskDone
	}
}

// Broken reports whether the worker has been declared broken.
func (e *Executor[M, R]) Broken() bool { return e.control.Broken() }

// Wait blocks until the executor's worker has fully exited, for callers
// that called Shutdown(false) and want to join later. It returns
// immediately if the worker was never started.
func (e *Executor[M, R]) Wait(ctx context.Context) error {
	if e.taskDone == nil {
		return nil
	}
	select {
	case <-e.taskDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
