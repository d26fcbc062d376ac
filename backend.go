// ============================================================================
// Actor-Exec - Worker Backends
// ============================================================================
//
// Package: actorexec (module root)
// File: backend.go
// Purpose: The seam between the Executor façade and the two worker
//          transports spec.md §4.4 describes (Thread, Process). Each
//          backend's spawn hands back exactly what the management task
//          needs: the Call/Result channels, a liveness-loss signal (nil for
//          Thread, since it cannot crash independently), a join function,
//          and an optional forced-teardown hook (Process only).
//
// ============================================================================

package actorexec

import (
	"context"
	"log/slog"

	"github.com/ChuLiYu/actor-exec/internal/management"
	"github.com/ChuLiYu/actor-exec/internal/processworker"
	"github.com/ChuLiYu/actor-exec/internal/threadworker"
)

const callQueueCapacity = 1 // spec.md §2.3: the Call Queue holds at most one in-flight item

type backend[M any, R any] interface {
	spawn() (callQueue chan<- management.CallItem[M], resultQueue <-chan management.ResultEvent[R], lost <-chan struct{}, join func(), forceTerminate func(), err error)
}

// threadBackend runs the actor on a goroutine in the calling process.
type threadBackend[M any, R any] struct {
	newActor func() Actor[M, R]
	logger   *slog.Logger
}

func (b *threadBackend[M, R]) spawn() (chan<- management.CallItem[M], <-chan management.ResultEvent[R], <-chan struct{}, func(), func(), error) {
	callQueue := make(chan management.CallItem[M], callQueueCapacity)
	resultQueue := make(chan management.ResultEvent[R], 16)

	w := threadworker.New[M, R](b.newActor(), callQueue, resultQueue, b.logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run()
	}()

	join := func() { <-done }
	return callQueue, resultQueue, nil, join, nil, nil
}

// processBackend runs the actor in a spawned child process, registered in
// advance under name via processworker.Register.
type processBackend[M any, R any] struct {
	name   string
	logger *slog.Logger
}

func (b *processBackend[M, R]) spawn() (chan<- management.CallItem[M], <-chan management.ResultEvent[R], <-chan struct{}, func(), func(), error) {
	handle, err := processworker.Spawn[M, R](context.Background(), b.name, callQueueCapacity, b.logger)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	return handle.CallQueue, handle.ResultQueue, handle.Lost, handle.Wait, handle.Kill, nil
}
