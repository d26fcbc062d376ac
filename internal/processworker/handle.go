// ============================================================================
// Actor-Exec Process Worker - Parent-Side Handle
// ============================================================================
//
// Package: internal/processworker
// File: handle.go
// Purpose: Spawns the child worker process, dials its Exchange socket, and
//          pumps the management task's Call Queue / Result Queue channels
//          across the stream. Crash detection rides on os/exec.Cmd.Wait()
//          in its own goroutine rather than anything on the gRPC stream --
//          a worker process can die without ever sending a byte, and only
//          the OS knows that reliably (spec.md §4.4's "worker's sentinel").
//
// Grounded on the teacher's internal/worker/worker_pool.go process
// lifecycle (spawn, readiness wait, Wait()-driven liveness) and grpc_source.go
// bidirectional stream pump goroutines, generalized from its job-registry
// polling to the spec's one-worker-per-executor model.
//
// ============================================================================

package processworker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"google.golang.org/grpc"

	"github.com/ChuLiYu/actor-exec/internal/ipc"
	"github.com/ChuLiYu/actor-exec/internal/management"
	"github.com/ChuLiYu/actor-exec/internal/pending"
)

// Handle is the parent-side view of one spawned worker process: the pair of
// channels the management task reads and writes, plus the signals needed
// for crash detection and teardown.
type Handle[M any, R any] struct {
	CallQueue   chan management.CallItem[M]
	ResultQueue chan management.ResultEvent[R]
	Lost        <-chan struct{}

	cmd  *exec.Cmd
	conn *grpc.ClientConn
	lost <-chan struct{}

	killOnce sync.Once
}

// Spawn starts a new worker process registered under name, dials its
// Exchange socket (retrying with backoff while the child is still starting
// up), and launches the pump goroutines that translate between the
// management task's channels and the wire. callQueueCapacity should match
// the bounded Call Queue capacity spec.md §2.3 requires (1 per executor).
func Spawn[M any, R any](ctx context.Context, name string, callQueueCapacity int, logger interface {
	Error(msg string, args ...any)
}) (*Handle[M, R], error) {
	socketPath := filepath.Join(os.TempDir(), fmt.Sprintf("actorexec-%s.sock", uuid.NewString()))

	cmd := exec.CommandContext(context.Background(), os.Args[0], os.Args[1:]...)
	cmd.Env = workerEnv(name, socketPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("processworker: starting worker process: %w", err)
	}

	lost := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(lost)
	}()

	conn, err := dialWithRetry(ctx, socketPath, lost)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}

	h := &Handle[M, R]{
		CallQueue:   make(chan management.CallItem[M], callQueueCapacity),
		ResultQueue: make(chan management.ResultEvent[R], 16),
		Lost:        lost,
		cmd:         cmd,
		conn:        conn,
		lost:        lost,
	}

	client := ipc.NewWorkerClient(conn)
	stream, err := client.Exchange(context.Background())
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("processworker: opening exchange stream: %w", err)
	}

	go h.pumpSend(stream, logger)
	go h.pumpRecv(stream, logger)

	return h, nil
}

// dialWithRetry dials socketPath, retrying while the child has not yet
// created it. Bounded by a 10-second max elapsed time (or ctx); aborted
// immediately if the child exits before becoming reachable.
func dialWithRetry(ctx context.Context, socketPath string, lost <-chan struct{}) (*grpc.ClientConn, error) {
	operation := func() (*grpc.ClientConn, error) {
		select {
		case <-lost:
			return nil, backoff.Permanent(fmt.Errorf("processworker: worker process exited before its socket became reachable"))
		default:
		}
		// ipc.DialSocket connects lazily and succeeds even before the
		// socket exists, so wait for the child's listener to create it.
		if _, err := os.Stat(socketPath); err != nil {
			return nil, err
		}
		conn, err := ipc.DialSocket(socketPath)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(10*time.Second),
	)
}

func (h *Handle[M, R]) pumpSend(stream ipc.WorkerExchangeClient, logger interface {
	Error(msg string, args ...any)
}) {
	for item := range h.CallQueue {
		payload, err := gobEncode(item.Message)
		if err != nil && !item.Terminate {
			logger.Error("encoding call payload", "error", err)
			continue
		}
		err = stream.Send(&ipc.CallEnvelope{WorkID: uint64(item.WorkID), Payload: payload, Terminate: item.Terminate})
		if err != nil {
			logger.Error("sending call envelope", "error", err)
			return
		}
		if item.Terminate {
			return
		}
	}
}

func (h *Handle[M, R]) pumpRecv(stream ipc.WorkerExchangeClient, logger interface {
	Error(msg string, args ...any)
}) {
	defer close(h.ResultQueue)
	for {
		envelope, err := stream.Recv()
		if err != nil {
			return
		}

		if envelope.ShutdownAck {
			h.ResultQueue <- management.ShutdownAck[R](envelope.PID)
			return
		}

		if envelope.Failed {
			h.ResultQueue <- management.Failure[R](workIDFrom(envelope.WorkID), &RemoteError{Message: envelope.ErrMessage, Traceback: envelope.ErrTraceback})
			continue
		}

		var value R
		if err := gobDecode(envelope.Payload, &value); err != nil {
			logger.Error("decoding result payload", "error", err)
			h.ResultQueue <- management.Failure[R](workIDFrom(envelope.WorkID), fmt.Errorf("processworker: decoding result payload: %w", err))
			continue
		}
		h.ResultQueue <- management.Result[R](workIDFrom(envelope.WorkID), value)
	}
}

// Kill forcibly terminates the worker process. Used only on a broken-worker
// detection (spec.md §4.4); a clean shutdown always lets the child exit on
// its own after acknowledging termination.
func (h *Handle[M, R]) Kill() {
	h.killOnce.Do(func() {
		if h.cmd.Process != nil {
			_ = h.cmd.Process.Kill()
		}
	})
}

// Wait blocks until the worker process has fully exited and releases the
// connection. cmd.Wait() itself is only ever called once, by the goroutine
// Spawn starts to watch for liveness loss; Wait here just joins that signal.
func (h *Handle[M, R]) Wait() {
	<-h.lost
	_ = h.conn.Close()
}

func workIDFrom(id uint64) pending.WorkID { return pending.WorkID(id) }

// remoteTraceback wraps the worker-side stack captured when a handler
// failed. It exists only to be reached through RemoteError's Unwrap, for
// %+v-style logging -- it is never meaningful to compare against with
// errors.Is.
type remoteTraceback string

func (t remoteTraceback) Error() string { return "worker traceback:\n" + string(t) }

// RemoteError is the error delivered to a Future when a process-backed
// worker's handler returns an error or panics (spec.md §6, §9: "the client
// reconstructs the original exception with the remote traceback attached
// as a cause"). Message matches what the handler returned or the panic
// text; Go has no portable way to carry the original error's type or
// sentinel identity across a process boundary, so Message is the closest
// faithful reconstruction available. Traceback, when non-empty, is the
// worker-side stack captured at the point of failure and is reachable via
// Unwrap so it surfaces in %+v-style logging without participating in
// errors.Is/As comparisons against the handler's own sentinel errors.
type RemoteError struct {
	Message   string
	Traceback string
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error {
	if e.Traceback == "" {
		return nil
	}
	return remoteTraceback(e.Traceback)
}
