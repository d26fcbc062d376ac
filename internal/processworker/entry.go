// ============================================================================
// Actor-Exec Process Worker - Child Entry Point
// ============================================================================
//
// Package: internal/processworker
// File: entry.go
// Purpose: The code that runs inside the spawned child process: build the
//          actor once (spec.md §4.1), serve the Exchange RPC on the unix
//          socket the parent dialed, and run the same construct-once,
//          panic-never-kills-the-loop worker behavior as internal/
//          threadworker, but reading/writing gob-encoded envelopes off the
//          wire instead of Go channels directly.
//
// ============================================================================

package processworker

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"google.golang.org/grpc"

	"github.com/ChuLiYu/actor-exec/internal/ipc"
)

// Actor is the minimal handler contract a process-backed executor needs.
// Structurally identical to threadworker.Actor and the root package's
// Actor[M, R]; Go's structural interfaces mean any type implementing one
// implements all three.
type Actor[M any, R any] interface {
	Handle(M) (R, error)
}

// serve builds the grpc server for one worker process and blocks until the
// parent's termination CallItem has been acknowledged or the connection is
// lost.
func serve[M any, R any](socketPath string, actor Actor[M, R]) error {
	lis, err := ipc.Listen(socketPath)
	if err != nil {
		return err
	}
	defer lis.Close()

	srv := grpc.NewServer()
	impl := &exchangeServer[M, R]{actor: actor, logger: slog.Default().With("pid", os.Getpid()), finished: make(chan struct{})}
	ipc.RegisterWorkerServer(srv, impl)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(lis) }()

	<-impl.finished
	srv.GracefulStop()
	return <-done
}

type exchangeServer[M any, R any] struct {
	actor    Actor[M, R]
	logger   *slog.Logger
	finished chan struct{}
}

func (s *exchangeServer[M, R]) Exchange(stream ipc.WorkerExchangeServer) error {
	defer close(s.finished)

	for {
		call, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if call.Terminate {
			return stream.Send(&ipc.ResultEnvelope{ShutdownAck: true, PID: os.Getpid()})
		}

		var msg M
		if err := gobDecode(call.Payload, &msg); err != nil {
			if sendErr := stream.Send(errorEnvelope(call.WorkID, fmt.Errorf("processworker: decoding call payload: %w", err), string(debug.Stack()))); sendErr != nil {
				return sendErr
			}
			continue
		}

		result := s.invoke(msg)
		if result.err != nil {
			if sendErr := stream.Send(errorEnvelope(call.WorkID, result.err, result.traceback)); sendErr != nil {
				return sendErr
			}
			continue
		}

		payload, err := gobEncode(result.value)
		if err != nil {
			if sendErr := stream.Send(errorEnvelope(call.WorkID, fmt.Errorf("processworker: encoding result payload: %w", err), string(debug.Stack()))); sendErr != nil {
				return sendErr
			}
			continue
		}
		if err := stream.Send(&ipc.ResultEnvelope{WorkID: call.WorkID, Payload: payload}); err != nil {
			return err
		}
	}
}

type invokeResult[R any] struct {
	value     R
	err       error
	traceback string
}

// invoke calls the actor's handler, converting a panic into an error result
// instead of crashing the worker process -- the process as a whole is only
// declared broken when it actually exits (spec.md §4.3, §7). A panic's
// traceback is captured separately from the error message so the client
// side can attach it as a cause instead of folding it into the error text.
// An ordinary error returned by Handle carries no Go-level traceback -- Go
// errors don't carry stacks the way Python exceptions do -- so traceback
// stays empty for that path.
func (s *exchangeServer[M, R]) invoke(msg M) (out invokeResult[R]) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("actor handler panicked", "recovered", r)
			out = invokeResult[R]{
				err:       fmt.Errorf("actorexec: actor handler panicked: %v", r),
				traceback: string(debug.Stack()),
			}
		}
	}()
	v, err := s.actor.Handle(msg)
	return invokeResult[R]{value: v, err: err}
}

func errorEnvelope(workID uint64, err error, traceback string) *ipc.ResultEnvelope {
	return &ipc.ResultEnvelope{WorkID: workID, Failed: true, ErrMessage: err.Error(), ErrTraceback: traceback}
}

func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
