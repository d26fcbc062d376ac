// ============================================================================
// Actor-Exec Management Task - Wire Types
// ============================================================================
//
// Package: internal/management
// File: types.go
// Purpose: CallItem / ResultEvent (spec.md §2.3, §2.4, §2.7), shared by both
//          the thread and process worker variants. Kept generic over the
//          user's message/value types so the in-process variant can pass
//          them by reference with zero copying, exactly as spec.md §4.4
//          requires; the process variant's transport (internal/ipc,
//          internal/processworker) marshals them at its own boundary.
//
// ============================================================================

package management

import "github.com/ChuLiYu/actor-exec/internal/pending"

// CallItem is a unit of work handed from the management task to the
// worker, in submission order (spec.md §2.3).
type CallItem[M any] struct {
	WorkID pending.WorkID
	// Message is the user payload. Zero value when Terminate is set.
	Message M
	// Terminate is the null CallItem that tells the worker to acknowledge
	// and exit (spec.md §4.3).
	Terminate bool
}

// ResultKind discriminates the three things that can arrive on the Result
// Queue (spec.md §2.7, §4.2 step 3).
type ResultKind int

const (
	// ResultWakeup is the null marker posted by Post/Shutdown to unblock
	// the management task's wait without carrying data.
	ResultWakeup ResultKind = iota
	// ResultValue carries a delivered result or handler exception for a
	// specific work id.
	ResultValue
	// ResultShutdownAck is the worker's clean-exit acknowledgement, valid
	// only while the executor is shutting down.
	ResultShutdownAck
)

// ResultEvent is a ResultItem plus the wakeup/shutdown-ack sentinels
// spec.md §2.7 folds into the same channel.
type ResultEvent[R any] struct {
	Kind   ResultKind
	WorkID pending.WorkID

	// Populated when Kind == ResultValue.
	Value R
	Err   error

	// Populated when Kind == ResultShutdownAck.
	PID int
}

// Wakeup builds the null marker event.
func Wakeup[R any]() ResultEvent[R] {
	return ResultEvent[R]{Kind: ResultWakeup}
}

// ShutdownAck builds the clean-exit acknowledgement event.
func ShutdownAck[R any](pid int) ResultEvent[R] {
	return ResultEvent[R]{Kind: ResultShutdownAck, PID: pid}
}

// Result builds a successful ResultItem event.
func Result[R any](id pending.WorkID, v R) ResultEvent[R] {
	return ResultEvent[R]{Kind: ResultValue, WorkID: id, Value: v}
}

// Failure builds a failed ResultItem event.
func Failure[R any](id pending.WorkID, err error) ResultEvent[R] {
	return ResultEvent[R]{Kind: ResultValue, WorkID: id, Err: err}
}
