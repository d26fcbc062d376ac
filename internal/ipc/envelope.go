// ============================================================================
// Actor-Exec IPC - Wire Envelopes
// ============================================================================
//
// Package: internal/ipc
// File: envelope.go
// Purpose: The concrete (non-generic) records that cross the process
//          boundary for the out-of-process worker variant (spec.md §2.3,
//          §2.4, §4.4). CallEnvelope is the wire form of a CallItem;
//          ResultEnvelope is the wire form of a ResultItem. Payload carries
//          the caller's M/R type pre-encoded with encoding/gob by
//          internal/processworker, which knows the concrete type parameter;
//          keeping the envelopes themselves non-generic is what lets them
//          plug into a plain grpc.ServiceDesc without code generation.
//
// ============================================================================

package ipc

// CallEnvelope is a CallItem (spec.md §2.3) in transit to the worker
// process.
type CallEnvelope struct {
	WorkID uint64
	// Payload is the gob encoding of the user message. Empty when
	// Terminate is set.
	Payload []byte
	// Terminate is the null CallItem that tells the worker to acknowledge
	// and exit (spec.md §4.3).
	Terminate bool
}

// ResultEnvelope is a ResultItem (spec.md §2.4 / §2.7) returning from the
// worker process, or the worker's clean-shutdown acknowledgement.
type ResultEnvelope struct {
	WorkID uint64
	// Payload is the gob encoding of the handler's return value. Present
	// only when Failed is false.
	Payload []byte
	Failed  bool
	// ErrMessage/ErrTraceback together form the transportable exception
	// representation spec.md §6 requires: the original error text plus a
	// formatted stack captured on the worker side.
	ErrMessage   string
	ErrTraceback string

	// ShutdownAck is the worker's response to a Terminate CallEnvelope:
	// "I received the termination signal and am exiting cleanly." PID
	// identifies the worker process for the parent's logs.
	ShutdownAck bool
	PID         int
}
