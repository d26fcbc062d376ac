// ============================================================================
// Actor-Exec - Public Error Taxonomy
// ============================================================================
//
// Package: actorexec (module root)
// File: errors.go
// Purpose: The error values spec.md §7 requires callers to be able to
//          distinguish: a cancelled future, a worker declared broken, and a
//          Post call made after shutdown has already begun.
//
// ============================================================================

package actorexec

import (
	"errors"

	"github.com/ChuLiYu/actor-exec/internal/management"
	"github.com/ChuLiYu/actor-exec/pkg/future"
)

// ErrCancelled is returned by a future's Result when it was cancelled
// before the worker ever dispatched it.
var ErrCancelled = future.ErrCancelled

// ErrBrokenWorker is returned by every future still outstanding, and by
// every subsequent Post, once the worker has been declared broken --
// exited unexpectedly, or violated the management protocol. The executor
// does not recover from this; callers must build a new one.
var ErrBrokenWorker = management.ErrBrokenWorker

// ErrShutdown is returned by Post once Shutdown has been called. Already
// submitted work is unaffected; it is only new submissions that are
// refused.
var ErrShutdown = errors.New("actorexec: executor is shutting down, no new work accepted")

// IsBrokenWorker reports whether err is or wraps ErrBrokenWorker.
func IsBrokenWorker(err error) bool { return errors.Is(err, ErrBrokenWorker) }

// IsCancelled reports whether err is or wraps ErrCancelled.
func IsCancelled(err error) bool { return errors.Is(err, ErrCancelled) }

// IsShutdown reports whether err is or wraps ErrShutdown.
func IsShutdown(err error) bool { return errors.Is(err, ErrShutdown) }
