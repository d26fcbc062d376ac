// ============================================================================
// Actor-Exec Process Worker - Actor Registry
// ============================================================================
//
// Package: internal/processworker
// File: registry.go
// Purpose: Go cannot ship a closure across a fork/exec boundary the way
//          Python's multiprocessing can pickle a bound constructor, so the
//          process variant needs the same answer Python's own "spawn" start
//          method needs for unpicklable targets: a name the child process
//          can look up after it re-executes the binary. Register binds an
//          actor constructor to a name at package-init time in the calling
//          program; Bootstrap (bootstrap.go) resolves that name back to
//          the constructor inside the spawned child.
//
// ============================================================================

package processworker

import (
	"fmt"
	"sync"
)

var (
	registryMu sync.Mutex
	registry   = map[string]func(socketPath string) error{}
)

// Register binds name to an actor constructor so a spawned child process
// can build the same actor the parent asked for. Call it from an init()
// function in the package that defines the actor, before any executor
// using that name is started.
func Register[M any, R any](name string, newActor func() Actor[M, R]) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = func(socketPath string) error {
		return serve(socketPath, newActor())
	}
}

func lookup(name string) (func(socketPath string) error, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	entry, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("processworker: no actor registered under name %q", name)
	}
	return entry, nil
}
