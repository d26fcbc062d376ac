// ============================================================================
// Actor-Exec Process Worker - Bootstrap
// ============================================================================
//
// Package: internal/processworker
// File: bootstrap.go
// Purpose: The re-exec guard every program using a process-backed executor
//          must run at the top of main(), mirroring the "if __name__ ==
//          '__main__'" guard Python's spawn start method requires: a child
//          process is just the same binary started again, distinguished
//          only by two environment variables the parent sets before
//          exec'ing it (spec.md §4.4, §9's "ProcessActor worker identity").
//
// ============================================================================

package processworker

import (
	"fmt"
	"os"
)

const (
	envWorkerName   = "ACTOREXEC_WORKER_NAME"
	envWorkerSocket = "ACTOREXEC_WORKER_SOCKET"
)

// Bootstrap checks whether the current process was exec'd as a worker
// child. If so, it runs the registered actor's entry point and returns
// (true, err) -- the caller's main() must exit immediately afterward rather
// than falling through to its normal startup path. If this process is not
// a worker child, Bootstrap returns (false, nil) right away.
func Bootstrap() (isWorker bool, err error) {
	name, socketPath := os.Getenv(envWorkerName), os.Getenv(envWorkerSocket)
	if name == "" || socketPath == "" {
		return false, nil
	}

	entry, err := lookup(name)
	if err != nil {
		return true, err
	}
	return true, entry(socketPath)
}

func workerEnv(name, socketPath string) []string {
	return append(os.Environ(),
		fmt.Sprintf("%s=%s", envWorkerName, name),
		fmt.Sprintf("%s=%s", envWorkerSocket, socketPath),
	)
}
