// ============================================================================
// actorctl - Demo CLI
// ============================================================================
//
// Command: cmd/actorctl
// File: main.go
// Purpose: Exercises the Counter actor from spec.md §8 through both worker
//          backends, mirroring the teacher's cmd/demo and cmd/queue entry
//          points: a cobra root command, a handful of subcommands, YAML
//          config, slog logging. Unlike the teacher's binaries, this one
//          must call processworker.Bootstrap() before anything else: a
//          NewProcessExecutor call re-execs this very binary as a worker
//          child, and the child must recognize itself and exit before
//          falling into the normal CLI startup path.
//
// ============================================================================

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ChuLiYu/actor-exec/internal/processworker"
)

func main() {
	if isWorker, err := processworker.Bootstrap(); isWorker {
		if err != nil {
			fmt.Fprintln(os.Stderr, "actorctl worker:", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := newRootCommand().Execute(); err != nil {
		slog.Error("actorctl failed", "error", err)
		os.Exit(1)
	}
}
