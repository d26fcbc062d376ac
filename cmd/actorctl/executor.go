package main

import (
	"fmt"
	"log/slog"

	actorexec "github.com/ChuLiYu/actor-exec"
	"github.com/ChuLiYu/actor-exec/internal/demoactor"
	"github.com/ChuLiYu/actor-exec/internal/metrics"
)

func buildCounterExecutor(kind string, logger *slog.Logger, collector *metrics.Collector) (*actorexec.Executor[demoactor.Delta, demoactor.Total], error) {
	opts := []actorexec.Option{actorexec.WithLogger(logger)}
	if collector != nil {
		opts = append(opts, actorexec.WithMetrics(collector))
	}

	switch kind {
	case "", "thread":
		return actorexec.NewThreadExecutor[demoactor.Delta, demoactor.Total](func() actorexec.Actor[demoactor.Delta, demoactor.Total] {
			return demoactor.NewCounter()
		}, opts...), nil
	case "process":
		return actorexec.NewProcessExecutor[demoactor.Delta, demoactor.Total](demoactor.CounterName, opts...), nil
	default:
		return nil, fmt.Errorf("actorctl: unknown worker kind %q (want thread or process)", kind)
	}
}
