package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath    string
	workerFlag    string
	enableMetrics bool
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "actorctl",
		Short: "Drive a Counter actor through actor-exec's thread and process executors",
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&workerFlag, "worker", "", "override the configured worker kind: thread or process")
	root.PersistentFlags().BoolVar(&enableMetrics, "metrics", false, "start the Prometheus /metrics endpoint")

	root.AddCommand(newRunCommand())
	root.AddCommand(newBenchCommand())

	return root
}

func configureLogging(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func resolveWorkerKind(cfg Config) string {
	if workerFlag != "" {
		return workerFlag
	}
	return cfg.Worker
}
