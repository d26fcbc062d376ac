package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChuLiYu/actor-exec/internal/demoactor"
	"github.com/ChuLiYu/actor-exec/internal/metrics"
)

func newRunCommand() *cobra.Command {
	var amountsFlag string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Post a sequence of deltas to a Counter actor and print the running totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger := configureLogging(cfg.LogLevel)

			amounts, err := parseAmounts(amountsFlag)
			if err != nil {
				return err
			}

			var collector *metrics.Collector
			if enableMetrics {
				collector = metrics.NewCollector()
				go func() {
					if err := metrics.StartServer(cfg.MetricsPort); err != nil {
						logger.Error("metrics server exited", "error", err)
					}
				}()
			}

			exec, err := buildCounterExecutor(resolveWorkerKind(cfg), logger, collector)
			if err != nil {
				return err
			}
			defer exec.Shutdown(true)

			for _, amount := range amounts {
				future, err := exec.Post(demoactor.Delta{Amount: amount})
				if err != nil {
					return fmt.Errorf("actorctl: posting delta %d: %w", amount, err)
				}
				total, err := future.Result(context.Background())
				if err != nil {
					return fmt.Errorf("actorctl: delta %d: %w", amount, err)
				}
				fmt.Printf("delta=%+d total=%d\n", amount, total.Value)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&amountsFlag, "amounts", "1,2,-1,5", "comma-separated deltas to post in order")
	return cmd
}

func parseAmounts(raw string) ([]int, error) {
	fields := strings.Split(raw, ",")
	amounts := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("actorctl: invalid amount %q: %w", f, err)
		}
		amounts = append(amounts, n)
	}
	return amounts, nil
}
