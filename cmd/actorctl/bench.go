package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChuLiYu/actor-exec/internal/demoactor"
	"github.com/ChuLiYu/actor-exec/internal/metrics"
)

func newBenchCommand() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Post N concurrent +1 deltas and report throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger := configureLogging(cfg.LogLevel)

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

			start := time.Now()
			var wg sync.WaitGroup
			errs := make([]error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					future, err := exec.Post(demoactor.Delta{Amount: 1})
					if err != nil {
						errs[i] = err
						return
					}
					_, errs[i] = future.Result(context.Background())
				}(i)
			}
			wg.Wait()
			elapsed := time.Since(start)

			for _, err := range errs {
				if err != nil {
					return fmt.Errorf("actorctl: bench post failed: %w", err)
				}
			}

			final, err := exec.Post(demoactor.Delta{Amount: 0})
			if err != nil {
				return err
			}
			total, err := final.Result(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("posted=%d elapsed=%s throughput=%.0f/s final_total=%d\n",
				n, elapsed, float64(n)/elapsed.Seconds(), total.Value)
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", 1000, "number of concurrent deltas to post")
	return cmd
}
