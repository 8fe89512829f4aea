package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/rowview/rowview/pkg/api"
	"github.com/rowview/rowview/pkg/loader"
	"github.com/rowview/rowview/pkg/logging"
)

var (
	flagURL           string
	flagStrategy      string
	flagBatchSize     int
	flagParallel      bool
	flagParallelLimit int
	flagRedisAddr     string
	flagLogLevel      string
	flagLogFile       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rowview",
		Short: "Virtual-scrolling terminal viewer for the data_100k API",
		Long: `rowview loads a large tabular dataset from a remote data source and
renders it in a virtual-scrolling terminal table. Only the rows visible in
the viewport (plus a small buffer) are ever materialized.

The dataset can be loaded in one request, in sequential batches, or in
concurrency-bounded parallel batches.`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&flagURL, "url", "http://localhost:8000", "data source base URL")
	rootCmd.Flags().StringVar(&flagStrategy, "strategy", "batch", "load strategy: single or batch")
	rootCmd.Flags().IntVar(&flagBatchSize, "batch-size", 10000, "records per batch request")
	rootCmd.Flags().BoolVar(&flagParallel, "parallel", false, "fetch batches in parallel")
	rootCmd.Flags().IntVar(&flagParallelLimit, "parallel-limit", 5, "max simultaneous batch requests")
	rootCmd.Flags().StringVar(&flagRedisAddr, "redis", "", "Redis address for the response cache (disabled when empty)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "", "write logs to this file (discarded when empty; the TUI owns the terminal)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// The TUI owns stdout/stderr, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(flagLogLevel),
		Output: logOut,
	})

	loadCfg, err := loadConfigFromFlags()
	if err != nil {
		return err
	}

	apiCfg := api.DefaultConfig(flagURL)
	if flagRedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: flagRedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("connect to Redis at %s: %w", flagRedisAddr, err)
		}
		apiCfg.Redis = redisClient
		defer redisClient.Close()
	}

	client, err := api.New(apiCfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	p := tea.NewProgram(
		newModel(client, loadCfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run UI: %w", err)
	}
	return nil
}

func loadConfigFromFlags() (loader.Config, error) {
	cfg := loader.Config{
		BatchSize:     flagBatchSize,
		ParallelLimit: flagParallelLimit,
	}

	switch flagStrategy {
	case "single":
		cfg.Strategy = loader.StrategySingle
	case "batch":
		if flagParallel {
			cfg.Strategy = loader.StrategyParallel
		} else {
			cfg.Strategy = loader.StrategySequential
		}
	default:
		return cfg, fmt.Errorf("unknown strategy %q (want single or batch)", flagStrategy)
	}
	return cfg, nil
}
