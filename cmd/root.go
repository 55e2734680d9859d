package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/datamux/datamux/mux"
)

var (
	// CLI flags for the multiplexer run
	configPath  string  // Workload YAML (sources + strategy)
	logLevel    string  // Log verbosity level
	seed        int64   // Seed for the weighted sampler
	maxSteps    int     // Stop after N records (0 = run to exhaustion)
	stepRate    float64 // Records per second (0 = unpaced)
	snapshotIn  string  // Snapshot YAML to restore before streaming
	snapshotOut string  // Snapshot YAML to write after streaming
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "datamux",
	Short: "Multi-source data stream multiplexer for training loops",
}

// runCmd streams a workload through the multiplexer
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Stream a workload through the configured iteration strategy",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if configPath == "" {
			logrus.Fatalf("Workload config not provided. Use --config.")
		}
		cfg, err := LoadWorkloadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Unable to read workload config: %v", err)
		}

		logrus.Infof("Starting run: strategy=%s stopping_mode=%s sources=%d seed=%d",
			cfg.Strategy.Kind, cfg.Strategy.StoppingMode, len(cfg.Sources), seed)
		startTime := time.Now()

		summary, err := RunWorkload(cfg, RunOptions{
			Seed:        seed,
			MaxSteps:    maxSteps,
			StepRate:    stepRate,
			SnapshotIn:  snapshotIn,
			SnapshotOut: snapshotOut,
		})
		if err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}
		summary.Print(time.Since(startTime))

		if summary.Exhausted {
			logrus.Info("Stream exhausted.")
		} else if snapshotOut != "" {
			logrus.Infof("Stopped at %d records, snapshot written to %s", summary.TotalRecords, snapshotOut)
		}
	},
}

// validateCmd checks a workload config without streaming anything
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a workload config without running it",
	Run: func(cmd *cobra.Command, args []string) {
		if configPath == "" {
			logrus.Fatalf("Workload config not provided. Use --config.")
		}
		cfg, err := LoadWorkloadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Unable to read workload config: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid workload config: %v", err)
		}
		// Construct the iterator too, so per-strategy constraints (mode
		// support, weight coverage, order keys) are checked against the
		// declared sources.
		strategy, err := cfg.Strategy.Build(seed, nil)
		if err != nil {
			logrus.Fatalf("Invalid strategy: %v", err)
		}
		if _, err := mux.NewMultiIterator(cfg.BuildSources(), strategy); err != nil {
			logrus.Fatalf("Invalid workload config: %v", err)
		}
		logrus.Infof("Workload config %s is valid.", configPath)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Workload YAML file (sources + strategy)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for the weighted sampler")

	runCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Stop after N records (0 = run to exhaustion)")
	runCmd.Flags().Float64Var(&stepRate, "rate", 0, "Records per second (0 = unpaced)")
	runCmd.Flags().StringVar(&snapshotIn, "snapshot-in", "", "Restore iterator state from this YAML snapshot")
	runCmd.Flags().StringVar(&snapshotOut, "snapshot-out", "", "Write iterator state to this YAML snapshot after the run")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
