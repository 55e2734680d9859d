package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/datamux/datamux/mux"
)

// RunOptions controls one streaming run of the multiplexer.
type RunOptions struct {
	Seed        int64
	MaxSteps    int     // 0 = run to stream exhaustion
	StepRate    float64 // records per second; 0 = unpaced
	SnapshotIn  string  // YAML snapshot to restore before streaming
	SnapshotOut string  // YAML snapshot to write after streaming
}

// RunSummary reports what a streaming run produced.
type RunSummary struct {
	TotalRecords int
	TotalBatches int
	SourceCounts map[string]int
	StepLatency  *hdrhistogram.Histogram // microseconds per Next call
	Exhausted    bool                    // stream ended on its own
}

// RunWorkload streams the configured workload through the multiplexer,
// counting per-source batches and timing each step.
func RunWorkload(cfg *WorkloadConfig, opts RunOptions) (*RunSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := cfg.Strategy.Build(opts.Seed, nil)
	if err != nil {
		return nil, err
	}
	it, err := mux.NewMultiIterator(cfg.BuildSources(), strategy)
	if err != nil {
		return nil, err
	}
	if opts.SnapshotIn != "" {
		snapshot, err := loadSnapshot(opts.SnapshotIn)
		if err != nil {
			return nil, err
		}
		it.Restore(snapshot)
	}

	var limiter *rate.Limiter
	if opts.StepRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.StepRate), 1)
	}

	summary := &RunSummary{
		SourceCounts: make(map[string]int),
		// 1us .. 60s at 3 significant figures
		StepLatency: hdrhistogram.New(1, 60_000_000, 3),
	}
	ctx := context.Background()
	for opts.MaxSteps == 0 || summary.TotalRecords < opts.MaxSteps {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}
		start := time.Now()
		rec, ok := it.Next()
		if !ok {
			summary.Exhausted = true
			break
		}
		if err := summary.StepLatency.RecordValue(time.Since(start).Microseconds()); err != nil {
			logrus.Debugf("step latency out of histogram range: %v", err)
		}
		summary.TotalRecords++
		for name := range rec {
			summary.SourceCounts[name]++
			summary.TotalBatches++
		}
	}

	if opts.SnapshotOut != "" {
		if err := saveSnapshot(opts.SnapshotOut, it.Snapshot()); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// Print logs the run summary at info level.
func (s *RunSummary) Print(elapsed time.Duration) {
	logrus.Infof("Produced %d records (%d batches) in %v", s.TotalRecords, s.TotalBatches, elapsed)
	names := make([]string, 0, len(s.SourceCounts))
	for name := range s.SourceCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		logrus.Infof("  source %-16s %8d batches", name, s.SourceCounts[name])
	}
	if s.StepLatency.TotalCount() > 0 {
		logrus.Infof("Step latency (us): p50=%d p90=%d p99=%d max=%d",
			s.StepLatency.ValueAtQuantile(50),
			s.StepLatency.ValueAtQuantile(90),
			s.StepLatency.ValueAtQuantile(99),
			s.StepLatency.Max())
	}
}

func loadSnapshot(path string) (mux.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var snapshot mux.Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return snapshot, nil
}

func saveSnapshot(path string, snapshot mux.Snapshot) error {
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("serializing snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
