package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundRobinWorkload() *WorkloadConfig {
	cfg := &WorkloadConfig{
		Sources: []SourceSpec{{Name: "a", Length: 1}, {Name: "b", Length: 3}},
	}
	cfg.Strategy.Kind = "round-robin"
	return cfg
}

func TestRunWorkload_RunsToExhaustion(t *testing.T) {
	// GIVEN a round-robin workload over a (len 1) and b (len 3)
	summary, err := RunWorkload(roundRobinWorkload(), RunOptions{})
	require.NoError(t, err)

	// THEN every declared batch is streamed exactly once
	assert.True(t, summary.Exhausted)
	assert.Equal(t, 4, summary.TotalRecords)
	assert.Equal(t, 4, summary.TotalBatches)
	assert.Equal(t, map[string]int{"a": 1, "b": 3}, summary.SourceCounts)
	assert.Equal(t, int64(4), summary.StepLatency.TotalCount())
}

func TestRunWorkload_MaxStepsStopsEarly(t *testing.T) {
	summary, err := RunWorkload(roundRobinWorkload(), RunOptions{MaxSteps: 2})
	require.NoError(t, err)

	assert.False(t, summary.Exhausted)
	assert.Equal(t, 2, summary.TotalRecords)
}

func TestRunWorkload_SnapshotOutThenIn_ResumesStream(t *testing.T) {
	// GIVEN an in-order workload interrupted after two records
	snapshotPath := filepath.Join(t.TempDir(), "snapshot.yaml")
	cfg := &WorkloadConfig{
		Sources: []SourceSpec{{Name: "a", Length: 1}, {Name: "b", Length: 2}},
	}
	cfg.Strategy.Kind = "in-order"

	first, err := RunWorkload(cfg, RunOptions{MaxSteps: 2, SnapshotOut: snapshotPath})
	require.NoError(t, err)
	require.Equal(t, 2, first.TotalRecords) // a/000000, b/000000
	require.False(t, first.Exhausted)

	// WHEN a second run restores the snapshot
	second, err := RunWorkload(cfg, RunOptions{SnapshotIn: snapshotPath})
	require.NoError(t, err)

	// THEN it resumes at b (replaying the source from the start, since
	// per-source positions are not part of the snapshot) and a is skipped
	assert.True(t, second.Exhausted)
	assert.Equal(t, map[string]int{"b": 2}, second.SourceCounts)
}

func TestRunWorkload_PacedRun(t *testing.T) {
	// High rate keeps the test fast while still exercising the limiter path
	summary, err := RunWorkload(roundRobinWorkload(), RunOptions{StepRate: 10_000, MaxSteps: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalRecords)
}

func TestRunWorkload_InvalidConfig_Fails(t *testing.T) {
	cfg := &WorkloadConfig{Sources: []SourceSpec{{Name: "a", Length: 1}}}
	cfg.Strategy.Kind = "round-robin"
	cfg.Strategy.StoppingMode = "wrap-until-killed" // unsupported for round-robin

	_, err := RunWorkload(cfg, RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not implemented")
}

func TestRunWorkload_MissingSnapshotFile_Fails(t *testing.T) {
	_, err := RunWorkload(roundRobinWorkload(), RunOptions{
		SnapshotIn: filepath.Join(t.TempDir(), "absent.yaml"),
	})
	require.Error(t, err)
}
