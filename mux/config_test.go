package mux

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadStrategyConfig_ParsesAllFields(t *testing.T) {
	path := writeConfigFile(t, `
kind: weighted-sampler
stopping_mode: restart-until-all-exhausted
weights:
  web: 3.0
  books: 1.0
enforce_same_source: true
`)

	cfg, err := LoadStrategyConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "weighted-sampler", cfg.Kind)
	assert.Equal(t, string(RestartUntilAllExhausted), cfg.StoppingMode)
	assert.Equal(t, map[string]float64{"web": 3.0, "books": 1.0}, cfg.Weights)
	assert.True(t, cfg.EnforceSameSource)
}

func TestLoadStrategyConfig_MissingFile_Fails(t *testing.T) {
	_, err := LoadStrategyConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestStrategyConfig_Validate_RejectsUnknownKind(t *testing.T) {
	cfg := &StrategyConfig{Kind: "zigzag"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zigzag")
}

func TestStrategyConfig_Validate_RejectsUnknownStoppingMode(t *testing.T) {
	cfg := &StrategyConfig{Kind: "round-robin", StoppingMode: "sometimes"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sometimes")
}

func TestStrategyConfig_Build_WiresWeightedSamplerParameters(t *testing.T) {
	cfg := &StrategyConfig{
		Kind:              "weighted-sampler",
		StoppingMode:      string(WrapUntilKilled),
		Weights:           map[string]float64{"a": 1},
		EnforceSameSource: true,
	}
	coord := NoopCoordinator{}

	strategy, err := cfg.Build(99, coord)
	require.NoError(t, err)

	ws, ok := strategy.(WeightedSampler)
	require.True(t, ok)
	assert.Equal(t, WrapUntilKilled, ws.StoppingMode)
	assert.Equal(t, int64(99), ws.Seed)
	assert.True(t, ws.EnforceSameSource)
	assert.Equal(t, coord, ws.Coordinator)
}

func TestStrategyConfig_Build_DefaultStoppingModeIsAccepted(t *testing.T) {
	cfg := &StrategyConfig{Kind: "in-order", IterationOrder: []string{"a", "a"}}

	strategy, err := cfg.Build(0, nil)
	require.NoError(t, err)

	io, ok := strategy.(InOrder)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "a"}, io.IterationOrder)
}
