package mux

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StrategyConfig is the YAML shape of an iteration strategy. Fields that do
// not apply to the configured kind are ignored by Build.
type StrategyConfig struct {
	Kind              string             `yaml:"kind"`
	StoppingMode      string             `yaml:"stopping_mode"`
	IterationOrder    []string           `yaml:"iteration_order"`
	Weights           map[string]float64 `yaml:"weights"`
	EnforceSameSource bool               `yaml:"enforce_same_source"`
}

// ValidStrategyKinds is the set of recognized strategy kind names.
var ValidStrategyKinds = map[string]bool{
	"round-robin":         true,
	"all-sources-batches": true,
	"weighted-sampler":    true,
	"in-order":            true,
}

// LoadStrategyConfig reads and parses a YAML strategy configuration file.
func LoadStrategyConfig(path string) (*StrategyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading strategy config: %w", err)
	}
	var cfg StrategyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing strategy config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the kind and stopping mode names are recognized.
// Per-strategy constraints (mode support, weight coverage, order keys) are
// checked by NewMultiIterator against the actual source set.
func (c *StrategyConfig) Validate() error {
	if !ValidStrategyKinds[c.Kind] {
		return fmt.Errorf("unknown strategy kind %q", c.Kind)
	}
	if !ValidStoppingModes[StoppingMode(c.StoppingMode)] {
		return fmt.Errorf("unknown stopping mode %q", c.StoppingMode)
	}
	return nil
}

// Build converts the config into a Strategy value. The seed and coordinator
// only apply to the weighted sampler and are ignored by other kinds.
func (c *StrategyConfig) Build(seed int64, coord Coordinator) (Strategy, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	mode := StoppingMode(c.StoppingMode)
	switch c.Kind {
	case "round-robin":
		return RoundRobin{StoppingMode: mode, IterationOrder: c.IterationOrder}, nil
	case "all-sources-batches":
		return AllSourcesBatches{StoppingMode: mode}, nil
	case "weighted-sampler":
		return WeightedSampler{
			Weights:           c.Weights,
			StoppingMode:      mode,
			EnforceSameSource: c.EnforceSameSource,
			Seed:              seed,
			Coordinator:       coord,
		}, nil
	case "in-order":
		return InOrder{IterationOrder: c.IterationOrder}, nil
	}
	return nil, fmt.Errorf("unknown strategy kind %q", c.Kind)
}
