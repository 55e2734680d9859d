package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/datamux/datamux/mux"
)

// SourceSpec declares one synthetic source in a workload file.
type SourceSpec struct {
	Name   string `yaml:"name"`
	Length int    `yaml:"length"` // number of batches the source yields per pass
}

// WorkloadConfig is the YAML shape of a `datamux run` workload: the named
// synthetic sources plus the iteration strategy to multiplex them with.
type WorkloadConfig struct {
	Strategy mux.StrategyConfig `yaml:"strategy"`
	Sources  []SourceSpec       `yaml:"sources"`
}

// LoadWorkloadConfig reads and parses a YAML workload file.
func LoadWorkloadConfig(path string) (*WorkloadConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload config: %w", err)
	}
	var cfg WorkloadConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing workload config: %w", err)
	}
	return &cfg, nil
}

// Validate checks source declarations and the strategy names.
func (c *WorkloadConfig) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("no sources declared")
	}
	seen := map[string]bool{}
	for _, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("source with empty name")
		}
		if seen[src.Name] {
			return fmt.Errorf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = true
		if src.Length < 0 {
			return fmt.Errorf("source %q has negative length %d", src.Name, src.Length)
		}
	}
	return c.Strategy.Validate()
}

// BuildSources materializes the declared sources as in-memory batch slices.
// Batches are "name/index" strings; the multiplexer never looks inside them.
func (c *WorkloadConfig) BuildSources() map[string]mux.Source {
	sources := make(map[string]mux.Source, len(c.Sources))
	for _, spec := range c.Sources {
		batches := make(mux.SliceSource, spec.Length)
		for i := 0; i < spec.Length; i++ {
			batches[i] = fmt.Sprintf("%s/%06d", spec.Name, i)
		}
		sources[spec.Name] = batches
	}
	return sources
}
