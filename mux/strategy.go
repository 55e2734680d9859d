package mux

import (
	"fmt"
	"sort"
)

// StoppingMode decides when a combined stream ends and what happens when an
// individual source runs out of batches mid-stream.
type StoppingMode string

const (
	// AllExhausted keeps going until every source is exhausted, skipping
	// finished sources.
	AllExhausted StoppingMode = "all-exhausted"
	// SmallestExhausted ends the whole stream the first time any source is
	// exhausted.
	SmallestExhausted StoppingMode = "smallest-exhausted"
	// RestartUntilAllExhausted restarts a source once when it runs out; its
	// second exhaustion is permanent. The stream ends when every source has
	// finished permanently.
	RestartUntilAllExhausted StoppingMode = "restart-until-all-exhausted"
	// WrapUntilKilled restarts sources forever; the stream never ends on its
	// own. Only the weighted sampler supports it.
	WrapUntilKilled StoppingMode = "wrap-until-killed"
)

// ValidStoppingModes is the set of recognized stopping mode names.
// Empty string means "use the strategy default" (AllExhausted).
var ValidStoppingModes = map[StoppingMode]bool{
	"":                       true,
	AllExhausted:             true,
	SmallestExhausted:        true,
	RestartUntilAllExhausted: true,
	WrapUntilKilled:          true,
}

// Strategy selects a combination policy and carries its parameters.
// The set of implementations is closed: RoundRobin, AllSourcesBatches,
// WeightedSampler and InOrder.
type Strategy interface {
	strategyKind() string
}

// RoundRobin cycles through sources one at a time, skipping finished ones.
// IterationOrder overrides the default sorted-key cycle and may repeat keys.
// Supports AllExhausted (default) and SmallestExhausted.
type RoundRobin struct {
	StoppingMode   StoppingMode
	IterationOrder []string
}

func (RoundRobin) strategyKind() string { return "round-robin" }

// AllSourcesBatches draws one batch from every still-active source per step.
// Supports AllExhausted (default), SmallestExhausted and
// RestartUntilAllExhausted.
type AllSourcesBatches struct {
	StoppingMode StoppingMode
}

func (AllSourcesBatches) strategyKind() string { return "all-sources-batches" }

// WeightedSampler randomly picks one source per step, optionally weighted.
// With EnforceSameSource set and an initialized Coordinator supplied, rank
// 0's pick is broadcast so every worker advances the same source each step;
// the broadcast blocks until all workers in the group reach it.
type WeightedSampler struct {
	Weights           map[string]float64 // nil = uniform over eligible sources
	StoppingMode      StoppingMode
	EnforceSameSource bool
	Seed              int64
	Coordinator       Coordinator // optional; nil disables coordination
}

func (WeightedSampler) strategyKind() string { return "weighted-sampler" }

// InOrder fully drains one source before moving to the next. IterationOrder
// overrides the default sorted-key order and may repeat keys.
type InOrder struct {
	IterationOrder []string
}

func (InOrder) strategyKind() string { return "in-order" }

// sortedKeys returns the source names in deterministic order. All iterators
// derive their default ordering from this, never from map iteration.
func sortedKeys(sources map[string]Source) []string {
	keys := make([]string, 0, len(sources))
	for name := range sources {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

// validateOrder checks that every key in a supplied iteration order refers
// to a configured source.
func validateOrder(order []string, sources map[string]Source) error {
	for _, name := range order {
		if _, ok := sources[name]; !ok {
			return fmt.Errorf("iteration order references unknown source %q", name)
		}
	}
	return nil
}
