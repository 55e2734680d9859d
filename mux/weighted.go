package mux

import (
	"fmt"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// weightedIterator randomly selects one source per step, weighted by the
// configured weights (uniform when none are given). Selection is restricted
// to non-exhausted sources; under WrapUntilKilled sources are never marked
// exhausted by a failed draw, they are restarted instead, so everything
// stays eligible forever.
type weightedIterator struct {
	sources   map[string]Source
	iters     map[string]SourceIterator
	names     []string  // sorted; broadcast indices refer to this slice
	weights   []float64 // aligned with names; nil = uniform
	exhausted []bool    // under RestartUntilAllExhausted: permanently finished
	restarted map[string]bool
	mode      StoppingMode
	enforce   bool
	coord     Coordinator
	rng       exprand.Source
}

func newWeightedIterator(sources map[string]Source, strategy WeightedSampler) (*weightedIterator, error) {
	mode := strategy.StoppingMode
	if mode == "" {
		mode = AllExhausted
	}
	names := sortedKeys(sources)
	var weights []float64
	if strategy.Weights != nil {
		weights = make([]float64, len(names))
		for i, name := range names {
			w, ok := strategy.Weights[name]
			if !ok {
				return nil, fmt.Errorf("no weight configured for source %q", name)
			}
			if w <= 0 {
				return nil, fmt.Errorf("weight for source %q must be positive, got %f", name, w)
			}
			weights[i] = w
		}
	}
	iters := make(map[string]SourceIterator, len(sources))
	for name, src := range sources {
		iters[name] = src.Iterator()
	}
	return &weightedIterator{
		sources:   sources,
		iters:     iters,
		names:     names,
		weights:   weights,
		exhausted: make([]bool, len(names)),
		restarted: make(map[string]bool),
		mode:      mode,
		enforce:   strategy.EnforceSameSource,
		coord:     strategy.Coordinator,
		rng:       exprand.NewSource(uint64(strategy.Seed)),
	}, nil
}

func (it *weightedIterator) ended() bool {
	switch it.mode {
	case SmallestExhausted:
		for _, e := range it.exhausted {
			if e {
				return true
			}
		}
		return false
	default:
		// AllExhausted, RestartUntilAllExhausted, and the all-empty-sources
		// guard under WrapUntilKilled.
		for _, e := range it.exhausted {
			if !e {
				return false
			}
		}
		return true
	}
}

func (it *weightedIterator) Next() (Record, bool) {
	// Every failed draw either exhausts or restarts a source, so two marks
	// per source bound the reselection loop.
	for attempt := 0; attempt <= 2*len(it.names); attempt++ {
		if it.ended() {
			return nil, false
		}
		selected := it.names[it.sample()]
		batch, ok := it.iters[selected].Next()
		if ok {
			return Record{selected: batch}, true
		}
		idx := it.indexOf(selected)
		switch it.mode {
		case RestartUntilAllExhausted:
			if it.restarted[selected] {
				it.exhausted[idx] = true
				continue
			}
			it.restarted[selected] = true
			it.iters[selected] = it.sources[selected].Iterator()
			if batch, ok := it.iters[selected].Next(); ok {
				return Record{selected: batch}, true
			}
			it.exhausted[idx] = true
		case WrapUntilKilled:
			it.iters[selected] = it.sources[selected].Iterator()
			if batch, ok := it.iters[selected].Next(); ok {
				return Record{selected: batch}, true
			}
			// Still empty after a wrap-around restart: drop it so an
			// all-empty source set cannot spin the selection loop forever.
			it.exhausted[idx] = true
		default:
			it.exhausted[idx] = true
		}
	}
	return nil, false
}

// sample picks a source index, weighted over the currently eligible sources,
// then runs it through the coordination broadcast when enabled so every
// worker advances the same source this step.
func (it *weightedIterator) sample() int {
	eligible := make([]int, 0, len(it.names))
	weights := make([]float64, 0, len(it.names))
	for i := range it.names {
		// Under WrapUntilKilled the exhausted flag is only ever set for
		// sources that stayed empty after a restart, so this filter keeps
		// every real source eligible forever in that mode.
		if it.exhausted[i] {
			continue
		}
		eligible = append(eligible, i)
		if it.weights != nil {
			weights = append(weights, it.weights[i])
		} else {
			weights = append(weights, 1)
		}
	}
	dist := distuv.NewCategorical(weights, it.rng)
	idx := eligible[int(dist.Rand())]
	if it.enforce && it.coord != nil && it.coord.Initialized() {
		idx = it.coord.BroadcastInt(idx, 0)
	}
	return idx
}

func (it *weightedIterator) indexOf(name string) int {
	for i, n := range it.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Snapshot support is not implemented for this strategy; resumption restarts
// sampling from scratch.
func (it *weightedIterator) Snapshot() Snapshot { return Snapshot{} }

func (it *weightedIterator) Restore(Snapshot) {}
