package mux

import "fmt"

// Record is one step's output: the batch drawn from each selected source,
// keyed by source name. Round-robin, weighted and in-order records hold
// exactly one entry; all-sources-batches records hold one entry per
// still-active source.
type Record map[string]Batch

// Snapshot is the minimal resumable state of a MultiIterator: a flat map of
// primitive values (plus string slices) that survives a YAML round trip.
// It deliberately excludes per-source read positions.
type Snapshot map[string]any

// MultiIterator combines several named sources into one lazy stream.
//
// Next returns the next record, or ok=false once the stream has ended per
// the strategy's stopping mode. Snapshot captures resumable cursor state
// (may be empty for strategies without checkpoint support). Restore is
// best-effort: a snapshot that does not match the configured sources is
// logged and ignored, leaving the iterator in its freshly-constructed state.
//
// A MultiIterator is not safe for concurrent use; drive it from one
// goroutine.
type MultiIterator interface {
	Next() (Record, bool)
	Snapshot() Snapshot
	Restore(Snapshot)
}

// NewMultiIterator builds the iterator implementing the given strategy over
// the named sources. It is the registry: each strategy variant maps to
// exactly one implementation. Configuration problems (unsupported stopping
// mode, invalid weights or iteration order, no sources, unknown strategy)
// fail here, before any batch is drawn.
func NewMultiIterator(sources map[string]Source, strategy Strategy) (MultiIterator, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	switch s := strategy.(type) {
	case RoundRobin:
		return newRoundRobinIterator(sources, s)
	case AllSourcesBatches:
		return newAllBatchesIterator(sources, s)
	case WeightedSampler:
		return newWeightedIterator(sources, s)
	case InOrder:
		return newInOrderIterator(sources, s)
	default:
		return nil, fmt.Errorf("no iterator implementation for strategy %T", strategy)
	}
}
