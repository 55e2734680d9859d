package mux

import "fmt"

// allBatchesIterator draws one batch from every still-active source per step
// and returns them together, in stable sorted-key order.
type allBatchesIterator struct {
	sources   map[string]Source
	iters     map[string]SourceIterator
	names     []string
	finished  map[string]bool // no longer drawn from
	restarted map[string]bool // restarted once; next exhaustion is permanent
	mode      StoppingMode
	done      bool
}

func newAllBatchesIterator(sources map[string]Source, strategy AllSourcesBatches) (*allBatchesIterator, error) {
	mode := strategy.StoppingMode
	if mode == "" {
		mode = AllExhausted
	}
	if mode == WrapUntilKilled {
		return nil, fmt.Errorf("stopping mode %q is not implemented for all-sources-batches", WrapUntilKilled)
	}
	iters := make(map[string]SourceIterator, len(sources))
	for name, src := range sources {
		iters[name] = src.Iterator()
	}
	return &allBatchesIterator{
		sources:   sources,
		iters:     iters,
		names:     sortedKeys(sources),
		finished:  make(map[string]bool),
		restarted: make(map[string]bool),
		mode:      mode,
	}, nil
}

func (it *allBatchesIterator) Next() (Record, bool) {
	if it.done {
		return nil, false
	}
	record := make(Record)
	for _, name := range it.names {
		if it.finished[name] {
			continue
		}
		batch, ok := it.iters[name].Next()
		if ok {
			record[name] = batch
			continue
		}
		switch it.mode {
		case SmallestExhausted:
			it.done = true
			return nil, false
		case RestartUntilAllExhausted:
			if it.restarted[name] {
				// Second exhaustion is permanent.
				it.finished[name] = true
				continue
			}
			it.restarted[name] = true
			it.iters[name] = it.sources[name].Iterator()
			if batch, ok := it.iters[name].Next(); ok {
				record[name] = batch
			} else {
				// Empty even after restart.
				it.finished[name] = true
			}
		default: // AllExhausted
			it.finished[name] = true
		}
	}
	if len(record) == 0 {
		it.done = true
		return nil, false
	}
	return record, true
}

// Snapshot support is not implemented for this strategy; resumption restarts
// the stream from scratch.
func (it *allBatchesIterator) Snapshot() Snapshot { return Snapshot{} }

func (it *allBatchesIterator) Restore(Snapshot) {}
