package mux

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// roundRobinIterator cycles through the iteration order one source per step,
// skipping sources that have finished.
type roundRobinIterator struct {
	iters    map[string]SourceIterator
	order    []string
	cycleLen int // distinct keys in order
	pos      int // cyclic index into order; -1 before the first step
	current  string
	finished []string
	mode     StoppingMode
	done     bool
}

func newRoundRobinIterator(sources map[string]Source, strategy RoundRobin) (*roundRobinIterator, error) {
	mode := strategy.StoppingMode
	if mode == "" {
		mode = AllExhausted
	}
	if mode == WrapUntilKilled {
		return nil, fmt.Errorf("stopping mode %q is not implemented for round-robin", WrapUntilKilled)
	}
	order := strategy.IterationOrder
	if len(order) == 0 {
		order = sortedKeys(sources)
	} else if err := validateOrder(order, sources); err != nil {
		return nil, err
	}
	iters := make(map[string]SourceIterator, len(sources))
	for name, src := range sources {
		iters[name] = src.Iterator()
	}
	distinct := make(map[string]bool, len(order))
	for _, name := range order {
		distinct[name] = true
	}
	return &roundRobinIterator{
		iters:    iters,
		order:    order,
		cycleLen: len(distinct),
		pos:      -1,
		current:  order[0],
		mode:     mode,
	}, nil
}

func (it *roundRobinIterator) Next() (Record, bool) {
	// Each pass either returns a batch or marks one more source finished,
	// so cycleLen+1 passes bound the whole call.
	for attempt := 0; attempt <= it.cycleLen; attempt++ {
		if it.done || len(it.finished) == it.cycleLen {
			it.done = true
			return nil, false
		}
		it.advance()
		batch, ok := it.iters[it.current].Next()
		if ok {
			return Record{it.current: batch}, true
		}
		if it.mode == SmallestExhausted {
			it.done = true
			return nil, false
		}
		if !slices.Contains(it.finished, it.current) {
			it.finished = append(it.finished, it.current)
		}
	}
	it.done = true
	return nil, false
}

// advance moves the cyclic cursor to the next order entry whose source has
// not finished. At least one such entry exists when this is called, so a
// single cycle over the order always suffices.
func (it *roundRobinIterator) advance() {
	for i := 0; i < len(it.order); i++ {
		it.pos = (it.pos + 1) % len(it.order)
		if !slices.Contains(it.finished, it.order[it.pos]) {
			break
		}
	}
	it.current = it.order[it.pos]
}

func (it *roundRobinIterator) Snapshot() Snapshot {
	return Snapshot{
		"finished": slices.Clone(it.finished),
		"current":  it.current,
	}
}

// Restore replays the cyclic cursor forward until it lands on the saved
// current key. Per-source read positions are not restored. A snapshot whose
// current key is not in the configured order is skipped entirely.
func (it *roundRobinIterator) Restore(snapshot Snapshot) {
	if len(snapshot) == 0 {
		return
	}
	finished, okFinished := snapshotStringSlice(snapshot, "finished")
	current, okCurrent := snapshotString(snapshot, "current")
	if !okFinished || !okCurrent {
		logrus.Warnf("Malformed round-robin snapshot %v, skipping restore", snapshot)
		return
	}
	if !slices.Contains(it.order, current) {
		logrus.Warnf("Did not find %q in iteration order %v, skipping restore", current, it.order)
		return
	}
	it.finished = nil
	for _, name := range finished {
		if slices.Contains(it.order, name) {
			it.finished = append(it.finished, name)
		} else {
			logrus.Warnf("Dropping unknown source %q from restored finished list", name)
		}
	}
	logrus.Infof("Restoring round-robin iterator: finished=%v current=%q", it.finished, current)
	for i := 0; i < len(it.order); i++ {
		it.pos = (it.pos + 1) % len(it.order)
		if it.order[it.pos] == current {
			break
		}
	}
	it.current = it.order[it.pos]
}
