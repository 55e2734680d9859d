package mux

import (
	"slices"

	"github.com/sirupsen/logrus"
)

// inOrderIterator drains one source completely before moving to the next
// position in the iteration order. The order may repeat keys; each position
// is a fresh pass over its source.
type inOrderIterator struct {
	sources map[string]Source
	order   []string
	cur     SourceIterator
	curIdx  int // position in order the cur iterator belongs to
	current string
	// finishedCount is the number of order positions fully drained. After a
	// restore it runs ahead of curIdx, which signals Next to lazily rebuild
	// the source iterator for the restored position.
	finishedCount int
}

func newInOrderIterator(sources map[string]Source, strategy InOrder) (*inOrderIterator, error) {
	order := strategy.IterationOrder
	if len(order) == 0 {
		order = sortedKeys(sources)
	} else if err := validateOrder(order, sources); err != nil {
		return nil, err
	}
	return &inOrderIterator{
		sources: sources,
		order:   order,
		cur:     sources[order[0]].Iterator(),
		current: order[0],
	}, nil
}

func (it *inOrderIterator) Next() (Record, bool) {
	if it.finishedCount == len(it.order) {
		return nil, false
	}
	if it.finishedCount != it.curIdx {
		// Restored from a snapshot: the source iterator for the saved
		// position was deliberately not rebuilt at restore time.
		it.curIdx = it.finishedCount
		it.current = it.order[it.curIdx]
		it.cur = it.sources[it.current].Iterator()
		logrus.Infof("Initializing source %q after snapshot restore", it.current)
	}
	// One draw attempt per remaining order position.
	for it.finishedCount < len(it.order) {
		batch, ok := it.cur.Next()
		if ok {
			return Record{it.current: batch}, true
		}
		it.finishedCount++
		if it.finishedCount == len(it.order) {
			return nil, false
		}
		it.curIdx = it.finishedCount
		it.current = it.order[it.curIdx]
		it.cur = it.sources[it.current].Iterator()
	}
	return nil, false
}

func (it *inOrderIterator) Snapshot() Snapshot {
	return Snapshot{
		"finished": it.finishedCount,
		"current":  it.current,
	}
}

// Restore validates the snapshot against the configured order and advances
// the finished count only; rebuilding the source iterator is deferred to the
// first Next call so restores stay cheap.
func (it *inOrderIterator) Restore(snapshot Snapshot) {
	if len(snapshot) == 0 {
		return
	}
	finished, okFinished := snapshotInt(snapshot, "finished")
	current, okCurrent := snapshotString(snapshot, "current")
	if !okFinished || !okCurrent {
		logrus.Warnf("Malformed in-order snapshot %v, skipping restore", snapshot)
		return
	}
	if !slices.Contains(it.order, current) || finished < 0 || finished > len(it.order) {
		logrus.Warnf("Snapshot does not match iteration order %v (current=%q finished=%d), skipping restore",
			it.order, current, finished)
		return
	}
	logrus.Infof("Restoring in-order iterator: finished=%d current=%q", finished, current)
	it.finishedCount = finished
}
