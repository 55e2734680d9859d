package mux

// Batch is one item drawn from a source. The multiplexer never inspects
// batch contents; it only moves them.
type Batch = any

// SourceIterator is a single pass over a source. Next returns the next
// batch, or ok=false once the pass is exhausted. Exhausted iterators must
// keep returning ok=false.
type SourceIterator interface {
	Next() (Batch, bool)
}

// Source is a named, re-iterable sequence of batches. Iterator starts a
// fresh pass from the beginning; the multiplexer calls it once per source
// at construction and again whenever a stopping mode restarts a source.
type Source interface {
	Iterator() SourceIterator
}

// SliceSource is an in-memory Source over a fixed batch slice.
type SliceSource []Batch

// Iterator returns a fresh pass over the slice.
func (s SliceSource) Iterator() SourceIterator {
	return &sliceIterator{batches: s}
}

type sliceIterator struct {
	batches []Batch
	pos     int
}

func (it *sliceIterator) Next() (Batch, bool) {
	if it.pos >= len(it.batches) {
		return nil, false
	}
	b := it.batches[it.pos]
	it.pos++
	return b, true
}

// SourceFunc adapts a factory function to the Source interface.
type SourceFunc func() SourceIterator

// Iterator invokes the factory.
func (f SourceFunc) Iterator() SourceIterator { return f() }
