// Package mux combines several named data sources into one logical stream
// of batches, for training loops that draw from more than one dataset.
//
// # Reading Guide
//
// Start with these three files:
//   - source.go: the Source / SourceIterator contract and SliceSource
//   - strategy.go: the closed set of iteration strategies and stopping modes
//   - iterator.go: Record, Snapshot, MultiIterator and the registry function
//
// One file per strategy implementation: roundrobin.go, allbatches.go,
// weighted.go, inorder.go.
//
// # Usage
//
//	sources := map[string]mux.Source{
//		"web":   mux.SliceSource{...},
//		"books": mux.SliceSource{...},
//	}
//	it, err := mux.NewMultiIterator(sources, mux.RoundRobin{})
//	...
//	for rec, ok := it.Next(); ok; rec, ok = it.Next() {
//		// rec maps source name(s) to the drawn batch
//	}
//
// On interruption, persist it.Snapshot() alongside the rest of the training
// checkpoint; on resume, rebuild the sources and the iterator, then call
// Restore with the saved snapshot. Restores are best-effort: a snapshot that
// no longer matches the configured sources is logged and skipped.
//
// # Cross-worker coordination
//
// The weighted sampler can keep synchronized distributed workers on the
// same source each step: set EnforceSameSource and supply a Coordinator
// (coord.go). The broadcast is collective and blocking; every worker must
// drive its iterator in lockstep or the group deadlocks.
package mux
