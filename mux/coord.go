package mux

// Coordinator is the cross-worker agreement capability used by the weighted
// sampler. BroadcastInt is a collective: every worker in the group must call
// it for the same step, and each call returns the value supplied by the root
// rank. A hung peer blocks all others; supervision of stuck workers is the
// caller's concern.
type Coordinator interface {
	// Initialized reports whether the coordination backend is usable. When
	// false, callers fall back to local-only decisions.
	Initialized() bool
	// Rank is this worker's rank within the coordination group.
	Rank() int
	// BroadcastInt returns root's value on every rank. On the root rank the
	// input value is returned unchanged.
	BroadcastInt(value, root int) int
}

// NoopCoordinator reports itself uninitialized, disabling coordination.
type NoopCoordinator struct{}

func (NoopCoordinator) Initialized() bool            { return false }
func (NoopCoordinator) Rank() int                    { return 0 }
func (NoopCoordinator) BroadcastInt(v, root int) int { return v }

// LocalGroup is an in-process Coordinator backend: a fixed set of workers,
// one per goroutine, exchanging broadcasts over unbuffered channels. Each
// broadcast is a rendezvous, mirroring the blocking semantics of a real
// collective.
type LocalGroup struct {
	workers []*LocalWorker
}

// NewLocalGroup creates a group of size workers with ranks 0..size-1.
func NewLocalGroup(size int) *LocalGroup {
	g := &LocalGroup{workers: make([]*LocalWorker, size)}
	for rank := range g.workers {
		g.workers[rank] = &LocalWorker{rank: rank, group: g, inbox: make(chan int)}
	}
	return g
}

// Worker returns the Coordinator handle for the given rank.
func (g *LocalGroup) Worker(rank int) *LocalWorker { return g.workers[rank] }

// LocalWorker is one member of a LocalGroup.
type LocalWorker struct {
	rank  int
	group *LocalGroup
	inbox chan int
}

func (w *LocalWorker) Initialized() bool { return true }

func (w *LocalWorker) Rank() int { return w.rank }

// BroadcastInt blocks until every worker in the group has reached the call.
func (w *LocalWorker) BroadcastInt(value, root int) int {
	if w.rank == root {
		for _, peer := range w.group.workers {
			if peer.rank != root {
				peer.inbox <- value
			}
		}
		return value
	}
	return <-w.inbox
}
