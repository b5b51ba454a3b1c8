package reactive

import "sync/atomic"

// Listener is anything that reacts to a dependency change.
// Components, memos, and effects implement it.
type Listener interface {
	// MarkDirty notifies the listener that a dependency changed.
	// Components schedule a re-render, memos invalidate their cache,
	// effects schedule a re-run.
	MarkDirty()

	// ID returns a unique identifier, used to deduplicate
	// notifications within a batch.
	ID() uint64
}

// Cleanup is returned by an effect to release whatever the run acquired.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

var idCounter atomic.Uint64

// NextID hands out process-unique IDs. Listener implementations outside
// this package use it too, so notification dedup never confuses two
// listeners.
func NextID() uint64 {
	return idCounter.Add(1)
}

func nextID() uint64 {
	return NextID()
}
