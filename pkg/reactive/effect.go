package reactive

import (
	"sync"
	"sync/atomic"
)

// Effect is a side effect that re-runs when a signal it read changes.
// Runs are not immediate on change: MarkDirty schedules the effect on
// its owner, and the session drains pending effects after the event
// handler and render finish.
type Effect struct {
	id uint64
	fn func() Cleanup

	// cleanup from the previous run, called before the next one.
	cleanup Cleanup

	sources   []*signalBase
	sourcesMu sync.Mutex

	owner    *Owner
	pending  atomic.Bool
	disposed atomic.Bool
}

// NewEffect creates the effect under the current owner and runs it
// once immediately to establish its dependencies.
func NewEffect(fn func() Cleanup) *Effect {
	e := &Effect{
		id:    nextID(),
		fn:    fn,
		owner: getCurrentOwner(),
	}

	if e.owner != nil {
		e.owner.registerEffect(e)
	}

	e.run()
	return e
}

// MarkDirty schedules a re-run on the owning scope.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}
	if e.pending.CompareAndSwap(false, true) {
		if e.owner != nil {
			e.owner.scheduleEffect(e)
		}
	}
}

// ID implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}

	e.pending.Store(false)

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	// Resubscribe from scratch so dependencies dropped by branching
	// stop triggering the effect.
	e.sourcesMu.Lock()
	for _, src := range e.sources {
		src.unsubscribe(e)
	}
	e.sources = e.sources[:0]
	e.sourcesMu.Unlock()

	old := setCurrentListener(e)
	e.cleanup = e.fn()
	setCurrentListener(old)
}

func (e *Effect) addSource(src *signalBase) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	for _, s := range e.sources {
		if s == src {
			return
		}
	}
	e.sources = append(e.sources, src)
}

func (e *Effect) dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.sourcesMu.Lock()
	for _, src := range e.sources {
		src.unsubscribe(e)
	}
	e.sources = nil
	e.sourcesMu.Unlock()
}

var _ sourceTracker = (*Effect)(nil)

// OnCleanup registers fn to run when the current owner is disposed.
// Outside an owner scope it is a no-op.
func OnCleanup(fn func()) {
	if owner := getCurrentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}
