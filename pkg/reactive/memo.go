package reactive

import (
	"sync"
	"sync/atomic"
)

// Memo is a cached derivation over other signals and memos. It is
// lazy: the compute function runs on the first Get and again after a
// dependency invalidated the cache. Memos are themselves subscribable,
// so derived values chain.
type Memo[T any] struct {
	base    signalBase
	compute func() T

	value   T
	valueMu sync.RWMutex

	// valid is false when a dependency changed since the last compute.
	valid atomic.Bool

	sources   []*signalBase
	sourcesMu sync.Mutex

	equal func(T, T) bool

	// computing breaks recursion on circular dependencies.
	computing atomic.Bool
}

// NewMemo creates a memo over compute. Nothing runs until the first Get.
func NewMemo[T any](compute func() T) *Memo[T] {
	return &Memo[T]{
		base:    signalBase{id: nextID()},
		compute: compute,
	}
}

// Get returns the memo value, recomputing if a dependency changed, and
// subscribes the current listener.
func (m *Memo[T]) Get() T {
	if listener := getCurrentListener(); listener != nil {
		m.base.subscribe(listener)
		if tr, ok := listener.(sourceTracker); ok {
			tr.addSource(&m.base)
		}
	}

	if !m.valid.Load() {
		m.recompute()
	}

	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()
	return value
}

// Peek returns the (recomputed if stale) value without subscribing.
func (m *Memo[T]) Peek() T {
	if !m.valid.Load() {
		m.recompute()
	}
	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()
	return value
}

// MarkDirty invalidates the cache and propagates to subscribers.
func (m *Memo[T]) MarkDirty() {
	if m.valid.CompareAndSwap(true, false) {
		m.base.notify()
	}
}

// ID implements Listener.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

func (m *Memo[T]) addSource(src *signalBase) {
	m.sourcesMu.Lock()
	defer m.sourcesMu.Unlock()

	for _, s := range m.sources {
		if s == src {
			return
		}
	}
	m.sources = append(m.sources, src)
}

// WithEquals configures a custom equality function for change
// detection, returning the memo for chaining.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.equal = fn
	return m
}

func (m *Memo[T]) recompute() {
	if m.computing.Swap(true) {
		// Circular dependency; keep the stale value.
		return
	}
	defer m.computing.Store(false)

	m.sourcesMu.Lock()
	for _, src := range m.sources {
		src.unsubscribe(m)
	}
	m.sources = m.sources[:0]
	m.sourcesMu.Unlock()

	old := setCurrentListener(m)
	next := m.compute()
	setCurrentListener(old)

	m.valueMu.Lock()
	m.value = next
	m.valueMu.Unlock()

	m.valid.Store(true)
}

var _ sourceTracker = (*Memo[int])(nil)
