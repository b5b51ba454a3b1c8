package reactive

import (
	"sync"
	"sync/atomic"
)

// Owner is the lifetime scope for reactive primitives. Each mounted
// component instance gets one; disposing it tears down child owners,
// effects, and cleanup functions, which is what prevents detached
// components from reacting forever.
//
// Owners form a tree mirroring the component tree: the session owns
// the root, components own their children.
type Owner struct {
	id     uint64
	parent *Owner

	children   []*Owner
	childrenMu sync.Mutex

	effects   []*Effect
	effectsMu sync.Mutex

	cleanups   []func()
	cleanupsMu sync.Mutex

	// pendingEffects are scheduled by MarkDirty and drained by
	// RunPendingEffects after the render phase.
	pendingEffects   []*Effect
	pendingEffectsMu sync.Mutex

	// values backs SetValue/Value lookups, walking up the tree.
	values   map[any]any
	valuesMu sync.RWMutex

	disposed atomic.Bool
}

// NewOwner creates an owner under parent; nil parent makes a root.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}
	if parent != nil {
		parent.addChild(o)
	}
	return o
}

// ID returns the owner's unique identifier.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent owner, nil at the root.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether Dispose has run.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()

	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

func (o *Owner) registerEffect(e *Effect) {
	if o.disposed.Load() {
		return
	}
	o.effectsMu.Lock()
	defer o.effectsMu.Unlock()
	o.effects = append(o.effects, e)
}

// OnCleanup registers fn to run on Dispose. If the owner is already
// disposed, fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		fn()
		return
	}
	o.cleanupsMu.Lock()
	defer o.cleanupsMu.Unlock()
	o.cleanups = append(o.cleanups, fn)
}

func (o *Owner) scheduleEffect(e *Effect) {
	if o.disposed.Load() {
		return
	}
	o.pendingEffectsMu.Lock()
	defer o.pendingEffectsMu.Unlock()
	o.pendingEffects = append(o.pendingEffects, e)
}

// RunPendingEffects drains scheduled effects on this owner and its
// children. The session calls this after each handled event, once the
// dirty components have re-rendered.
func (o *Owner) RunPendingEffects() {
	if o.disposed.Load() {
		return
	}

	o.pendingEffectsMu.Lock()
	effects := o.pendingEffects
	o.pendingEffects = nil
	o.pendingEffectsMu.Unlock()

	for _, e := range effects {
		if e.pending.Load() {
			e.run()
		}
	}

	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.childrenMu.Unlock()

	for _, child := range children {
		child.RunPendingEffects()
	}
}

// HasPendingEffects reports whether this owner or any child has a
// scheduled effect.
func (o *Owner) HasPendingEffects() bool {
	if o.disposed.Load() {
		return false
	}

	o.pendingEffectsMu.Lock()
	pending := len(o.pendingEffects) > 0
	o.pendingEffectsMu.Unlock()
	if pending {
		return true
	}

	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.childrenMu.Unlock()

	for _, child := range children {
		if child.HasPendingEffects() {
			return true
		}
	}
	return false
}

// SetValue stores a scope value visible to this owner and descendants.
func (o *Owner) SetValue(key, value any) {
	o.valuesMu.Lock()
	defer o.valuesMu.Unlock()
	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// Value looks key up on this owner, then up the parent chain.
func (o *Owner) Value(key any) any {
	o.valuesMu.RLock()
	if o.values != nil {
		if v, ok := o.values[key]; ok {
			o.valuesMu.RUnlock()
			return v
		}
	}
	o.valuesMu.RUnlock()

	if o.parent != nil {
		return o.parent.Value(key)
	}
	return nil
}

// Dispose tears down the owner: children first in reverse creation
// order, then effects, then cleanups in reverse order. Idempotent.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.children = nil
	o.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	o.effectsMu.Lock()
	effects := o.effects
	o.effects = nil
	o.effectsMu.Unlock()

	for _, e := range effects {
		e.dispose()
	}

	o.cleanupsMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	o.pendingEffectsMu.Lock()
	o.pendingEffects = nil
	o.pendingEffectsMu.Unlock()
}
