package reactive

import (
	"reflect"
	"sync"
)

// signalBase carries the type-erased subscriber list shared by
// Signal[T] and Memo[T].
type signalBase struct {
	id uint64

	subs  []Listener
	subMu sync.RWMutex
}

// subscribe adds a listener, deduplicating by listener ID.
func (b *signalBase) subscribe(l Listener) {
	if l == nil {
		return
	}

	b.subMu.Lock()
	defer b.subMu.Unlock()

	lid := l.ID()
	for _, existing := range b.subs {
		if existing.ID() == lid {
			return
		}
	}
	b.subs = append(b.subs, l)
}

func (b *signalBase) unsubscribe(l Listener) {
	if l == nil {
		return
	}

	b.subMu.Lock()
	defer b.subMu.Unlock()

	lid := l.ID()
	for i, existing := range b.subs {
		if existing.ID() == lid {
			b.subs[i] = b.subs[len(b.subs)-1]
			b.subs = b.subs[:len(b.subs)-1]
			return
		}
	}
}

// notify marks every subscriber dirty. Subscribers are copied out first
// so no lock is held during notification; inside a batch the
// notifications are queued and deduplicated at batch end.
func (b *signalBase) notify() {
	b.subMu.RLock()
	subs := make([]Listener, len(b.subs))
	copy(subs, b.subs)
	b.subMu.RUnlock()

	if batchDepth() > 0 {
		for _, sub := range subs {
			queuePending(sub)
		}
		return
	}
	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// Signal is a reactive value container. Get during a tracked scope
// subscribes the current listener; Set notifies subscribers when the
// value actually changed.
type Signal[T any] struct {
	base  signalBase
	value T
	mu    sync.RWMutex

	// equal overrides change detection; nil means equalValues.
	equal func(T, T) bool
}

// NewSignal creates a signal holding initial.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		base:  signalBase{id: nextID()},
		value: initial,
	}
}

// Get returns the current value and subscribes the current listener.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	// Dependency tracking happens after the value lock is released.
	if listener := getCurrentListener(); listener != nil {
		s.base.subscribe(listener)
		if tr, ok := listener.(sourceTracker); ok {
			tr.addSource(&s.base)
		}
	}

	return value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores value and notifies subscribers if it differs from the
// current value under the signal's equality function.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.base.notify()
	}
}

// Update atomically derives the new value from the current one.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	next := fn(s.value)
	changed := !s.equals(s.value, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		s.base.notify()
	}
}

// WithEquals configures a custom equality function and returns the
// signal for chaining. Useful where reflect.DeepEqual is wrong or too
// expensive.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID implements part of the subscription bookkeeping.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return equalValues(a, b)
}

// equalValues compares with == for the common comparable kinds and
// falls back to reflect.DeepEqual for composite types.
func equalValues[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// sourceTracker lets effects and memos record the signals they read so
// they can unsubscribe before the next run. Signal cannot type-assert
// on the generic Memo directly, hence the interface.
type sourceTracker interface {
	Listener
	addSource(*signalBase)
}
