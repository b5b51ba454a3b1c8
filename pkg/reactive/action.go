package reactive

import (
	"context"
	"sync"
	"sync/atomic"
)

// State is the lifecycle of an Action's current attempt.
type State int

const (
	// StateIdle is the state before any Run and after Reset.
	StateIdle State = iota

	// StateRunning means the work function is in flight.
	StateRunning

	// StateSuccess means the last attempt completed without error.
	StateSuccess

	// StateError means the last attempt failed.
	StateError
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Policy decides what Run does while an attempt is already in flight.
type Policy int

const (
	// PolicyRestart cancels the in-flight attempt and starts the new
	// one. The default.
	PolicyRestart Policy = iota

	// PolicyDrop ignores Run while an attempt is running.
	PolicyDrop
)

// Action wraps one asynchronous operation with reactive state. The
// work function runs off the event loop; every state transition is
// applied back on the loop through Ctx.Dispatch, so reading State or
// Err during render subscribes the component as usual.
//
// A sequence counter drops completions from superseded attempts, but a
// completion that is still current always applies: nothing re-checks
// external conditions at completion time.
type Action[A any, R any] struct {
	do func(ctx context.Context, arg A) (R, error)

	state  *Signal[State]
	result *Signal[R]
	err    *Signal[error]

	rt     Ctx
	policy Policy

	onSuccess func(R)
	onError   func(error)

	mu      sync.Mutex
	cancel  context.CancelFunc
	liveSeq uint64

	seq atomic.Uint64
}

// NewAction creates an action over do. It must be called where UseCtx
// resolves (component construction, render, effect, or event handler);
// completions dispatch through that context's event loop.
func NewAction[A any, R any](do func(ctx context.Context, arg A) (R, error)) *Action[A, R] {
	rt := UseCtx()
	if rt == nil {
		panic("reactive: NewAction outside a runtime scope")
	}
	return &Action[A, R]{
		do:     do,
		state:  NewSignal(StateIdle),
		result: NewSignal(*new(R)),
		err:    NewSignal[error](nil),
		rt:     rt,
	}
}

// WithPolicy sets the concurrency policy, returning the action for
// chaining.
func (a *Action[A, R]) WithPolicy(p Policy) *Action[A, R] {
	a.policy = p
	return a
}

// OnSuccess registers a callback run on the event loop after a
// successful completion, before subscribers re-render.
func (a *Action[A, R]) OnSuccess(fn func(R)) *Action[A, R] {
	a.onSuccess = fn
	return a
}

// OnError registers a callback run on the event loop after a failed
// completion.
func (a *Action[A, R]) OnError(fn func(error)) *Action[A, R] {
	a.onError = fn
	return a
}

// Run starts an attempt with arg. It reports whether the attempt was
// accepted: under PolicyDrop a Run during StateRunning returns false.
func (a *Action[A, R]) Run(arg A) bool {
	switch a.policy {
	case PolicyDrop:
		if a.state.Peek() == StateRunning {
			return false
		}
	default:
		a.mu.Lock()
		if a.cancel != nil {
			a.cancel()
		}
		a.mu.Unlock()
	}
	a.start(arg)
	return true
}

func (a *Action[A, R]) start(arg A) {
	seq := a.seq.Add(1)

	stdCtx := a.rt.StdContext()
	if stdCtx == nil {
		stdCtx = context.Background()
	}
	workCtx, cancel := context.WithCancel(stdCtx)

	a.mu.Lock()
	a.cancel = cancel
	a.liveSeq = seq
	a.mu.Unlock()

	a.rt.Dispatch(func() {
		Batch(func() {
			a.state.Set(StateRunning)
			a.err.Set(nil)
		})
	})

	go func() {
		result, err := a.do(workCtx, arg)

		if workCtx.Err() != nil {
			// Cancelled or superseded; the newer attempt owns the state.
			return
		}

		a.rt.Dispatch(func() {
			a.mu.Lock()
			stale := a.liveSeq != seq
			a.mu.Unlock()
			if stale {
				return
			}

			if err != nil {
				Batch(func() {
					a.err.Set(err)
					a.state.Set(StateError)
					if a.onError != nil {
						a.onError(err)
					}
				})
				return
			}
			Batch(func() {
				a.result.Set(result)
				a.state.Set(StateSuccess)
				if a.onSuccess != nil {
					a.onSuccess(result)
				}
			})
		})
	}()
}

// State returns the current state, subscribing the current listener.
func (a *Action[A, R]) State() State {
	return a.state.Get()
}

// Result returns the last successful result and true, or the zero
// value and false before any success.
func (a *Action[A, R]) Result() (R, bool) {
	if a.state.Get() == StateSuccess {
		return a.result.Get(), true
	}
	return *new(R), false
}

// Err returns the last error, nil outside StateError.
func (a *Action[A, R]) Err() error {
	return a.err.Get()
}

// Reset cancels in-flight work and returns the action to StateIdle
// with result and error cleared.
func (a *Action[A, R]) Reset() {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	// Invalidate any completion still in flight.
	a.liveSeq = a.seq.Add(1)
	a.mu.Unlock()

	Batch(func() {
		a.state.Set(StateIdle)
		a.result.Set(*new(R))
		a.err.Set(nil)
	})
}

// IsIdle reports StateIdle.
func (a *Action[A, R]) IsIdle() bool { return a.state.Get() == StateIdle }

// IsRunning reports StateRunning.
func (a *Action[A, R]) IsRunning() bool { return a.state.Get() == StateRunning }

// IsSuccess reports StateSuccess.
func (a *Action[A, R]) IsSuccess() bool { return a.state.Get() == StateSuccess }

// IsError reports StateError.
func (a *Action[A, R]) IsError() bool { return a.state.Get() == StateError }
