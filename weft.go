// Package weft provides the public API for the Weft web framework.
//
// This is the recommended import for most applications:
//
//	import "github.com/weft-dev/weft"
//
// Usage:
//
//	ctx := weft.UseCtx()
//	count := weft.NewSignal(0)
//	save := weft.NewAction(saveProduct).OnSuccess(func(p Product) { ... })
package weft

import (
	"context"

	"github.com/weft-dev/weft/pkg/reactive"
	"github.com/weft-dev/weft/pkg/server"
	"github.com/weft-dev/weft/pkg/vdom"
)

// =============================================================================
// Context (server.Ctx exposed as weft.Ctx)
// =============================================================================

// Ctx is the runtime context with full HTTP and session access. This is
// server.Ctx, the rich context handlers and page builders receive: Path(),
// Param(), Query(), Session(), Logger(), Dispatch(), Emit(), and so on.
type Ctx = server.Ctx

// UseCtx returns the current runtime context.
// Returns nil when called outside of a render, effect, or handler context.
//
// Example:
//
//	func ProductPage() weft.Component {
//	    return weft.Func(func() *weft.VNode {
//	        ctx := weft.UseCtx()
//	        id := ctx.Param("id")
//	        return Div(Text(id))
//	    })
//	}
func UseCtx() Ctx {
	raw := reactive.UseCtx()
	if raw == nil {
		return nil
	}
	if ctx, ok := raw.(server.Ctx); ok {
		return ctx
	}
	return nil
}

// =============================================================================
// Reactive primitives (re-export from pkg/reactive)
// =============================================================================

// NewSignal creates a reactive signal with the given initial value.
//
// Example:
//
//	count := weft.NewSignal(0)
//	count.Set(1)
//	value := count.Get() // 1
func NewSignal[T any](initial T) *Signal[T] {
	return reactive.NewSignal(initial)
}

// NewMemo creates a computed value that tracks its dependencies
// automatically.
//
// Example:
//
//	doubled := weft.NewMemo(func() int {
//	    return count.Get() * 2
//	})
func NewMemo[T any](compute func() T) *Memo[T] {
	return reactive.NewMemo(compute)
}

// NewEffect registers a side effect that reruns when the signals it read
// change. The returned Cleanup, if any, runs before each rerun and on
// disposal.
var NewEffect = reactive.NewEffect

// OnCleanup registers fn to run when the enclosing reactive scope is
// disposed.
var OnCleanup = reactive.OnCleanup

// NewAction creates a structured async mutation with state tracking.
// Configure it with WithPolicy, OnSuccess, and OnError before the first
// Run.
func NewAction[A any, R any](do func(ctx context.Context, arg A) (R, error)) *Action[A, R] {
	return reactive.NewAction(do)
}

// Batch groups multiple signal updates into a single notification.
var Batch = reactive.Batch

// Untracked runs fn without subscribing the current computation to the
// signals it reads.
var Untracked = reactive.Untracked

// Reactive type aliases
type Signal[T any] = reactive.Signal[T]
type Memo[T any] = reactive.Memo[T]
type Effect = reactive.Effect
type Cleanup = reactive.Cleanup
type Action[A any, R any] = reactive.Action[A, R]

// State reports where an Action is in its lifecycle.
type State = reactive.State

// Action states
const (
	StateIdle    = reactive.StateIdle
	StateRunning = reactive.StateRunning
	StateSuccess = reactive.StateSuccess
	StateError   = reactive.StateError
)

// Policy decides what Run does while an attempt is already in flight.
type Policy = reactive.Policy

// Action policies
const (
	PolicyRestart = reactive.PolicyRestart
	PolicyDrop    = reactive.PolicyDrop
)

// =============================================================================
// Components (re-export from pkg/vdom)
// =============================================================================

// VNode is a node in the virtual DOM tree.
type VNode = vdom.VNode

// Component renders a VNode tree.
type Component = vdom.Component

// Props holds element attributes and event handlers keyed by name.
type Props = vdom.Props

// Attr is a single element attribute.
type Attr = vdom.Attr

// EventHandler binds a DOM event to a server-side handler.
type EventHandler = vdom.EventHandler

// Func wraps a render function as a Component.
var Func = vdom.Func

// =============================================================================
// Errors (re-export from pkg/server)
// =============================================================================

// HTTPError is an error with an associated HTTP status code.
type HTTPError = server.HTTPError

var NewHTTPError = server.NewHTTPError
var BadRequest = server.BadRequest
var NotFound = server.NotFound
var MethodNotAllowed = server.MethodNotAllowed
var TooLarge = server.TooLarge
var Internal = server.Internal

// StatusCode extracts the HTTP status from err, defaulting to 500.
var StatusCode = server.StatusCode
