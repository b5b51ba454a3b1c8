package reactive

import "context"

// Ctx is the slice of the session runtime visible to reactive code.
// The full interface lives in pkg/server; this package only needs the
// two methods asynchronous completions depend on.
type Ctx interface {
	// Dispatch queues fn onto the session's event loop. Safe to call
	// from any goroutine; it is the only correct way to write signals
	// from asynchronous work.
	Dispatch(fn func())

	// StdContext returns the standard library context for the session,
	// for handing to HTTP clients and stores.
	StdContext() context.Context
}

// UseCtx returns the runtime context for the active scope, or nil when
// called outside a render, effect, or event handler.
func UseCtx() Ctx {
	c := getCurrentCtx()
	if c == nil {
		return nil
	}
	if ctx, ok := c.(Ctx); ok {
		return ctx
	}
	return nil
}
