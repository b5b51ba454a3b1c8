package server

import (
	"errors"

	"github.com/weft-dev/weft/pkg/protocol"
)

// EventHandlerFunc processes one inbound event frame. It runs on the
// session's event loop.
type EventHandlerFunc func(ctx Ctx, frame *protocol.EventFrame)

// Middleware wraps event handling. The Server applies its chain around
// each session's core handler, first added outermost, so cross-cutting
// concerns like tracing and metrics observe every event.
type Middleware func(next EventHandlerFunc) EventHandlerFunc

// chain composes middleware around base.
func chain(mws []Middleware, base EventHandlerFunc) EventHandlerFunc {
	h := base
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// ErrNoHandler is recorded when an event frame names a handler that is
// not registered.
var ErrNoHandler = errors.New("no handler for event")

// ErrHandlerPanic is recorded when a handler panics. The session
// recovers and wraps the panic value in it.
var ErrHandlerPanic = errors.New("handler panic")

type eventErrorKey struct{}

// RecordEventError notes err against the event currently being
// handled, where middleware wrapping the chain can observe it with
// EventError after the inner handler returns. The session records
// panics and unroutable events itself; handlers that fail in ways they
// want surfaced to tracing and metrics record their own.
func RecordEventError(ctx Ctx, err error) {
	if err != nil {
		ctx.SetValue(eventErrorKey{}, err)
	}
}

// EventError returns the error recorded while handling the current
// event, nil if handling succeeded so far.
func EventError(ctx Ctx) error {
	err, _ := ctx.Value(eventErrorKey{}).(error)
	return err
}

// clearEventError resets the recorded error. The session calls this at
// the top of every event; the store is session-scoped and would
// otherwise carry the previous event's failure.
func clearEventError(ctx Ctx) {
	ctx.SetValue(eventErrorKey{}, nil)
}
