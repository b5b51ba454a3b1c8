package server

import (
	"io"
	"log/slog"
)

// NewTestContext returns a Ctx backed by a real session event loop but
// no WebSocket, for exercising components and handlers in tests.
// Dispatch works as in production: callbacks run serialized on the
// loop, effects flush, dirty components re-render. The stop function
// tears the session down.
func NewTestContext() (Ctx, func()) {
	cfg := DefaultServerConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	sess := newSession(cfg)
	ctx := newHTTPContext(sess, nil, nil)
	sess.rootCtx = ctx
	sess.startLoop()

	return ctx, sess.Close
}
