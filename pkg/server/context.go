package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/weft-dev/weft/pkg/protocol"
)

// Ctx gives page builders and event handlers access to the request and
// the session. The same value a builder receives at mount stays valid
// for the session's lifetime, so handlers may close over it.
type Ctx interface {
	// Request returns the HTTP request that created the session, nil
	// on contexts synthesized for tests.
	Request() *http.Request

	// Path returns the request path, falling back to the session's
	// mount path on event contexts.
	Path() string

	// Query returns the URL query parameters. Never nil.
	Query() url.Values

	// Param returns a path parameter by name, "" when absent.
	Param(key string) string

	// Header returns a request header value.
	Header(key string) string

	// Cookie returns a request cookie by name.
	Cookie(name string) (*http.Cookie, error)

	// SetHeader sets a response header. Only effective during the
	// initial page render, before the body is written.
	SetHeader(key, value string)

	// Status writes the HTTP response status. Only effective during
	// the initial page render; at most once.
	Status(code int)

	// SetCookie sets a response cookie. Only effective during the
	// initial page render.
	SetCookie(cookie *http.Cookie)

	// Session returns the session this context belongs to.
	Session() *Session

	// Logger returns the session-scoped logger.
	Logger() *slog.Logger

	// Dispatch queues fn onto the session's event loop. Safe to call
	// from any goroutine; it is the only correct way to write signals
	// from asynchronous work. After fn runs, pending effects execute
	// and dirty components re-render.
	Dispatch(fn func())

	// Emit sends a named event to the browser, dispatched there as a
	// CustomEvent on the document.
	Emit(name string, data map[string]any)

	// SetValue stores a session-scoped value.
	SetValue(key, value any)

	// Value retrieves a session-scoped value, nil when absent.
	Value(key any) any

	// StdContext returns the session's standard context. It outlives
	// the originating HTTP request and is canceled when the session
	// closes; hand it to HTTP clients and stores.
	StdContext() context.Context

	// WithStdContext returns a copy of this context carrying stdCtx.
	// Middleware uses it to thread trace spans through handlers.
	WithStdContext(stdCtx context.Context) Ctx

	// Done is closed when the session closes.
	Done() <-chan struct{}
}

// EventCtx is the Ctx passed to event handling; it additionally
// exposes the frame being processed.
type EventCtx interface {
	Ctx

	// Event returns the WebSocket event frame being handled.
	Event() *protocol.EventFrame
}

// sessionCtx is the concrete Ctx. The zero writer/request fields make
// the response methods no-ops on event and test contexts.
type sessionCtx struct {
	session *Session
	request *http.Request
	writer  http.ResponseWriter
	logger  *slog.Logger
	stdCtx  context.Context
	event   *protocol.EventFrame

	wroteHeader bool
}

func newHTTPContext(sess *Session, w http.ResponseWriter, r *http.Request) *sessionCtx {
	return &sessionCtx{
		session: sess,
		request: r,
		writer:  w,
		logger:  sess.logger,
		stdCtx:  sess.baseCtx,
	}
}

func newEventContext(sess *Session, frame *protocol.EventFrame) *sessionCtx {
	return &sessionCtx{
		session: sess,
		logger:  sess.logger,
		stdCtx:  sess.baseCtx,
		event:   frame,
	}
}

func (c *sessionCtx) Request() *http.Request {
	return c.request
}

func (c *sessionCtx) Path() string {
	if c.request != nil {
		return c.request.URL.Path
	}
	if c.session != nil {
		return c.session.path
	}
	return ""
}

func (c *sessionCtx) Query() url.Values {
	if c.request != nil {
		return c.request.URL.Query()
	}
	return url.Values{}
}

func (c *sessionCtx) Param(key string) string {
	if c.request != nil {
		return c.request.PathValue(key)
	}
	return ""
}

func (c *sessionCtx) Header(key string) string {
	if c.request != nil {
		return c.request.Header.Get(key)
	}
	return ""
}

func (c *sessionCtx) Cookie(name string) (*http.Cookie, error) {
	if c.request != nil {
		return c.request.Cookie(name)
	}
	return nil, http.ErrNoCookie
}

func (c *sessionCtx) SetHeader(key, value string) {
	if c.writer != nil {
		c.writer.Header().Set(key, value)
	}
}

func (c *sessionCtx) Status(code int) {
	if c.writer != nil && !c.wroteHeader {
		c.wroteHeader = true
		c.writer.WriteHeader(code)
	}
}

func (c *sessionCtx) SetCookie(cookie *http.Cookie) {
	if c.writer != nil {
		http.SetCookie(c.writer, cookie)
	}
}

func (c *sessionCtx) Session() *Session {
	return c.session
}

func (c *sessionCtx) Logger() *slog.Logger {
	return c.logger
}

func (c *sessionCtx) Dispatch(fn func()) {
	c.session.Dispatch(fn)
}

func (c *sessionCtx) Emit(name string, data map[string]any) {
	c.session.Emit(name, data)
}

func (c *sessionCtx) SetValue(key, value any) {
	c.session.owner.SetValue(key, value)
}

func (c *sessionCtx) Value(key any) any {
	return c.session.owner.Value(key)
}

func (c *sessionCtx) StdContext() context.Context {
	return c.stdCtx
}

func (c *sessionCtx) WithStdContext(stdCtx context.Context) Ctx {
	clone := *c
	clone.stdCtx = stdCtx
	return &clone
}

func (c *sessionCtx) Done() <-chan struct{} {
	return c.stdCtx.Done()
}

func (c *sessionCtx) Event() *protocol.EventFrame {
	return c.event
}
