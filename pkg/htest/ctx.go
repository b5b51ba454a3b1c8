package htest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/weft-dev/weft/pkg/reactive"
	"github.com/weft-dev/weft/pkg/server"
)

// Emit is one recorded Ctx.Emit call.
type Emit struct {
	Name string
	Data map[string]any
}

// recorder is the mutable half of a TestCtx, shared by WithStdContext
// copies.
type recorder struct {
	mu     sync.Mutex
	values map[any]any
	emits  []Emit
	status int
}

// TestCtx implements server.Ctx for tests. Dispatch runs the function
// inline on the calling goroutine, wrapped in the runtime scope, so
// action completions apply synchronously wherever they fire. Emits and
// session values are recorded for assertions.
type TestCtx struct {
	path   string
	params map[string]string
	logger *slog.Logger
	owner  *reactive.Owner
	stdCtx context.Context
	done   chan struct{}
	rec    *recorder
}

// CtxBuilder builds a TestCtx fluently.
type CtxBuilder struct {
	ctx *TestCtx
}

// NewCtx starts a context builder. The default context logs nowhere
// and has no params or values.
func NewCtx() *CtxBuilder {
	return &CtxBuilder{ctx: &TestCtx{
		path:   "/",
		params: make(map[string]string),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		owner:  reactive.NewOwner(nil),
		stdCtx: context.Background(),
		done:   make(chan struct{}),
		rec:    &recorder{values: make(map[any]any)},
	}}
}

// WithParam sets a route parameter.
func (b *CtxBuilder) WithParam(key, value string) *CtxBuilder {
	b.ctx.params[key] = value
	return b
}

// WithValue seeds a session-scoped value.
func (b *CtxBuilder) WithValue(key, value any) *CtxBuilder {
	b.ctx.rec.values[key] = value
	return b
}

// WithLogger replaces the discard logger.
func (b *CtxBuilder) WithLogger(logger *slog.Logger) *CtxBuilder {
	b.ctx.logger = logger
	return b
}

// WithPath sets the context's path.
func (b *CtxBuilder) WithPath(path string) *CtxBuilder {
	b.ctx.path = path
	return b
}

// Build returns the finished context.
func (b *CtxBuilder) Build() *TestCtx {
	return b.ctx
}

var _ server.Ctx = (*TestCtx)(nil)

// Run executes fn inside this context's runtime scope, the way an
// event handler runs on a session loop. Components that call UseCtx or
// create actions must be touched through here.
func (c *TestCtx) Run(fn func()) {
	reactive.WithCtx(c, func() {
		reactive.WithOwner(c.owner, fn)
	})
	c.owner.RunPendingEffects()
}

// Emits returns the recorded Emit calls in order.
func (c *TestCtx) Emits() []Emit {
	c.rec.mu.Lock()
	defer c.rec.mu.Unlock()
	out := make([]Emit, len(c.rec.emits))
	copy(out, c.rec.emits)
	return out
}

// StatusCode returns the first code passed to Status, 0 when none.
func (c *TestCtx) StatusCode() int {
	c.rec.mu.Lock()
	defer c.rec.mu.Unlock()
	return c.rec.status
}

// Request returns nil; there is no HTTP request behind a test context.
func (c *TestCtx) Request() *http.Request { return nil }

func (c *TestCtx) Path() string { return c.path }

func (c *TestCtx) Query() url.Values { return url.Values{} }

func (c *TestCtx) Param(key string) string { return c.params[key] }

func (c *TestCtx) Header(key string) string { return "" }

func (c *TestCtx) Cookie(name string) (*http.Cookie, error) {
	return nil, http.ErrNoCookie
}

func (c *TestCtx) SetHeader(key, value string) {}

func (c *TestCtx) Status(code int) {
	c.rec.mu.Lock()
	defer c.rec.mu.Unlock()
	if c.rec.status == 0 {
		c.rec.status = code
	}
}

func (c *TestCtx) SetCookie(cookie *http.Cookie) {}

// Session returns nil; test contexts stand alone.
func (c *TestCtx) Session() *server.Session { return nil }

func (c *TestCtx) Logger() *slog.Logger { return c.logger }

// Dispatch runs fn immediately in the runtime scope and then flushes
// pending effects.
func (c *TestCtx) Dispatch(fn func()) {
	c.Run(fn)
}

func (c *TestCtx) Emit(name string, data map[string]any) {
	c.rec.mu.Lock()
	defer c.rec.mu.Unlock()
	c.rec.emits = append(c.rec.emits, Emit{Name: name, Data: data})
}

func (c *TestCtx) SetValue(key, value any) {
	c.rec.mu.Lock()
	defer c.rec.mu.Unlock()
	c.rec.values[key] = value
}

func (c *TestCtx) Value(key any) any {
	c.rec.mu.Lock()
	defer c.rec.mu.Unlock()
	return c.rec.values[key]
}

func (c *TestCtx) StdContext() context.Context { return c.stdCtx }

// WithStdContext returns a copy carrying stdCtx; the copy shares this
// context's recorded emits and values.
func (c *TestCtx) WithStdContext(stdCtx context.Context) server.Ctx {
	clone := *c
	clone.stdCtx = stdCtx
	return &clone
}

// Done returns a channel that never closes; test contexts do not shut
// down.
func (c *TestCtx) Done() <-chan struct{} { return c.done }
