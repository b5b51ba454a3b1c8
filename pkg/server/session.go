package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/weft-dev/weft/pkg/hooks"
	"github.com/weft-dev/weft/pkg/protocol"
	"github.com/weft-dev/weft/pkg/reactive"
	"github.com/weft-dev/weft/pkg/vdom"
)

// rootHID is the pinned hydration ID of a session's page component.
const rootHID = "c1"

// Session is one page load: the mounted component tree, its handler
// registry, and the WebSocket connection feeding events in and patches
// out. All state is owned by the event loop goroutine.
type Session struct {
	// ID is embedded in the served page and echoed by the WebSocket
	// attach request.
	ID string

	CreatedAt time.Time

	config *ServerConfig
	logger *slog.Logger

	path string

	mu   sync.Mutex
	conn *websocket.Conn

	owner    *reactive.Owner
	root     *ComponentInstance
	rootCtx  Ctx
	handlers map[string]any

	// handleFrame is processEvent wrapped in the server's middleware.
	handleFrame EventHandlerFunc

	events     chan *protocol.EventFrame
	dispatchCh chan func()
	renderCh   chan struct{}
	outCh      chan []byte
	done       chan struct{}
	closed     atomic.Bool

	// baseCtx lives as long as the session and is what StdContext
	// hands out; the originating request's context dies with the page
	// response and must not leak into handlers.
	baseCtx context.Context
	cancel  context.CancelFunc

	lastActive atomic.Int64
	eventCount atomic.Uint64
	patchCount atomic.Uint64
}

// generateSessionID returns 32 hex chars from crypto/rand.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("server: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b)
}

func newSession(config *ServerConfig) *Session {
	id := generateSessionID()
	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		config:     config,
		logger:     config.Logger.With("session_id", id),
		owner:      reactive.NewOwner(nil),
		events:     make(chan *protocol.EventFrame, config.EventQueueSize),
		dispatchCh: make(chan func(), config.EventQueueSize),
		renderCh:   make(chan struct{}, 1),
		outCh:      make(chan []byte, config.EventQueueSize),
		done:       make(chan struct{}),
		baseCtx:    baseCtx,
		cancel:     cancel,
	}
	s.handleFrame = s.processEvent
	s.touch()
	return s
}

// mount runs the page builder once and renders the initial tree. The
// handlers collected from that render become the session's registry.
func (s *Session) mount(ctx Ctx, path string, build func(Ctx) vdom.Component) (string, error) {
	s.path = path
	s.rootCtx = ctx

	var comp vdom.Component
	reactive.WithCtx(ctx, func() {
		reactive.WithOwner(s.owner, func() {
			comp = build(ctx)
		})
	})
	if comp == nil {
		return "", ErrNilComponent
	}

	s.root = newComponentInstance(s, rootHID, comp)

	var html string
	var handlers map[string]any
	var err error
	reactive.WithCtx(ctx, func() {
		html, handlers, err = s.root.render()
	})
	if err != nil {
		return "", err
	}
	s.handlers = handlers
	return html, nil
}

// startLoop starts the event loop. Called once after mount, before the
// session is visible to the WebSocket endpoint.
func (s *Session) startLoop() {
	go s.eventLoop()
}

// AttachConn hands the upgraded WebSocket connection to the session
// and starts its read loop and write pump. A session accepts exactly
// one connection; reloading the page creates a new session.
func (s *Session) AttachConn(conn *websocket.Conn) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		return ErrConnAttached
	}
	s.conn = conn
	s.mu.Unlock()

	conn.SetReadLimit(s.config.ReadLimit)
	s.touch()

	go s.readLoop(conn)
	go s.writePump(conn)

	s.logger.Info("connection attached")
	return nil
}

// readLoop decodes inbound frames and queues events. The read deadline
// rides on the heartbeat: every message and every pong extends it.
func (s *Session) readLoop(conn *websocket.Conn) {
	defer s.Close()

	wait := 2 * s.config.PingInterval
	conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wait))
		s.touch()

		frame, err := protocol.DecodeEvent(msg)
		if err != nil {
			s.logger.Warn("dropping undecodable frame", "error", err)
			s.sendError("invalid event frame")
			continue
		}

		select {
		case s.events <- frame:
		default:
			s.logger.Warn("event queue full, dropping event",
				"hid", frame.HID, "event", frame.Event)
		}
	}
}

// writePump owns the connection for writes: queued frames and
// heartbeat pings. It exits when the session closes or a write fails.
func (s *Session) writePump(conn *websocket.Conn) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-s.outCh:
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.Error("write error", "error", err)
				s.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// eventLoop serializes all state access: events, dispatched callbacks,
// and render passes run here and nowhere else.
func (s *Session) eventLoop() {
	for {
		select {
		case frame := <-s.events:
			s.handleEvent(frame)
		case fn := <-s.dispatchCh:
			s.runDispatch(fn)
		case <-s.renderCh:
			s.renderDirty()
		case <-s.done:
			return
		}
	}
}

func (s *Session) handleEvent(frame *protocol.EventFrame) {
	s.eventCount.Add(1)
	s.touch()

	ctx := newEventContext(s, frame)
	clearEventError(ctx)
	s.handleFrame(ctx, frame)
	s.renderDirty()
}

// processEvent is the innermost event handler: it looks up the
// registered handler and runs it inside the reactive scope. The
// middleware chain configured on the Server wraps this.
func (s *Session) processEvent(ctx Ctx, frame *protocol.EventFrame) {
	key := frame.HID + ":" + frame.Event
	handler, ok := s.handlers[key]
	if !ok {
		s.logger.Warn("no handler for event", "hid", frame.HID, "event", frame.Event)
		RecordEventError(ctx, ErrNoHandler)
		return
	}

	reactive.WithCtx(ctx, func() {
		s.safeExecute(ctx, key, func() {
			s.invokeHandler(ctx, handler, frame)
		})
		s.owner.RunPendingEffects()
	})
}

// invokeHandler adapts the frame to the handler's signature: no
// argument, the event context, the input value, or the decoded hook
// event.
func (s *Session) invokeHandler(ctx Ctx, handler any, frame *protocol.EventFrame) {
	switch h := handler.(type) {
	case func():
		h()
	case func(Ctx):
		h(ctx)
	case func(string):
		h(frame.Value)
	case func(hooks.HookEvent):
		ev := hooks.HookEvent{Name: strings.TrimPrefix(frame.Event, "hook:")}
		if frame.Hook != nil {
			if frame.Hook.Name != "" {
				ev.Name = frame.Hook.Name
			}
			ev.Data = frame.Hook.Data
		}
		h(ev)
	default:
		s.logger.Warn("handler has unsupported signature",
			"event", frame.Event,
			"type", reflect.TypeOf(handler).String())
	}
}

// safeExecute runs fn, turning a panic into a logged error and an
// error frame instead of a dead session.
func (s *Session) safeExecute(ctx Ctx, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic",
				"handler", name,
				"panic", r,
				"stack", string(debug.Stack()))
			RecordEventError(ctx, fmt.Errorf("%w: %v", ErrHandlerPanic, r))
			s.sendError("internal error")
		}
	}()
	fn()
}

// runDispatch executes a dispatched callback with the same scope and
// follow-up as an event: reactive context set, effects flushed, dirty
// components re-rendered.
func (s *Session) runDispatch(fn func()) {
	reactive.WithCtx(s.rootCtx, func() {
		s.safeExecute(s.rootCtx, "dispatch", fn)
		s.owner.RunPendingEffects()
	})
	s.renderDirty()
}

// scheduleRender nudges the event loop to run a render pass. Marks
// before the pass coalesce into one.
func (s *Session) scheduleRender() {
	select {
	case s.renderCh <- struct{}{}:
	default:
	}
}

// renderDirty re-renders the page component if marked and sends one
// patch replacing its subtree. Runs on the event loop.
func (s *Session) renderDirty() {
	ci := s.root
	if ci == nil || !ci.dirty.Swap(false) {
		return
	}

	var html string
	var handlers map[string]any
	var err error
	reactive.WithCtx(s.rootCtx, func() {
		html, handlers, err = ci.render()
	})
	if err != nil {
		s.logger.Error("render failed", "hid", ci.hid, "error", err)
		return
	}
	s.handlers = handlers

	s.send(protocol.NewPatchFrame([]protocol.Patch{{HID: ci.hid, HTML: html}}))
	s.patchCount.Add(1)
	if s.config.OnPatchesSent != nil {
		s.config.OnPatchesSent(1)
	}
}

// send encodes a frame onto the write pump. Before a connection is
// attached, frames accumulate in the buffer and flush on attach; when
// the buffer is full the frame is dropped.
func (s *Session) send(frame any) {
	if s.closed.Load() {
		return
	}
	data, err := protocol.Encode(frame)
	if err != nil {
		s.logger.Error("frame encode failed", "error", err)
		return
	}
	select {
	case s.outCh <- data:
	case <-s.done:
	default:
		s.logger.Warn("send buffer full, dropping frame")
	}
}

// Emit sends a named event to the browser, dispatched there as a
// CustomEvent on the document.
func (s *Session) Emit(name string, data map[string]any) {
	s.send(protocol.NewEmitFrame(name, data))
}

func (s *Session) sendError(message string) {
	s.send(protocol.NewErrorFrame(message))
}

// Dispatch queues fn onto the event loop. Safe to call from any
// goroutine; it is the only correct way to write signals from
// asynchronous work.
func (s *Session) Dispatch(fn func()) {
	if s.closed.Load() {
		return
	}
	select {
	case s.dispatchCh <- fn:
	case <-s.done:
	default:
		s.logger.Warn("dispatch queue full, discarding callback")
	}
}

// Close shuts the session down: stops the loops, cancels the session
// context, disposes the reactive scope, and closes the connection.
// Idempotent.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)
	s.cancel()

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}

	if s.root != nil {
		s.root.dispose()
	}
	s.owner.Dispose()

	s.logger.Info("session closed",
		"events", s.eventCount.Load(),
		"patches", s.patchCount.Load())
}

// IsClosed reports whether Close has run.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed when the session shuts down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Context returns the session-lifetime context, canceled on Close.
func (s *Session) Context() context.Context {
	return s.baseCtx
}

// Path returns the page path the session was mounted on.
func (s *Session) Path() string {
	return s.path
}

// Root returns the mounted page component instance, nil before mount.
func (s *Session) Root() *ComponentInstance {
	return s.root
}

// Handlers returns the live handler registry, keyed "hid:event". The
// registry belongs to the event loop; read it from dispatched
// callbacks or after the loop has settled.
func (s *Session) Handlers() map[string]any {
	return s.handlers
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive returns the time of the last event or connection
// activity.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// EventCount returns the number of events handled.
func (s *Session) EventCount() uint64 {
	return s.eventCount.Load()
}

// PatchCount returns the number of patch frames sent.
func (s *Session) PatchCount() uint64 {
	return s.patchCount.Load()
}
