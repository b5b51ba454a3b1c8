package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/weft-dev/weft/pkg/vdom"
)

// Server owns the session registry: it creates sessions for page
// loads, attaches WebSocket connections to them, and evicts idle ones.
type Server struct {
	config *ServerConfig
	logger *slog.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*Session

	middleware []Middleware

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Server and starts its eviction loop. A nil config uses
// defaults; zero fields of a non-nil config are filled in.
func New(config *ServerConfig) *Server {
	if config == nil {
		config = DefaultServerConfig()
	} else {
		config.fillDefaults()
	}

	s := &Server{
		config: config,
		logger: config.Logger.With("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	go s.evictLoop()
	return s
}

// Use appends middleware to the event chain. Call before serving;
// sessions capture the chain at creation.
func (s *Server) Use(mw ...Middleware) {
	s.middleware = append(s.middleware, mw...)
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// CreateSession builds a session for a page request: it runs the page
// builder, renders the initial tree, and registers the session for a
// later WebSocket attach. The returned HTML is the page component's
// subtree; the caller embeds it in a document shell together with the
// session ID.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request, build func(Ctx) vdom.Component) (*Session, string, error) {
	sess := newSession(s.config)
	sess.handleFrame = chain(s.middleware, sess.processEvent)

	ctx := newHTTPContext(sess, w, r)
	html, err := sess.mount(ctx, r.URL.Path, build)
	if err != nil {
		sess.Close()
		return nil, "", err
	}
	// The response writer dies with this request; handlers that run
	// later must not touch it.
	ctx.writer = nil

	sess.startLoop()

	s.mu.Lock()
	if s.config.MaxSessions > 0 && len(s.sessions) >= s.config.MaxSessions {
		s.mu.Unlock()
		sess.Close()
		return nil, "", ErrSessionLimit
	}
	s.sessions[sess.ID] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	s.logger.Debug("session created",
		"session_id", sess.ID,
		"path", sess.path,
		"sessions", count)
	if s.config.OnSessionStart != nil {
		s.config.OnSessionStart(sess)
	}
	return sess, html, nil
}

// Session looks up a session by ID.
func (s *Server) Session(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// SessionCount returns the number of registered sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// HandleWebSocket upgrades the request and attaches the connection to
// the session named by the "session" query parameter.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	sess, ok := s.Session(id)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	if err := sess.AttachConn(conn); err != nil {
		s.logger.Warn("attach rejected", "session_id", id, "error", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(time.Second))
		conn.Close()
	}
}

// evictLoop periodically sweeps closed and idle sessions.
func (s *Server) evictLoop() {
	interval := s.config.SessionIdleTimeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictStale()
		case <-s.done:
			return
		}
	}
}

// evictStale closes sessions idle past the timeout and drops already
// closed ones from the registry. Idle eviction also reclaims sessions
// whose WebSocket never attached.
func (s *Server) evictStale() {
	cutoff := time.Now().Add(-s.config.SessionIdleTimeout)

	s.mu.Lock()
	var stale []*Session
	for id, sess := range s.sessions {
		if sess.IsClosed() || sess.LastActive().Before(cutoff) {
			delete(s.sessions, id)
			stale = append(stale, sess)
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Close()
		if s.config.OnSessionClose != nil {
			s.config.OnSessionClose(sess)
		}
	}
	if len(stale) > 0 {
		s.logger.Info("evicted sessions",
			"count", len(stale),
			"remaining", remaining)
	}
}

// Shutdown closes every session and stops the eviction loop. It
// returns once all sessions are closed or ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for _, sess := range sessions {
			wg.Add(1)
			go func(sess *Session) {
				defer wg.Done()
				sess.Close()
				if s.config.OnSessionClose != nil {
					s.config.OnSessionClose(sess)
				}
			}(sess)
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
