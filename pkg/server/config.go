package server

import (
	"log/slog"
	"net/http"
	"time"
)

// ServerConfig configures the session runtime.
type ServerConfig struct {
	// Logger is the base logger. Sessions derive theirs from it with a
	// session_id attribute. Defaults to slog.Default().
	Logger *slog.Logger

	// CheckOrigin validates WebSocket upgrade origins. Nil uses the
	// gorilla default, which rejects cross-origin requests.
	CheckOrigin func(r *http.Request) bool

	// ReadLimit caps the size of a single inbound WebSocket message.
	ReadLimit int64

	// WriteTimeout bounds each outbound WebSocket write.
	WriteTimeout time.Duration

	// PingInterval is how often the write pump sends a heartbeat ping.
	// A connection that misses two in a row is considered dead.
	PingInterval time.Duration

	// SessionIdleTimeout is how long a session may go without activity
	// before the eviction loop closes it. This also reclaims sessions
	// whose WebSocket never connected.
	SessionIdleTimeout time.Duration

	// MaxSessions caps concurrent sessions; CreateSession fails with
	// ErrSessionLimit beyond it. Negative disables the cap.
	MaxSessions int

	// EventQueueSize is the buffer size of the per-session event and
	// dispatch queues. Events beyond it are dropped with a warning.
	EventQueueSize int

	// OnSessionStart, when set, runs after a session is created and
	// registered. Used for metrics.
	OnSessionStart func(*Session)

	// OnSessionClose, when set, runs after a session is removed from
	// the registry.
	OnSessionClose func(*Session)

	// OnPatchesSent, when set, runs on the event loop after a patch
	// frame goes out, with the number of patches it carried. Used for
	// metrics.
	OnPatchesSent func(count int)
}

// DefaultServerConfig returns the default configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Logger:             slog.Default(),
		ReadLimit:          1 << 20,
		WriteTimeout:       10 * time.Second,
		PingInterval:       30 * time.Second,
		SessionIdleTimeout: 5 * time.Minute,
		MaxSessions:        1024,
		EventQueueSize:     64,
	}
}

// fillDefaults replaces zero fields with defaults so callers can set
// only what they care about.
func (c *ServerConfig) fillDefaults() {
	d := DefaultServerConfig()
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	if c.ReadLimit == 0 {
		c.ReadLimit = d.ReadLimit
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = d.PingInterval
	}
	if c.SessionIdleTimeout == 0 {
		c.SessionIdleTimeout = d.SessionIdleTimeout
	}
	if c.MaxSessions == 0 {
		c.MaxSessions = d.MaxSessions
	}
	if c.EventQueueSize == 0 {
		c.EventQueueSize = d.EventQueueSize
	}
}
