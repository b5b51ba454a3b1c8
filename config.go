package weft

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/weft-dev/weft/pkg/middleware"
	"github.com/weft-dev/weft/pkg/server"
	"github.com/weft-dev/weft/pkg/upload"
)

// Config configures an App. The zero value is usable: every field has a
// default.
type Config struct {
	// Addr is the listen address Run falls back to when called with an
	// empty address. Defaults to ":8080".
	Addr string

	// Static configures serving a directory of static files.
	Static StaticConfig

	// Upload configures the file intake endpoint.
	Upload UploadConfig

	// Session tunes live session behavior.
	Session SessionConfig

	// DevMode disables WebSocket origin checking and response caching.
	// Never enable it in production.
	DevMode bool

	// Logger receives framework logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// StaticConfig mounts a directory of static files into the app.
type StaticConfig struct {
	// Dir is the directory to serve. Empty disables static serving.
	Dir string

	// Prefix is the URL prefix the directory answers under.
	// Defaults to "/static/".
	Prefix string
}

// UploadConfig bounds the file intake endpoint.
type UploadConfig struct {
	// Store receives uploaded files. When nil, the app creates a
	// DiskStore rooted at Dir.
	Store upload.Store

	// Dir is where the default DiskStore keeps files. Defaults to a
	// "weft-uploads" directory under the OS temp dir.
	Dir string

	// MaxFileSize caps a single upload in bytes. Defaults to 10 MiB.
	MaxFileSize int64

	// AllowedTypes restricts uploads to content types matching one of
	// these prefixes, e.g. "image/". Empty accepts everything.
	AllowedTypes []string

	// TempExpiry is how long unclaimed uploads live before the cleanup
	// loop reclaims them. Defaults to one hour.
	TempExpiry time.Duration
}

// SessionConfig tunes per-session runtime behavior.
type SessionConfig struct {
	// IdleTimeout closes sessions that go this long without activity.
	IdleTimeout time.Duration

	// MaxSessions caps concurrent sessions. Negative disables the cap.
	MaxSessions int

	// EventQueueSize is the per-session inbound event buffer.
	EventQueueSize int
}

// fillDefaults replaces zero fields so callers set only what they care
// about. The upload store itself is built in New, where errors can be
// reported.
func (c *Config) fillDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/static/"
	}
	if !strings.HasSuffix(c.Static.Prefix, "/") {
		c.Static.Prefix += "/"
	}
	if c.Upload.Dir == "" {
		c.Upload.Dir = filepath.Join(os.TempDir(), "weft-uploads")
	}
	if c.Upload.MaxFileSize == 0 {
		c.Upload.MaxFileSize = upload.DefaultConfig().MaxFileSize
	}
	if c.Upload.TempExpiry == 0 {
		c.Upload.TempExpiry = upload.DefaultConfig().TempExpiry
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// uploadConfig maps the app-level upload settings onto the intake
// handler's config.
func (c *Config) uploadConfig() upload.Config {
	return upload.Config{
		MaxFileSize:  c.Upload.MaxFileSize,
		AllowedTypes: c.Upload.AllowedTypes,
		TempExpiry:   c.Upload.TempExpiry,
	}
}

// serverConfig maps the app-level settings onto the session runtime.
// Session metrics hooks are always wired; they are no-ops until
// middleware.Prometheus initializes the collectors.
func (c *Config) serverConfig() *server.ServerConfig {
	sc := server.DefaultServerConfig()
	sc.Logger = c.Logger
	if c.Session.IdleTimeout > 0 {
		sc.SessionIdleTimeout = c.Session.IdleTimeout
	}
	if c.Session.MaxSessions != 0 {
		sc.MaxSessions = c.Session.MaxSessions
	}
	if c.Session.EventQueueSize > 0 {
		sc.EventQueueSize = c.Session.EventQueueSize
	}
	if c.DevMode {
		sc.CheckOrigin = func(*http.Request) bool { return true }
	}
	sc.OnSessionStart = func(*server.Session) { middleware.RecordSessionStart() }
	sc.OnSessionClose = func(*server.Session) { middleware.RecordSessionClose() }
	sc.OnPatchesSent = middleware.RecordPatches
	return sc
}
