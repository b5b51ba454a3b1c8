package weft

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/weft-dev/weft/client"
	"github.com/weft-dev/weft/pkg/middleware"
	"github.com/weft-dev/weft/pkg/render"
	"github.com/weft-dev/weft/pkg/server"
	"github.com/weft-dev/weft/pkg/upload"
	"github.com/weft-dev/weft/pkg/vdom"
)

// Reserved framework paths. Everything the client runtime talks to
// lives under "/_weft/" so application routes never collide with it.
const (
	// WSPath is the websocket endpoint sessions attach to.
	WSPath = "/_weft/ws"
	// UploadPath is the multipart intake the file picker posts to.
	UploadPath = "/_weft/upload"
	// PreviewPath prefixes temp file previews; the temp ID follows.
	PreviewPath = "/_weft/uploads"
)

const cleanupFloor = time.Minute

// App ties the session runtime, the upload store, and static file
// serving together behind a single http.Handler.
type App struct {
	server    *server.Server
	mux       *http.ServeMux
	store     upload.Store
	config    Config
	done      chan struct{}
	closeOnce sync.Once
}

// New creates an App. The zero Config is valid; see Config for the
// defaults. The error is from building the default upload store.
func New(cfg Config) (*App, error) {
	cfg.fillDefaults()

	store := cfg.Upload.Store
	if store == nil {
		ds, err := upload.NewDiskStore(cfg.Upload.Dir, cfg.Upload.MaxFileSize)
		if err != nil {
			return nil, err
		}
		store = ds
	}

	a := &App{
		server: server.New(cfg.serverConfig()),
		mux:    http.NewServeMux(),
		store:  store,
		config: cfg,
		done:   make(chan struct{}),
	}

	a.mux.HandleFunc("GET "+ScriptPath, a.serveScript)
	a.mux.HandleFunc(WSPath, a.server.HandleWebSocket)
	a.mux.Handle("POST "+UploadPath,
		middleware.InstrumentUploads(upload.Handler(store, cfg.uploadConfig())))
	a.mux.Handle("GET "+PreviewPath+"/{id}", upload.ServeFile(store))

	go a.cleanupLoop()
	return a, nil
}

// Server returns the underlying session runtime, for middleware
// registration and tests.
func (a *App) Server() *server.Server { return a.server }

// Store returns the upload store the app serves from.
func (a *App) Store() upload.Store { return a.store }

// Config returns the configuration the app was built with, after
// defaulting.
func (a *App) Config() Config { return a.config }

// Use appends event middleware to the session runtime. Outermost
// first; register before the first session is created.
func (a *App) Use(mw ...server.Middleware) { a.server.Use(mw...) }

// Page registers a page at the given path. The builder runs once per
// browser visit to create that session's root component; the component
// re-renders reactively from then on.
//
// The path may use ServeMux patterns, including wildcards:
//
//	app.Page("/products/{id}", productPage)
func (a *App) Page(path string, build func(server.Ctx) vdom.Component) {
	a.mux.HandleFunc("GET "+path, func(w http.ResponseWriter, r *http.Request) {
		a.servePage(w, r, build)
	})
}

// Handler returns the app as an http.Handler, for mounting under an
// existing router.
func (a *App) Handler() http.Handler { return a }

// ServeHTTP serves static files when the path names one, and routes
// everything else through the app mux.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if rel, ok := a.staticRelPath(r.URL.Path); ok && a.hasStaticFile(rel) {
		a.serveStatic(w, r, rel)
		return
	}
	a.mux.ServeHTTP(w, r)
}

// Run serves the app on addr, falling back to Config.Addr when addr is
// empty. It blocks until the listener fails.
func (a *App) Run(addr string) error {
	if addr == "" {
		addr = a.config.Addr
	}
	a.config.Logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, a)
}

// Shutdown stops the cleanup loop and closes every live session.
func (a *App) Shutdown(ctx context.Context) error {
	a.closeOnce.Do(func() { close(a.done) })
	return a.server.Shutdown(ctx)
}

func (a *App) servePage(w http.ResponseWriter, r *http.Request, build func(server.Ctx) vdom.Component) {
	sess, page, err := a.server.CreateSession(w, r, build)
	if err != nil {
		a.config.Logger.Error("page render failed", "path", r.URL.Path, "error", err)
		if errors.Is(err, server.ErrSessionLimit) {
			http.Error(w, "server busy", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	a.writeShell(w, sess.ID, page)
}

// writeShell wraps the rendered page in the standard document shell.
// The client runtime finds its session ID in the meta tag.
func (a *App) writeShell(w http.ResponseWriter, sessionID, page string) {
	shell := vdom.Html(
		vdom.Lang("en"),
		vdom.Head(
			vdom.Meta(vdom.Charset("utf-8")),
			vdom.Meta(vdom.Name("viewport"), vdom.Content("width=device-width, initial-scale=1")),
			vdom.Meta(vdom.Name(SessionMetaName), vdom.Content(sessionID)),
			Scripts(),
		),
		vdom.Body(vdom.Raw(page)),
	)

	html, err := render.NewRenderer(render.Config{}).RenderToString(shell)
	if err != nil {
		a.config.Logger.Error("shell render failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	io.WriteString(w, "<!doctype html>"+html)
}

func (a *App) serveScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	if a.config.DevMode {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
	w.Write(client.WeftJS)
}

// cleanupLoop reclaims expired uploads on a fraction of the expiry
// window, so an entry outlives its TempExpiry by half a period at
// most.
func (a *App) cleanupLoop() {
	interval := a.config.Upload.TempExpiry / 2
	if interval < cleanupFloor {
		interval = cleanupFloor
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := a.store.Cleanup(ctx, a.config.Upload.TempExpiry); err != nil {
				a.config.Logger.Warn("upload cleanup failed", "error", err)
			}
			cancel()
		}
	}
}
