package weft

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/weft-dev/weft/pkg/server"
	"github.com/weft-dev/weft/pkg/vdom"
)

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	if cfg.Upload.Dir == "" {
		cfg.Upload.Dir = t.TempDir()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	app, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { app.Shutdown(context.Background()) })
	return app
}

func greetingPage(ctx server.Ctx) vdom.Component {
	return vdom.Func(func() *vdom.VNode {
		return vdom.Div(
			vdom.Button(vdom.OnClick(func() {}), vdom.Text("hello")),
		)
	})
}

var sessionMetaRe = regexp.MustCompile(`content="([^"]*)" name="weft-session"`)

func TestPageServesShell(t *testing.T) {
	app := newTestApp(t, Config{})
	app.Page("/", greetingPage)

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("Content-Type = %q", got)
	}

	body := rr.Body.String()
	if !strings.HasPrefix(body, "<!doctype html>") {
		t.Fatalf("body does not start with doctype: %.60q", body)
	}
	for _, want := range []string{
		`src="/_weft/weft.js"`,
		`data-hid="c1"`,
		`>hello<`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	m := sessionMetaRe.FindStringSubmatch(body)
	if m == nil {
		t.Fatal("body has no session meta tag")
	}
	if _, ok := app.Server().Session(m[1]); !ok {
		t.Fatalf("session %q from meta tag is not registered", m[1])
	}
	if got := app.Server().SessionCount(); got != 1 {
		t.Fatalf("SessionCount = %d, want 1", got)
	}
}

func TestPagePathParams(t *testing.T) {
	app := newTestApp(t, Config{})
	app.Page("/products/{id}", func(ctx server.Ctx) vdom.Component {
		id := ctx.Param("id")
		return vdom.Func(func() *vdom.VNode {
			return vdom.Div(vdom.Text("product " + id))
		})
	})

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products/42", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "product 42") {
		t.Fatalf("body missing rendered param: %s", rr.Body.String())
	}
}

func TestPageSessionLimit(t *testing.T) {
	app := newTestApp(t, Config{Session: SessionConfig{MaxSessions: 1}})
	app.Page("/", greetingPage)

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("first visit status = %d, want %d", rr.Code, http.StatusOK)
	}

	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("second visit status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	app := newTestApp(t, Config{})
	app.Page("/", greetingPage)

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestClientScriptServed(t *testing.T) {
	app := newTestApp(t, Config{})

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, ScriptPath, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/javascript; charset=utf-8" {
		t.Fatalf("Content-Type = %q", got)
	}
	if !strings.Contains(rr.Body.String(), "weft-session") {
		t.Fatal("served script does not look like the client runtime")
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	app := newTestApp(t, Config{})

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/_weft/ws?session=nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestUploadRoundTrip(t *testing.T) {
	app := newTestApp(t, Config{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte("png-bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/_weft/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		TempID string `json:"temp_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TempID == "" {
		t.Fatal("upload response has no temp_id")
	}

	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/_weft/uploads/"+resp.TempID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("fetch status = %d", rr.Code)
	}
	if got := rr.Body.String(); got != "png-bytes" {
		t.Fatalf("fetch body = %q, want %q", got, "png-bytes")
	}
}

func TestUploadMethodRouting(t *testing.T) {
	app := newTestApp(t, Config{})

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/_weft/upload", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET intake status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	app := newTestApp(t, Config{})
	app.Page("/", greetingPage)

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := app.Server().SessionCount(); got != 1 {
		t.Fatalf("SessionCount = %d, want 1", got)
	}

	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if got := app.Server().SessionCount(); got != 0 {
		t.Fatalf("SessionCount after shutdown = %d, want 0", got)
	}
}
