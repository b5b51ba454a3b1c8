package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/weft-dev/weft/pkg/hooks"
	"github.com/weft-dev/weft/pkg/protocol"
	"github.com/weft-dev/weft/pkg/reactive"
	"github.com/weft-dev/weft/pkg/vdom"
)

func quietConfig() *ServerConfig {
	cfg := DefaultServerConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

// mountPage mounts build on a fresh session with no connection. Frames
// the session sends pile up in its out buffer, where tests read them.
func mountPage(t *testing.T, build func(Ctx) vdom.Component) (*Session, string) {
	t.Helper()

	sess := newSession(quietConfig())
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	html, err := sess.mount(newHTTPContext(sess, nil, req), req.URL.Path, build)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	sess.startLoop()
	t.Cleanup(sess.Close)
	return sess, html
}

func recvFrame(t *testing.T, sess *Session) []byte {
	t.Helper()
	select {
	case msg := <-sess.outCh:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound frame")
		return nil
	}
}

func recvPatch(t *testing.T, sess *Session) protocol.PatchFrame {
	t.Helper()
	var pf protocol.PatchFrame
	if err := json.Unmarshal(recvFrame(t, sess), &pf); err != nil {
		t.Fatalf("decode patch frame: %v", err)
	}
	if pf.Type != protocol.TypePatch {
		t.Fatalf("frame type = %q, want %q", pf.Type, protocol.TypePatch)
	}
	return pf
}

type counterPage struct {
	count *reactive.Signal[int]
}

func (p *counterPage) Render() *vdom.VNode {
	return vdom.Div(
		vdom.Class("counter"),
		vdom.Span(vdom.Textf("count: %d", p.count.Get())),
		vdom.Button(vdom.OnClick(func() {
			p.count.Update(func(v int) int { return v + 1 })
		}), vdom.Text("+1")),
	)
}

func buildCounter(ctx Ctx) vdom.Component {
	return &counterPage{count: reactive.NewSignal(0)}
}

func TestGenerateSessionID(t *testing.T) {
	a := generateSessionID()
	b := generateSessionID()

	if len(a) != 32 {
		t.Fatalf("len = %d, want 32", len(a))
	}
	if a == b {
		t.Fatal("two session IDs are identical")
	}
	if strings.Trim(a, "0123456789abcdef") != "" {
		t.Fatalf("ID %q is not lowercase hex", a)
	}
}

func TestMountRendersInitialTree(t *testing.T) {
	sess, html := mountPage(t, buildCounter)

	if !strings.Contains(html, `data-hid="c1"`) {
		t.Errorf("root HID not pinned: %s", html)
	}
	if !strings.Contains(html, "count: 0") {
		t.Errorf("initial state missing: %s", html)
	}
	if !strings.Contains(html, `data-on-click="true"`) {
		t.Errorf("click marker missing: %s", html)
	}
	if _, ok := sess.Handlers()["c1e1:click"]; !ok {
		t.Fatalf("click handler not registered, have %v", keysOf(sess.Handlers()))
	}
}

func TestMountNilComponent(t *testing.T) {
	sess := newSession(quietConfig())
	t.Cleanup(sess.Close)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := sess.mount(newHTTPContext(sess, nil, req), "/", func(Ctx) vdom.Component {
		return nil
	})
	if err != ErrNilComponent {
		t.Fatalf("err = %v, want ErrNilComponent", err)
	}
}

func TestHandleEventRendersPatch(t *testing.T) {
	sess, _ := mountPage(t, buildCounter)

	sess.events <- &protocol.EventFrame{Type: protocol.TypeEvent, HID: "c1e1", Event: "click"}

	pf := recvPatch(t, sess)
	if len(pf.Patches) != 1 {
		t.Fatalf("got %d patches, want 1", len(pf.Patches))
	}
	if pf.Patches[0].HID != "c1" {
		t.Errorf("patch HID = %q, want c1", pf.Patches[0].HID)
	}
	if !strings.Contains(pf.Patches[0].HTML, "count: 1") {
		t.Errorf("patch HTML = %s", pf.Patches[0].HTML)
	}
	if sess.EventCount() != 1 {
		t.Errorf("EventCount = %d, want 1", sess.EventCount())
	}
	if sess.PatchCount() != 1 {
		t.Errorf("PatchCount = %d, want 1", sess.PatchCount())
	}
}

func TestEventForUnknownHIDIsIgnored(t *testing.T) {
	sess, _ := mountPage(t, buildCounter)

	sess.events <- &protocol.EventFrame{Type: protocol.TypeEvent, HID: "c1e9", Event: "click"}
	sess.events <- &protocol.EventFrame{Type: protocol.TypeEvent, HID: "c1e1", Event: "click"}

	// Only the second event produces a frame.
	pf := recvPatch(t, sess)
	if !strings.Contains(pf.Patches[0].HTML, "count: 1") {
		t.Errorf("patch HTML = %s", pf.Patches[0].HTML)
	}
}

func TestInputHandlerReceivesValue(t *testing.T) {
	type page struct {
		name *reactive.Signal[string]
	}
	p := &page{name: reactive.NewSignal("")}
	sess, _ := mountPage(t, func(Ctx) vdom.Component {
		return vdom.Func(func() *vdom.VNode {
			return vdom.Div(
				vdom.Span(vdom.Text(p.name.Get())),
				vdom.Input(vdom.OnInput(func(v string) { p.name.Set(v) })),
			)
		})
	})

	sess.events <- &protocol.EventFrame{
		Type:  protocol.TypeEvent,
		HID:   "c1e1",
		Event: "input",
		Value: "weft",
	}

	pf := recvPatch(t, sess)
	if !strings.Contains(pf.Patches[0].HTML, "weft") {
		t.Errorf("patch HTML = %s", pf.Patches[0].HTML)
	}
}

func TestHookHandlerReceivesEvent(t *testing.T) {
	picked := reactive.NewSignal("none")
	sess, html := mountPage(t, func(Ctx) vdom.Component {
		return vdom.Func(func() *vdom.VNode {
			return vdom.Div(
				vdom.Span(vdom.Textf("file: %s", picked.Get())),
				vdom.Input(
					vdom.Type("file"),
					hooks.OnEvent("files", func(e hooks.HookEvent) {
						if e.Int("count") == 0 {
							picked.Set("none")
							return
						}
						picked.Set(e.String("filename"))
					}),
				),
			)
		})
	})

	if strings.Contains(html, "data-on-hook") {
		t.Errorf("hook events must not render DOM markers: %s", html)
	}
	if _, ok := sess.Handlers()["c1e1:hook:files"]; !ok {
		t.Fatalf("hook handler not registered, have %v", keysOf(sess.Handlers()))
	}

	sess.events <- &protocol.EventFrame{
		Type:  protocol.TypeEvent,
		HID:   "c1e1",
		Event: "hook:files",
		Hook: &protocol.HookPayload{
			Name: "files",
			Data: map[string]any{"count": float64(1), "filename": "cat.png"},
		},
	}

	pf := recvPatch(t, sess)
	if !strings.Contains(pf.Patches[0].HTML, "file: cat.png") {
		t.Errorf("patch HTML = %s", pf.Patches[0].HTML)
	}
}

func TestDispatchRunsOnLoop(t *testing.T) {
	p := &counterPage{count: reactive.NewSignal(0)}
	sess, _ := mountPage(t, func(Ctx) vdom.Component { return p })

	sess.Dispatch(func() { p.count.Set(41) })

	pf := recvPatch(t, sess)
	if !strings.Contains(pf.Patches[0].HTML, "count: 41") {
		t.Errorf("patch HTML = %s", pf.Patches[0].HTML)
	}
}

func TestDispatchSeesRuntimeContext(t *testing.T) {
	sess, _ := mountPage(t, buildCounter)

	got := make(chan reactive.Ctx, 1)
	sess.Dispatch(func() { got <- reactive.UseCtx() })

	select {
	case c := <-got:
		if c == nil {
			t.Fatal("UseCtx returned nil inside dispatched callback")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not run")
	}
}

func TestHandlerPanicIsContained(t *testing.T) {
	n := reactive.NewSignal(0)
	sess, _ := mountPage(t, func(Ctx) vdom.Component {
		return vdom.Func(func() *vdom.VNode {
			return vdom.Div(
				vdom.Span(vdom.Textf("n=%d", n.Get())),
				vdom.Button(vdom.OnClick(func() { panic("boom") }), vdom.Text("boom")),
				vdom.Button(vdom.OnClick(func() { n.Set(1) }), vdom.Text("inc")),
			)
		})
	})

	sess.events <- &protocol.EventFrame{Type: protocol.TypeEvent, HID: "c1e1", Event: "click"}

	var ef protocol.ErrorFrame
	if err := json.Unmarshal(recvFrame(t, sess), &ef); err != nil {
		t.Fatalf("decode error frame: %v", err)
	}
	if ef.Type != protocol.TypeError {
		t.Fatalf("frame type = %q, want %q", ef.Type, protocol.TypeError)
	}
	if ef.Message != "internal error" {
		t.Errorf("message = %q", ef.Message)
	}

	// The loop survives the panic.
	sess.events <- &protocol.EventFrame{Type: protocol.TypeEvent, HID: "c1e2", Event: "click"}
	pf := recvPatch(t, sess)
	if !strings.Contains(pf.Patches[0].HTML, "n=1") {
		t.Errorf("patch HTML = %s", pf.Patches[0].HTML)
	}
}

func TestEmit(t *testing.T) {
	sess, _ := mountPage(t, buildCounter)

	sess.Emit("weft:picker:clear", nil)

	var ef protocol.EmitFrame
	if err := json.Unmarshal(recvFrame(t, sess), &ef); err != nil {
		t.Fatalf("decode emit frame: %v", err)
	}
	if ef.Type != protocol.TypeEmit || ef.Name != "weft:picker:clear" {
		t.Fatalf("frame = %+v", ef)
	}
	if ef.Data != nil {
		t.Errorf("data = %v, want nil", ef.Data)
	}
}

func TestRerenderReplacesHandlers(t *testing.T) {
	show := reactive.NewSignal(true)
	clicked := reactive.NewSignal("")
	sess, _ := mountPage(t, func(Ctx) vdom.Component {
		return vdom.Func(func() *vdom.VNode {
			return vdom.Div(
				vdom.If(show.Get(),
					vdom.Button(vdom.OnClick(func() { clicked.Set("a") }), vdom.Text("a")),
				),
				vdom.Button(vdom.OnClick(func() { clicked.Set("b") }), vdom.Text("b")),
			)
		})
	})

	if len(sess.Handlers()) != 2 {
		t.Fatalf("initial handlers = %v", keysOf(sess.Handlers()))
	}

	sess.Dispatch(func() { show.Set(false) })
	recvPatch(t, sess)

	// One button left; the registry was rebuilt from the new tree.
	if len(sess.Handlers()) != 1 {
		t.Fatalf("handlers after re-render = %v", keysOf(sess.Handlers()))
	}
	if _, ok := sess.Handlers()["c1e1:click"]; !ok {
		t.Fatalf("remaining handler = %v", keysOf(sess.Handlers()))
	}
}

func TestCoalescedRender(t *testing.T) {
	p := &counterPage{count: reactive.NewSignal(0)}
	sess, _ := mountPage(t, func(Ctx) vdom.Component { return p })

	// Several writes in one dispatched callback produce one patch.
	sess.Dispatch(func() {
		p.count.Set(1)
		p.count.Set(2)
		p.count.Set(3)
	})

	pf := recvPatch(t, sess)
	if !strings.Contains(pf.Patches[0].HTML, "count: 3") {
		t.Errorf("patch HTML = %s", pf.Patches[0].HTML)
	}
	if n := sess.PatchCount(); n != 1 {
		t.Errorf("PatchCount = %d, want 1", n)
	}
}

func TestClose(t *testing.T) {
	sess, _ := mountPage(t, buildCounter)

	sess.Close()
	sess.Close() // idempotent

	if !sess.IsClosed() {
		t.Fatal("IsClosed = false after Close")
	}
	select {
	case <-sess.Done():
	default:
		t.Fatal("Done not closed")
	}
	if sess.Context().Err() == nil {
		t.Fatal("session context not canceled")
	}

	// Post-close operations are no-ops, not panics.
	sess.Dispatch(func() {})
	sess.Emit("x", nil)
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
