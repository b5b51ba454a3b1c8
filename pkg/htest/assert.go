package htest

import (
	"strings"
	"testing"
	"time"

	"github.com/weft-dev/weft/pkg/render"
	"github.com/weft-dev/weft/pkg/vdom"
)

// RenderToString renders a node with a plain renderer and returns the
// HTML, "" on render failure.
func RenderToString(node *vdom.VNode) string {
	r := render.NewRenderer(render.Config{})
	html, err := r.RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// ExpectContains asserts the rendered output contains the substring.
func ExpectContains(t *testing.T, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts the rendered output does not contain the
// substring.
func ExpectNotContains(t *testing.T, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts the rendered output opens the given tag.
func ExpectElement(t *testing.T, node *vdom.VNode, tag string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s>, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttr asserts the rendered output carries attr="value".
func ExpectAttr(t *testing.T, node *vdom.VNode, attr, value string) {
	t.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q, got:\n%s", attr, value, truncate(html, 500))
	}
}

// WaitFor polls cond until it holds or the timeout passes, then fails
// the test. Use it to wait out action completions.
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
