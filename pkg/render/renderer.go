package render

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/weft-dev/weft/pkg/vdom"
)

// Config configures a Renderer.
type Config struct {
	// Prefix namespaces generated hydration IDs. With Prefix "c2",
	// interactive elements receive "c2e1", "c2e2", and so on. An empty
	// prefix falls back to "h1", "h2", ...
	Prefix string

	// RootHID, when set, is assigned to the first element rendered
	// instead of a generated ID. Component instances pin their root
	// this way so subtree patches can address it across re-renders.
	RootHID string
}

// Renderer writes a vdom tree as HTML and collects its event handlers.
// A Renderer is single-use per tree; call Reset to reuse one.
type Renderer struct {
	cfg      Config
	counter  uint32
	rootDone bool
	handlers map[string]any
}

// NewRenderer creates a Renderer with the given configuration.
func NewRenderer(cfg Config) *Renderer {
	return &Renderer{
		cfg:      cfg,
		handlers: make(map[string]any),
	}
}

// RenderToString renders the tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams the tree as HTML to w.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	sw := &stickyWriter{w: w}
	r.renderNode(sw, node)
	return sw.err
}

// Handlers returns the handler registry collected while rendering.
// Keys are "hid:event", e.g. "c1e2:click" or "c1e3:hook:files".
func (r *Renderer) Handlers() map[string]any {
	return r.handlers
}

// Reset clears the ID counter and handler registry for reuse.
func (r *Renderer) Reset() {
	r.counter = 0
	r.rootDone = false
	r.handlers = make(map[string]any)
}

// stickyWriter latches the first write error so the walk can run
// without per-write checks.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) str(v string) {
	if s.err == nil {
		_, s.err = io.WriteString(s.w, v)
	}
}

func (r *Renderer) renderNode(w *stickyWriter, node *vdom.VNode) {
	if node == nil || w.err != nil {
		return
	}

	switch node.Kind {
	case vdom.KindElement:
		r.renderElement(w, node)
	case vdom.KindText:
		w.str(escapeText(node.Text))
	case vdom.KindFragment:
		for _, child := range node.Children {
			r.renderNode(w, child)
		}
	case vdom.KindComponent:
		if node.Comp != nil {
			r.renderNode(w, node.Comp.Render())
		}
	case vdom.KindRaw:
		w.str(node.Text)
	default:
		w.err = fmt.Errorf("render: unknown node kind %d", node.Kind)
	}
}

func (r *Renderer) renderElement(w *stickyWriter, node *vdom.VNode) {
	w.str("<")
	w.str(node.Tag)

	r.renderAttributes(w, node)

	hid := r.elementHID(node)
	if hid != "" {
		node.HID = hid
		w.str(` data-hid="`)
		w.str(hid)
		w.str(`"`)
		r.registerHandlers(hid, node)
	}

	w.str(">")
	if vdom.IsVoidElement(node.Tag) {
		return
	}

	for _, child := range node.Children {
		r.renderNode(w, child)
	}

	w.str("</")
	w.str(node.Tag)
	w.str(">")
}

// elementHID decides the hydration ID for an element: the pinned root
// ID for the first element, a generated ID for interactive elements,
// nothing otherwise.
func (r *Renderer) elementHID(node *vdom.VNode) string {
	if !r.rootDone && r.cfg.RootHID != "" {
		r.rootDone = true
		return r.cfg.RootHID
	}
	if !node.IsInteractive() {
		return ""
	}
	r.counter++
	if r.cfg.Prefix == "" {
		return "h" + strconv.FormatUint(uint64(r.counter), 10)
	}
	return r.cfg.Prefix + "e" + strconv.FormatUint(uint64(r.counter), 10)
}

func (r *Renderer) renderAttributes(w *stickyWriter, node *vdom.VNode) {
	if len(node.Props) == 0 {
		return
	}

	// Sorted for deterministic output.
	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Props[key]

		// Internal props never render.
		if strings.HasPrefix(key, "_") {
			continue
		}
		// Handlers are registered, not rendered.
		if strings.HasPrefix(key, "on") && isHandler(value) {
			continue
		}

		if isBooleanAttr(key) {
			if on, ok := value.(bool); ok {
				if on {
					w.str(" ")
					w.str(key)
				}
				continue
			}
		}

		s := attrString(value)
		if s == "" {
			continue
		}
		w.str(" ")
		w.str(key)
		w.str(`="`)
		w.str(escapeAttr(s))
		w.str(`"`)
	}

	// Markers tell the browser runtime which DOM events to forward.
	// Hook events ride on the w-hook attribute instead.
	for _, key := range keys {
		if !strings.HasPrefix(key, "on") || !isHandler(node.Props[key]) {
			continue
		}
		event := key[2:]
		if strings.HasPrefix(event, "hook:") {
			continue
		}
		w.str(" data-on-")
		w.str(event)
		w.str(`="true"`)
	}
}

func (r *Renderer) registerHandlers(hid string, node *vdom.VNode) {
	for key, value := range node.Props {
		if strings.HasPrefix(key, "on") && isHandler(value) {
			r.handlers[hid+":"+key[2:]] = value
		}
	}
}

// isHandler reports whether the prop value is callable. Plain string
// attributes that happen to start with "on" still render as attributes.
func isHandler(value any) bool {
	if value == nil {
		return false
	}
	return reflect.TypeOf(value).Kind() == reflect.Func
}

func attrString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
