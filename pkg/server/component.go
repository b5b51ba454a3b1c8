package server

import (
	"sync/atomic"

	"github.com/weft-dev/weft/pkg/reactive"
	"github.com/weft-dev/weft/pkg/render"
	"github.com/weft-dev/weft/pkg/vdom"
)

// ComponentInstance is a mounted component: the component, its
// reactive owner, and its pinned hydration ID. The instance subscribes
// to every signal its render reads; a write to any of them marks it
// dirty, and the session replaces its subtree on the next render pass.
type ComponentInstance struct {
	id      uint64
	hid     string
	comp    vdom.Component
	owner   *reactive.Owner
	session *Session
	dirty   atomic.Bool
}

func newComponentInstance(sess *Session, hid string, comp vdom.Component) *ComponentInstance {
	return &ComponentInstance{
		id:      reactive.NextID(),
		hid:     hid,
		comp:    comp,
		owner:   reactive.NewOwner(sess.owner),
		session: sess,
	}
}

// ID implements reactive.Listener.
func (ci *ComponentInstance) ID() uint64 {
	return ci.id
}

// MarkDirty implements reactive.Listener. The first mark after a
// render schedules a render pass; further marks coalesce into it.
func (ci *ComponentInstance) MarkDirty() {
	if ci.dirty.CompareAndSwap(false, true) {
		ci.session.scheduleRender()
	}
}

// HID returns the instance's pinned hydration ID.
func (ci *ComponentInstance) HID() string {
	return ci.hid
}

// Dirty reports whether a re-render is pending.
func (ci *ComponentInstance) Dirty() bool {
	return ci.dirty.Load()
}

// render produces the instance's HTML and handler registry. The walk
// runs under the instance's owner and with the instance subscribed as
// listener, so signals read during render re-mark it when written.
// The root element is pinned to the instance HID and inner interactive
// elements get IDs under it ("c1" -> "c1e1", "c1e2", ...), stable
// enough for the client to re-bind after a subtree replacement.
func (ci *ComponentInstance) render() (string, map[string]any, error) {
	r := render.NewRenderer(render.Config{Prefix: ci.hid, RootHID: ci.hid})

	var html string
	var err error
	reactive.WithOwner(ci.owner, func() {
		reactive.WithListener(ci, func() {
			html, err = r.RenderToString(ci.comp.Render())
		})
	})
	if err != nil {
		return "", nil, err
	}
	return html, r.Handlers(), nil
}

// dispose tears down the instance's reactive scope.
func (ci *ComponentInstance) dispose() {
	ci.owner.Dispose()
}
