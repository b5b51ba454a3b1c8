package vdom

import "strings"

// VKind discriminates the node variants.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, ...
	KindText                   // escaped text
	KindFragment               // children without a wrapper
	KindComponent              // nested component
	KindRaw                    // unescaped HTML
)

// String returns the kind name.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is a node in the virtual tree.
type VNode struct {
	Kind     VKind
	Tag      string   // element tag name (KindElement)
	Props    Props    // attributes and event handlers
	Children []*VNode
	Key      string    // reconciliation key, not rendered
	Text     string    // KindText and KindRaw content
	Comp     Component // KindComponent payload
	HID      string    // hydration ID, assigned during render
}

// Props holds attributes plus event handlers. Handler keys start with
// "on" ("onclick", "onhook:files"); everything else renders as an
// attribute.
type Props map[string]any

// IsInteractive reports whether the element carries any event handler
// and therefore needs a hydration ID.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if strings.HasPrefix(key, "on") {
			return true
		}
	}
	return false
}

// Attr is a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsZero reports whether the attribute is empty and should be ignored.
// Conditional helpers like ClassIf return a zero Attr when the
// condition is false.
func (a Attr) IsZero() bool {
	return a.Key == ""
}

// EventHandler binds a handler to an event. Event carries the Props
// key ("onclick"); Handler is dispatched by the session.
type EventHandler struct {
	Event   string
	Handler any
}

// Component renders to a VNode. Component values are constructed once
// at mount and re-rendered whenever their state changes.
type Component interface {
	Render() *VNode
}

// FuncComponent adapts a closure to Component.
type FuncComponent struct {
	render func() *VNode
}

// Render implements Component.
func (f *FuncComponent) Render() *VNode {
	return f.render()
}

// Func wraps a render closure as a Component.
func Func(render func() *VNode) Component {
	return &FuncComponent{render: render}
}
