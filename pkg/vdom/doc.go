// Package vdom provides the virtual node tree that weft components
// render into.
//
// VNode is the building block: elements, text, fragments, nested
// components, and raw HTML. Trees are built with variadic element
// constructors that accept attributes, children, strings, and event
// handlers in any order:
//
//	Div(Class("card"),
//	    H1(Text("Title")),
//	    Button(OnClick(save), Text("Save")),
//	)
//
// The tree itself is inert data. pkg/render walks it to produce HTML
// and to collect the event handlers that the session dispatches to.
// Elements that carry handlers receive a hydration ID (data-hid) during
// rendering; the browser runtime uses it to address events and patches.
package vdom
