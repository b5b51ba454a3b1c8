package vdom

// event builds an EventHandler whose Props key is "on" + name.
func event(name string, handler any) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// Mouse

// OnClick handles click events.
func OnClick(handler any) EventHandler { return event("click", handler) }

// OnDblClick handles dblclick events.
func OnDblClick(handler any) EventHandler { return event("dblclick", handler) }

// OnMouseDown handles mousedown events.
func OnMouseDown(handler any) EventHandler { return event("mousedown", handler) }

// OnMouseUp handles mouseup events.
func OnMouseUp(handler any) EventHandler { return event("mouseup", handler) }

// OnMouseEnter handles mouseenter events.
func OnMouseEnter(handler any) EventHandler { return event("mouseenter", handler) }

// OnMouseLeave handles mouseleave events.
func OnMouseLeave(handler any) EventHandler { return event("mouseleave", handler) }

// Keyboard

// OnKeyDown handles keydown events.
func OnKeyDown(handler any) EventHandler { return event("keydown", handler) }

// OnKeyUp handles keyup events.
func OnKeyUp(handler any) EventHandler { return event("keyup", handler) }

// Forms

// OnInput handles input events, fired on every value change.
func OnInput(handler any) EventHandler { return event("input", handler) }

// OnChange handles change events, fired when a value is committed.
func OnChange(handler any) EventHandler { return event("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler any) EventHandler { return event("submit", handler) }

// OnFocus handles focus events.
func OnFocus(handler any) EventHandler { return event("focus", handler) }

// OnBlur handles blur events.
func OnBlur(handler any) EventHandler { return event("blur", handler) }

// Drag and drop

// OnDragOver handles dragover events.
func OnDragOver(handler any) EventHandler { return event("dragover", handler) }

// OnDrop handles drop events.
func OnDrop(handler any) EventHandler { return event("drop", handler) }

// Misc

// OnScroll handles scroll events.
func OnScroll(handler any) EventHandler { return event("scroll", handler) }

// OnToggle handles toggle events of a details element.
func OnToggle(handler any) EventHandler { return event("toggle", handler) }

// OnLoad handles load events.
func OnLoad(handler any) EventHandler { return event("load", handler) }

// OnError handles error events.
func OnError(handler any) EventHandler { return event("error", handler) }
