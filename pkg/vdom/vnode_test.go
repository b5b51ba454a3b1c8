package vdom

import "testing"

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindFragment, "Fragment"},
		{KindComponent, "Component"},
		{KindRaw, "Raw"},
		{VKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("VKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestIsInteractive(t *testing.T) {
	t.Run("element with handler", func(t *testing.T) {
		node := Button(OnClick(func() {}))
		if !node.IsInteractive() {
			t.Error("IsInteractive() = false, want true")
		}
	})

	t.Run("element with hook handler", func(t *testing.T) {
		node := Input(EventHandler{Event: "onhook:files", Handler: func() {}})
		if !node.IsInteractive() {
			t.Error("IsInteractive() = false, want true for hook handler")
		}
	})

	t.Run("element without handlers", func(t *testing.T) {
		node := Div(Class("plain"))
		if node.IsInteractive() {
			t.Error("IsInteractive() = true, want false")
		}
	})

	t.Run("text node", func(t *testing.T) {
		if Text("hi").IsInteractive() {
			t.Error("IsInteractive() = true for text node, want false")
		}
	})

	t.Run("nil node", func(t *testing.T) {
		var node *VNode
		if node.IsInteractive() {
			t.Error("IsInteractive() = true for nil node, want false")
		}
	})
}

func TestAttrIsZero(t *testing.T) {
	if (Attr{}).IsZero() != true {
		t.Error("zero Attr: IsZero() = false, want true")
	}
	if Class("x").IsZero() {
		t.Error("Class attr: IsZero() = true, want false")
	}
	if !ClassIf(false, "x").IsZero() {
		t.Error("ClassIf(false): IsZero() = false, want true")
	}
}

func TestFuncComponent(t *testing.T) {
	comp := Func(func() *VNode { return Span(Text("hi")) })
	node := comp.Render()
	if node.Tag != "span" {
		t.Errorf("Render().Tag = %q, want span", node.Tag)
	}
}
