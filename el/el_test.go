package el

import (
	"reflect"
	"testing"

	"github.com/weft-dev/weft/pkg/hooks"
	"github.com/weft-dev/weft/pkg/vdom"
)

var (
	_ vdom.VNode        = VNode{}
	_ vdom.VKind        = VKind(0)
	_ vdom.Props        = Props{}
	_ vdom.Attr         = Attr{}
	_ vdom.EventHandler = EventHandler{}
	_ vdom.Component    = Component(nil)
	_ hooks.HookEvent   = HookEvent{}
)

func TestElementConstructorsMatchVDOM(t *testing.T) {
	args := []any{
		vdom.ID("root"),
		vdom.Class("one", "two"),
		vdom.OnClick("noop"),
		"hello",
		vdom.Span("child"),
	}

	got := Div(args...)
	want := vdom.Div(args...)

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Div() mismatch:\n got: %#v\nwant: %#v", got, want)
	}
}

func TestElementNamesMatchVDOM(t *testing.T) {
	cases := []struct {
		name string
		got  *VNode
		want *vdom.VNode
	}{
		{"time", Time_("now"), vdom.Time_("now")},
		{"figure", Figure(Img(vdom.Src("/x.png"))), vdom.Figure(vdom.Img(vdom.Src("/x.png")))},
		{"link", Link(vdom.Rel("stylesheet")), vdom.Link(vdom.Rel("stylesheet"))},
		{"custom", CustomElement("x-chip", "hi"), vdom.CustomElement("x-chip", "hi")},
	}

	for _, tc := range cases {
		if !reflect.DeepEqual(tc.got, tc.want) {
			t.Fatalf("%s element mismatch:\n got: %#v\nwant: %#v", tc.name, tc.got, tc.want)
		}
	}
}

func TestIsVoidElement(t *testing.T) {
	if !IsVoidElement("br") {
		t.Fatal(`IsVoidElement("br") expected true`)
	}
	if IsVoidElement("div") {
		t.Fatal(`IsVoidElement("div") expected false`)
	}
}

func TestTextHelpersMatchVDOM(t *testing.T) {
	if !reflect.DeepEqual(Text("hi"), vdom.Text("hi")) {
		t.Fatal("Text() mismatch")
	}
	if !reflect.DeepEqual(Textf("hi %d", 2), vdom.Textf("hi %d", 2)) {
		t.Fatal("Textf() mismatch")
	}
	if !reflect.DeepEqual(Raw("<b>hi</b>"), vdom.Raw("<b>hi</b>")) {
		t.Fatal("Raw() mismatch")
	}
}

func TestConditionalHelpersMatchVDOM(t *testing.T) {
	node := vdom.Span("a")

	if !reflect.DeepEqual(If(true, node), vdom.If(true, node)) {
		t.Fatal("If() mismatch")
	}
	if If(false, node) != nil {
		t.Fatal("If(false) should be nil")
	}
	if !reflect.DeepEqual(IfElse(false, node, vdom.Span("b")), vdom.IfElse(false, node, vdom.Span("b"))) {
		t.Fatal("IfElse() mismatch")
	}
	if When(false, func() *VNode { t.Fatal("When(false) evaluated its body"); return nil }) != nil {
		t.Fatal("When(false) should be nil")
	}
	if Nothing() != nil {
		t.Fatal("Nothing() should be nil")
	}
}

func TestRangeMatchesVDOM(t *testing.T) {
	items := []string{"a", "b"}
	fn := func(item string, i int) *VNode { return Li(Textf("%d:%s", i, item)) }

	got := Range(items, fn)
	want := vdom.Range(items, fn)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Range() mismatch:\n got: %#v\nwant: %#v", got, want)
	}
}

func TestAttributeHelpersMatchVDOM(t *testing.T) {
	cases := []struct {
		name string
		got  Attr
		want vdom.Attr
	}{
		{"class", Class("a", "b"), vdom.Class("a", "b")},
		{"classif", ClassIf(true, "on"), vdom.ClassIf(true, "on")},
		{"attrif off", AttrIf(false, Disabled()), vdom.AttrIf(false, vdom.Disabled())},
		{"accept", Accept("image/*"), vdom.Accept("image/*")},
		{"type", Type("file"), vdom.Type("file")},
		{"src", Src("/img.png"), vdom.Src("/img.png")},
		{"role", Role("alert"), vdom.Role("alert")},
		{"aria-hidden", AriaHidden(true), vdom.AriaHidden(true)},
	}

	for _, tc := range cases {
		if !reflect.DeepEqual(tc.got, tc.want) {
			t.Fatalf("%s attribute mismatch: got %#v, want %#v", tc.name, tc.got, tc.want)
		}
	}
}

func TestEventHelpersMatchVDOM(t *testing.T) {
	// String handlers keep the values comparable.
	if !reflect.DeepEqual(OnClick("h"), vdom.OnClick("h")) {
		t.Fatal("OnClick() mismatch")
	}
	if !reflect.DeepEqual(OnInput("h"), vdom.OnInput("h")) {
		t.Fatal("OnInput() mismatch")
	}
	if got := OnChange("h").Event; got != "change" {
		t.Fatalf("OnChange().Event = %q, want change", got)
	}
}

func TestHookHelpersMatchHooks(t *testing.T) {
	cfg := FilePickerConfig{Intake: "/_weft/upload", Accept: "image/*"}

	if !reflect.DeepEqual(Hook("FilePicker", cfg), hooks.Hook("FilePicker", cfg)) {
		t.Fatal("Hook() mismatch")
	}
	if !reflect.DeepEqual(FilePicker(cfg), hooks.FilePicker(cfg)) {
		t.Fatal("FilePicker() mismatch")
	}
	if got := OnEvent("files", func(HookEvent) {}).Event; got != "onhook:files" {
		t.Fatalf("OnEvent().Event = %q, want onhook:files", got)
	}
}
