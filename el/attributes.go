// This file re-exports vdom attribute helpers for the el package.
package el

import "github.com/weft-dev/weft/pkg/vdom"

func ID(id string) Attr {
	return vdom.ID(id)
}
func Class(classes ...string) Attr {
	return vdom.Class(classes...)
}
func ClassIf(condition bool, class string) Attr {
	return vdom.ClassIf(condition, class)
}
func Classes(classes ...any) Attr {
	return vdom.Classes(classes...)
}
func AttrIf(condition bool, a Attr) Attr {
	return vdom.AttrIf(condition, a)
}
func StyleAttr(style string) Attr {
	return vdom.StyleAttr(style)
}
func Data(key, value string) Attr {
	return vdom.Data(key, value)
}
func TitleAttr(title string) Attr {
	return vdom.TitleAttr(title)
}
func Role(role string) Attr {
	return vdom.Role(role)
}
func AriaLabel(label string) Attr {
	return vdom.AriaLabel(label)
}
func AriaHidden(hidden bool) Attr {
	return vdom.AriaHidden(hidden)
}
func AriaLive(mode string) Attr {
	return vdom.AriaLive(mode)
}
func AriaBusy(busy bool) Attr {
	return vdom.AriaBusy(busy)
}
func AriaDisabled(disabled bool) Attr {
	return vdom.AriaDisabled(disabled)
}
func TabIndex(index int) Attr {
	return vdom.TabIndex(index)
}
func Hidden() Attr {
	return vdom.Hidden()
}
func Href(url string) Attr {
	return vdom.Href(url)
}
func Target(target string) Attr {
	return vdom.Target(target)
}
func Rel(rel string) Attr {
	return vdom.Rel(rel)
}
func Name(name string) Attr {
	return vdom.Name(name)
}
func Value(value string) Attr {
	return vdom.Value(value)
}
func Type(t string) Attr {
	return vdom.Type(t)
}
func Placeholder(text string) Attr {
	return vdom.Placeholder(text)
}
func Disabled() Attr {
	return vdom.Disabled()
}
func Readonly() Attr {
	return vdom.Readonly()
}
func Required() Attr {
	return vdom.Required()
}
func Checked() Attr {
	return vdom.Checked()
}
func Selected() Attr {
	return vdom.Selected()
}
func Multiple() Attr {
	return vdom.Multiple()
}
func Autofocus() Attr {
	return vdom.Autofocus()
}
func Autocomplete(value string) Attr {
	return vdom.Autocomplete(value)
}
func Accept(types string) Attr {
	return vdom.Accept(types)
}
func Capture(mode string) Attr {
	return vdom.Capture(mode)
}
func Pattern(pattern string) Attr {
	return vdom.Pattern(pattern)
}
func MinLength(n int) Attr {
	return vdom.MinLength(n)
}
func MaxLength(n int) Attr {
	return vdom.MaxLength(n)
}
func Min(value string) Attr {
	return vdom.Min(value)
}
func Max(value string) Attr {
	return vdom.Max(value)
}
func Step(value string) Attr {
	return vdom.Step(value)
}
func Rows(n int) Attr {
	return vdom.Rows(n)
}
func Cols(n int) Attr {
	return vdom.Cols(n)
}
func Action(url string) Attr {
	return vdom.Action(url)
}
func Method(method string) Attr {
	return vdom.Method(method)
}
func Enctype(enctype string) Attr {
	return vdom.Enctype(enctype)
}
func For(id string) Attr {
	return vdom.For(id)
}
func Src(url string) Attr {
	return vdom.Src(url)
}
func Alt(text string) Attr {
	return vdom.Alt(text)
}
func Width(w int) Attr {
	return vdom.Width(w)
}
func Height(h int) Attr {
	return vdom.Height(h)
}
func Loading(mode string) Attr {
	return vdom.Loading(mode)
}
func Charset(charset string) Attr {
	return vdom.Charset(charset)
}
func Content(content string) Attr {
	return vdom.Content(content)
}
func Lang(lang string) Attr {
	return vdom.Lang(lang)
}
func Open() Attr {
	return vdom.Open()
}
func Defer_() Attr {
	return vdom.Defer_()
}
func Async() Attr {
	return vdom.Async()
}
func Crossorigin(value string) Attr {
	return vdom.Crossorigin(value)
}
