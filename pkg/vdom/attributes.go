package vdom

import "strings"

func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Identity

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// ClassIf sets a class only when condition holds.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return attr("class", class)
	}
	return Attr{}
}

// Classes merges class values from strings, slices, and map[string]bool
// toggles.
func Classes(classes ...any) Attr {
	var out []string
	for _, c := range classes {
		switch v := c.(type) {
		case string:
			if v != "" {
				out = append(out, v)
			}
		case []string:
			for _, s := range v {
				if s != "" {
					out = append(out, s)
				}
			}
		case map[string]bool:
			for class, on := range v {
				if on && class != "" {
					out = append(out, class)
				}
			}
		}
	}
	return attr("class", strings.Join(out, " "))
}

// AttrIf returns a only when condition holds, a zero Attr otherwise.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}

// StyleAttr sets the style attribute. Named to avoid colliding with the
// Style element.
func StyleAttr(style string) Attr { return attr("style", style) }

// Data sets a data-* attribute: Data("id", "42") renders data-id="42".
func Data(key, value string) Attr { return attr("data-"+key, value) }

// TitleAttr sets the title attribute. Named to avoid colliding with the
// Title element.
func TitleAttr(title string) Attr { return attr("title", title) }

// Accessibility

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attr { return attr("aria-hidden", hidden) }

// AriaLive sets the aria-live attribute.
func AriaLive(mode string) Attr { return attr("aria-live", mode) }

// AriaBusy sets the aria-busy attribute.
func AriaBusy(busy bool) Attr { return attr("aria-busy", busy) }

// AriaDisabled sets the aria-disabled attribute.
func AriaDisabled(disabled bool) Attr { return attr("aria-disabled", disabled) }

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attr { return attr("tabindex", index) }

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", true) }

// Links

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Target sets the target attribute.
func Target(target string) Attr { return attr("target", target) }

// Rel sets the rel attribute.
func Rel(rel string) Attr { return attr("rel", rel) }

// Form controls

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Value sets the value attribute.
func Value(value string) Attr { return attr("value", value) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Disabled sets the disabled attribute.
func Disabled() Attr { return attr("disabled", true) }

// Readonly sets the readonly attribute.
func Readonly() Attr { return attr("readonly", true) }

// Required sets the required attribute.
func Required() Attr { return attr("required", true) }

// Checked sets the checked attribute.
func Checked() Attr { return attr("checked", true) }

// Selected sets the selected attribute.
func Selected() Attr { return attr("selected", true) }

// Multiple sets the multiple attribute.
func Multiple() Attr { return attr("multiple", true) }

// Autofocus sets the autofocus attribute.
func Autofocus() Attr { return attr("autofocus", true) }

// Autocomplete sets the autocomplete attribute.
func Autocomplete(value string) Attr { return attr("autocomplete", value) }

// Accept sets the accept attribute of a file input.
func Accept(types string) Attr { return attr("accept", types) }

// Capture sets the capture attribute of a file input.
func Capture(mode string) Attr { return attr("capture", mode) }

// Pattern sets the pattern attribute.
func Pattern(pattern string) Attr { return attr("pattern", pattern) }

// MinLength sets the minlength attribute.
func MinLength(n int) Attr { return attr("minlength", n) }

// MaxLength sets the maxlength attribute.
func MaxLength(n int) Attr { return attr("maxlength", n) }

// Min sets the min attribute.
func Min(value string) Attr { return attr("min", value) }

// Max sets the max attribute.
func Max(value string) Attr { return attr("max", value) }

// Step sets the step attribute.
func Step(value string) Attr { return attr("step", value) }

// Rows sets the rows attribute.
func Rows(n int) Attr { return attr("rows", n) }

// Cols sets the cols attribute.
func Cols(n int) Attr { return attr("cols", n) }

// Forms

// Action sets the action attribute.
func Action(url string) Attr { return attr("action", url) }

// Method sets the method attribute.
func Method(method string) Attr { return attr("method", method) }

// Enctype sets the enctype attribute.
func Enctype(enctype string) Attr { return attr("enctype", enctype) }

// For sets the for attribute of a label.
func For(id string) Attr { return attr("for", id) }

// Media

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", text) }

// Width sets the width attribute.
func Width(w int) Attr { return attr("width", w) }

// Height sets the height attribute.
func Height(h int) Attr { return attr("height", h) }

// Loading sets the loading attribute (eager, lazy).
func Loading(mode string) Attr { return attr("loading", mode) }

// Metadata

// Charset sets the charset attribute.
func Charset(charset string) Attr { return attr("charset", charset) }

// Content sets the content attribute.
func Content(content string) Attr { return attr("content", content) }

// Lang sets the lang attribute.
func Lang(lang string) Attr { return attr("lang", lang) }

// Misc

// Open sets the open attribute of details and dialog.
func Open() Attr { return attr("open", true) }

// Defer_ sets the defer attribute of a script.
func Defer_() Attr { return attr("defer", true) }

// Async sets the async attribute of a script.
func Async() Attr { return attr("async", true) }

// Crossorigin sets the crossorigin attribute.
func Crossorigin(value string) Attr { return attr("crossorigin", value) }
