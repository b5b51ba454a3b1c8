package render

import (
	"html"
	"strings"
)

// escapeText escapes text node content for HTML bodies.
func escapeText(s string) string {
	return html.EscapeString(s)
}

// attrReplacer additionally escapes whitespace that could break
// attribute parsing.
var attrReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"\n", "&#10;",
	"\r", "&#13;",
	"\t", "&#9;",
)

// escapeAttr escapes a value for inclusion in a double-quoted HTML
// attribute.
func escapeAttr(s string) string {
	return attrReplacer.Replace(s)
}
