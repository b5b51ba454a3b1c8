package render

// booleanAttrs render as a bare attribute name when true and are
// omitted entirely when false.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"formnovalidate":  true,
	"hidden":          true,
	"inert":           true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"novalidate":      true,
	"open":            true,
	"playsinline":     true,
	"readonly":        true,
	"required":        true,
	"reversed":        true,
	"selected":        true,
}

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}
