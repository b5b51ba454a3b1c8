// Package el provides the UI DSL for weft.
//
// It re-exports the HTML element constructors, attribute helpers,
// event helpers, and VDOM utilities from
// github.com/weft-dev/weft/pkg/vdom, plus the client hook helpers from
// pkg/hooks.
//
// Typical usage:
//
//	import (
//	    "github.com/weft-dev/weft"
//	    . "github.com/weft-dev/weft/el"
//	)
//
// This keeps the DSL in a dedicated package while the reactive APIs
// live in weft.
package el
