// Package client carries the embedded browser runtime.
package client

import _ "embed"

// WeftJS is the thin client runtime. The framework serves it at
// "/_weft/weft.js"; the default document shell loads it with a
// deferred script tag.
//
//go:embed weft.js
var WeftJS []byte
