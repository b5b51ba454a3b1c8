package weft

import "github.com/weft-dev/weft/pkg/vdom"

// ScriptPath is where the embedded client runtime is served.
const ScriptPath = "/_weft/weft.js"

// SessionMetaName is the name of the meta tag carrying the session ID.
// The client runtime reads it to attach its WebSocket.
const SessionMetaName = "weft-session"

// Scripts returns the script tag that loads the client runtime. The
// default document shell includes it automatically; custom shells must
// place it themselves.
func Scripts() *vdom.VNode {
	return vdom.Script(vdom.Src(ScriptPath), vdom.Defer_())
}
