package hooks

import (
	"encoding/json"

	"github.com/weft-dev/weft/pkg/vdom"
)

// Attr is the element attribute the browser runtime scans for.
const Attr = "w-hook"

// Hook binds the named client hook to an element. The config is
// marshaled to JSON and rendered as w-hook="Name:{...}"; a nil config
// renders just the name. Configs are plain structs with json tags, so
// marshaling does not fail in practice; if it somehow does, the hook is
// bound without config.
func Hook(name string, config any) vdom.Attr {
	if config == nil {
		return vdom.Attr{Key: Attr, Value: name}
	}
	data, err := json.Marshal(config)
	if err != nil {
		return vdom.Attr{Key: Attr, Value: name}
	}
	return vdom.Attr{Key: Attr, Value: name + ":" + string(data)}
}

// OnEvent registers fn for events the named hook fires from the
// browser. Hook events travel the same path as DOM events but are
// namespaced under "hook:", so they never collide with native event
// names.
func OnEvent(name string, fn func(HookEvent)) vdom.EventHandler {
	return vdom.EventHandler{Event: "onhook:" + name, Handler: fn}
}

// HookEvent is a decoded hook event: the event name (without the
// "hook:" namespace) and whatever JSON object the hook sent along.
type HookEvent struct {
	Name string
	Data map[string]any
}

// String returns the value under key as a string, or "" when absent or
// not a string.
func (e HookEvent) String(key string) string {
	if s, ok := e.Data[key].(string); ok {
		return s
	}
	return ""
}

// Int returns the value under key as an int. JSON numbers decode as
// float64, so that shape is accepted alongside the integer types.
func (e HookEvent) Int(key string) int {
	return int(e.Int64(key))
}

// Int64 returns the value under key as an int64, or 0 when absent or
// not numeric.
func (e HookEvent) Int64(key string) int64 {
	switch v := e.Data[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Bool returns the value under key as a bool, or false when absent or
// not a bool.
func (e HookEvent) Bool(key string) bool {
	if b, ok := e.Data[key].(bool); ok {
		return b
	}
	return false
}
