// This file re-exports client hook helpers for the el package.
package el

import "github.com/weft-dev/weft/pkg/hooks"

// HookEvent is the decoded payload of a client hook event.
type HookEvent = hooks.HookEvent

// FilePickerConfig configures the file picker hook.
type FilePickerConfig = hooks.FilePickerConfig

// Hook attaches a client hook to an element.
func Hook(name string, config any) Attr {
	return hooks.Hook(name, config)
}

// OnEvent attaches a hook event handler to an element.
func OnEvent(name string, fn func(HookEvent)) EventHandler {
	return hooks.OnEvent(name, fn)
}

// FilePicker attaches the file picker hook to an input element.
func FilePicker(cfg FilePickerConfig) Attr {
	return hooks.FilePicker(cfg)
}
