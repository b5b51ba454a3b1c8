// Package hooks attaches client-side behaviors to rendered elements.
//
// A hook is a named script in the browser runtime that manages one DOM
// element: it receives a JSON config through the w-hook attribute and
// reports back by firing hook events over the session's WebSocket.
// Server code declares the binding with Hook and receives the events
// with OnEvent:
//
//	el.Input(
//		el.Type("file"),
//		hooks.FilePicker(hooks.FilePickerConfig{Intake: "/_weft/upload"}),
//		hooks.OnEvent("files", onFiles),
//	)
//
// Hook events carry loosely typed JSON data; HookEvent's accessors
// normalize the usual number and string shapes.
package hooks
