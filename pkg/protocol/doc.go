// Package protocol defines the frames exchanged between the browser
// runtime and a session over the WebSocket.
//
// Every WebSocket message carries exactly one JSON frame, discriminated
// by its "type" field. The client sends event frames; the server
// answers with patch, emit, and error frames.
//
//	client -> server   {"type":"event","hid":"c1e2","event":"click"}
//	server -> client   {"type":"patch","patches":[{"hid":"c1","html":"..."}]}
//	server -> client   {"type":"emit","name":"weft:picker:clear"}
//	server -> client   {"type":"error","message":"..."}
//
// Patches replace whole subtrees: the client swaps the outerHTML of the
// element whose data-hid matches. Hook events (file pickers and other
// client-side integrations) arrive as event frames with a hook payload
// and an "event" of the form "hook:{name}".
package protocol
