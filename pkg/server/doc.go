// Package server is the live-session runtime. Each page load creates a
// Session: the page is rendered once over HTTP with a session ID
// embedded, then the browser runtime connects to the WebSocket endpoint
// and attaches to that session.
//
// A session runs a single event-loop goroutine that owns all component
// state. Incoming events, dispatched callbacks, and render passes are
// serialized onto it, so handlers read and write signals without locks.
// A separate write pump owns the WebSocket connection and carries
// patches, emits, and heartbeats out.
//
// After every handled event the loop re-renders components whose
// dependencies changed and sends one patch per dirty component,
// replacing its subtree by hydration ID.
package server
