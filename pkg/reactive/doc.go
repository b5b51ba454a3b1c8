// Package reactive implements the signal graph that drives weft components.
//
// State lives in Signals. Reading a signal during a tracked scope (a
// component render, a memo computation, or an effect run) subscribes the
// current listener, and writing the signal marks those listeners dirty.
// Owners scope the lifetime of effects and child owners to a component
// instance, and Actions wrap asynchronous work so its completion is
// marshalled back onto the session event loop.
//
// The package is safe for concurrent use: subscriber lists are copied
// before notification and the per-goroutine tracking scope is keyed by
// goroutine ID, so renders on different sessions never observe each
// other's tracking state.
package reactive
