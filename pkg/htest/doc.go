// Package htest is the component test harness.
//
// It provides a runtime context whose Dispatch runs inline — so
// asynchronous completions apply without an event loop — plus render
// assertions and a polling helper for action-backed components:
//
//	ctx := htest.NewCtx().WithParam("id", "42").Build()
//	ctx.Run(func() { w = uploader.New(cfg) })
//	htest.ExpectContains(t, w.Render(), "Send image")
package htest
