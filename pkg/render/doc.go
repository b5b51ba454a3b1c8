// Package render turns vdom trees into HTML.
//
// A Renderer walks the tree once, writing escaped HTML and assigning
// hydration IDs (data-hid) as it goes. Event handlers found on the way
// are collected into a registry keyed "hid:event"; the session uses
// that registry to dispatch browser events back to component code.
//
// Hydration IDs are derived from the renderer's Prefix so that each
// component instance owns a disjoint ID space ("c1", "c1e1", "c1e2",
// ...). The RootHID option pins the ID of the first element rendered,
// which keeps a component's root addressable across re-renders.
package render
