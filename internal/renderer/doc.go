// Package renderer draws a document of paragraphs and image elements to a
// terminal backend.
//
// Blocks are laid out top to bottom. Image sizes are given in pixels and are
// converted to cells using the configured cell size. A ready image is drawn
// with half-block characters, two pixel rows per cell. A failed image is
// drawn as a box holding its alt text. A pending image takes no space.
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│   Renderer (layout, draw, hit test)     │
//	├─────────────────────────────────────────┤
//	│           Backend Abstraction           │
//	├─────────────────────────────────────────┤
//	│  Terminal (tcell) │ SimulationScreen    │
//	└─────────────────────────────────────────┘
//
// Usage:
//
//	term, _ := backend.NewTerminal()
//	r := renderer.New(term, renderer.DefaultOptions())
//	r.Render(blocks)
//	target := r.HitTest(x, y)
package renderer
