// Package imageelem implements the interactive image element of the editor.
//
// An Element ties one image node to the editor through three parts:
//
//   - SelectionBridge reads and mutates the node's membership in the
//     editor's global node selection.
//   - ResizeController tracks the Idle, Resizing and Settling states of an
//     interactive resize and commits the final size to the node.
//   - CommandRouter binds click, delete, backspace, drag-start and
//     selection-change handlers at low priority and routes them to the
//     other two parts.
//
// The element gates its visual output on a loadgate.Gate. Until the image
// source is loaded, Render returns a view with StatusPending and the host
// draws nothing.
//
// # Lifecycle
//
//	el := imageelem.New(ed, gate, imageelem.PropsFromNode(node))
//	el.OnChange(func(v imageelem.View) { redraw(v) })
//	el.Mount()
//	defer el.Unmount()
//
// Unmount removes every handler and listener in one step and cancels any
// pending load subscription, so no callback reaches an unmounted element.
//
// # Threading
//
// Elements run on the editor goroutine. Timer and load completions are
// handed back through editor.Post.
package imageelem
