// Package mouse turns raw pointer events into editor gestures.
//
// A Handler follows one press-move-release sequence at a time and tags it
// with a fresh input.GestureID. Depending on where the press landed, the
// sequence produces:
//
//   - a click on release, if the pointer did not move past the drag
//     threshold
//   - a drag start, once a primary press on an image moves past the
//     threshold
//   - resize begin, move and end outputs, if the press landed on a resize
//     handle, followed by the trailing click that ends the gesture
//
// Scroll wheel buttons produce scroll outputs immediately.
//
//	h := mouse.NewHandler(mouse.DefaultConfig())
//	for _, out := range h.Handle(ev) {
//	    switch out.Kind {
//	    case mouse.OutputClick:
//	        ed.Dispatch(editor.CommandClick, out.ClickEvent())
//	    case mouse.OutputDragStart:
//	        ed.Dispatch(editor.CommandDragStart, out.DragEvent())
//	    }
//	}
//
// # Thread Safety
//
// Handler is safe for concurrent use. All state mutations are properly
// synchronized with mutex protection.
package mouse
