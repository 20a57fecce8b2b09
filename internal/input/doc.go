// Package input defines the editor's input vocabulary: pointer targets,
// buttons, modifiers and the command payloads dispatched for clicks, keys
// and drags.
//
// Payloads embed Event, which carries the default-prevented flag a handler
// sets to stop the host's built-in behavior, such as a native image drag.
//
//	click := &input.ClickEvent{
//	    Target:  input.ImageSurface("hero"),
//	    Button:  input.ButtonPrimary,
//	    Gesture: 7,
//	}
//	ed.Dispatch(editor.CommandClick, click)
//
// Raw pointer events are turned into these payloads by the mouse
// subpackage.
package input
