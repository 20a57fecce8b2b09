// Package input defines the pointer and keyboard payloads that the editor
// dispatches as commands.
//
// Every payload embeds Event, which carries the default-prevention flag. A
// handler that consumes a browser-style default action (deleting a
// character, starting a native drag) calls PreventDefault; the host checks
// DefaultPrevented after dispatch and skips its own fallback.
//
// Targets identify what the pointer was over when the event fired. A target
// is a surface kind plus the key of the node that owns it, so a click on the
// resize handle of image "a" is distinguishable from a click on the image
// itself.
package input

import (
	"fmt"

	"github.com/dshills/imagenode/internal/document"
)

// SurfaceKind identifies the visual surface under the pointer.
type SurfaceKind uint8

const (
	// SurfaceNone is empty space.
	SurfaceNone SurfaceKind = iota
	// SurfaceImage is the rendered image of an image node.
	SurfaceImage
	// SurfaceResizeHandle is the resize overlay of an image node.
	SurfaceResizeHandle
	// SurfaceText is a paragraph.
	SurfaceText
)

// String returns the surface name.
func (k SurfaceKind) String() string {
	switch k {
	case SurfaceImage:
		return "image"
	case SurfaceResizeHandle:
		return "resize-handle"
	case SurfaceText:
		return "text"
	default:
		return "none"
	}
}

// Target is the surface an event was delivered to.
type Target struct {
	Kind SurfaceKind
	Key  document.NodeKey
}

// ImageSurface returns the target for the image of node key.
func ImageSurface(key document.NodeKey) Target {
	return Target{Kind: SurfaceImage, Key: key}
}

// ResizeHandle returns the target for the resize overlay of node key.
func ResizeHandle(key document.NodeKey) Target {
	return Target{Kind: SurfaceResizeHandle, Key: key}
}

// Is returns true if the target is the given surface of node key.
func (t Target) Is(kind SurfaceKind, key document.NodeKey) bool {
	return t.Kind == kind && t.Key == key
}

// String returns a short description.
func (t Target) String() string {
	if t.Kind == SurfaceNone {
		return "none"
	}
	return fmt.Sprintf("%s(%s)", t.Kind, t.Key)
}

// Button is a pointer button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonPrimary is the primary (left) button.
	ButtonPrimary
	// ButtonMiddle is the middle button.
	ButtonMiddle
	// ButtonSecondary is the secondary (right) button.
	ButtonSecondary
)

// String returns the button name.
func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonMiddle:
		return "middle"
	case ButtonSecondary:
		return "secondary"
	default:
		return "none"
	}
}

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

const (
	// ModShift is the shift key.
	ModShift Modifiers = 1 << iota
	// ModCtrl is the control key.
	ModCtrl
	// ModAlt is the alt/option key.
	ModAlt
	// ModMeta is the meta/command key.
	ModMeta
)

// Has returns true if all of m are held.
func (mods Modifiers) Has(m Modifiers) bool {
	return mods&m == m
}

// Position is a pointer coordinate in host units.
type Position struct {
	X int
	Y int
}

// GestureID tags the pointer events of one press-move-release sequence.
// Zero means untagged.
type GestureID uint64

// Event carries state shared by all payloads.
type Event struct {
	defaultPrevented bool
}

// PreventDefault suppresses the host's default action for this event.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented returns true if a handler suppressed the default action.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// ClickEvent is a completed pointer click.
type ClickEvent struct {
	Event
	Target    Target
	Button    Button
	Modifiers Modifiers
	Pos       Position
	Gesture   GestureID
}

// ShiftKey returns true if shift was held.
func (c *ClickEvent) ShiftKey() bool {
	return c.Modifiers.Has(ModShift)
}

// IsPrimary returns true for a primary-button click.
func (c *ClickEvent) IsPrimary() bool {
	return c.Button == ButtonPrimary
}

// KeyCode identifies a key relevant to node commands.
type KeyCode uint8

const (
	// KeyUnknown is any other key.
	KeyUnknown KeyCode = iota
	// KeyDelete is the forward-delete key.
	KeyDelete
	// KeyBackspace is the backspace key.
	KeyBackspace
)

// String returns the key name.
func (k KeyCode) String() string {
	switch k {
	case KeyDelete:
		return "delete"
	case KeyBackspace:
		return "backspace"
	default:
		return "unknown"
	}
}

// KeyEvent is a key press.
type KeyEvent struct {
	Event
	Key       KeyCode
	Modifiers Modifiers
}

// DragEvent is the start of a native drag.
type DragEvent struct {
	Event
	Target  Target
	Pos     Position
	Gesture GestureID
}
