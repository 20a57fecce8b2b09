package mouse

import (
	"sync"
	"time"

	"github.com/dshills/imagenode/internal/input"
)

// Button represents a mouse button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary (left) mouse button.
	ButtonLeft
	// ButtonMiddle is the middle mouse button (scroll wheel click).
	ButtonMiddle
	// ButtonRight is the secondary (right) mouse button.
	ButtonRight
	// ButtonScrollUp indicates scroll wheel up.
	ButtonScrollUp
	// ButtonScrollDown indicates scroll wheel down.
	ButtonScrollDown
	// ButtonScrollLeft indicates horizontal scroll left.
	ButtonScrollLeft
	// ButtonScrollRight indicates horizontal scroll right.
	ButtonScrollRight
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case ButtonScrollUp:
		return "scroll-up"
	case ButtonScrollDown:
		return "scroll-down"
	case ButtonScrollLeft:
		return "scroll-left"
	case ButtonScrollRight:
		return "scroll-right"
	default:
		return "none"
	}
}

// IsScroll returns true if this is a scroll button.
func (b Button) IsScroll() bool {
	return b == ButtonScrollUp || b == ButtonScrollDown ||
		b == ButtonScrollLeft || b == ButtonScrollRight
}

// toInput maps a physical button to the editor's logical button.
func (b Button) toInput() input.Button {
	switch b {
	case ButtonLeft:
		return input.ButtonPrimary
	case ButtonMiddle:
		return input.ButtonMiddle
	case ButtonRight:
		return input.ButtonSecondary
	default:
		return input.ButtonNone
	}
}

// Action represents the type of mouse action.
type Action uint8

const (
	// ActionNone indicates no action.
	ActionNone Action = iota
	// ActionPress indicates a button press.
	ActionPress
	// ActionRelease indicates a button release.
	ActionRelease
	// ActionMove indicates mouse movement (no button held).
	ActionMove
	// ActionDrag indicates mouse movement with a button held.
	ActionDrag
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	case ActionMove:
		return "move"
	case ActionDrag:
		return "drag"
	default:
		return "none"
	}
}

// Distance returns the Manhattan distance (|dx| + |dy|) between two positions.
func Distance(a, b input.Position) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Event represents a raw mouse input event.
type Event struct {
	// Position is the pointer position in host units.
	Position input.Position

	// Button is the mouse button involved.
	Button Button

	// Modifiers are any keyboard modifiers held during the event.
	Modifiers input.Modifiers

	// Action is the type of mouse action.
	Action Action

	// Target is the surface under the pointer.
	Target input.Target

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Config configures mouse handler behavior.
type Config struct {
	// DragThreshold is the distance the pointer must move before a press
	// becomes a drag.
	DragThreshold int

	// ScrollLines is the number of lines to scroll per wheel tick.
	ScrollLines int

	// ScrollLinesShift is the number of lines when Shift is held.
	ScrollLinesShift int

	// EnableDrag enables drag-start outputs for image surfaces.
	EnableDrag bool
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		DragThreshold:    2,
		ScrollLines:      3,
		ScrollLinesShift: 1,
		EnableDrag:       true,
	}
}

// OutputKind identifies a gesture output.
type OutputKind uint8

const (
	// OutputClick is a completed click.
	OutputClick OutputKind = iota + 1
	// OutputDragStart is the start of a drag from an image.
	OutputDragStart
	// OutputResizeBegin is a press on a resize handle.
	OutputResizeBegin
	// OutputResizeMove is pointer motion while resizing.
	OutputResizeMove
	// OutputResizeEnd is the release that ends a resize.
	OutputResizeEnd
	// OutputScroll is a wheel tick.
	OutputScroll
)

// String returns the output name.
func (k OutputKind) String() string {
	switch k {
	case OutputClick:
		return "click"
	case OutputDragStart:
		return "drag-start"
	case OutputResizeBegin:
		return "resize-begin"
	case OutputResizeMove:
		return "resize-move"
	case OutputResizeEnd:
		return "resize-end"
	case OutputScroll:
		return "scroll"
	default:
		return "none"
	}
}

// Output is one gesture produced from raw events.
type Output struct {
	Kind      OutputKind
	Gesture   input.GestureID
	Target    input.Target
	Button    input.Button
	Modifiers input.Modifiers

	// Position is the pointer position of the producing event.
	Position input.Position

	// Start is where the gesture's press happened.
	Start input.Position

	// Scroll is set for OutputScroll.
	Scroll *ScrollEvent
}

// Delta returns Position minus Start.
func (o Output) Delta() input.Position {
	return input.Position{X: o.Position.X - o.Start.X, Y: o.Position.Y - o.Start.Y}
}

// ClickEvent converts a click output to a command payload.
func (o Output) ClickEvent() *input.ClickEvent {
	return &input.ClickEvent{
		Target:    o.Target,
		Button:    o.Button,
		Modifiers: o.Modifiers,
		Pos:       o.Position,
		Gesture:   o.Gesture,
	}
}

// DragEvent converts a drag-start output to a command payload.
func (o Output) DragEvent() *input.DragEvent {
	return &input.DragEvent{
		Target:  o.Target,
		Pos:     o.Position,
		Gesture: o.Gesture,
	}
}

// Handler turns raw mouse events into gesture outputs.
type Handler struct {
	mu     sync.Mutex
	config Config

	// Drag tracking
	drag *dragTracker

	lastGesture input.GestureID
}

// NewHandler creates a new mouse handler with the given configuration.
func NewHandler(config Config) *Handler {
	return &Handler{
		config: config,
		drag:   newDragTracker(),
	}
}

// SetConfig replaces the configuration. Gesture state and the gesture id
// counter are kept, so ids stay unique across reconfiguration.
func (h *Handler) SetConfig(config Config) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.config = config
}

// Config returns the current configuration.
func (h *Handler) Config() Config {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.config
}

// Handle processes a mouse event and returns the resulting outputs.
func (h *Handler) Handle(event Event) []Output {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch event.Action {
	case ActionPress:
		return h.handlePress(event)
	case ActionRelease:
		return h.handleRelease(event)
	case ActionDrag:
		return h.handleDrag(event)
	}

	// Movement without a button held has no gesture meaning.
	return nil
}

// handlePress handles mouse button press events.
func (h *Handler) handlePress(event Event) []Output {
	if event.Button.IsScroll() {
		if se := ParseScrollEvent(event, h.config); se != nil {
			return []Output{{Kind: OutputScroll, Position: event.Position, Target: event.Target, Scroll: se}}
		}
		return nil
	}
	if event.Button == ButtonNone {
		return nil
	}

	// A press while another button is held continues the same gesture.
	if h.drag.active {
		return nil
	}

	h.lastGesture++
	h.drag.start(event, h.lastGesture)

	if h.drag.isResize() && event.Button == ButtonLeft {
		return []Output{h.output(OutputResizeBegin, event.Position)}
	}
	return nil
}

// handleDrag handles mouse motion with a button held.
func (h *Handler) handleDrag(event Event) []Output {
	if !h.drag.active {
		return nil
	}
	h.drag.update(event.Position)

	if h.drag.isResize() {
		if h.drag.button != ButtonLeft {
			return nil
		}
		return []Output{h.output(OutputResizeMove, event.Position)}
	}

	if h.drag.dragging || Distance(h.drag.startPos, event.Position) < h.config.DragThreshold {
		return nil
	}
	h.drag.dragging = true

	if !h.config.EnableDrag || h.drag.button != ButtonLeft || h.drag.target.Kind != input.SurfaceImage {
		return nil
	}
	return []Output{h.output(OutputDragStart, event.Position)}
}

// handleRelease ends the gesture. A resize produces its end output followed
// by the trailing click; a plain press produces a click; a drag produces
// nothing.
func (h *Handler) handleRelease(event Event) []Output {
	if !h.drag.active {
		return nil
	}
	h.drag.update(event.Position)
	defer h.drag.end()

	var outs []Output
	if h.drag.isResize() && h.drag.button == ButtonLeft {
		outs = append(outs, h.output(OutputResizeEnd, event.Position))
	} else if h.drag.dragging {
		return nil
	}

	click := h.output(OutputClick, event.Position)
	// A click lands on the surface shared by press and release.
	if event.Target != h.drag.target {
		click.Target = input.Target{}
	}
	return append(outs, click)
}

func (h *Handler) output(kind OutputKind, pos input.Position) Output {
	return Output{
		Kind:      kind,
		Gesture:   h.drag.gesture,
		Target:    h.drag.target,
		Button:    h.drag.button.toInput(),
		Modifiers: h.drag.modifiers,
		Position:  pos,
		Start:     h.drag.startPos,
	}
}

// Reset clears all handler state.
func (h *Handler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drag.end()
}

// IsDragging returns true if a button is held.
func (h *Handler) IsDragging() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.drag.active
}

// State returns a snapshot of the current pointer sequence.
func (h *Handler) State() DragState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.drag.getState()
}

// LastGesture returns the id of the most recent gesture.
func (h *Handler) LastGesture() input.GestureID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastGesture
}
