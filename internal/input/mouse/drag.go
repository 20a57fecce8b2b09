package mouse

import "github.com/dshills/imagenode/internal/input"

// dragTracker tracks one press-move-release sequence.
type dragTracker struct {
	// active indicates a button is held.
	active bool

	// dragging indicates the pointer moved past the drag threshold.
	dragging bool

	// button is the mouse button being held.
	button Button

	// target is the surface under the press.
	target input.Target

	// modifiers are the modifiers held at press time.
	modifiers input.Modifiers

	// gesture tags every output of this sequence.
	gesture input.GestureID

	// startPos is where the press happened.
	startPos input.Position

	// currentPos is the latest pointer position.
	currentPos input.Position
}

// newDragTracker creates a new drag tracker.
func newDragTracker() *dragTracker {
	return &dragTracker{}
}

// start begins a new sequence.
func (t *dragTracker) start(ev Event, gesture input.GestureID) {
	t.active = true
	t.dragging = false
	t.button = ev.Button
	t.target = ev.Target
	t.modifiers = ev.Modifiers
	t.gesture = gesture
	t.startPos = ev.Position
	t.currentPos = ev.Position
}

// update records the current pointer position.
func (t *dragTracker) update(pos input.Position) {
	if t.active {
		t.currentPos = pos
	}
}

// end clears the sequence.
func (t *dragTracker) end() {
	*t = dragTracker{}
}

// isResize returns true if the sequence started on a resize handle.
func (t *dragTracker) isResize() bool {
	return t.active && t.target.Kind == input.SurfaceResizeHandle
}

// getDelta returns the distance dragged from start.
func (t *dragTracker) getDelta() input.Position {
	return input.Position{
		X: t.currentPos.X - t.startPos.X,
		Y: t.currentPos.Y - t.startPos.Y,
	}
}

// DragState represents the current state of a pointer sequence.
type DragState struct {
	// Active indicates a button is held.
	Active bool

	// Dragging indicates the pointer moved past the drag threshold.
	Dragging bool

	// Button is the mouse button being held.
	Button Button

	// Target is the surface under the press.
	Target input.Target

	// Gesture tags the sequence.
	Gesture input.GestureID

	// StartPos is where the press happened.
	StartPos input.Position

	// CurrentPos is the latest pointer position.
	CurrentPos input.Position

	// Delta is CurrentPos minus StartPos.
	Delta input.Position
}

// getState returns a snapshot of the tracker.
func (t *dragTracker) getState() DragState {
	return DragState{
		Active:     t.active,
		Dragging:   t.dragging,
		Button:     t.button,
		Target:     t.target,
		Gesture:    t.gesture,
		StartPos:   t.startPos,
		CurrentPos: t.currentPos,
		Delta:      t.getDelta(),
	}
}
