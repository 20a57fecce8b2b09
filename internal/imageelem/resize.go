package imageelem

import (
	"time"

	"go.uber.org/zap"

	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/editor"
	"github.com/dshills/imagenode/internal/input"
)

// DefaultSettleDelay is how long an element stays in the Settling state
// after a resize ends.
const DefaultSettleDelay = 200 * time.Millisecond

// ResizeState is the state of an interactive resize.
type ResizeState uint8

const (
	// ResizeIdle means no resize is active.
	ResizeIdle ResizeState = iota
	// ResizeResizing means the handle is being dragged.
	ResizeResizing
	// ResizeSettling means the drag ended and trailing clicks are ignored.
	ResizeSettling
)

// String returns the state name.
func (s ResizeState) String() string {
	switch s {
	case ResizeIdle:
		return "idle"
	case ResizeResizing:
		return "resizing"
	case ResizeSettling:
		return "settling"
	default:
		return "unknown"
	}
}

// Timer is a pending Clock callback.
type Timer interface {
	Stop() bool
}

// Clock schedules the settle callback.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// SystemClock returns a Clock backed by time.AfterFunc.
func SystemClock() Clock {
	return systemClock{}
}

// ResizeController tracks the resize lifecycle of one image node.
type ResizeController struct {
	ed    *editor.Editor
	key   document.NodeKey
	log   *zap.Logger
	clock Clock
	delay time.Duration

	state       ResizeState
	timer       Timer
	epoch       uint64 // invalidates stale timer callbacks
	lastGesture input.GestureID

	onChange func(ResizeState)
}

// NewResizeController creates a controller for key.
func NewResizeController(ed *editor.Editor, key document.NodeKey, clock Clock, delay time.Duration, log *zap.Logger) *ResizeController {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if delay < 0 {
		delay = 0
	}
	return &ResizeController{
		ed:    ed,
		key:   key,
		log:   log,
		clock: clock,
		delay: delay,
	}
}

// State returns the current state.
func (rc *ResizeController) State() ResizeState {
	return rc.state
}

// Resizing returns true while a resize is active or settling.
func (rc *ResizeController) Resizing() bool {
	return rc.state != ResizeIdle
}

// SetDelay changes the settle delay for future resizes.
func (rc *ResizeController) SetDelay(d time.Duration) {
	if d >= 0 {
		rc.delay = d
	}
}

// Delay returns the settle delay.
func (rc *ResizeController) Delay() time.Duration {
	return rc.delay
}

// OnResizeStart enters Resizing. A pending settle timer is stopped.
func (rc *ResizeController) OnResizeStart() {
	rc.stopTimer()
	rc.setState(ResizeResizing)
}

// OnResizeEnd commits width and height to the node, enters Settling and
// arms the settle timer. gesture identifies the pointer sequence that ended
// the resize; a click from the same sequence is ignored even after the
// settle delay. Pass zero if the host does not tag gestures.
//
// The commit error is returned, but the state machine advances regardless.
func (rc *ResizeController) OnResizeEnd(width, height document.Dimension, gesture input.GestureID) error {
	var err error
	rc.ed.Update(func(tx *editor.Txn) {
		err = tx.SetImageSize(rc.key, width, height)
	}, "resize")
	if err != nil {
		rc.log.Warn("resize commit failed",
			zap.String("key", string(rc.key)),
			zap.Error(err))
	} else {
		rc.log.Debug("resize committed",
			zap.String("key", string(rc.key)),
			zap.Stringer("width", width),
			zap.Stringer("height", height))
	}

	if gesture != 0 {
		rc.lastGesture = gesture
	}
	rc.setState(ResizeSettling)
	rc.arm()
	return err
}

// SuppressClick returns true if a click must not change the selection:
// a resize is active or settling, or the click ends the resize gesture.
func (rc *ResizeController) SuppressClick(gesture input.GestureID) bool {
	if rc.state != ResizeIdle {
		return true
	}
	return gesture != 0 && gesture == rc.lastGesture
}

// Stop cancels any pending timer and returns to Idle without notifying.
func (rc *ResizeController) Stop() {
	rc.stopTimer()
	rc.state = ResizeIdle
}

func (rc *ResizeController) arm() {
	rc.stopTimer()
	epoch := rc.epoch
	rc.timer = rc.clock.AfterFunc(rc.delay, func() {
		rc.ed.Post(func() { rc.settle(epoch) })
	})
}

func (rc *ResizeController) settle(epoch uint64) {
	if epoch != rc.epoch || rc.state != ResizeSettling {
		return
	}
	rc.timer = nil
	rc.setState(ResizeIdle)
}

func (rc *ResizeController) stopTimer() {
	rc.epoch++
	if rc.timer != nil {
		rc.timer.Stop()
		rc.timer = nil
	}
}

func (rc *ResizeController) setState(s ResizeState) {
	if rc.state == s {
		return
	}
	rc.state = s
	if rc.onChange != nil {
		rc.onChange(s)
	}
}
