// Package resizer tracks a resize-handle drag and reports the resulting
// size to an image element.
//
// A Resizer works in pixels. Pointer positions arrive in host units and are
// scaled by the configured cell size. While a drag is active Move returns a
// preview size; End commits the final size through the target.
package resizer

import (
	"errors"

	"go.uber.org/zap"

	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/input"
)

// MinSize is the smallest width or height a drag can produce.
const MinSize = 10

// ErrNotActive is returned by End when no drag is in progress.
var ErrNotActive = errors.New("resizer: no active drag")

// Target receives resize notifications.
type Target interface {
	OnResizeStart()
	OnResizeEnd(width, height document.Dimension, gesture input.GestureID) error
	MaxWidth() int
}

// Option configures a Resizer.
type Option func(*Resizer)

// WithScale sets the pixels per host unit on each axis.
func WithScale(x, y int) Option {
	return func(r *Resizer) {
		if x > 0 {
			r.scaleX = x
		}
		if y > 0 {
			r.scaleY = y
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Resizer) {
		if log != nil {
			r.log = log
		}
	}
}

// Resizer follows one resize drag at a time.
type Resizer struct {
	target Target
	log    *zap.Logger
	scaleX int
	scaleY int

	active  bool
	gesture input.GestureID
	start   input.Position
	startW  int
	startH  int
	width   int
	height  int
}

// New creates a resizer for target.
func New(target Target, opts ...Option) *Resizer {
	r := &Resizer{
		target: target,
		log:    zap.NewNop(),
		scaleX: 1,
		scaleY: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Begin starts a drag at pos from a box of startW x startH pixels.
// A startH of zero means the height is not fixed; the drag then changes the
// width only and commits an inherit height.
func (r *Resizer) Begin(gesture input.GestureID, pos input.Position, startW, startH int) {
	r.active = true
	r.gesture = gesture
	r.start = pos
	r.startW = max(startW, MinSize)
	r.startH = startH
	r.width = r.startW
	r.height = startH
	r.target.OnResizeStart()
	r.log.Debug("resize begin",
		zap.Uint64("gesture", uint64(gesture)),
		zap.Int("width", r.startW),
		zap.Int("height", startH))
}

// Move updates the preview for pos and returns it.
func (r *Resizer) Move(pos input.Position) (width, height int) {
	if !r.active {
		return 0, 0
	}
	r.width, r.height = r.compute(pos)
	return r.width, r.height
}

// End finishes the drag at pos and commits the size.
func (r *Resizer) End(pos input.Position) error {
	if !r.active {
		return ErrNotActive
	}
	w, h := r.compute(pos)
	gesture := r.gesture
	r.reset()

	height := document.Inherit
	if h > 0 {
		height = document.Pixels(h)
	}
	r.log.Debug("resize end",
		zap.Uint64("gesture", uint64(gesture)),
		zap.Int("width", w),
		zap.Stringer("height", height))
	return r.target.OnResizeEnd(document.Pixels(w), height, gesture)
}

// Cancel abandons the drag without committing.
func (r *Resizer) Cancel() {
	r.reset()
}

// Active returns true while a drag is in progress.
func (r *Resizer) Active() bool {
	return r.active
}

// Gesture returns the gesture of the active drag.
func (r *Resizer) Gesture() input.GestureID {
	return r.gesture
}

// Size returns the current preview size.
func (r *Resizer) Size() (width, height int) {
	return r.width, r.height
}

func (r *Resizer) compute(pos input.Position) (width, height int) {
	dx := (pos.X - r.start.X) * r.scaleX
	dy := (pos.Y - r.start.Y) * r.scaleY

	if r.startH <= 0 {
		return r.clampWidth(r.startW + dx), 0
	}

	// The axis that moved further drives the size; the other keeps the ratio.
	if abs(dy) > abs(dx) {
		width = r.clampWidth((r.startH + dy) * r.startW / r.startH)
	} else {
		width = r.clampWidth(r.startW + dx)
	}
	height = max(width*r.startH/r.startW, MinSize)
	return width, height
}

func (r *Resizer) clampWidth(w int) int {
	w = max(w, MinSize)
	if mw := r.target.MaxWidth(); mw > 0 && w > mw {
		w = max(mw, MinSize)
	}
	return w
}

func (r *Resizer) reset() {
	r.active = false
	r.gesture = 0
	r.start = input.Position{}
	r.startW, r.startH = 0, 0
	r.width, r.height = 0, 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
