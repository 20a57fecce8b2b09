package renderer

import (
	"image"
	"sync"

	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/input"
	"github.com/dshills/imagenode/internal/renderer/backend"
	"github.com/dshills/imagenode/internal/renderer/core"
)

// Options configures the renderer.
type Options struct {
	// Pixels per terminal cell.
	CellWidth  int
	CellHeight int

	// Frame colors. Focus tints a selected or resizing image; a draggable
	// image blends focus with drag.
	BorderColor core.Color
	FocusColor  core.Color
	DragColor   core.Color
	ErrorColor  core.Color

	// ShowStatus reserves the last row for a status line.
	ShowStatus bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		CellWidth:   8,
		CellHeight:  16,
		BorderColor: core.ColorFromRGB(0x5c, 0x63, 0x70),
		FocusColor:  core.ColorFromRGB(0x3d, 0x8b, 0xfd),
		DragColor:   core.ColorFromRGB(0xf5, 0xa6, 0x23),
		ErrorColor:  core.ColorFromRGB(0xe0, 0x6c, 0x75),
		ShowStatus:  true,
	}
}

func (o Options) normalized() Options {
	if o.CellWidth <= 0 {
		o.CellWidth = 8
	}
	if o.CellHeight <= 0 {
		o.CellHeight = 16
	}
	return o
}

// Renderer is the main rendering facade.
type Renderer struct {
	mu sync.Mutex

	opts    Options
	backend backend.Backend
	width   int
	height  int

	boxes  []Box
	scroll int
	status string

	// Scaled images of the last frame.
	cache map[scaleKey]*image.NRGBA
	used  map[scaleKey]struct{}
}

// New creates a renderer drawing to b.
func New(b backend.Backend, opts Options) *Renderer {
	return &Renderer{
		opts:    opts.normalized(),
		backend: b,
		cache:   make(map[scaleKey]*image.NRGBA),
		used:    make(map[scaleKey]struct{}),
	}
}

// Options returns the current options.
func (r *Renderer) Options() Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts
}

// SetOptions replaces the options. It takes effect on the next Render.
func (r *Renderer) SetOptions(opts Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts = opts.normalized()
}

// SetStatus sets the status line text.
func (r *Renderer) SetStatus(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = s
}

// Scroll moves the view by delta rows. It is clamped on the next Render.
func (r *Renderer) Scroll(delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scroll = max(r.scroll+delta, 0)
}

// ScrollOffset returns the first document row shown.
func (r *Renderer) ScrollOffset() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scroll
}

// Render lays out blocks and draws a full frame.
func (r *Renderer) Render(blocks []Block) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.width, r.height = r.backend.Size()
	view := core.RectXYWH(0, 0, r.width, r.height)
	if r.opts.ShowStatus && r.height > 1 {
		view.Bottom--
	}

	// Clamp the scroll offset against the content height.
	full := r.layout(blocks, 0, r.width)
	contentHeight := 0
	if n := len(full); n > 0 {
		contentHeight = full[n-1].Rect.Bottom
	}
	r.scroll = min(r.scroll, max(contentHeight-view.Height(), 0))
	r.boxes = r.layout(blocks, -r.scroll, r.width)

	r.backend.Clear()
	clear(r.used)
	for _, box := range r.boxes {
		if box.Rect.Bottom <= view.Top || box.Rect.Top >= view.Bottom {
			continue
		}
		r.drawBox(box, view)
	}
	for key := range r.cache {
		if _, ok := r.used[key]; !ok {
			delete(r.cache, key)
		}
	}

	if r.opts.ShowStatus && r.height > 1 {
		r.drawStatus(view.Bottom)
	}
	r.backend.Show()
}

func (r *Renderer) drawStatus(y int) {
	style := core.DefaultStyle().Reverse()
	row := core.RectXYWH(0, y, r.width, 1)
	r.backend.Fill(row, core.NewStyledCell(' ', style))
	r.drawString(row, 0, y, r.width, r.status, style)
}

// Boxes returns the boxes of the last frame.
func (r *Renderer) Boxes() []Box {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Box, len(r.boxes))
	copy(out, r.boxes)
	return out
}

// Box returns the box of key in the last frame.
func (r *Renderer) Box(key document.NodeKey) (Box, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.boxes {
		if b.Key == key {
			return b, true
		}
	}
	return Box{}, false
}

// HitTest returns the surface under (x, y) in the last frame. The resize
// handle wins over the image it overlays.
func (r *Renderer) HitTest(x, y int) input.Target {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.opts.ShowStatus && y >= r.height-1 && r.height > 1 {
		return input.Target{}
	}
	for _, b := range r.boxes {
		if !b.Rect.Contains(x, y) {
			continue
		}
		if b.Handle.Contains(x, y) {
			return input.ResizeHandle(b.Key)
		}
		return input.Target{Kind: b.Kind, Key: b.Key}
	}
	return input.Target{}
}
