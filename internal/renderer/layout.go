package renderer

import (
	"github.com/rivo/uniseg"

	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/imageelem"
	"github.com/dshills/imagenode/internal/input"
	"github.com/dshills/imagenode/internal/renderer/core"
)

// Block is one document block to draw: a paragraph when View is nil,
// otherwise an image element.
type Block struct {
	Key  document.NodeKey
	Text string
	View *imageelem.View
}

// Box is the laid-out area of a block in screen cells.
type Box struct {
	Key  document.NodeKey
	Kind input.SurfaceKind

	// Rect is the whole block, including border and caption.
	Rect core.Rect

	// Content is the image area inside the border.
	Content core.Rect

	// Handle is the resize handle cell. It is empty unless the view shows
	// the resizer.
	Handle core.Rect

	// PixelWidth and PixelHeight are the drawn image size in pixels.
	PixelWidth  int
	PixelHeight int

	view  *imageelem.View
	lines []string
}

// layout places blocks from row top downward within width columns.
func (r *Renderer) layout(blocks []Block, top, width int) []Box {
	boxes := make([]Box, 0, len(blocks))
	y := top
	for _, b := range blocks {
		if b.View == nil {
			lines := wrapText(b.Text, width)
			boxes = append(boxes, Box{
				Key:   b.Key,
				Kind:  input.SurfaceText,
				Rect:  core.RectXYWH(0, y, width, len(lines)),
				lines: lines,
			})
			y += len(lines)
			continue
		}
		if !b.View.Visible() {
			continue
		}
		box := r.imageBox(b.Key, b.View, y, width)
		boxes = append(boxes, box)
		y = box.Rect.Bottom
	}
	return boxes
}

func (r *Renderer) imageBox(key document.NodeKey, v *imageelem.View, y, width int) Box {
	pw, ph := PixelSize(v)
	cols := ceilDiv(pw, r.opts.CellWidth)
	rows := ceilDiv(ph, r.opts.CellHeight)
	if limit := width - 2; cols > limit {
		cols = max(limit, 1)
	}

	box := Box{
		Key:         key,
		Kind:        input.SurfaceImage,
		Rect:        core.RectXYWH(0, y, cols+2, rows+2),
		Content:     core.RectXYWH(1, y+1, cols, rows),
		PixelWidth:  pw,
		PixelHeight: ph,
		view:        v,
	}
	if v.ShowResizer {
		box.Handle = core.RectXYWH(box.Rect.Right-1, box.Rect.Bottom-1, 1, 1)
	}
	if v.Caption != "" {
		box.Rect.Bottom++
	}
	return box
}

// PixelSize returns the size an image view is drawn at. Fixed dimensions win;
// an inherit width uses the decoded image width, and an inherit height keeps
// the image aspect ratio. Without a decoded image the size hints are used.
// The width is clamped to the view's max width.
func PixelSize(v *imageelem.View) (width, height int) {
	img := v.Image
	width = v.HintWidth
	if v.Style.Width.IsInherit() && img != nil && img.Width > 0 {
		width = img.Width
	}
	if mw := v.Style.MaxWidth; mw > 0 && width > mw {
		width = mw
	}

	height = v.HintHeight
	if v.Style.Height.IsInherit() && img != nil && img.Width > 0 {
		height = width * img.Height / img.Width
	}
	return max(width, 1), max(height, 1)
}

func ceilDiv(n, d int) int {
	if d <= 0 {
		d = 1
	}
	return max((n+d-1)/d, 1)
}

// wrapText breaks s into lines no wider than width cells. An empty string
// is one empty line.
func wrapText(s string, width int) []string {
	if width <= 0 {
		return []string{""}
	}
	var lines []string
	start, lineWidth := 0, 0
	state := -1
	rest := s
	pos := 0
	for len(rest) > 0 {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if lineWidth+w > width && lineWidth > 0 {
			lines = append(lines, s[start:pos])
			start, lineWidth = pos, 0
		}
		pos += len(cluster)
		lineWidth += w
	}
	return append(lines, s[start:])
}
