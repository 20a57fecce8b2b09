package renderer

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/rivo/uniseg"

	"github.com/dshills/imagenode/internal/loadgate"
	"github.com/dshills/imagenode/internal/renderer/core"
)

// Glyphs used for drawing.
const (
	upperHalf   = '▀'
	handleGlyph = '◢'
)

var borderGlyphs = struct {
	h, v, tl, tr, bl, br rune
}{'─', '│', '┌', '┐', '└', '┘'}

// unavailableText is drawn for a failed image without alt text.
const unavailableText = "image unavailable"

type scaleKey struct {
	img        *loadgate.Image
	cols, rows int
}

func (r *Renderer) drawBox(box Box, clip core.Rect) {
	switch {
	case box.view == nil:
		r.drawLines(box, clip)
	case box.view.Image != nil:
		r.drawFrame(box, clip, r.borderStyle(box))
		r.drawImage(box, clip)
		r.drawCaption(box, clip)
	default:
		r.drawFrame(box, clip, core.NewStyle(r.opts.ErrorColor))
		r.drawAlt(box, clip)
		r.drawCaption(box, clip)
	}
	if !box.Handle.Empty() {
		r.setCell(clip, box.Handle.Left, box.Handle.Top,
			core.NewStyledCell(handleGlyph, core.NewStyle(r.opts.FocusColor).Bold()))
	}
}

// borderStyle tints the frame by focus state.
func (r *Renderer) borderStyle(box Box) core.Style {
	v := box.view
	switch {
	case v.Focused && v.Draggable:
		return core.NewStyle(r.opts.FocusColor.Blend(r.opts.DragColor, 0.5)).Bold()
	case v.Focused:
		return core.NewStyle(r.opts.FocusColor).Bold()
	default:
		return core.NewStyle(r.opts.BorderColor).Dim()
	}
}

func (r *Renderer) drawFrame(box Box, clip core.Rect, style core.Style) {
	g := borderGlyphs
	left := box.Content.Left - 1
	right := box.Content.Right
	top := box.Content.Top - 1
	bottom := box.Content.Bottom

	for x := left + 1; x < right; x++ {
		r.setCell(clip, x, top, core.NewStyledCell(g.h, style))
		r.setCell(clip, x, bottom, core.NewStyledCell(g.h, style))
	}
	for y := top + 1; y < bottom; y++ {
		r.setCell(clip, left, y, core.NewStyledCell(g.v, style))
		r.setCell(clip, right, y, core.NewStyledCell(g.v, style))
	}
	r.setCell(clip, left, top, core.NewStyledCell(g.tl, style))
	r.setCell(clip, right, top, core.NewStyledCell(g.tr, style))
	r.setCell(clip, left, bottom, core.NewStyledCell(g.bl, style))
	r.setCell(clip, right, bottom, core.NewStyledCell(g.br, style))
}

// drawImage draws the image with two pixel rows per cell: the foreground
// of an upper-half block is the top pixel, the background the bottom one.
func (r *Renderer) drawImage(box Box, clip core.Rect) {
	c := box.Content
	scaled := r.scaled(box.view.Image, c.Width(), c.Height())
	for row := 0; row < c.Height(); row++ {
		for col := 0; col < c.Width(); col++ {
			top := pixelColor(scaled.NRGBAAt(col, row*2))
			bottom := pixelColor(scaled.NRGBAAt(col, row*2+1))
			r.setCell(clip, c.Left+col, c.Top+row,
				core.NewStyledCell(upperHalf, core.NewStyle(top).WithBackground(bottom)))
		}
	}
}

// scaled returns img resized to cols x rows*2 pixels, cached per frame size.
func (r *Renderer) scaled(img *loadgate.Image, cols, rows int) *image.NRGBA {
	key := scaleKey{img: img, cols: cols, rows: rows}
	if s, ok := r.cache[key]; ok {
		r.used[key] = struct{}{}
		return s
	}
	s := imaging.Resize(img.Original, cols, rows*2, imaging.Box)
	r.cache[key] = s
	r.used[key] = struct{}{}
	return s
}

// pixelColor composites a pixel over black.
func pixelColor(p color.NRGBA) core.Color {
	a := uint16(p.A)
	return core.ColorFromRGB(
		uint8(uint16(p.R)*a/255),
		uint8(uint16(p.G)*a/255),
		uint8(uint16(p.B)*a/255),
	)
}

func (r *Renderer) drawAlt(box Box, clip core.Rect) {
	text := box.view.AltText
	if text == "" {
		text = unavailableText
	}
	c := box.Content
	lines := wrapText(text, c.Width())
	style := core.NewStyle(r.opts.ErrorColor).Dim()
	for i := 0; i < len(lines) && i < c.Height(); i++ {
		r.drawString(clip, c.Left, c.Top+i, c.Width(), lines[i], style)
	}
}

func (r *Renderer) drawCaption(box Box, clip core.Rect) {
	if box.view.Caption == "" {
		return
	}
	y := box.Rect.Bottom - 1
	r.drawString(clip, box.Rect.Left, y, r.width, box.view.Caption, core.DefaultStyle().Dim())
}

func (r *Renderer) drawLines(box Box, clip core.Rect) {
	for i, line := range box.lines {
		r.drawString(clip, box.Rect.Left, box.Rect.Top+i, box.Rect.Width(), line, core.DefaultStyle())
	}
}

// drawString draws s from (x, y) and returns the columns used. Clusters
// that would cross limit columns are dropped.
func (r *Renderer) drawString(clip core.Rect, x, y, limit int, s string, style core.Style) int {
	used := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		var w int
		cluster, s, w, state = uniseg.FirstGraphemeClusterInString(s, state)
		if w == 0 {
			continue
		}
		if used+w > limit {
			break
		}
		// tcell covers the second column of a wide cluster itself.
		r.setCell(clip, x+used, y, core.NewStyledCell([]rune(cluster)[0], style))
		used += w
	}
	return used
}

func (r *Renderer) setCell(clip core.Rect, x, y int, cell core.Cell) {
	if clip.Contains(x, y) {
		r.backend.SetCell(x, y, cell)
	}
}
