// Package draw implements the drawing primitives client/window and
// client/element composite widgets with: a pixel buffer view clipped
// to an element's rect plus filled/framed/gradient shapes, pixel
// transfer, and glyph/text blitting. Grounded on
// original_source/src/libpatchwork/drawable.c.
package draw

import (
	"patchwork/geom"
)

// Point is a 2D integer point, used for transfer source origins and
// polygon vertices rather than the server-side wire.Point, which
// carries mouse-event semantics this package has no use for.
type Point struct{ X, Y int }

// Align is the horizontal or vertical alignment of text within a
// rectangle.
type Align int

const (
	AlignCenter Align = iota
	AlignMax
	AlignMin
)

// Direction selects the axis a gradient or separator runs along.
type Direction int

const (
	DirectionVertical Direction = iota
	DirectionHorizontal
	DirectionDiagonal
)

// Glyph is one rendered character: an 8-bit coverage mask plus the
// metrics needed to place and advance past it. Grounded on
// original_source/include/libpatchwork/font.h's grf_glyph_t.
type Glyph struct {
	Width, Height      int
	BearingX, BearingY int
	AdvanceX           int
	Coverage           []uint8 // row-major, len == Width*Height
}

// Font is the glyph source draw_string/draw_text pull from. Declared
// here rather than imported from client/font to avoid a package
// cycle: client/font's Font type implements this.
type Font interface {
	GlyphFor(r rune) (Glyph, bool)
	Width(s []rune) int
	Ascender() int
	Descender() int
	Kerning(a, b rune) int
}

// Imager is satisfied by client/image's Image, again to avoid a
// package cycle: Drawable exposes its own backing Drawable for
// draw_image/draw_image_blend to transfer from.
type Imager interface {
	Drawable() *Drawable
}

// Drawable is a pixel buffer view: a strided window into a window's
// full shared-memory buffer, clipped to one element's content
// rectangle. ContentRect is always local-origin (0, 0, w, h); Buffer
// is already offset so index 0 is ContentRect's top-left corner, and
// Stride is the stride of the underlying window buffer (not
// necessarily ContentRect's width), matching element_draw_begin's
// buffer/stride computation.
type Drawable struct {
	Stride      int
	Buffer      []geom.Pixel
	ContentRect geom.Rect
	InvalidRect geom.Rect

	// DefaultFont is used by String/Text/TextMultiline when called
	// with a nil font, mirroring font_default(draw->disp).
	DefaultFont Font
}

func (d *Drawable) at(x, y int) int { return x + y*d.Stride }

func (d *Drawable) font(f Font) Font {
	if f == nil {
		return d.DefaultFont
	}
	return f
}

// Invalidate marks rect as needing a flush, or the entire content
// rectangle if rect is nil. Mirrors draw_invalidate.
func (d *Drawable) Invalidate(rect *geom.Rect) {
	if rect == nil {
		d.InvalidRect = d.ContentRect
		return
	}
	if d.InvalidRect.Empty() {
		d.InvalidRect = *rect
		return
	}
	d.InvalidRect = d.InvalidRect.ExpandToContain(*rect)
}

// Rect fills rect, clipped to the content rectangle, with pixel.
// Mirrors draw_rect.
func (d *Drawable) Rect(rect geom.Rect, pixel geom.Pixel) {
	fit := rect.FitToParent(d.ContentRect)
	for y := fit.Top; y < fit.Bottom; y++ {
		row := d.Buffer[d.at(fit.Left, y):d.at(fit.Right, y)]
		for i := range row {
			row[i] = pixel
		}
	}
	d.Invalidate(&fit)
}

// Frame draws a skeuomorphic frame: width-thick foreground on the top
// and left, background on the bottom and right, with a mitred
// diagonal seam at the corners. Mirrors draw_frame.
func (d *Drawable) Frame(rect geom.Rect, width int, foreground, background geom.Pixel) {
	fit := rect.FitToParent(d.ContentRect)

	d.Rect(geom.Rect{Left: fit.Left, Top: fit.Top, Right: fit.Left + width, Bottom: fit.Bottom - width}, foreground)
	d.Rect(geom.Rect{Left: fit.Left + width, Top: fit.Top, Right: fit.Right - width, Bottom: fit.Top + width}, foreground)
	d.Rect(geom.Rect{Left: fit.Right - width, Top: fit.Top + width, Right: fit.Right, Bottom: fit.Bottom}, background)
	d.Rect(geom.Rect{Left: fit.Left + width, Top: fit.Bottom - width, Right: fit.Right - width, Bottom: fit.Bottom}, background)

	for y := 0; y < width; y++ {
		for x := 0; x < width; x++ {
			color := background
			if x+y < width-1 {
				color = foreground
			}
			d.Buffer[d.at(fit.Right-width+x, fit.Top+y)] = color
			d.Buffer[d.at(fit.Left+x, fit.Bottom-width+y)] = color
		}
	}

	d.Invalidate(&fit)
}

// Outline draws a dashed border of the given width just inside rect,
// the dash pattern repeating every 2*length pixels along each edge.
// Mirrors draw_outline (declared as draw_dashed_outline in the
// header, but that name is never defined in the retrieved source; we
// follow the .c implementation's actual name and signature).
func (d *Drawable) Outline(rect geom.Rect, pixel geom.Pixel, length, width int) {
	fit := rect.FitToParent(d.ContentRect)
	if fit.Width() <= 0 || fit.Height() <= 0 {
		return
	}

	totalLength := length * 2

	for w := 0; w < width; w++ {
		if y := fit.Top + w; y >= d.ContentRect.Top && y < d.ContentRect.Bottom {
			for x := fit.Left; x < fit.Right; x++ {
				if (x-fit.Left)%totalLength < length {
					d.Buffer[d.at(x, y)] = pixel
				}
			}
		}
		if y := fit.Bottom - 1 - w; y >= d.ContentRect.Top && y < d.ContentRect.Bottom &&
			fit.Height() > 1 && y > fit.Top+w {
			for x := fit.Left; x < fit.Right; x++ {
				if (x-fit.Left)%totalLength < length {
					d.Buffer[d.at(x, y)] = pixel
				}
			}
		}
	}

	for w := 0; w < width; w++ {
		if x := fit.Left + w; x >= d.ContentRect.Left && x < d.ContentRect.Right {
			for y := fit.Top + width; y < fit.Bottom-width; y++ {
				if (y-fit.Top-width)%totalLength < length {
					d.Buffer[d.at(x, y)] = pixel
				}
			}
		}
		if x := fit.Right - 1 - w; x >= d.ContentRect.Left && x < d.ContentRect.Right &&
			fit.Width() > 1 && x > fit.Left+w {
			for y := fit.Top + width; y < fit.Bottom-width; y++ {
				if (y-fit.Top-width)%totalLength < length {
					d.Buffer[d.at(x, y)] = pixel
				}
			}
		}
	}

	d.Invalidate(&fit)
}

// Bezel draws a filled border just inside rect, width thick, centring
// each edge's band so odd widths split evenly. Mirrors draw_bezel.
func (d *Drawable) Bezel(rect geom.Rect, width int, pixel geom.Pixel) {
	half := width / 2

	d.Rect(geom.Rect{Left: rect.Left, Top: rect.Top + width - half, Right: rect.Left + width, Bottom: rect.Bottom - width + half}, pixel)
	d.Rect(geom.Rect{Left: rect.Left + width - half, Top: rect.Top, Right: rect.Right - width + half, Bottom: rect.Top + width}, pixel)
	d.Rect(geom.Rect{Left: rect.Right - width, Top: rect.Top + width - half, Right: rect.Right, Bottom: rect.Bottom - width + half}, pixel)
	d.Rect(geom.Rect{Left: rect.Left + width - half, Top: rect.Bottom - width, Right: rect.Right - width + half, Bottom: rect.Bottom}, pixel)
}

// Ridge draws an inverted frame inside another frame, producing a
// raised-then-sunk (or sunk-then-raised) ridge effect. Mirrors
// draw_ridge.
func (d *Drawable) Ridge(rect geom.Rect, width int, foreground, background geom.Pixel) {
	half := width / 2
	d.Frame(rect, half, background, foreground)

	inner := geom.Rect{Left: rect.Left + half, Top: rect.Top + half, Right: rect.Right - half, Bottom: rect.Bottom - half}
	d.Frame(inner, half, foreground, background)
}

// Separator splits rect in half along direction and fills each half
// with highlight (top/left) or shadow (bottom/right). Mirrors
// draw_separator.
func (d *Drawable) Separator(rect geom.Rect, highlight, shadow geom.Pixel, direction Direction) {
	fit := rect.FitToParent(d.ContentRect)

	switch direction {
	case DirectionHorizontal:
		width := fit.Width()
		d.Rect(geom.Rect{Left: fit.Left, Top: fit.Top, Right: fit.Left + width/2, Bottom: fit.Bottom}, highlight)
		d.Rect(geom.Rect{Left: fit.Left + width/2, Top: fit.Top, Right: fit.Right, Bottom: fit.Bottom}, shadow)
	case DirectionVertical:
		height := fit.Height()
		d.Rect(geom.Rect{Left: fit.Left, Top: fit.Top, Right: fit.Right, Bottom: fit.Top + height/2}, highlight)
		d.Rect(geom.Rect{Left: fit.Left, Top: fit.Top + height/2, Right: fit.Right, Bottom: fit.Bottom}, shadow)
	}

	d.Invalidate(&fit)
}

// Gradient fills rect with a linear interpolation from start to end
// along direction, optionally dithering each channel by up to ±2 to
// reduce banding. Mirrors draw_gradient.
func (d *Drawable) Gradient(rect geom.Rect, start, end geom.Pixel, direction Direction, noise func() int, shouldAddNoise bool) {
	fit := rect.FitToParent(d.ContentRect)

	width := fit.Width()
	height := fit.Height()

	deltaRed := int(end.R()) - int(start.R())
	deltaGreen := int(end.G()) - int(start.G())
	deltaBlue := int(end.B()) - int(start.B())

	for y := fit.Top; y < fit.Bottom; y++ {
		for x := fit.Left; x < fit.Right; x++ {
			var num, denom int
			switch direction {
			case DirectionVertical:
				num, denom = y-fit.Top, height
			case DirectionHorizontal:
				num, denom = x-fit.Left, width
			case DirectionDiagonal:
				num, denom = (x-fit.Left)+(y-fit.Top), width+height
			}

			red := int(start.R()) + (num*deltaRed)/denom
			green := int(start.G()) + (num*deltaGreen)/denom
			blue := int(start.B()) + (num*deltaBlue)/denom

			if shouldAddNoise && noise != nil {
				red = int(geom.Clamp8(red + noise()))
				green = int(geom.Clamp8(green + noise()))
				blue = int(geom.Clamp8(blue + noise()))
			}

			d.Buffer[d.at(x, y)] = geom.ARGB(255, geom.Clamp8(red), geom.Clamp8(green), geom.Clamp8(blue))
		}
	}

	d.Invalidate(&fit)
}

// Transfer copies a rectangle from src starting at srcPoint into dest
// at destRect, with no bounds overlap check beyond rejecting
// out-of-range rectangles. dest and src may be the same Drawable; Go's
// built-in copy handles the overlapping-slice case correctly
// regardless of direction, so draw_transfer's dest==src memmove branch
// needs no special casing here. Mirrors draw_transfer.
func Transfer(dest, src *Drawable, destRect geom.Rect, srcPoint Point) {
	width, height := destRect.Width(), destRect.Height()
	if width <= 0 || height <= 0 {
		return
	}
	if srcPoint.X < 0 || srcPoint.Y < 0 || srcPoint.X+width > src.ContentRect.Width() || srcPoint.Y+height > src.ContentRect.Height() {
		return
	}
	if destRect.Left < 0 || destRect.Top < 0 || destRect.Left+width > dest.ContentRect.Width() || destRect.Top+height > dest.ContentRect.Height() {
		return
	}

	for y := 0; y < height; y++ {
		srcRow := src.Buffer[src.at(srcPoint.X, srcPoint.Y+y) : src.at(srcPoint.X, srcPoint.Y+y)+width]
		destRow := dest.Buffer[dest.at(destRect.Left, destRect.Top+y) : dest.at(destRect.Left, destRect.Top+y)+width]
		copy(destRow, srcRow)
	}

	dest.Invalidate(&destRect)
}

// TransferBlend is Transfer's alpha-blending counterpart: each source
// pixel is composited over the destination with geom.BlendOver
// instead of overwriting it. Mirrors draw_transfer_blend.
func TransferBlend(dest, src *Drawable, destRect geom.Rect, srcPoint Point) {
	width, height := destRect.Width(), destRect.Height()
	if width <= 0 || height <= 0 {
		return
	}
	if srcPoint.X < 0 || srcPoint.Y < 0 || srcPoint.X+width > src.ContentRect.Width() || srcPoint.Y+height > src.ContentRect.Height() {
		return
	}
	if destRect.Left < 0 || destRect.Top < 0 || destRect.Left+width > dest.ContentRect.Width() || destRect.Top+height > dest.ContentRect.Height() {
		return
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			srcPixel := src.Buffer[src.at(srcPoint.X+x, srcPoint.Y+y)]
			idx := dest.at(destRect.Left+x, destRect.Top+y)
			dest.Buffer[idx] = geom.BlendOver(dest.Buffer[idx], srcPixel)
		}
	}

	dest.Invalidate(&destRect)
}

// Image transfers image's backing Drawable into d at destRect,
// starting at srcPoint. Mirrors draw_image.
func (d *Drawable) Image(image Imager, destRect geom.Rect, srcPoint Point) {
	Transfer(d, image.Drawable(), destRect, srcPoint)
}

// ImageBlend is Image's alpha-blending counterpart. Mirrors
// draw_image_blend.
func (d *Drawable) ImageBlend(image Imager, destRect geom.Rect, srcPoint Point) {
	TransferBlend(d, image.Drawable(), destRect, srcPoint)
}
