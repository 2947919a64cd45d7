package font

import (
	stdimage "image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"patchwork/client/draw"
)

// Face adapts a Font to golang.org/x/image/font.Face, the same way
// shiny/font/plan9font.subface wraps a custom glyph store behind the
// standard interface, so a Font loaded from a .grf file can be handed
// to any x/image/font-consuming code.
type Face struct {
	f *Font
}

// AsFace returns the font.Face view of f.
func (f *Font) AsFace() font.Face { return Face{f: f} }

func (Face) Close() error { return nil }

func (s Face) Metrics() font.Metrics {
	return font.Metrics{
		Height:  fixed.I(s.f.Height()),
		Ascent:  fixed.I(s.f.Ascender()),
		Descent: fixed.I(-s.f.Descender()),
	}
}

func (s Face) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	g, ok := s.f.GlyphFor(r)
	if !ok {
		return 0, false
	}
	return fixed.I(g.AdvanceX), true
}

func (s Face) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	g, ok := s.f.GlyphFor(r)
	if !ok {
		return fixed.Rectangle26_6{}, 0, false
	}
	bounds := fixed.Rectangle26_6{
		Min: fixed.P(g.BearingX, -g.BearingY),
		Max: fixed.P(g.BearingX+g.Width, -g.BearingY+g.Height),
	}
	return bounds, fixed.I(g.AdvanceX), true
}

// glyphMask renders a Glyph's coverage buffer as an *image.Alpha so it
// can stand in for the 8-bit gray blend draw_grf_char performs
// directly against a pixel buffer.
func glyphMask(g draw.Glyph) *stdimage.Alpha {
	mask := stdimage.NewAlpha(stdimage.Rect(0, 0, g.Width, g.Height))
	copy(mask.Pix, g.Coverage)
	return mask
}

func (s Face) Glyph(dot fixed.Point26_6, r rune) (stdimage.Rectangle, stdimage.Image, stdimage.Point, fixed.Int26_6, bool) {
	g, ok := s.f.GlyphFor(r)
	if !ok {
		return stdimage.Rectangle{}, nil, stdimage.Point{}, 0, false
	}

	x := dot.X.Round() + g.BearingX
	y := dot.Y.Round() - g.BearingY
	dr := stdimage.Rect(x, y, x+g.Width, y+g.Height)

	return dr, glyphMask(g), stdimage.Point{}, fixed.I(g.AdvanceX), true
}

func (s Face) Kern(r0, r1 rune) fixed.Int26_6 {
	return fixed.I(s.f.Kerning(r0, r1))
}
