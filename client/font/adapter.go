package font

import (
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"patchwork/client/draw"
)

// faceFont adapts a golang.org/x/image/font.Face to client/draw's
// Font interface, the inverse of (*Font).AsFace: it lets a builtin
// face like basicfont.Face7x13 stand in as client/theme's fallback
// font before a .grf is loaded, mirroring
// shiny/widget.defaultTheme.GetFace handing out a builtin face by
// default.
type faceFont struct {
	face font.Face
}

// FromFace wraps face as a draw.Font.
func FromFace(face font.Face) draw.Font {
	return faceFont{face: face}
}

func (f faceFont) GlyphFor(r rune) (draw.Glyph, bool) {
	dr, mask, _, advance, ok := f.face.Glyph(fixed.P(0, 0), r)
	if !ok || mask == nil {
		return draw.Glyph{}, false
	}

	width, height := dr.Dx(), dr.Dy()
	coverage := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			_, _, _, a := mask.At(dr.Min.X+x, dr.Min.Y+y).RGBA()
			coverage[y*width+x] = uint8(a >> 8)
		}
	}

	return draw.Glyph{
		Width:    width,
		Height:   height,
		BearingX: dr.Min.X,
		BearingY: -dr.Min.Y,
		AdvanceX: advance.Round(),
		Coverage: coverage,
	}, true
}

func (f faceFont) Width(s []rune) int {
	width := 0
	for i, r := range s {
		adv, ok := f.face.GlyphAdvance(r)
		if !ok {
			continue
		}
		width += adv.Round()
		if i != len(s)-1 {
			width += f.face.Kern(r, s[i+1]).Round()
		}
	}
	return width
}

func (f faceFont) Ascender() int { return f.face.Metrics().Ascent.Round() }

func (f faceFont) Descender() int { return -f.face.Metrics().Descent.Round() }

func (f faceFont) Kerning(a, b rune) int { return f.face.Kern(a, b).Round() }
