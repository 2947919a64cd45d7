package draw

import (
	"strings"

	"patchwork/geom"
)

// glyphChar blits one glyph's coverage mask at point using pixel's
// color, alpha-scaled per-texel by the glyph's gray value. Glyphs (or
// parts of glyphs) landing outside the content rectangle are skipped
// rather than clipped. Mirrors draw_grf_char.
func (d *Drawable) glyphChar(font Font, point Point, r rune, pixel geom.Pixel) {
	glyph, ok := font.GlyphFor(r)
	if !ok {
		return
	}

	baselineY := point.Y + font.Ascender()

	for y := 0; y < glyph.Height; y++ {
		for x := 0; x < glyph.Width; x++ {
			gray := glyph.Coverage[y*glyph.Width+x]
			if gray == 0 {
				continue
			}

			targetX := point.X + glyph.BearingX + x
			targetY := baselineY - glyph.BearingY + y
			if targetX < 0 || targetY < 0 || targetX >= d.ContentRect.Width() || targetY >= d.ContentRect.Height() {
				continue
			}

			output := geom.ARGB(gray, pixel.R(), pixel.G(), pixel.B())
			idx := d.at(targetX, targetY)
			d.Buffer[idx] = geom.BlendOver(d.Buffer[idx], output)
		}
	}
}

// String draws the glyphs of s at point with no background, advancing
// by each glyph's advance width plus kerning against the next
// character. A nil font uses d.DefaultFont. Mirrors draw_string.
func (d *Drawable) String(font Font, point Point, pixel geom.Pixel, s []rune) {
	font = d.font(font)

	width := font.Width(s)
	height := font.Ascender() - font.Descender()
	textArea := geom.Rectangle(point.X, point.Y, width, height)

	pos := point
	for i, r := range s {
		glyph, ok := font.GlyphFor(r)
		if !ok {
			continue
		}
		d.glyphChar(font, pos, r, pixel)
		pos.X += glyph.AdvanceX
		if i != len(s)-1 {
			pos.X += font.Kerning(r, s[i+1])
		}
	}

	d.Invalidate(&textArea)
}

// alignedTextPos computes the top-left point for s so it lands at
// xAlign/yAlign within rect. Mirrors
// draw_calculate_aligned_text_pos.
func alignedTextPos(rect geom.Rect, font Font, s []rune, xAlign, yAlign Align) Point {
	width := font.Width(s)
	height := font.Ascender() - font.Descender()

	var x int
	switch xAlign {
	case AlignMin:
		x = rect.Left
	case AlignCenter:
		x = max(rect.Left+rect.Width()/2-width/2, rect.Left)
	case AlignMax:
		x = max(rect.Left+rect.Width()-width, rect.Left)
	}

	var y int
	switch yAlign {
	case AlignMin:
		y = rect.Top
	case AlignCenter:
		y = rect.Top + rect.Height()/2 - height/2
	case AlignMax:
		y = rect.Top + rect.Height() - height
	}

	return Point{X: x, Y: y}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Text draws text within rect, clipped with a trailing "..." ellipsis
// if it is too wide to fit, aligned per xAlign/yAlign. A nil font uses
// d.DefaultFont. Mirrors draw_text.
func (d *Drawable) Text(rect geom.Rect, font Font, xAlign, yAlign Align, pixel geom.Pixel, text string) {
	if text == "" {
		return
	}
	font = d.font(font)

	runes := []rune(text)
	maxWidth := rect.Width()
	textWidth := font.Width(runes)

	if textWidth <= maxWidth {
		pos := alignedTextPos(rect, font, runes, xAlign, yAlign)
		d.String(font, pos, pixel, runes)
		return
	}

	ellipsis := []rune("...")
	ellipsisWidth := font.Width(ellipsis)

	var drawText []rune
	var drawEllipsis []rune

	if ellipsisWidth <= maxWidth {
		width := 0
		fitted := 0
		for i := range runes {
			charWidth := font.Width(runes[i : i+1])
			if width+charWidth+ellipsisWidth <= maxWidth {
				width += charWidth
				fitted++
			} else {
				break
			}
		}
		drawText = runes[:fitted]
		drawEllipsis = ellipsis
	} else {
		width := 0
		fitted := 0
		for i := 0; i < len(ellipsis); i++ {
			charWidth := font.Width(ellipsis[i : i+1])
			if width+charWidth <= maxWidth {
				width += charWidth
				fitted++
			} else {
				break
			}
		}
		drawText = ellipsis[:fitted]
	}

	// alignedTextPos is computed against the full drawn width
	// (drawText plus a 3-rune ellipsis allowance) to match the
	// original's use of the untruncated length for alignment.
	pos := alignedTextPos(rect, font, append(append([]rune{}, drawText...), ellipsis...), xAlign, yAlign)
	d.String(font, pos, pixel, drawText)

	if drawEllipsis != nil {
		ellipsisPos := Point{X: pos.X + font.Width(drawText), Y: pos.Y}
		d.String(font, ellipsisPos, pixel, drawEllipsis)
	}
}

// TextMultiline draws word-wrapped text within rect, honoring explicit
// newlines, vertically positioning the wrapped block per yAlign and
// each line per xAlign. Lines past the bottom of rect are not drawn.
// A nil font uses d.DefaultFont. Mirrors draw_text_multiline.
func (d *Drawable) TextMultiline(rect geom.Rect, font Font, xAlign, yAlign Align, pixel geom.Pixel, text string) {
	if text == "" {
		return
	}
	font = d.font(font)

	fit := rect.FitToParent(d.ContentRect)
	lineHeight := font.Ascender() - font.Descender()
	maxWidth := fit.Width()

	lines := wrapLines(font, text, maxWidth)
	totalHeight := len(lines) * lineHeight

	var startY int
	switch yAlign {
	case AlignMin:
		startY = fit.Top
	case AlignCenter:
		startY = fit.Top + fit.Height()/2 - totalHeight/2
	case AlignMax:
		startY = fit.Top + fit.Height() - totalHeight
	}

	y := startY
	for _, line := range lines {
		if y+lineHeight > fit.Bottom {
			break
		}

		lineWidth := font.Width(line)
		var x int
		switch xAlign {
		case AlignMin:
			x = fit.Left
		case AlignCenter:
			x = max(fit.Left+fit.Width()/2-lineWidth/2, fit.Left)
		case AlignMax:
			x = max(fit.Left+fit.Width()-lineWidth, fit.Left)
		}

		d.String(font, Point{X: x, Y: y}, pixel, line)
		y += lineHeight
	}

	d.Invalidate(&fit)
}

// wrapLines greedily word-wraps text to maxWidth, breaking at the
// last space seen before a line would overflow, honoring explicit
// newlines, and never splitting a word that alone exceeds maxWidth
// (it is placed on its own overflowing line instead of hyphenated).
// Mirrors the two near-identical line-breaking passes of
// draw_text_multiline.
func wrapLines(font Font, text string, maxWidth int) [][]rune {
	var lines [][]rune
	for _, paragraph := range strings.Split(text, "\n") {
		runes := []rune(paragraph)
		start := 0
		lastSpace := -1
		width := 0

		for i := 0; i < len(runes); i++ {
			if runes[i] == ' ' {
				lastSpace = i
			}

			glyph, ok := font.GlyphFor(runes[i])
			if !ok {
				continue
			}
			width += glyph.AdvanceX
			if i+1 < len(runes) {
				width += font.Kerning(runes[i], runes[i+1])
			}

			if width > maxWidth && lastSpace >= 0 {
				lines = append(lines, runes[start:lastSpace])
				start = lastSpace + 1
				lastSpace = -1
				width = 0
			}
		}
		lines = append(lines, runes[start:])
	}
	return lines
}
