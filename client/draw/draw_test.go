package draw

import (
	"testing"

	"patchwork/geom"
)

// newDrawable builds a w x h Drawable whose buffer has no extra
// stride padding, for tests that don't care about sub-rect offsetting.
func newDrawable(w, h int) *Drawable {
	return &Drawable{
		Stride:      w,
		Buffer:      make([]geom.Pixel, w*h),
		ContentRect: geom.Rectangle(0, 0, w, h),
	}
}

// monoFont is a fixed-width test font: every printable ASCII rune is
// a solid 4x6 glyph, advance 5, no kerning.
type monoFont struct{}

func (monoFont) GlyphFor(r rune) (Glyph, bool) {
	if r < ' ' {
		return Glyph{}, false
	}
	cov := make([]uint8, 4*6)
	for i := range cov {
		cov[i] = 255
	}
	return Glyph{Width: 4, Height: 6, BearingX: 0, BearingY: 5, AdvanceX: 5, Coverage: cov}, true
}

func (monoFont) Width(s []rune) int {
	w := 0
	for range s {
		w += 5
	}
	return w
}

func (monoFont) Ascender() int  { return 5 }
func (monoFont) Descender() int { return -1 }
func (monoFont) Kerning(a, b rune) int { return 0 }

func TestRectFillsAndClips(t *testing.T) {
	d := newDrawable(10, 10)
	// rect spans x,y in [-5,3), clipped against the content rect to [0,3).
	d.Rect(geom.Rectangle(-5, -5, 8, 8), geom.ARGB(255, 1, 2, 3))

	if d.Buffer[d.at(0, 0)] != geom.ARGB(255, 1, 2, 3) {
		t.Fatal("expected top-left filled")
	}
	if d.Buffer[d.at(2, 2)] != geom.ARGB(255, 1, 2, 3) {
		t.Fatal("expected (2,2) filled within the clipped rect")
	}
	if d.Buffer[d.at(5, 5)] != 0 {
		t.Fatal("expected (5,5) to remain untouched, outside the clipped rect")
	}
}

func TestRectInvalidateUnion(t *testing.T) {
	d := newDrawable(10, 10)
	d.Rect(geom.Rectangle(1, 1, 2, 2), geom.ARGB(255, 0, 0, 0))
	d.Rect(geom.Rectangle(5, 5, 2, 2), geom.ARGB(255, 0, 0, 0))

	want := geom.Rectangle(1, 1, 2, 2).ExpandToContain(geom.Rectangle(5, 5, 2, 2))
	if d.InvalidRect != want {
		t.Fatalf("InvalidRect = %+v, want %+v", d.InvalidRect, want)
	}
}

func TestFrameCornerMitre(t *testing.T) {
	d := newDrawable(10, 10)
	fg := geom.ARGB(255, 255, 0, 0)
	bg := geom.ARGB(255, 0, 0, 255)
	d.Frame(geom.Rectangle(0, 0, 10, 10), 3, fg, bg)

	if d.Buffer[d.at(9, 9)] != bg {
		t.Fatalf("bottom-right corner pixel = %#x, want background", d.Buffer[d.at(9, 9)])
	}
	if d.Buffer[d.at(0, 0)] != fg {
		t.Fatalf("top-left frame pixel = %#x, want foreground", d.Buffer[d.at(0, 0)])
	}
}

func TestGradientHorizontalEndpoints(t *testing.T) {
	d := newDrawable(10, 1)
	start := geom.ARGB(255, 0, 0, 0)
	end := geom.ARGB(255, 255, 255, 255)
	d.Gradient(geom.Rectangle(0, 0, 10, 1), start, end, DirectionHorizontal, nil, false)

	if d.Buffer[d.at(0, 0)] != start {
		t.Fatalf("leftmost pixel = %#x, want start %#x", d.Buffer[d.at(0, 0)], start)
	}
	last := d.Buffer[d.at(9, 0)]
	if last.R() == 0 {
		t.Fatal("rightmost pixel should have interpolated toward end")
	}
}

func TestTransferCopiesRect(t *testing.T) {
	src := newDrawable(4, 4)
	for i := range src.Buffer {
		src.Buffer[i] = geom.ARGB(255, uint8(i), 0, 0)
	}
	dst := newDrawable(4, 4)

	Transfer(dst, src, geom.Rectangle(0, 0, 4, 4), Point{0, 0})

	for i := range src.Buffer {
		if dst.Buffer[i] != src.Buffer[i] {
			t.Fatalf("pixel %d: got %#x, want %#x", i, dst.Buffer[i], src.Buffer[i])
		}
	}
}

func TestTransferRejectsOutOfRange(t *testing.T) {
	src := newDrawable(4, 4)
	dst := newDrawable(4, 4)
	dst.Buffer[0] = geom.ARGB(255, 9, 9, 9)

	Transfer(dst, src, geom.Rectangle(2, 2, 4, 4), Point{0, 0})
	if dst.Buffer[0] != geom.ARGB(255, 9, 9, 9) {
		t.Fatal("out-of-range transfer should not have touched the buffer")
	}
}

func TestTransferSelfOverlapCopiesCorrectly(t *testing.T) {
	d := newDrawable(10, 1)
	for i := 0; i < 10; i++ {
		d.Buffer[i] = geom.ARGB(255, uint8(i), 0, 0)
	}

	// shift [0,5) to [2,7): overlapping ranges, must behave like memmove
	Transfer(d, d, geom.Rectangle(2, 0, 5, 1), Point{0, 0})

	for i := 0; i < 5; i++ {
		if d.Buffer[2+i] != geom.ARGB(255, uint8(i), 0, 0) {
			t.Fatalf("pixel %d = %#x, want source pixel %d", 2+i, d.Buffer[2+i], i)
		}
	}
}

func TestTransferBlendComposites(t *testing.T) {
	src := newDrawable(2, 1)
	src.Buffer[0] = geom.ARGB(128, 255, 0, 0)
	dst := newDrawable(2, 1)
	dst.Buffer[0] = geom.ARGB(255, 0, 0, 255)

	TransferBlend(dst, src, geom.Rectangle(0, 0, 1, 1), Point{0, 0})

	if dst.Buffer[0] == geom.ARGB(255, 0, 0, 255) {
		t.Fatal("expected blend to change destination pixel")
	}
	if dst.Buffer[0].A() != 255 {
		t.Fatalf("blending over opaque dest should stay opaque, got alpha %d", dst.Buffer[0].A())
	}
}

func TestStringAdvancesByGlyphWidth(t *testing.T) {
	d := newDrawable(40, 10)
	d.String(monoFont{}, Point{0, 0}, geom.ARGB(255, 255, 255, 255), []rune("AB"))

	// second glyph's bearing box starts at x=5 (first glyph's advance)
	if d.Buffer[d.at(5, 5)].A() == 0 {
		t.Fatal("expected second glyph to have been drawn at its advanced position")
	}
}

func TestStringSkipsGlyphOutsideContentRect(t *testing.T) {
	d := newDrawable(3, 3)
	// should not panic even though the glyph overflows the drawable
	d.String(monoFont{}, Point{0, 0}, geom.ARGB(255, 255, 255, 255), []rune("A"))
}

func TestTextEllipsizesWhenTooNarrow(t *testing.T) {
	d := &Drawable{Stride: 100, Buffer: make([]geom.Pixel, 100*10), ContentRect: geom.Rectangle(0, 0, 100, 10), DefaultFont: monoFont{}}
	// width for 10 chars at advance 5 = 50, well over the 20px-wide rect
	d.Text(geom.Rectangle(0, 0, 20, 10), nil, AlignMin, AlignMin, geom.ARGB(255, 0, 0, 0), "abcdefghij")
	if d.InvalidRect.Empty() {
		t.Fatal("expected Text to have drawn something and invalidated")
	}
}

func TestTextMultilineWrapsOnSpaces(t *testing.T) {
	font := monoFont{}
	lines := wrapLines(font, "aa bb cc", 12) // each word is 2 chars wide (10px) plus space
	if len(lines) < 2 {
		t.Fatalf("expected wrapping to produce multiple lines, got %d: %v", len(lines), lines)
	}
}

func TestTextMultilineHonorsExplicitNewline(t *testing.T) {
	font := monoFont{}
	lines := wrapLines(font, "one\ntwo", 1000)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines split on explicit newline, got %d", len(lines))
	}
}

func TestBezelProducesFourBands(t *testing.T) {
	d := newDrawable(20, 20)
	d.Bezel(geom.Rectangle(0, 0, 20, 20), 4, geom.ARGB(255, 1, 1, 1))

	if d.Buffer[d.at(0, 10)].A() == 0 {
		t.Fatal("expected left bezel band to be drawn")
	}
	if d.Buffer[d.at(10, 10)].A() != 0 {
		t.Fatal("expected bezel center to remain untouched")
	}
}

func TestRidgeDrawsNestedFrames(t *testing.T) {
	d := newDrawable(20, 20)
	d.Ridge(geom.Rectangle(0, 0, 20, 20), 6, geom.ARGB(255, 1, 0, 0), geom.ARGB(255, 0, 0, 1))

	if d.Buffer[d.at(0, 0)].A() == 0 {
		t.Fatal("expected outer ridge frame to be drawn at the corner")
	}
}

func TestSeparatorSplitsInHalf(t *testing.T) {
	d := newDrawable(10, 4)
	highlight := geom.ARGB(255, 1, 1, 1)
	shadow := geom.ARGB(255, 2, 2, 2)
	d.Separator(geom.Rectangle(0, 0, 10, 4), highlight, shadow, DirectionHorizontal)

	if d.Buffer[d.at(0, 0)] != highlight {
		t.Fatal("expected left half to be highlight")
	}
	if d.Buffer[d.at(9, 0)] != shadow {
		t.Fatal("expected right half to be shadow")
	}
}

func TestOutlineDashPattern(t *testing.T) {
	d := newDrawable(20, 20)
	d.Outline(geom.Rectangle(0, 0, 20, 20), geom.ARGB(255, 1, 1, 1), 3, 1)

	// first `length` pixels of the top edge should be painted, the
	// next `length` pixels should remain untouched (the dash gap).
	if d.Buffer[d.at(0, 0)].A() == 0 {
		t.Fatal("expected dash start to be painted")
	}
	if d.Buffer[d.at(4, 0)].A() != 0 {
		t.Fatal("expected dash gap to remain unpainted")
	}
}

func TestInvalidateNilResetsToContentRect(t *testing.T) {
	d := newDrawable(10, 10)
	d.Invalidate(nil)
	if d.InvalidRect != d.ContentRect {
		t.Fatalf("InvalidRect = %+v, want content rect %+v", d.InvalidRect, d.ContentRect)
	}
}
