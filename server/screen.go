package server

import (
	"patchwork/geom"
)

// Screen owns the front and back pixel buffers and the swap-dirty
// region that accumulates between buffer swaps. Grounded on dwm's
// screen.c: frontbuffer is the scan-out copy (a plain slice, so
// the package stays testable without a framebuffer device; cmd/dwmd
// copies it into the framebuffer it maps from its -fb-buffer path),
// backbuffer is where surfaces are composited before the swap.
type Screen struct {
	Width, Height int

	front []geom.Pixel
	back  []geom.Pixel

	rect geom.Rect

	// swapDirty tracks which backbuffer pixels have been touched since
	// the last Swap. It is a separate tracker from Compositor's own
	// invalid region (compositor.c and screen.c each keep their own
	// static invalidRegion in the original): this one is written only
	// by Transfer/TransferBlend and consumed only by Swap.
	swapDirty geom.Region
}

// NewScreen allocates a screen of the given dimensions, both buffers
// zeroed (transparent black), matching frontbuffer_init/backbuffer_init.
func NewScreen(width, height int) *Screen {
	return &Screen{
		Width:  width,
		Height: height,
		front:  make([]geom.Pixel, width*height),
		back:   make([]geom.Pixel, width*height),
		rect:   geom.Rectangle(0, 0, width, height),
	}
}

// Rect is the screen's full bounding rectangle.
func (sc *Screen) Rect() geom.Rect { return sc.rect }

// Front returns the front (scanned-out) buffer's pixels in row-major
// order. The slice must not be retained past the next Swap.
func (sc *Screen) Front() []geom.Pixel { return sc.front }

// markSwapDirty records rect (already clamped to the screen by the
// caller) as touched in the backbuffer since the last Swap. Mirrors
// screen_invalidate, which screen.c calls only from within
// screen_transfer/screen_transfer_blend.
func (sc *Screen) markSwapDirty(rect geom.Rect) {
	if rect.Empty() {
		return
	}
	sc.swapDirty.Add(rect)
}

// Transfer opaquely copies rect, clamped to the screen, from surface
// into the backbuffer, then marks the clamped rect dirty for the next
// swap. The rect is not clamped to the surface's own bounds. Mirrors
// screen_transfer, used for fully opaque surfaces (ordinary windows).
func (sc *Screen) Transfer(s *Surface, rect geom.Rect) {
	fit := rect.FitToParent(sc.rect)
	if fit.Empty() {
		return
	}
	srcX := max0(fit.Left - s.X)
	srcY := max0(fit.Top - s.Y)
	w, h := fit.Width(), fit.Height()
	for y := 0; y < h; y++ {
		dstRow := fit.Left + (fit.Top+y)*sc.Width
		srcRow := srcX + (srcY+y)*s.Width
		copy(sc.back[dstRow:dstRow+w], s.Buffer[srcRow:srcRow+w])
	}
	sc.markSwapDirty(fit)
}

// TransferBlend composites rect from surface into the backbuffer with
// alpha blending, used for the cursor overlay. Mirrors
// screen_transfer_blend, which invalidates the clamped rect rather
// than the caller's original one.
func (sc *Screen) TransferBlend(s *Surface, rect geom.Rect) {
	fit := rect.FitToParent(sc.rect)
	if fit.Empty() {
		return
	}
	srcX := max0(fit.Left - s.X)
	srcY := max0(fit.Top - s.Y)
	w, h := fit.Width(), fit.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := s.At(srcX+x, srcY+y)
			dstIdx := (fit.Left + x) + (fit.Top+y)*sc.Width
			sc.back[dstIdx] = geom.BlendOver(sc.back[dstIdx], src)
		}
	}
	sc.markSwapDirty(fit)
}

// TransferFrontbuffer opaquely copies rect from surface directly into
// the frontbuffer, bypassing the backbuffer and invalid-region
// tracking entirely. Mirrors screen_transfer_frontbuffer, used only
// while a FULLSCREEN surface owns the display (compositor_draw takes
// this path instead of the normal composite-then-swap one).
func (sc *Screen) TransferFrontbuffer(s *Surface, rect geom.Rect) {
	fit := rect.FitToParent(sc.rect)
	if fit.Empty() {
		return
	}
	srcX := max0(fit.Left - s.X)
	srcY := max0(fit.Top - s.Y)
	w, h := fit.Width(), fit.Height()
	for y := 0; y < h; y++ {
		dstRow := fit.Left + (fit.Top+y)*sc.Width
		srcRow := srcX + (srcY+y)*s.Width
		copy(sc.front[dstRow:dstRow+w], s.Buffer[srcRow:srcRow+w])
	}
}

// Swap copies every pixel touched since the last Swap from the
// backbuffer to the frontbuffer and clears the swap-dirty region.
// Mirrors screen_swap.
func (sc *Screen) Swap() {
	for _, r := range sc.swapDirty.Rects() {
		w := r.Width()
		for y := r.Top; y < r.Bottom; y++ {
			row := r.Left + y*sc.Width
			copy(sc.front[row:row+w], sc.back[row:row+w])
		}
	}
	sc.swapDirty.Clear()
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
