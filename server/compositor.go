package server

import "patchwork/geom"

// Compositor draws the current invalid region of a Screen, walking
// the z-order top to bottom until every invalid pixel has been
// covered by an opaque surface, then blends the cursor on top.
// Mirrors compositor.c, split out from DWM only because the original
// keeps its own prevCursorRect state independent of dwm.c's globals.
type Compositor struct {
	screen         *Screen
	prevCursorRect geom.Rect

	// dirty is the compositor's own invalid region, populated by
	// Invalidate (called externally on every surface move/resize/
	// visibility/focus change) and consumed here. It is distinct from
	// Screen's swapDirty: compositor.c and screen.c each keep their own
	// static invalidRegion in the original, and merging them would have
	// drawAll's final clear wipe out the entries Transfer/TransferBlend
	// just added for Swap to consume.
	dirty geom.Region
}

// drawSurface composites the part of surface's screen rect that is
// still invalid, then subtracts it from the invalid region. It
// reports whether the invalid region is now fully covered (the caller
// should stop walking further down the z-order). Mirrors
// compositor_draw_surface.
func (co *Compositor) drawSurface(s *Surface) bool {
	if !s.Visible() {
		return false
	}
	rect := s.ScreenRect()
	region := co.dirty.Clone()
	region.Intersect(rect)
	if region.Empty() {
		return false
	}
	for _, r := range region.Rects() {
		co.screen.Transfer(s, r)
	}
	co.dirty.Subtract(rect)
	return co.dirty.Empty()
}

// drawFullscreen paints a FULLSCREEN surface directly to the
// frontbuffer, bypassing the backbuffer entirely. Mirrors
// compositor_draw_fullscreen.
func (co *Compositor) drawFullscreen(fullscreen *Surface) {
	if !fullscreen.Visible() {
		return
	}
	rect := fullscreen.ScreenRect()
	region := co.dirty.Clone()
	region.Intersect(rect)
	if region.Empty() {
		return
	}
	for _, r := range region.Rects() {
		co.screen.TransferFrontbuffer(fullscreen, r)
	}
	co.dirty.Clear()
}

// drawAll composites panels, then windows, then the wall, each
// topmost-first, stopping as soon as the invalid region is fully
// covered, then blends the cursor on top. Mirrors compositor_draw_all.
func (co *Compositor) drawAll(d *DWM) {
	if co.prevCursorRect.Area() > 0 {
		co.Invalidate(co.prevCursorRect)
	}
	if co.dirty.Empty() {
		return
	}

	covered := false
	for i := len(d.panels) - 1; i >= 0 && !covered; i-- {
		covered = co.drawSurface(d.panels[i])
	}
	for i := len(d.windows) - 1; i >= 0 && !covered; i-- {
		covered = co.drawSurface(d.windows[i])
	}
	if !covered && d.wall != nil {
		co.drawSurface(d.wall)
	}

	if d.cursor != nil && d.cursor.Visible() {
		rect := d.cursor.ScreenRect()
		co.screen.TransferBlend(d.cursor, rect)
		co.prevCursorRect = rect
	} else {
		co.prevCursorRect = geom.Rect{}
	}
	co.dirty.Clear()
}

// Draw runs one composite pass: a FULLSCREEN surface takes over the
// display entirely (no backbuffer, no cursor); otherwise the normal
// layered composite runs and the result is swapped to the frontbuffer.
// A DWM with no wall surface yet draws nothing (there is nothing to
// show underneath). Mirrors compositor_draw.
func (co *Compositor) Draw(d *DWM) {
	if d.wall == nil {
		return
	}
	if d.fullscreen != nil {
		co.drawFullscreen(d.fullscreen)
		return
	}
	co.drawAll(d)
	co.screen.Swap()
}

// Invalidate marks rect (in screen coordinates) as needing
// recomposite, clamped to the screen's bounds. Mirrors
// compositor_invalidate.
func (co *Compositor) Invalidate(rect geom.Rect) {
	fit := rect.FitToParent(co.screen.rect)
	if fit.Empty() {
		return
	}
	co.dirty.Add(fit)
}
