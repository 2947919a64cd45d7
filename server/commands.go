package server

import (
	"fmt"

	"patchwork/wire"
)

// dispatch routes one already-validated command to its handler. A
// handler error is a semantic failure (no such surface, bad argument)
// and is not fatal to the connection; it is swallowed here exactly as
// client_process_cmds's actions[] table does, since races between a
// client's command and a concurrent detach are expected, not protocol
// violations.
func dispatch(c *Client, cmd wire.DecodedCommand) {
	var err error
	switch p := cmd.Payload.(type) {
	case wire.CmdScreenInfoPayload:
		err = handleScreenInfo(c, p)
	case wire.CmdSurfaceNewPayload:
		err = handleSurfaceNew(c, p)
	case wire.CmdSurfaceFreePayload:
		err = handleSurfaceFree(c, p)
	case wire.CmdSurfaceMovePayload:
		err = handleSurfaceMove(c, p)
	case wire.CmdSurfaceTimerSetPayload:
		err = handleSurfaceTimerSet(c, p)
	case wire.CmdSurfaceInvalidatePayload:
		err = handleSurfaceInvalidate(c, p)
	case wire.CmdSurfaceFocusSetPayload:
		err = handleSurfaceFocusSet(c, p)
	case wire.CmdSurfaceVisibleSetPayload:
		err = handleSurfaceVisibleSet(c, p)
	case wire.CmdSurfaceReportPayload:
		err = handleSurfaceReport(c, p)
	case wire.CmdSubscribePayload:
		if cmd.Header.Type == wire.CmdUnsubscribe {
			c.sub.Clear(p.Event)
		} else {
			c.sub.Set(p.Event)
		}
	}
	_ = err // semantic errors are intentionally not surfaced to the client (SPEC_FULL.md §C.3)
}

// handleScreenInfo answers a CmdScreenInfo request. Only index 0 is
// meaningful (a single attached display); any other index is a
// protocol-level misuse the original rejects with EINVAL rather than
// silently coercing (SPEC_FULL.md §C.1).
func handleScreenInfo(c *Client, p wire.CmdScreenInfoPayload) error {
	if p.Index != 0 {
		return fmt.Errorf("server: %w: screen index %d", wire.ErrInvalid, p.Index)
	}
	payload := wire.EventScreenInfoPayload{Width: uint64(c.dwm.Screen.Width), Height: uint64(c.dwm.Screen.Height)}
	return c.SendEvent(wire.NewEvent(wire.EventScreenInfo, wire.NoSurface, payload.Encode))
}

// handleSurfaceNew creates a surface, attaches it to the DWM's z-order
// (or singleton slot), and reports the client its shared-memory key.
func handleSurfaceNew(c *Client, p wire.CmdSurfaceNewPayload) error {
	if !p.Type.Valid() {
		return fmt.Errorf("server: %w: surface type %v", wire.ErrInvalid, p.Type)
	}
	width, height := p.Rect.Width(), p.Rect.Height()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("server: %w: non-positive surface dimensions", wire.ErrInvalid)
	}
	s, err := newSurface(c, c.dwm.allocID(), p.Type, p.Name, p.Rect.Left, p.Rect.Top, width, height)
	if err != nil {
		return err
	}
	if err := c.dwm.attach(s); err != nil {
		return err
	}
	c.addSurface(s)
	payload := wire.EventSurfaceNewPayload{ShmemKey: s.ShmemKey}
	return c.SendEvent(wire.NewEvent(wire.EventSurfaceNew, s.ID, payload.Encode))
}

// handleSurfaceFree detaches and discards one of the client's own
// surfaces.
func handleSurfaceFree(c *Client, p wire.CmdSurfaceFreePayload) error {
	s := c.findSurface(p.Target)
	if s == nil {
		return fmt.Errorf("server: %w", wire.ErrNoSuchSurface)
	}
	c.dwm.Compositor.Invalidate(s.ScreenRect())
	c.removeOwnSurface(s)
	c.dwm.detachLocked(s)
	return nil
}

// handleSurfaceMove relocates one of the client's own surfaces.
// Resizing via SURFACE_MOVE is not implemented, mirroring client.c's
// own @todo: a size change is rejected with ErrUnsupported rather than
// silently cropping or reallocating the buffer.
func handleSurfaceMove(c *Client, p wire.CmdSurfaceMovePayload) error {
	s := c.findSurface(p.Target)
	if s == nil {
		return fmt.Errorf("server: %w", wire.ErrNoSuchSurface)
	}
	if p.Rect.Width() != s.Width || p.Rect.Height() != s.Height {
		return fmt.Errorf("server: %w: surface resize via move", wire.ErrUnsupported)
	}
	old := s.ScreenRect()
	s.move(p.Rect)
	c.dwm.Compositor.Invalidate(old)
	c.dwm.Compositor.Invalidate(s.ScreenRect())
	c.dwm.reportProduce(s, s.Client, wire.ReportRect)
	return nil
}

// handleSurfaceTimerSet arms or disarms a surface's timer.
func handleSurfaceTimerSet(c *Client, p wire.CmdSurfaceTimerSetPayload) error {
	s := c.findSurface(p.Target)
	if s == nil {
		return fmt.Errorf("server: %w", wire.ErrNoSuchSurface)
	}
	s.timer.flags = p.Flags
	s.timer.timeout = p.Timeout
	if p.Timeout < 0 {
		s.timer.deadline = timerNever
	} else {
		s.timer.deadline = c.dwm.now().UnixNano() + p.Timeout
	}
	return nil
}

// handleSurfaceInvalidate marks part of a surface's own content as
// needing repaint, fitting the caller's rect to the surface's bounds
// before translating it to screen coordinates.
func handleSurfaceInvalidate(c *Client, p wire.CmdSurfaceInvalidatePayload) error {
	if p.Rect.Width() < 0 || p.Rect.Height() < 0 {
		return fmt.Errorf("server: %w: negative invalidate dimensions", wire.ErrInvalid)
	}
	s := c.findSurface(p.Target)
	if s == nil {
		return fmt.Errorf("server: %w", wire.ErrNoSuchSurface)
	}
	fit := p.Rect.FitToParent(s.ContentRect())
	screenRect := fit.Translate(s.X, s.Y)
	c.dwm.Compositor.Invalidate(screenRect)
	return nil
}

// resolveTarget looks a command's target surface up either DWM-wide
// (isGlobal) or restricted to the requesting client's own surfaces,
// mirroring the isGlobal ? dwm_surface_find : client_surface_find
// pattern shared by FOCUS_SET/VISIBLE_SET/REPORT.
func resolveTarget(c *Client, isGlobal bool, target wire.SurfaceID) *Surface {
	if isGlobal {
		return c.dwm.find(target)
	}
	return c.findSurface(target)
}

// handleSurfaceFocusSet requests focus for a surface. A target that
// can't be resolved is silently ignored (SPEC_FULL.md §4.3: expected
// under races between a command and a concurrent detach), not an
// error reported to the client.
func handleSurfaceFocusSet(c *Client, p wire.CmdSurfaceFocusSetPayload) error {
	s := resolveTarget(c, p.IsGlobal, p.Target)
	if s == nil {
		return nil
	}
	c.dwm.FocusSet(s)
	c.dwm.Compositor.Invalidate(s.ScreenRect())
	return nil
}

// handleSurfaceVisibleSet toggles a surface's visibility. Mirrors
// client_action_surface_visible_set, including its unconditional
// dwm_focus_set(surface) call on any actual change (even when hiding
// a surface; focus is not cleared: dwm_focus_set's fullscreen and
// self-equality guards leave it unchanged if the surface already holds
// it or a fullscreen surface exists, and otherwise move it onto the
// hidden surface).
func handleSurfaceVisibleSet(c *Client, p wire.CmdSurfaceVisibleSetPayload) error {
	s := resolveTarget(c, p.IsGlobal, p.Target)
	if s == nil {
		return nil
	}
	if s.Visible() == p.IsVisible {
		return nil
	}
	s.setVisible(p.IsVisible)
	c.dwm.FocusSet(s)
	c.dwm.Compositor.Invalidate(s.ScreenRect())
	c.dwm.reportProduce(s, s.Client, wire.ReportVisible)
	return nil
}

// handleSurfaceReport answers an on-demand SurfaceReport query,
// directed back at the requesting client regardless of which
// client owns the target surface.
func handleSurfaceReport(c *Client, p wire.CmdSurfaceReportPayload) error {
	s := resolveTarget(c, p.IsGlobal, p.Target)
	if s == nil {
		return nil
	}
	c.dwm.reportProduce(s, c, wire.ReportNone)
	return nil
}
