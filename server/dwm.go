// Package server implements the DWM core: the process that owns the
// framebuffer, brokers per-client drawing surfaces, arbitrates input,
// and composites the display (spec §4.1-§4.5, §5, §7).
package server

import (
	"fmt"
	"time"

	"patchwork/geom"
	"patchwork/wire"
)

// DWM holds every piece of server-side state: the connected clients,
// the surfaces attached to each of the five slots (ordinary windows
// and panels kept as z-ordered lists, cursor/wall/fullscreen as
// singleton pointers), the focus and cursor-hover trackers, and the
// Screen the Compositor paints into. It mirrors the static globals of
// dwm.c, gathered into one struct instead of file-scope state so a
// process can run more than one (useful for tests).
type DWM struct {
	Screen     *Screen
	Compositor Compositor

	clients []*Client

	windows []*Surface // z-order back-to-front; append = raise to top
	panels  []*Surface
	wall    *Surface
	cursor  *Surface

	fullscreen *Surface
	focus      *Surface

	prevCursorTarget *Surface
	prevHeld         wire.Button
	kbdMods          wire.Modifier

	nextID wire.SurfaceID

	now func() time.Time
	log *logger
}

// cursorSize is the fixed footprint of the DWM-owned cursor surface
// created at startup (SPEC_FULL.md §C.4); the real cursor image is
// painted by whatever client subscribes to EVENT_GLOBAL_MOUSE and owns
// cursor rendering, but the surface itself always exists.
const cursorSize = 16

// New creates a DWM core for a display of the given dimensions. It
// creates the singleton cursor surface immediately, centered on the
// screen, matching dwm_init's implicit cursor creation
// (SPEC_FULL.md §C.4); the wall surface is left nil until the caller
// populates it (SetWall), since loading the wallpaper image is a
// client/theme concern, not DWM's.
func New(width, height int) *DWM {
	d := &DWM{
		Screen: NewScreen(width, height),
		now:    time.Now,
		log:    defaultLogger(),
	}
	d.Compositor.screen = d.Screen
	cx := (width - cursorSize) / 2
	cy := (height - cursorSize) / 2
	cursor, err := newSurface(nil, d.allocID(), wire.SurfaceCursor, "cursor", cx, cy, cursorSize, cursorSize)
	if err != nil {
		// cursorSize is always positive; newSurface can only fail on
		// bad dimensions or an over-long name, neither possible here.
		panic(err)
	}
	cursor.setVisible(true)
	d.cursor = cursor
	return d
}

func (d *DWM) allocID() wire.SurfaceID {
	id := d.nextID
	d.nextID++
	return id
}

// SetWall installs the DWM-owned wallpaper surface (SPEC_FULL.md §C.5).
func (d *DWM) SetWall(width, height int, fill geom.Pixel) {
	wall, err := newSurface(nil, d.allocID(), wire.SurfaceWall, "wall", 0, 0, width, height)
	if err != nil {
		panic(err)
	}
	for i := range wall.Buffer {
		wall.Buffer[i] = fill
	}
	wall.setVisible(true)
	d.wall = wall
	d.Compositor.Invalidate(wall.ScreenRect())
}

// Connect registers a newly accepted client, mirroring
// dwm_client_accept minus the actual socket accept(2), which lives in
// cmd/dwmd's poll loop.
func (d *DWM) Connect(c *Client) {
	d.clients = append(d.clients, c)
}

// Disconnect tears a client down: every surface it owns is detached
// and its invalidated screen rect repainted, mirroring client_free +
// dwm_client_disconnect.
func (d *DWM) Disconnect(c *Client) {
	for _, s := range append([]*Surface(nil), c.surfaces...) {
		d.Compositor.Invalidate(s.ScreenRect())
		d.detachLocked(s)
	}
	for i, existing := range d.clients {
		if existing == c {
			d.clients = append(d.clients[:i], d.clients[i+1:]...)
			break
		}
	}
}

// broadcast sends ev to every connected client (subject to each
// client's subscription), dropping and disconnecting any client whose
// connection errors, mirroring dwm_send_event_to_all.
func (d *DWM) broadcast(ev wire.Event) {
	var dead []*Client
	for _, c := range d.clients {
		if err := c.SendEvent(ev); err != nil {
			d.log.Warnf("client send failed, disconnecting: %v", err)
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		d.Disconnect(c)
	}
}

func (d *DWM) broadcastEncoded(typ wire.EventType, enc func([]byte)) {
	d.broadcast(wire.NewEvent(typ, wire.NoSurface, enc))
}

// reportProduce sends an EventReport to recipient (the surface's
// owner for a move/visible-set-triggered report, or whichever client
// asked for a CmdSurfaceReport) plus an EventGlobalReport broadcast to
// everyone, mirroring dwm_report_produce.
func (d *DWM) reportProduce(s *Surface, recipient *Client, flags wire.ReportFlag) {
	payload := wire.EventReportPayload{Flags: flags, Info: s.Info()}
	if recipient != nil {
		_ = recipient.SendEvent(wire.NewEvent(wire.EventReport, s.ID, payload.Encode))
	}
	d.broadcastEncoded(wire.EventGlobalReport, payload.Encode)
}

// find looks a surface up DWM-wide by id, searching panels then
// windows (topmost first), then wall, then fullscreen — the same
// order and membership as dwm_surface_find (notably, never the
// cursor: a client can't target the cursor surface by id).
func (d *DWM) find(id wire.SurfaceID) *Surface {
	for i := len(d.panels) - 1; i >= 0; i-- {
		if d.panels[i].ID == id {
			return d.panels[i]
		}
	}
	for i := len(d.windows) - 1; i >= 0; i-- {
		if d.windows[i].ID == id {
			return d.windows[i]
		}
	}
	if d.wall != nil && d.wall.ID == id {
		return d.wall
	}
	if d.fullscreen != nil && d.fullscreen.ID == id {
		return d.fullscreen
	}
	return nil
}

// attach inserts a freshly created surface into the DWM's z-order (or
// singleton slot), enforcing at-most-one for CURSOR/WALL/FULLSCREEN
// (spec §4.2), then broadcasts EventGlobalAttach. Mirrors dwm_attach.
func (d *DWM) attach(s *Surface) error {
	switch s.Type {
	case wire.SurfaceWindow:
		d.windows = append(d.windows, s)
	case wire.SurfacePanel:
		d.panels = append(d.panels, s)
	case wire.SurfaceCursor:
		if d.cursor != nil {
			return fmt.Errorf("server: %w: cursor surface already exists", wire.ErrInvalid)
		}
		d.cursor = s
	case wire.SurfaceWall:
		if d.wall != nil {
			return fmt.Errorf("server: %w: wall surface already exists", wire.ErrInvalid)
		}
		d.wall = s
	case wire.SurfaceFullscreen:
		if d.fullscreen != nil {
			return fmt.Errorf("server: %w: fullscreen surface already exists", wire.ErrInvalid)
		}
		d.fullscreen = s
		d.focus = s
	default:
		return fmt.Errorf("server: %w: unknown surface type %v", wire.ErrInvalid, s.Type)
	}
	payload := wire.EventGlobalAttachPayload{Info: s.Info()}
	d.broadcastEncoded(wire.EventGlobalAttach, payload.Encode)
	return nil
}

// detachLocked removes s from whatever slot holds it and broadcasts
// EventGlobalDetach, mirroring dwm_detach.
func (d *DWM) detachLocked(s *Surface) {
	if s == d.focus {
		d.focus = nil
	}
	if s == d.prevCursorTarget {
		d.prevCursorTarget = nil
	}

	payload := wire.EventGlobalDetachPayload{Info: s.Info()}
	d.broadcastEncoded(wire.EventGlobalDetach, payload.Encode)

	switch s.Type {
	case wire.SurfaceWindow:
		d.windows = removeSurface(d.windows, s)
	case wire.SurfacePanel:
		d.panels = removeSurface(d.panels, s)
	case wire.SurfaceCursor:
		d.cursor = nil
	case wire.SurfaceWall:
		d.wall = nil
	case wire.SurfaceFullscreen:
		d.fullscreen = nil
		d.focus = nil
	}
}

func removeSurface(list []*Surface, s *Surface) []*Surface {
	for i, e := range list {
		if e == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// FocusSet moves input focus to s (or clears it if s is nil), ignored
// entirely while a FULLSCREEN surface holds the display. Raises
// window-type surfaces to the top of the z-order. Mirrors
// dwm_focus_set.
func (d *DWM) FocusSet(s *Surface) {
	if d.fullscreen != nil {
		return
	}
	if s == d.focus {
		return
	}
	if d.focus != nil {
		d.focus.setFocused(false)
		d.reportProduce(d.focus, d.focus.Client, wire.ReportFocused)
	}
	if s != nil {
		s.setFocused(true)
		if s.Type == wire.SurfaceWindow {
			d.windows = removeSurface(d.windows, s)
			d.windows = append(d.windows, s)
		}
		d.focus = s
		d.reportProduce(d.focus, d.focus.Client, wire.ReportFocused)
	} else {
		d.focus = nil
	}
}

// surfaceUnderPoint hit-tests the z-order at (x, y): fullscreen beats
// everything, then panels topmost-first, then windows topmost-first,
// then the wall. The cursor itself is never a hit-test target.
// Mirrors dwm_surface_under_point.
func (d *DWM) surfaceUnderPoint(x, y int) *Surface {
	if d.fullscreen != nil {
		return d.fullscreen
	}
	for i := len(d.panels) - 1; i >= 0; i-- {
		if d.panels[i].ScreenRect().ContainsPoint(x, y) {
			return d.panels[i]
		}
	}
	for i := len(d.windows) - 1; i >= 0; i-- {
		if d.windows[i].ScreenRect().ContainsPoint(x, y) {
			return d.windows[i]
		}
	}
	if d.wall != nil && d.wall.ScreenRect().ContainsPoint(x, y) {
		return d.wall
	}
	return nil
}

// nextTimer scans every surface for the earliest pending timer
// deadline, mirroring dwm_next_timer's linear scan across all five
// surface categories.
func (d *DWM) nextTimer() *Surface {
	var next *Surface
	best := int64(timerNever)
	consider := func(s *Surface) {
		if s == nil || s.timer.deadline == timerNever {
			return
		}
		if best == timerNever || s.timer.deadline < best {
			best = s.timer.deadline
			next = s
		}
	}
	for _, s := range d.windows {
		consider(s)
	}
	for _, s := range d.panels {
		consider(s)
	}
	consider(d.wall)
	consider(d.cursor)
	consider(d.fullscreen)
	return next
}

// PollTimer fires the earliest-due timer, if any, rearming it when it
// repeats, and returns how long the caller may safely block before the
// next one is due (negative if none is pending). Mirrors the timer
// half of dwm_poll.
func (d *DWM) PollTimer() time.Duration {
	s := d.nextTimer()
	if s == nil {
		return -1
	}
	now := d.now().UnixNano()
	if now < s.timer.deadline {
		return time.Duration(s.timer.deadline - now)
	}
	if s.timer.flags&wire.TimerRepeat != 0 {
		s.timer.deadline = now + s.timer.timeout
	} else {
		s.timer.deadline = timerNever
	}
	if s.Client != nil {
		_ = s.Client.SendEvent(wire.NewEvent(wire.EventTimer, s.ID, nil))
	}
	return 0
}
