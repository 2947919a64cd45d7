package server

import (
	"fmt"

	"patchwork/geom"
	"patchwork/wire"
)

// surfaceTimer tracks a surface's optional repeating/one-shot timer
// (spec §4.3), grounded on dwm's timer_t.
type surfaceTimer struct {
	flags    wire.TimerFlag
	timeout  int64 // nanoseconds between firings, or negative for "never"
	deadline int64 // absolute monotonic nanoseconds of the next firing, or -1
}

const timerNever int64 = -1

// Surface is one shared drawing surface owned by a client: a window,
// panel, the cursor, the wallpaper, or the fullscreen overlay. It
// mirrors dwm's surface_t, with its pixel buffer a plain Go slice
// rather than an mmap'd shared-memory region (cmd/dwmd maps no shared
// memory either: nothing on the server side creates or maps the region
// ShmemKey names).
type Surface struct {
	ID     wire.SurfaceID
	Type   wire.SurfaceType
	Name   string
	Client *Client

	X, Y          int
	Width, Height int

	ShmemKey string
	Buffer   []geom.Pixel

	flags wire.SurfaceFlag
	timer surfaceTimer
}

// newSurface allocates a surface's backing buffer and assigns it the
// next monotonically increasing id. Grounded on surface_new: the real
// shared-memory buffer is zeroed on creation and is addressed by a key
// the client must separately map (EventSurfaceNew carries the key).
func newSurface(client *Client, id wire.SurfaceID, typ wire.SurfaceType, name string, x, y, width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("server: %w: non-positive surface dimensions %dx%d", wire.ErrInvalid, width, height)
	}
	if len(name) >= wire.MaxName {
		return nil, fmt.Errorf("server: %w: surface name too long", wire.ErrInvalid)
	}
	s := &Surface{
		ID:       id,
		Type:     typ,
		Name:     name,
		Client:   client,
		X:        x,
		Y:        y,
		Width:    width,
		Height:   height,
		ShmemKey: fmt.Sprintf("dwm-surface-%d", id),
		Buffer:   make([]geom.Pixel, width*height),
		timer:    surfaceTimer{flags: wire.TimerNone, timeout: timerNever, deadline: timerNever},
	}
	return s, nil
}

// ScreenRect is the surface's bounding rectangle in screen coordinates.
func (s *Surface) ScreenRect() geom.Rect {
	return geom.Rectangle(s.X, s.Y, s.Width, s.Height)
}

// ContentRect is the surface's bounding rectangle in its own local
// coordinate space, i.e. with its origin at (0, 0).
func (s *Surface) ContentRect() geom.Rect {
	return geom.Rectangle(0, 0, s.Width, s.Height)
}

// At returns the pixel at local coordinates (x, y), used by the
// compositor's blend path. The caller must ensure (x, y) lies within
// ContentRect.
func (s *Surface) At(x, y int) geom.Pixel { return s.Buffer[x+y*s.Width] }

// Visible reports whether the surface is currently flagged visible.
func (s *Surface) Visible() bool { return s.flags&wire.FlagVisible != 0 }

// Focused reports whether the surface currently holds input focus.
func (s *Surface) Focused() bool { return s.flags&wire.FlagFocused != 0 }

func (s *Surface) setVisible(v bool) {
	if v {
		s.flags |= wire.FlagVisible
	} else {
		s.flags &^= wire.FlagVisible
	}
}

func (s *Surface) setFocused(v bool) {
	if v {
		s.flags |= wire.FlagFocused
	} else {
		s.flags &^= wire.FlagFocused
	}
}

// Info snapshots the surface into the wire record sent in response to
// SurfaceReport and in unsolicited post-move/visible-set reports
// (SPEC_FULL.md §C.6), grounded on surface_get_info.
func (s *Surface) Info() wire.SurfaceInfo {
	return wire.SurfaceInfo{
		Type:    s.Type,
		ID:      s.ID,
		Rect:    s.ScreenRect(),
		Visible: s.Visible(),
		Focused: s.Focused(),
		Name:    s.Name,
	}
}

// move relocates and/or resizes the surface, reallocating its buffer
// when the dimensions change.
func (s *Surface) move(rect geom.Rect) {
	w, h := rect.Width(), rect.Height()
	if w != s.Width || h != s.Height {
		s.Buffer = make([]geom.Pixel, w*h)
		s.Width, s.Height = w, h
	}
	s.X, s.Y = rect.Left, rect.Top
}
