// Package window implements the client-side window: the handle an
// application holds for one of its surfaces, wrapping the element
// tree (optionally with a decoration root), the shared-memory pixel
// buffer, and the SURFACE_* command traffic client/display otherwise
// knows nothing about. Grounded on
// original_source/src/libpatchwork/window.c and
// include/libpatchwork/window.h.
package window

import (
	"errors"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"patchwork/client/display"
	"patchwork/client/draw"
	"patchwork/client/element"
	clientimage "patchwork/client/image"
	"patchwork/client/theme"
	"patchwork/geom"
	"patchwork/wire"
)

// Flags controls a window's decoration and resize behavior. Mirrors
// window_flags_t.
type Flags uint64

const (
	FlagNone Flags = 0
	// FlagDeco enables decorations (titlebar, close/minimize buttons).
	FlagDeco Flags = 1 << 0
	// FlagResizable allows Move to change the window's size.
	FlagResizable Flags = 1 << 1
	// FlagNoControls disables the close/minimize buttons; only
	// meaningful alongside FlagDeco.
	FlagNoControls Flags = 1 << 2
)

// ErrInvalid is returned for malformed arguments to New. Mirrors
// window_new's EINVAL checks.
var ErrInvalid = errors.New("window: invalid argument")

// ErrNotResizable is returned by Move when a caller tries to resize a
// window that was not created with FlagResizable. Mirrors
// window_move's EPERM check.
var ErrNotResizable = errors.New("window: resize requires FlagResizable")

// Window is one client-owned surface: its rect, its shared-memory
// pixel buffer, and the element tree rooted on it (a decoration root
// with a nested client element, if FlagDeco is set, or a bare client
// root otherwise). Mirrors window_t.
type Window struct {
	disp *display.Display
	name string

	rect        geom.Rect
	invalidRect geom.Rect
	typ         wire.SurfaceType
	flags       Flags
	surface     wire.SurfaceID

	rawBuffer []byte
	buffer    []geom.Pixel

	root          *element.Element
	clientElement *element.Element
}

// New allocates a window, asks the DWM for a surface to back it, maps
// the surface's shared-memory pixel buffer, and builds its element
// tree. Mirrors window_new.
func New(disp *display.Display, name string, rect geom.Rect, typ wire.SurfaceType, flags Flags,
	procedure element.Procedure, private any) (*Window, error) {
	if disp == nil || name == "" || procedure == nil || len(name) >= wire.MaxName {
		return nil, ErrInvalid
	}

	win := &Window{disp: disp, name: name, typ: typ, flags: flags}

	if flags&FlagDeco != 0 {
		frameSize := int(theme.IntGet(theme.IntFrameSize, nil))
		titlebarSize := int(theme.IntGet(theme.IntTitlebarSize, nil))
		win.rect = geom.Rect{
			Left:   rect.Left - frameSize,
			Top:    rect.Top - frameSize - titlebarSize,
			Right:  rect.Right + frameSize,
			Bottom: rect.Bottom + frameSize,
		}
	} else {
		win.rect = rect
	}

	if err := disp.PushCommand(wire.CmdSurfaceNew, wire.CmdSurfaceNewPayload{
		Type: typ, Rect: win.rect, Name: name,
	}); err != nil {
		return nil, err
	}
	if err := disp.Flush(); err != nil {
		return nil, err
	}
	ev, err := disp.WaitFor(wire.EventSurfaceNew)
	if err != nil {
		return nil, err
	}
	win.surface = ev.Target

	shmemKey := wire.DecodeEventSurfaceNew(ev.Raw[:]).ShmemKey
	raw, pixels, err := claimShmem(shmemKey, win.rect.Width()*win.rect.Height())
	if err != nil {
		disp.PushCommand(wire.CmdSurfaceFree, wire.CmdSurfaceFreePayload{Target: win.surface})
		disp.Flush()
		return nil, err
	}
	win.rawBuffer = raw
	win.buffer = pixels

	disp.RegisterWindow(win)

	rootRect := geom.Rectangle(0, 0, win.rect.Width(), win.rect.Height())
	if flags&FlagDeco != 0 {
		win.root = element.NewRoot(win, windowDecoElemID, rootRect, "deco", element.FlagNone, win.decoProcedure, nil)

		frameSize := int(theme.IntGet(theme.IntFrameSize, nil))
		titlebarSize := int(theme.IntGet(theme.IntTitlebarSize, nil))
		clientRect := geom.Rect{
			Left:   frameSize,
			Top:    frameSize + titlebarSize,
			Right:  win.rect.Width() - frameSize,
			Bottom: win.rect.Height() - frameSize,
		}
		win.clientElement = element.New(win.root, windowClientElemID, clientRect, "client", element.FlagNone, procedure, private)
	} else {
		win.clientElement = element.NewRoot(win, windowClientElemID, rootRect, "client", element.FlagNone, procedure, private)
		win.root = win.clientElement
	}

	return win, nil
}

// claimShmem maps the client's view of a surface's pixel buffer by
// key. PatchworkOS's claim() syscall hands a shared-memory file
// descriptor to a process by key (original_source/src/kernel/fs/key.h);
// there is no POSIX equivalent, so this opens the same key as a file
// under /dev/shm instead — the same tmpfs that glibc's shm_open itself
// resolves to on Linux — and maps it read/write. Mirrors window_new's
// claim(event.surfaceNew.shmemKey) + mmap. The server side of this
// pairing is not yet wired: server.Surface keeps its pixel buffer as a
// plain Go slice (see server/surface.go's own comment to that effect),
// so claimShmem only completes the client half of a shared-memory path
// that cmd/dwmd does not yet open.
func claimShmem(key string, pixelCount int) (raw []byte, pixels []geom.Pixel, err error) {
	fd, err := unix.Open("/dev/shm/"+key, unix.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	defer unix.Close(fd)

	raw, err = unix.Mmap(fd, 0, pixelCount*4, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return raw, pixelsFromBytes(raw), nil
}

// pixelsFromBytes reinterprets an mmap'd byte slice as a []geom.Pixel
// of the same backing memory, so writes through the element tree's
// Drawables land directly in the shared mapping instead of a
// shadow copy that would need a separate sync pass (contrast
// cmd/dwmd's scanOut, which does need such a pass because it is
// copying between two independently-owned buffers each frame).
func pixelsFromBytes(raw []byte) []geom.Pixel {
	if len(raw) == 0 {
		return nil
	}
	return unsafe.Slice((*geom.Pixel)(unsafe.Pointer(&raw[0])), len(raw)/4)
}

// Free tears down win's element tree, unmaps its pixel buffer, tells
// the DWM to free the surface, and unregisters win from its display.
// Mirrors window_free.
func (win *Window) Free() {
	if win.root != nil {
		win.root.Free()
	}
	if win.rawBuffer != nil {
		unix.Munmap(win.rawBuffer)
		win.rawBuffer = nil
		win.buffer = nil
	}

	win.disp.PushCommand(wire.CmdSurfaceFree, wire.CmdSurfaceFreePayload{Target: win.surface})
	win.disp.Flush()

	win.disp.UnregisterWindow(win)
}

// Rect returns win's rectangle in screen coordinates. Mirrors
// window_get_rect.
func (win *Window) Rect() geom.Rect { return win.rect }

// LocalRect returns win's rectangle in local coordinates. Mirrors
// window_get_local_rect.
func (win *Window) LocalRect() geom.Rect {
	return geom.Rectangle(0, 0, win.rect.Width(), win.rect.Height())
}

// Display returns the connection win was created on. Mirrors
// window_get_display.
func (win *Window) Display() *display.Display { return win.disp }

// SurfaceID returns win's surface id, satisfying display.Dispatchable
// and element.Owner. Mirrors window_get_id.
func (win *Window) SurfaceID() wire.SurfaceID { return win.surface }

// Type returns win's surface type. Mirrors window_get_type.
func (win *Window) Type() wire.SurfaceType { return win.typ }

// ClientElement returns the element applications should draw to and
// receive events from. Mirrors window_get_client_element.
func (win *Window) ClientElement() *element.Element { return win.clientElement }

// Move requests win be moved and/or resized. A size change is
// rejected unless win was created with FlagResizable. Mirrors
// window_move.
func (win *Window) Move(rect geom.Rect) error {
	sizeChanged := win.rect.Width() != rect.Width() || win.rect.Height() != rect.Height()
	if sizeChanged && win.flags&FlagResizable == 0 {
		return ErrNotResizable
	}

	if err := win.disp.PushCommand(wire.CmdSurfaceMove, wire.CmdSurfaceMovePayload{
		Target: win.surface, Rect: rect,
	}); err != nil {
		return err
	}
	return win.disp.Flush()
}

// SetTimer arms win's timer; timeout is measured from now, and a
// negative timeout disables it. Mirrors window_set_timer.
func (win *Window) SetTimer(flags wire.TimerFlag, timeout time.Duration) error {
	if err := win.disp.PushCommand(wire.CmdSurfaceTimerSet, wire.CmdSurfaceTimerSetPayload{
		Target: win.surface, Flags: flags, Timeout: int64(timeout),
	}); err != nil {
		return err
	}
	return win.disp.Flush()
}

// Invalidate accumulates rect (in local coordinates) into win's
// pending invalid region, to be sent to the DWM on the next
// invalidateFlush. Also satisfies element.Owner, standing in for
// element_draw_end's window_invalidate call. Mirrors window_invalidate.
func (win *Window) Invalidate(rect geom.Rect) {
	if win.invalidRect.Area() == 0 {
		win.invalidRect = rect
		return
	}
	win.invalidRect = win.invalidRect.ExpandToContain(rect)
}

// invalidateFlush sends win's accumulated invalid region to the DWM
// and clears it. Mirrors window_invalidate_flush.
func (win *Window) invalidateFlush() error {
	if win.invalidRect.Area() == 0 {
		return nil
	}

	if err := win.disp.PushCommand(wire.CmdSurfaceInvalidate, wire.CmdSurfaceInvalidatePayload{
		Target: win.surface, Rect: win.invalidRect,
	}); err != nil {
		return err
	}
	if err := win.disp.Flush(); err != nil {
		return err
	}
	win.invalidRect = geom.Rect{}
	return nil
}

// Dispatch routes event to win's elements, special-casing
// LEVENT_REDRAW/LEVENT_FORCE_ACTION (sent to a specific element by id)
// and EVENT_REPORT (which updates win's stored rect and requeues a
// propagating root redraw if the size changed), then always flushes
// any invalidation the dispatch accumulated. Mirrors window_dispatch.
func (win *Window) Dispatch(event wire.Event) error {
	switch event.Type {
	case wire.LEventRedraw:
		elem := win.root.Find(wire.DecodeLEventRedraw(event.Raw[:]).ID)
		if elem == nil {
			return wire.ErrNoSuchSurface
		}
		if err := elem.Dispatch(event); err != nil {
			return err
		}

	case wire.LEventForceAction:
		elem := win.root.Find(wire.DecodeLEventForceAction(event.Raw[:]).Dest)
		if elem == nil {
			return wire.ErrNoSuchSurface
		}
		if err := elem.Dispatch(event); err != nil {
			return err
		}

	case wire.EventReport:
		report := wire.DecodeEventReport(event.Raw[:])
		if report.Flags == wire.ReportRect {
			newRect := report.Info.Rect
			if win.rect.Width() != newRect.Width() || win.rect.Height() != newRect.Height() {
				win.PushEvent(wire.NewEvent(wire.LEventRedraw, win.surface,
					wire.LEventRedrawPayload{ID: win.root.ID(), Propagate: true}.Encode))
			}
			win.rect = newRect
		}
		if err := win.root.Dispatch(event); err != nil {
			return err
		}

	default:
		if err := win.root.Dispatch(event); err != nil {
			return err
		}
	}

	return win.invalidateFlush()
}

// SetFocus requests DWM-wide input focus for win. Mirrors
// window_set_focus.
func (win *Window) SetFocus() error {
	if err := win.disp.PushCommand(wire.CmdSurfaceFocusSet, wire.CmdSurfaceFocusSetPayload{
		IsGlobal: false, Target: win.surface,
	}); err != nil {
		return err
	}
	return win.disp.Flush()
}

// SetVisible requests win's visibility be set, first flushing any
// LEVENT_REDRAW already queued for win so the visual effect of a
// pending redraw lands before visibility flips. Mirrors
// window_set_visible.
func (win *Window) SetVisible(visible bool) error {
	if err := win.disp.DispatchPending(wire.LEventRedraw, win.surface); err != nil {
		return err
	}

	if err := win.disp.PushCommand(wire.CmdSurfaceVisibleSet, wire.CmdSurfaceVisibleSetPayload{
		IsGlobal: false, Target: win.surface, IsVisible: visible,
	}); err != nil {
		return err
	}
	return win.disp.Flush()
}

// PushEvent enqueues ev into win's display's event ring without
// dispatching it, satisfying element.Owner. Mirrors
// display_events_push as reached through a window (e.g.
// window_dispatch's own EVENT_REPORT handler pushing a propagating
// redraw).
func (win *Window) PushEvent(ev wire.Event) { win.disp.PushEvent(ev) }

// Buffer returns win's shared pixel buffer, satisfying element.Owner.
func (win *Window) Buffer() []geom.Pixel { return win.buffer }

// Stride returns the stride of win's pixel buffer, satisfying
// element.Owner.
func (win *Window) Stride() int { return win.rect.Width() }

// DefaultFont returns the client runtime's fallback glyph source,
// satisfying element.Owner. Mirrors font_default(win->disp).
func (win *Window) DefaultFont() draw.Font { return theme.DefaultFont() }

// loadIcon reads and decodes a .fbmp icon from path. image_new in the
// original takes the display only to route through its filesystem
// layer; client/image.New already does the pure decode half, so this
// supplies the missing open+read half with a plain os.ReadFile.
// Mirrors image_new's open+read, used by window_deco_init_controls to
// load theme->iconClose/iconMinimize.
func loadIcon(path string) (*clientimage.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return clientimage.New(data)
}
