// Package display implements the client-side connection to the DWM
// server: socket lifecycle, outbound command batching and an inbound
// event queue supporting the synchronous request/response calls
// (screen rect, surface info) the rest of the client runtime is built
// on (spec §4.7). Grounded on
// original_source/src/libpatchwork/display.c.
package display

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"

	"patchwork/geom"
	"patchwork/wire"
)

// eventRingSize bounds how many out-of-order events Display buffers
// before the oldest is dropped, mirroring libpatchwork's
// DISPLAY_MAX_EVENT.
const eventRingSize = 64

// Forever is the timeout value meaning "block until an event
// arrives", the Go-side CLOCKS_NEVER.
const Forever time.Duration = -1

// ErrDisconnected is returned once the connection has been flagged
// dead; every other Display call becomes a no-op, mirroring
// isConnected's gating in the original.
var ErrDisconnected = errors.New("display: not connected")

// ErrTimeout is returned by NextEvent when no event arrived within
// the requested timeout.
var ErrTimeout = errors.New("display: timed out waiting for event")

// Dispatchable is implemented by client/window's Window, letting
// Display route inbound events by target surface id without
// depending on the window package. Mirrors display_dispatch's walk
// over disp->windows.
type Dispatchable interface {
	SurfaceID() wire.SurfaceID
	Dispatch(ev wire.Event) error
}

// Display is one connection to the DWM server.
type Display struct {
	fd          int
	isConnected bool

	pending     [][]byte
	pendingSize int

	ring             [eventRingSize]wire.Event
	readIdx, writeIdx int

	windows []Dispatchable
}

// New dials the DWM server's well-known local sequence-packet socket
// and returns a connected Display. Mirrors display_new's ctl/data
// setup, collapsed to the single fd a Unix socket gives us instead of
// the original's separate ctl/data file pair.
func New(socketPath string) (*Display, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		return nil, err
	}
	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: socketPath}); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Display{fd: fd, isConnected: true}, nil
}

// Close releases the underlying socket.
func (d *Display) Close() error { return unix.Close(d.fd) }

// Fd returns the raw connection fd, for callers that want to fold it
// into their own poll set instead of calling NextEvent.
func (d *Display) Fd() int { return d.fd }

// IsConnected reports whether the connection is still believed alive.
func (d *Display) IsConnected() bool { return d.isConnected }

// Disconnect marks the display dead without closing the fd, matching
// display_disconnect (used by callers that want every further API
// call to become a no-op but will Close separately).
func (d *Display) Disconnect() { d.isConnected = false }

// PushCommand encodes and enqueues one command built from payload
// (one of wire's CmdXxxPayload types), auto-flushing first if it
// would overrun the 4096-byte command buffer (spec §4.6). Exported so
// client/window can push SURFACE_NEW/MOVE/FREE/INVALIDATE/TIMER_SET
// without Display needing to know about those payload types.
// Mirrors display_cmds_push.
func (d *Display) PushCommand(t wire.CmdType, payload any) error {
	if !d.isConnected {
		return nil
	}
	enc, err := wire.EncodeCommand(t, payload)
	if err != nil {
		return err
	}
	if d.pendingSize+len(enc) >= wire.MaxBufferData {
		if err := d.Flush(); err != nil {
			return err
		}
	}
	d.pending = append(d.pending, enc)
	d.pendingSize += len(enc)
	return nil
}

// Flush writes every pending command as one framed buffer. A no-op if
// nothing is pending or the display is already disconnected. Mirrors
// display_cmds_flush.
func (d *Display) Flush() error {
	if len(d.pending) == 0 {
		return nil
	}
	pending, amount := d.pending, uint64(len(d.pending))
	d.pending = nil
	d.pendingSize = 0

	if !d.isConnected {
		return nil
	}
	buf, err := wire.EncodeBuffer(amount, pending...)
	if err != nil {
		return err
	}
	if err := d.write(buf); err != nil {
		d.isConnected = false
		return err
	}
	return nil
}

// write performs a blocking write with EINTR retry, matching the
// backpressure policy of spec §5 ("client sends are blocking writes
// with EINTR retry").
func (d *Display) write(buf []byte) error {
	for {
		_, err := unix.Write(d.fd, buf)
		if err == unix.EINTR {
			continue
		}
		return err
	}
}

// NextEvent returns the next event, checking the internal queue
// first, then polling the socket for up to timeout (Forever blocks
// indefinitely). Mirrors display_next_event.
func (d *Display) NextEvent(timeout time.Duration) (wire.Event, error) {
	if !d.isConnected {
		return wire.Event{}, ErrDisconnected
	}
	if d.eventsAvail() {
		return d.popEvent(), nil
	}
	if timeout != Forever {
		fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}
		ms := int(timeout.Milliseconds())
		if ms < 0 {
			ms = 0
		}
		_, err := unix.Poll(fds, ms)
		if err != nil && err != unix.EINTR {
			return wire.Event{}, err
		}
		if fds[0].Revents&unix.POLLERR != 0 {
			d.isConnected = false
			return wire.Event{}, ErrDisconnected
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			return wire.Event{}, ErrTimeout
		}
	}
	ev, err := d.receiveEvent()
	if err != nil {
		return wire.Event{}, err
	}
	if !d.isConnected {
		return wire.Event{}, ErrDisconnected
	}
	return ev, nil
}

// receiveEvent reads exactly one fixed-size event record. The server
// socket is sequence-packet, so one Read call returns exactly one
// event (or the connection is considered dead).
func (d *Display) receiveEvent() (wire.Event, error) {
	buf := make([]byte, wire.EventSize)
	for {
		n, err := unix.Read(d.fd, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil || n != wire.EventSize {
			d.isConnected = false
			return wire.Event{}, err
		}
		return wire.DecodeEvent(buf)
	}
}

// waitForEvent blocks until an event of the given type arrives,
// stashing any other event it sees along the way into the ring so a
// later NextEvent still observes it. Mirrors display_wait_for_event.
func (d *Display) waitForEvent(expected wire.EventType) (wire.Event, error) {
	start := d.readIdx
	for d.eventsAvail() {
		ev := d.popEvent()
		if ev.Type == expected {
			return ev, nil
		}
		d.pushEvent(ev)
		if d.readIdx == start {
			break
		}
	}

	for {
		ev, err := d.receiveEvent()
		if err != nil {
			return wire.Event{}, err
		}
		if !d.isConnected {
			return wire.Event{}, ErrDisconnected
		}
		if ev.Type == expected {
			return ev, nil
		}
		d.pushEvent(ev)
	}
}

// WaitFor blocks until an event of the given type arrives, stashing
// any other event it sees along the way for a later NextEvent/Dispatch
// call. Exported so client/window can wait for EVENT_SURFACE_NEW while
// constructing a window without Display needing to know about window
// construction order. Mirrors display_wait.
func (d *Display) WaitFor(expected wire.EventType) (wire.Event, error) {
	return d.waitForEvent(expected)
}

// DispatchPending scans the local event ring for every already-queued
// event of type t targeting target, dispatching and removing each one
// found while leaving every other queued event untouched. Mirrors
// display_dispatch_pending, which window_set_visible uses to flush a
// pending LEVENT_REDRAW before flipping a surface's visibility.
func (d *Display) DispatchPending(t wire.EventType, target wire.SurfaceID) error {
	n := (d.writeIdx - d.readIdx + eventRingSize) % eventRingSize
	for i := 0; i < n; i++ {
		ev := d.popEvent()
		if ev.Type == t && ev.Target == target {
			if err := d.Dispatch(ev); err != nil {
				return err
			}
			continue
		}
		d.pushEvent(ev)
	}
	return nil
}

func (d *Display) eventsAvail() bool { return d.readIdx != d.writeIdx }

func (d *Display) pushEvent(ev wire.Event) {
	next := (d.writeIdx + 1) % eventRingSize
	if next == d.readIdx {
		d.readIdx = (d.readIdx + 1) % eventRingSize
	}
	d.ring[d.writeIdx] = ev
	d.writeIdx = next
}

func (d *Display) popEvent() wire.Event {
	ev := d.ring[d.readIdx]
	d.readIdx = (d.readIdx + 1) % eventRingSize
	return ev
}

// RegisterWindow adds w to the set of windows Dispatch routes events
// to. Called by client/window's window_new equivalent.
func (d *Display) RegisterWindow(w Dispatchable) {
	d.windows = append(d.windows, w)
}

// UnregisterWindow removes w, called on window teardown.
func (d *Display) UnregisterWindow(w Dispatchable) {
	for i, existing := range d.windows {
		if existing == w {
			d.windows = append(d.windows[:i], d.windows[i+1:]...)
			return
		}
	}
}

// Dispatch routes ev to the window whose surface id equals
// ev.Target, or to every registered window if ev.Target is
// wire.NoSurface, then flushes any commands a procedure enqueued
// while handling it. Mirrors display_dispatch.
func (d *Display) Dispatch(ev wire.Event) error {
	for _, w := range d.windows {
		if ev.Target == w.SurfaceID() || ev.Target == wire.NoSurface {
			if err := w.Dispatch(ev); err != nil {
				d.isConnected = false
			}
			if ev.Target == w.SurfaceID() {
				break
			}
		}
	}
	return d.Flush()
}

// Emit synthesizes an event locally and dispatches it immediately,
// without going through the server. Mirrors display_emit.
func (d *Display) Emit(target wire.SurfaceID, typ wire.EventType, enc func([]byte)) error {
	return d.Dispatch(wire.NewEvent(typ, target, enc))
}

// PushEvent enqueues ev into the local event ring without dispatching
// it, so it is picked up on a later NextEvent call instead of
// recursing into Dispatch immediately. Mirrors display_events_push,
// which element_send_init/element_send_redraw/button_send_action use
// to defer LEVENT_* delivery rather than calling display_emit.
func (d *Display) PushEvent(ev wire.Event) { d.pushEvent(ev) }

// ScreenRect queries the given screen index's rect (spec §4.2,
// §4.7). Mirrors display_screen_rect.
func (d *Display) ScreenRect(index uint64) (geom.Rect, error) {
	if err := d.PushCommand(wire.CmdScreenInfo, wire.CmdScreenInfoPayload{Index: index}); err != nil {
		return geom.Rect{}, err
	}
	if err := d.Flush(); err != nil {
		return geom.Rect{}, err
	}
	ev, err := d.waitForEvent(wire.EventScreenInfo)
	if err != nil {
		return geom.Rect{}, err
	}
	info := wire.DecodeEventScreenInfo(ev.Raw[:])
	return geom.Rect{Left: 0, Top: 0, Right: int(info.Width), Bottom: int(info.Height)}, nil
}

// SurfaceInfo requests the current snapshot of a surface anywhere in
// the DWM, not just one this display owns. Mirrors
// display_get_surface_info.
func (d *Display) SurfaceInfo(id wire.SurfaceID) (wire.SurfaceInfo, error) {
	if err := d.PushCommand(wire.CmdSurfaceReport, wire.CmdSurfaceReportPayload{IsGlobal: true, Target: id}); err != nil {
		return wire.SurfaceInfo{}, err
	}
	if err := d.Flush(); err != nil {
		return wire.SurfaceInfo{}, err
	}
	ev, err := d.waitForEvent(wire.EventReport)
	if err != nil {
		return wire.SurfaceInfo{}, err
	}
	return wire.DecodeEventReport(ev.Raw[:]).Info, nil
}

// SetFocus requests surface id take DWM-wide input focus. Mirrors
// display_set_focus.
func (d *Display) SetFocus(id wire.SurfaceID) error {
	if err := d.PushCommand(wire.CmdSurfaceFocusSet, wire.CmdSurfaceFocusSetPayload{IsGlobal: true, Target: id}); err != nil {
		return err
	}
	return d.Flush()
}

// SetVisible requests surface id's visibility be set. Mirrors
// display_set_is_visible.
func (d *Display) SetVisible(id wire.SurfaceID, visible bool) error {
	if err := d.PushCommand(wire.CmdSurfaceVisibleSet, wire.CmdSurfaceVisibleSetPayload{IsGlobal: true, Target: id, IsVisible: visible}); err != nil {
		return err
	}
	return d.Flush()
}

// Subscribe adds event type t to this connection's subscription mask.
func (d *Display) Subscribe(t wire.EventType) error {
	if err := d.PushCommand(wire.CmdSubscribe, wire.CmdSubscribePayload{Event: t}); err != nil {
		return err
	}
	return d.Flush()
}

// Unsubscribe removes event type t from this connection's
// subscription mask.
func (d *Display) Unsubscribe(t wire.EventType) error {
	if err := d.PushCommand(wire.CmdUnsubscribe, wire.CmdSubscribePayload{Event: t}); err != nil {
		return err
	}
	return d.Flush()
}
