package wire

import (
	"encoding/binary"

	"patchwork/geom"
)

// EventScreenInfoPayload is the payload of EventScreenInfo.
type EventScreenInfoPayload struct{ Width, Height uint64 }

func (p EventScreenInfoPayload) Encode(raw []byte) {
	binary.LittleEndian.PutUint64(raw[0:8], p.Width)
	binary.LittleEndian.PutUint64(raw[8:16], p.Height)
}

func DecodeEventScreenInfo(raw []byte) EventScreenInfoPayload {
	return EventScreenInfoPayload{
		Width:  binary.LittleEndian.Uint64(raw[0:8]),
		Height: binary.LittleEndian.Uint64(raw[8:16]),
	}
}

// EventSurfaceNewPayload is the payload of EventSurfaceNew: the shared-memory
// key the client must claim/map to reach the surface's pixel buffer.
type EventSurfaceNewPayload struct{ ShmemKey string }

func (p EventSurfaceNewPayload) Encode(raw []byte) { putName(raw[:MaxName], p.ShmemKey) }

func DecodeEventSurfaceNew(raw []byte) EventSurfaceNewPayload {
	return EventSurfaceNewPayload{ShmemKey: getName(raw[:MaxName])}
}

// KbdEventType distinguishes a key press from a key release.
type KbdEventType uint8

const (
	KbdRelease KbdEventType = iota
	KbdPress
)

// Modifier is the bitset of tracked keyboard modifiers (spec §4.5).
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
	ModCaps
)

// EventKbdPayload is the payload of EventKbd / EventGlobalKbd.
type EventKbdPayload struct {
	Type  KbdEventType
	Mods  Modifier
	Code  uint16
	ASCII byte
}

func (p EventKbdPayload) Encode(raw []byte) {
	raw[0] = byte(p.Type)
	raw[1] = byte(p.Mods)
	binary.LittleEndian.PutUint16(raw[2:4], p.Code)
	raw[4] = p.ASCII
}

func DecodeEventKbd(raw []byte) EventKbdPayload {
	return EventKbdPayload{
		Type:  KbdEventType(raw[0]),
		Mods:  Modifier(raw[1]),
		Code:  binary.LittleEndian.Uint16(raw[2:4]),
		ASCII: raw[4],
	}
}

// Button is the bitset of tracked pointer buttons.
type Button uint8

const (
	BtnLeft Button = 1 << iota
	BtnRight
	BtnMiddle
	BtnSide
	BtnForward
	BtnBackward
)

// EventMousePayload is the payload of EventMouse, EventGlobalMouse,
// EventCursorEnter and EventCursorLeave.
type EventMousePayload struct {
	Held, Pressed, Released Button
	Pos, ScreenPos, Delta   Point
}

type Point struct{ X, Y int64 }

func (p EventMousePayload) Encode(raw []byte) {
	raw[0] = byte(p.Held)
	raw[1] = byte(p.Pressed)
	raw[2] = byte(p.Released)
	putPoint(raw[8:24], p.Pos)
	putPoint(raw[24:40], p.ScreenPos)
	putPoint(raw[40:56], p.Delta)
}

func putPoint(b []byte, p Point) {
	binary.LittleEndian.PutUint64(b[0:8], uint64(p.X))
	binary.LittleEndian.PutUint64(b[8:16], uint64(p.Y))
}

func getPoint(b []byte) Point {
	return Point{X: int64(binary.LittleEndian.Uint64(b[0:8])), Y: int64(binary.LittleEndian.Uint64(b[8:16]))}
}

func DecodeEventMouse(raw []byte) EventMousePayload {
	return EventMousePayload{
		Held:      Button(raw[0]),
		Pressed:   Button(raw[1]),
		Released:  Button(raw[2]),
		Pos:       getPoint(raw[8:24]),
		ScreenPos: getPoint(raw[24:40]),
		Delta:     getPoint(raw[40:56]),
	}
}

// EventSurfaceMovePayload is the payload of EventSurfaceMove.
type EventSurfaceMovePayload struct{ Rect geom.Rect }

func (p EventSurfaceMovePayload) Encode(raw []byte) { putRect(raw[:rectSize], p.Rect) }

func DecodeEventSurfaceMove(raw []byte) EventSurfaceMovePayload {
	return EventSurfaceMovePayload{Rect: getRect(raw[:rectSize])}
}

// LEventInitPayload is the payload of LEventInit, naming the element
// being initialized. Mirrors levent_init_t.
type LEventInitPayload struct{ ID uint64 }

func (p LEventInitPayload) Encode(raw []byte) { binary.LittleEndian.PutUint64(raw[0:8], p.ID) }

func DecodeLEventInit(raw []byte) LEventInitPayload {
	return LEventInitPayload{ID: binary.LittleEndian.Uint64(raw[0:8])}
}

// LEventRedrawPayload is the payload of LEventRedraw: which element to
// redraw, and whether the redraw should propagate to its children
// once the element's own procedure returns. Mirrors levent_redraw_t.
type LEventRedrawPayload struct {
	ID        uint64
	Propagate bool
}

func (p LEventRedrawPayload) Encode(raw []byte) {
	binary.LittleEndian.PutUint64(raw[0:8], p.ID)
	putBool(raw[8:9], p.Propagate)
}

func DecodeLEventRedraw(raw []byte) LEventRedrawPayload {
	return LEventRedrawPayload{
		ID:        binary.LittleEndian.Uint64(raw[0:8]),
		Propagate: getBool(raw[8:9]),
	}
}

// LEventActionPayload is the payload of LEventAction, a widget
// reporting an action outcome to its ancestors. Mirrors
// levent_action_t.
type LEventActionPayload struct {
	Source uint64
	Type   ActionType
}

func (p LEventActionPayload) Encode(raw []byte) {
	binary.LittleEndian.PutUint64(raw[0:8], p.Source)
	raw[8] = byte(p.Type)
}

func DecodeLEventAction(raw []byte) LEventActionPayload {
	return LEventActionPayload{
		Source: binary.LittleEndian.Uint64(raw[0:8]),
		Type:   ActionType(raw[8]),
	}
}

// LEventForceActionPayload is the payload of LEventForceAction, used
// to programmatically drive a widget as if a user action had occurred
// (e.g. a popup's default button reacting to Enter).
//
// original_source/include/libpatchwork/event.h declares
// levent_force_action_t with only an `action` field, but window.c's
// window_dispatch actually reads event->libForceAction.dest to find
// the target element (element_find(win->root, event->libForceAction.dest)) —
// a header/implementation mismatch in the retrieved source. This
// payload follows window.c's actual usage and carries Dest.
type LEventForceActionPayload struct {
	Dest   uint64
	Action ActionType
}

func (p LEventForceActionPayload) Encode(raw []byte) {
	binary.LittleEndian.PutUint64(raw[0:8], p.Dest)
	raw[8] = byte(p.Action)
}

func DecodeLEventForceAction(raw []byte) LEventForceActionPayload {
	return LEventForceActionPayload{
		Dest:   binary.LittleEndian.Uint64(raw[0:8]),
		Action: ActionType(raw[8]),
	}
}

// eventNameLen is how much of a surface's name fits in a SurfaceInfo
// snapshot once the fixed fields of the snapshot (30 bytes) and the
// leading ReportFlag byte of EventReportPayload are accounted for
// within the 64-byte event Raw payload (SPEC_FULL.md §C.6).
const eventNameLen = 33

// SurfaceInfo mirrors the server-side get_info record of spec §4.2,
// used both as the CmdSurfaceReport/EventReport payload and as the
// unsolicited report sent after SURFACE_MOVE/SURFACE_VISIBLE_SET.
type SurfaceInfo struct {
	Type    SurfaceType
	ID      SurfaceID
	Rect    geom.Rect
	Visible bool
	Focused bool
	Name    string
}

func (p SurfaceInfo) Encode(raw []byte) {
	binary.LittleEndian.PutUint32(raw[0:4], uint32(p.Type))
	binary.LittleEndian.PutUint64(raw[4:12], uint64(p.ID))
	putRect(raw[12:12+rectSize], p.Rect)
	off := 12 + rectSize
	putBool(raw[off:off+1], p.Visible)
	putBool(raw[off+1:off+2], p.Focused)
	putName(raw[off+2:off+2+eventNameLen], p.Name)
}

// EventReportPayload is the payload of EventReport and is embedded in
// EventGlobalReportPayload; it pairs a reason with the surface's
// current snapshot (dwm_report_produce's event_report_t).
type EventReportPayload struct {
	Flags ReportFlag
	Info  SurfaceInfo
}

const reportFlagsOff = 0
const reportInfoOff = 1

func (p EventReportPayload) Encode(raw []byte) {
	raw[reportFlagsOff] = byte(p.Flags)
	p.Info.Encode(raw[reportInfoOff:])
}

func DecodeEventReport(raw []byte) EventReportPayload {
	return EventReportPayload{
		Flags: ReportFlag(raw[reportFlagsOff]),
		Info:  DecodeSurfaceInfo(raw[reportInfoOff:]),
	}
}

// EventGlobalAttachPayload is the payload of EventGlobalAttach,
// broadcast to every client when any surface attaches to the DWM
// (SPEC_FULL.md §C.8), mirroring dwm_attach's event_global_attach_t.
type EventGlobalAttachPayload struct{ Info SurfaceInfo }

func (p EventGlobalAttachPayload) Encode(raw []byte) { p.Info.Encode(raw) }

func DecodeEventGlobalAttach(raw []byte) EventGlobalAttachPayload {
	return EventGlobalAttachPayload{Info: DecodeSurfaceInfo(raw)}
}

// EventGlobalDetachPayload is the payload of EventGlobalDetach,
// mirroring dwm_detach's event_global_detach_t.
type EventGlobalDetachPayload struct{ Info SurfaceInfo }

func (p EventGlobalDetachPayload) Encode(raw []byte) { p.Info.Encode(raw) }

func DecodeEventGlobalDetach(raw []byte) EventGlobalDetachPayload {
	return EventGlobalDetachPayload{Info: DecodeSurfaceInfo(raw)}
}

// EventGlobalReportPayload is the payload of EventGlobalReport, the
// broadcast counterpart of EventReport sent to every client whenever
// any surface's snapshot changes, not just its owner.
type EventGlobalReportPayload = EventReportPayload

func DecodeSurfaceInfo(raw []byte) SurfaceInfo {
	off := 12 + rectSize
	return SurfaceInfo{
		Type:    SurfaceType(binary.LittleEndian.Uint32(raw[0:4])),
		ID:      SurfaceID(binary.LittleEndian.Uint64(raw[4:12])),
		Rect:    getRect(raw[12 : 12+rectSize]),
		Visible: getBool(raw[off : off+1]),
		Focused: getBool(raw[off+1 : off+2]),
		Name:    getName(raw[off+2 : off+2+eventNameLen]),
	}
}
