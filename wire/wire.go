// Package wire implements the DWM wire protocol shared by the server
// and the client runtime: command framing, event encoding, and the
// per-client event subscription bitmask described in spec §3, §4.6
// and §6.
package wire

import "errors"

// Magic is the sentinel that must lead every command header.
const Magic uint32 = 0xDEADC0DE

// MaxBufferData is the largest payload a single command buffer may
// carry, header included.
const MaxBufferData = 4096

// MaxName bounds the length of a surface name string.
const MaxName = 64

// CmdType enumerates the frozen wire order of client->server commands
// (spec §3, §6). The order must never change: clients and the server
// are compiled against these numeric values independently.
type CmdType uint32

const (
	CmdScreenInfo CmdType = iota
	CmdSurfaceNew
	CmdSurfaceFree
	CmdSurfaceMove
	CmdSurfaceTimerSet
	CmdSurfaceInvalidate
	CmdSurfaceFocusSet
	CmdSurfaceVisibleSet
	CmdSurfaceReport
	CmdSubscribe
	CmdUnsubscribe
	cmdTypeAmount
)

// Valid reports whether t is a known command type.
func (t CmdType) Valid() bool { return t < cmdTypeAmount }

// SurfaceType enumerates the kinds of surfaces a client may create
// (spec §3). FULLSCREEN, WALL and CURSOR surfaces are singletons.
type SurfaceType uint32

const (
	SurfaceWindow SurfaceType = iota
	SurfacePanel
	SurfaceCursor
	SurfaceWall
	SurfaceFullscreen
	surfaceTypeAmount
)

// Valid reports whether t is a known surface type.
func (t SurfaceType) Valid() bool { return t < surfaceTypeAmount }

// SurfaceID uniquely identifies a surface, monotonically assigned by
// the server.
type SurfaceID uint64

// NoSurface is the sentinel id meaning "no surface" / "this field
// left unset".
const NoSurface SurfaceID = ^SurfaceID(0)

// SurfaceFlag is a bitset of per-surface boolean flags.
type SurfaceFlag uint32

const (
	FlagVisible SurfaceFlag = 1 << iota
	FlagFocused
)

// TimerFlag controls whether a surface's timer fires once or repeats.
type TimerFlag uint32

const (
	TimerNone TimerFlag = iota
	TimerRepeat
)

// EventType enumerates the wire event ranges from spec §3:
// core DWM events (0-63), library-synthesized events (0x4000+,
// client-side only), and user events (0x8000+).
type EventType uint16

const (
	EventScreenInfo EventType = iota
	EventSurfaceNew
	EventKbd
	EventMouse
	EventFocusIn
	EventFocusOut
	EventSurfaceMove
	EventTimer
	EventCursorEnter
	EventCursorLeave
	EventReport
	EventGlobalKbd
	EventGlobalMouse
	EventGlobalAttach
	EventGlobalDetach
	EventGlobalReport
)

// ReportFlag tags why a SurfaceInfo snapshot is being reported,
// carried alongside EventReport/EventGlobalReport (SPEC_FULL.md §C.6).
type ReportFlag uint8

const (
	ReportNone ReportFlag = iota
	ReportRect
	ReportVisible
	ReportFocused
)

// CoreEventCount is the number of core DWM event slots (0..63); the
// subscription default covers all of them.
const CoreEventCount = 64

// Library-synthesized events, meaningful only to the client runtime;
// the server never sends or reasons about these.
const (
	LEventBase        EventType = 0x4000
	LEventInit                  = LEventBase + 1
	LEventFree                  = LEventBase + 2
	LEventRedraw                = LEventBase + 3
	LEventAction                = LEventBase + 4
	LEventQuit                  = LEventBase + 5
	LEventForceAction           = LEventBase + 6
)

// UEventBase is the start of the user-defined event range.
const UEventBase EventType = 0x8000

// ActionType enumerates the outcomes a widget action can carry
// (spec §4.9).
type ActionType uint8

const (
	ActionNone ActionType = iota
	ActionRelease
	ActionPress
	ActionCancel
)

// Errors returned by the framing and dispatch layer; spec §7's
// protocol-error / resource-error split is expressed through these.
var (
	ErrProtocol       = errors.New("wire: protocol error")
	ErrBufferTooLarge = errors.New("wire: command buffer exceeds MaxBufferData")
	ErrUnknownCmd     = errors.New("wire: unknown command type")
	ErrBadMagic       = errors.New("wire: bad command magic")
	ErrBadSize        = errors.New("wire: command size mismatch")
	ErrNotOwned       = errors.New("wire: surface not owned by client")
	ErrNoSuchSurface  = errors.New("wire: no such surface") // ESRCH equivalent
	ErrUnsupported    = errors.New("wire: unsupported operation")
	ErrInvalid        = errors.New("wire: invalid argument")
)
