package wire

import (
	"encoding/binary"
	"fmt"

	"patchwork/geom"
)

// headerSize is the encoded size of a CommandHeader: magic(4) +
// type(4) + size(8).
const headerSize = 16

// CommandHeader leads every command (spec §3, §6).
type CommandHeader struct {
	Magic uint32
	Type  CmdType
	Size  uint64 // total bytes of this command, header included
}

// putRect/getRect encode geom.Rect as four little-endian int32s,
// matching libpatchwork's rect_t.
func putRect(b []byte, r geom.Rect) {
	binary.LittleEndian.PutUint32(b[0:4], uint32(int32(r.Left)))
	binary.LittleEndian.PutUint32(b[4:8], uint32(int32(r.Top)))
	binary.LittleEndian.PutUint32(b[8:12], uint32(int32(r.Right)))
	binary.LittleEndian.PutUint32(b[12:16], uint32(int32(r.Bottom)))
}

func getRect(b []byte) geom.Rect {
	return geom.Rect{
		Left:   int(int32(binary.LittleEndian.Uint32(b[0:4]))),
		Top:    int(int32(binary.LittleEndian.Uint32(b[4:8]))),
		Right:  int(int32(binary.LittleEndian.Uint32(b[8:12]))),
		Bottom: int(int32(binary.LittleEndian.Uint32(b[12:16]))),
	}
}

const rectSize = 16

func putName(b []byte, name string) {
	n := copy(b, name)
	for i := n; i < len(b); i++ {
		b[i] = 0
	}
}

func getName(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

// Per-type payload sizes (excluding the CommandHeader), used both to
// encode/decode and to validate a command's declared Size against
// what its Type actually carries (SPEC_FULL.md §C.2).
func payloadSize(t CmdType) (int, bool) {
	switch t {
	case CmdScreenInfo:
		return 8, true // index uint64
	case CmdSurfaceNew:
		return 4 + rectSize + MaxName, true // type + rect + name
	case CmdSurfaceFree:
		return 8, true // target
	case CmdSurfaceMove:
		return 8 + rectSize, true // target + rect
	case CmdSurfaceTimerSet:
		return 8 + 4 + 8, true // target + flags + timeout
	case CmdSurfaceInvalidate:
		return 8 + rectSize, true // target + rect
	case CmdSurfaceFocusSet:
		return 1 + 8, true // isGlobal + target
	case CmdSurfaceVisibleSet:
		return 1 + 8 + 1, true // isGlobal + target + isVisible
	case CmdSurfaceReport:
		return 1 + 8, true // isGlobal + target
	case CmdSubscribe, CmdUnsubscribe:
		return 2, true // event type (uint16)
	default:
		return 0, false
	}
}

// CmdScreenInfoPayload is the payload of CmdScreenInfo.
type CmdScreenInfoPayload struct{ Index uint64 }

// CmdSurfaceNewPayload is the payload of CmdSurfaceNew.
type CmdSurfaceNewPayload struct {
	Type SurfaceType
	Rect geom.Rect
	Name string
}

// CmdSurfaceFreePayload is the payload of CmdSurfaceFree.
type CmdSurfaceFreePayload struct{ Target SurfaceID }

// CmdSurfaceMovePayload is the payload of CmdSurfaceMove.
type CmdSurfaceMovePayload struct {
	Target SurfaceID
	Rect   geom.Rect
}

// CmdSurfaceTimerSetPayload is the payload of CmdSurfaceTimerSet.
type CmdSurfaceTimerSetPayload struct {
	Target  SurfaceID
	Flags   TimerFlag
	Timeout int64 // nanoseconds; negative means NEVER
}

// CmdSurfaceInvalidatePayload is the payload of CmdSurfaceInvalidate.
type CmdSurfaceInvalidatePayload struct {
	Target SurfaceID
	Rect   geom.Rect
}

// CmdSurfaceFocusSetPayload is the payload of CmdSurfaceFocusSet.
type CmdSurfaceFocusSetPayload struct {
	IsGlobal bool
	Target   SurfaceID
}

// CmdSurfaceVisibleSetPayload is the payload of CmdSurfaceVisibleSet.
type CmdSurfaceVisibleSetPayload struct {
	IsGlobal  bool
	Target    SurfaceID
	IsVisible bool
}

// CmdSurfaceReportPayload is the payload of CmdSurfaceReport.
type CmdSurfaceReportPayload struct {
	IsGlobal bool
	Target   SurfaceID
}

// CmdSubscribePayload is shared by CmdSubscribe and CmdUnsubscribe.
type CmdSubscribePayload struct{ Event EventType }

// EncodeCommand serializes a command header plus the given payload
// value (one of the CmdXxxPayload types above) into a freshly
// allocated byte slice.
func EncodeCommand(t CmdType, payload any) ([]byte, error) {
	size, ok := payloadSize(t)
	if !ok {
		return nil, fmt.Errorf("wire: %w: %d", ErrUnknownCmd, t)
	}
	buf := make([]byte, headerSize+size)
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(t))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(len(buf)))
	body := buf[headerSize:]

	switch p := payload.(type) {
	case CmdScreenInfoPayload:
		binary.LittleEndian.PutUint64(body[0:8], p.Index)
	case CmdSurfaceNewPayload:
		binary.LittleEndian.PutUint32(body[0:4], uint32(p.Type))
		putRect(body[4:4+rectSize], p.Rect)
		putName(body[4+rectSize:], p.Name)
	case CmdSurfaceFreePayload:
		binary.LittleEndian.PutUint64(body[0:8], uint64(p.Target))
	case CmdSurfaceMovePayload:
		binary.LittleEndian.PutUint64(body[0:8], uint64(p.Target))
		putRect(body[8:8+rectSize], p.Rect)
	case CmdSurfaceTimerSetPayload:
		binary.LittleEndian.PutUint64(body[0:8], uint64(p.Target))
		binary.LittleEndian.PutUint32(body[8:12], uint32(p.Flags))
		binary.LittleEndian.PutUint64(body[12:20], uint64(p.Timeout))
	case CmdSurfaceInvalidatePayload:
		binary.LittleEndian.PutUint64(body[0:8], uint64(p.Target))
		putRect(body[8:8+rectSize], p.Rect)
	case CmdSurfaceFocusSetPayload:
		putBool(body[0:1], p.IsGlobal)
		binary.LittleEndian.PutUint64(body[1:9], uint64(p.Target))
	case CmdSurfaceVisibleSetPayload:
		putBool(body[0:1], p.IsGlobal)
		binary.LittleEndian.PutUint64(body[1:9], uint64(p.Target))
		putBool(body[9:10], p.IsVisible)
	case CmdSurfaceReportPayload:
		putBool(body[0:1], p.IsGlobal)
		binary.LittleEndian.PutUint64(body[1:9], uint64(p.Target))
	case CmdSubscribePayload:
		binary.LittleEndian.PutUint16(body[0:2], uint16(p.Event))
	default:
		return nil, fmt.Errorf("wire: EncodeCommand: unexpected payload type %T for %v", payload, t)
	}
	return buf, nil
}

func putBool(b []byte, v bool) {
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
}

func getBool(b []byte) bool { return b[0] != 0 }

// DecodeCommandHeader reads just the header from b, which must be at
// least headerSize bytes.
func DecodeCommandHeader(b []byte) CommandHeader {
	return CommandHeader{
		Magic: binary.LittleEndian.Uint32(b[0:4]),
		Type:  CmdType(binary.LittleEndian.Uint32(b[4:8])),
		Size:  binary.LittleEndian.Uint64(b[8:16]),
	}
}

// DecodeCommandPayload decodes the type-specific payload following a
// header already validated by the caller (magic, type range, and
// declared size all checked). body must have exactly the length
// payloadSize(h.Type) expects.
func DecodeCommandPayload(t CmdType, body []byte) (any, error) {
	switch t {
	case CmdScreenInfo:
		return CmdScreenInfoPayload{Index: binary.LittleEndian.Uint64(body[0:8])}, nil
	case CmdSurfaceNew:
		return CmdSurfaceNewPayload{
			Type: SurfaceType(binary.LittleEndian.Uint32(body[0:4])),
			Rect: getRect(body[4 : 4+rectSize]),
			Name: getName(body[4+rectSize:]),
		}, nil
	case CmdSurfaceFree:
		return CmdSurfaceFreePayload{Target: SurfaceID(binary.LittleEndian.Uint64(body[0:8]))}, nil
	case CmdSurfaceMove:
		return CmdSurfaceMovePayload{
			Target: SurfaceID(binary.LittleEndian.Uint64(body[0:8])),
			Rect:   getRect(body[8 : 8+rectSize]),
		}, nil
	case CmdSurfaceTimerSet:
		return CmdSurfaceTimerSetPayload{
			Target:  SurfaceID(binary.LittleEndian.Uint64(body[0:8])),
			Flags:   TimerFlag(binary.LittleEndian.Uint32(body[8:12])),
			Timeout: int64(binary.LittleEndian.Uint64(body[12:20])),
		}, nil
	case CmdSurfaceInvalidate:
		return CmdSurfaceInvalidatePayload{
			Target: SurfaceID(binary.LittleEndian.Uint64(body[0:8])),
			Rect:   getRect(body[8 : 8+rectSize]),
		}, nil
	case CmdSurfaceFocusSet:
		return CmdSurfaceFocusSetPayload{
			IsGlobal: getBool(body[0:1]),
			Target:   SurfaceID(binary.LittleEndian.Uint64(body[1:9])),
		}, nil
	case CmdSurfaceVisibleSet:
		return CmdSurfaceVisibleSetPayload{
			IsGlobal:  getBool(body[0:1]),
			Target:    SurfaceID(binary.LittleEndian.Uint64(body[1:9])),
			IsVisible: getBool(body[9:10]),
		}, nil
	case CmdSurfaceReport:
		return CmdSurfaceReportPayload{
			IsGlobal: getBool(body[0:1]),
			Target:   SurfaceID(binary.LittleEndian.Uint64(body[1:9])),
		}, nil
	case CmdSubscribe, CmdUnsubscribe:
		return CmdSubscribePayload{Event: EventType(binary.LittleEndian.Uint16(body[0:2]))}, nil
	default:
		return nil, fmt.Errorf("wire: %w: %d", ErrUnknownCmd, t)
	}
}
