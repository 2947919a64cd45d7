package wire

import (
	"encoding/binary"
	"fmt"
)

// bufferHeaderSize is amount(8) + size(8).
const bufferHeaderSize = 16

// DecodedCommand is one command extracted from a command buffer by
// Walk, already validated against its declared per-command size.
type DecodedCommand struct {
	Header  CommandHeader
	Payload any
}

// Walk validates and decodes every command packed into data (the
// command-buffer payload, NOT including the amount/size buffer
// header). It enforces spec §8 property 4: a corrupt magic,
// out-of-range type, per-command size mismatch, or a walk that
// doesn't exactly consume amount commands by the declared size is a
// protocol error, and nothing from the buffer is returned in that
// case (the caller discards the whole buffer, not a partial prefix).
func Walk(data []byte, amount uint64) ([]DecodedCommand, error) {
	var out []DecodedCommand
	off := 0
	var count uint64
	for off < len(data) {
		if len(data)-off < headerSize {
			return nil, fmt.Errorf("%w: truncated header", ErrProtocol)
		}
		h := DecodeCommandHeader(data[off:])
		if h.Magic != Magic {
			return nil, fmt.Errorf("%w: bad magic %#x", ErrBadMagic, h.Magic)
		}
		if !h.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown type %d", ErrUnknownCmd, h.Type)
		}
		want, _ := payloadSize(h.Type)
		if h.Size != uint64(headerSize+want) {
			return nil, fmt.Errorf("%w: command %d declares size %d, want %d", ErrBadSize, h.Type, h.Size, headerSize+want)
		}
		if off+int(h.Size) > len(data) {
			return nil, fmt.Errorf("%w: command overruns buffer", ErrProtocol)
		}
		payload, err := DecodeCommandPayload(h.Type, data[off+headerSize:off+int(h.Size)])
		if err != nil {
			return nil, err
		}
		out = append(out, DecodedCommand{Header: h, Payload: payload})
		off += int(h.Size)
		count++
	}
	if off != len(data) {
		return nil, fmt.Errorf("%w: walk ended at %d, buffer is %d bytes", ErrProtocol, off, len(data))
	}
	if count != amount {
		return nil, fmt.Errorf("%w: declared amount %d, walked %d", ErrProtocol, amount, count)
	}
	return out, nil
}

// FrameLen reads the declared total size of a command buffer frame
// starting at the head of b. It returns false if b is not yet long
// enough to contain the buffer header.
func FrameLen(b []byte) (size uint64, ok bool) {
	if len(b) < bufferHeaderSize {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b[8:16]), true
}

// ParseBuffer attempts to parse one complete command-buffer frame
// from the head of b. It returns the decoded commands, the number of
// bytes consumed, and whether a complete frame was present at all
// (false means the caller should keep accumulating). A non-nil error
// with ok==true means a complete frame was present but it failed
// validation (spec §8 property 4) — the whole frame must still be
// treated as consumed so a corrupt frame cannot wedge the connection.
func ParseBuffer(b []byte) (cmds []DecodedCommand, consumed int, ok bool, err error) {
	size, have := FrameLen(b)
	if !have {
		return nil, 0, false, nil
	}
	if size > bufferHeaderSize+MaxBufferData {
		return nil, 0, true, fmt.Errorf("%w: buffer size %d", ErrBufferTooLarge, size)
	}
	if uint64(len(b)) < size {
		return nil, 0, false, nil
	}
	amount := binary.LittleEndian.Uint64(b[0:8])
	cmds, err = Walk(b[bufferHeaderSize:size], amount)
	return cmds, int(size), true, err
}

// EncodeBuffer frames one or more already-encoded commands (as
// produced by EncodeCommand) into a single command-buffer.
func EncodeBuffer(amount uint64, commands ...[]byte) ([]byte, error) {
	total := bufferHeaderSize
	for _, c := range commands {
		total += len(c)
	}
	if total-bufferHeaderSize > MaxBufferData {
		return nil, ErrBufferTooLarge
	}
	buf := make([]byte, total)
	binary.LittleEndian.PutUint64(buf[0:8], amount)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(total))
	off := bufferHeaderSize
	for _, c := range commands {
		off += copy(buf[off:], c)
	}
	return buf, nil
}

// EventSize is the fixed wire size of an Event: type(2) + target(8) +
// raw(64).
const EventSize = 2 + 8 + 64

// Event is the fixed-size server->client record (spec §3, §6).
type Event struct {
	Type   EventType
	Target SurfaceID
	Raw    [64]byte
}

// Encode serializes e into its fixed-size wire representation.
func (e Event) Encode() []byte {
	b := make([]byte, EventSize)
	binary.LittleEndian.PutUint16(b[0:2], uint16(e.Type))
	binary.LittleEndian.PutUint64(b[2:10], uint64(e.Target))
	copy(b[10:], e.Raw[:])
	return b
}

// DecodeEvent parses a fixed-size Event from b, which must be at
// least EventSize bytes.
func DecodeEvent(b []byte) (Event, error) {
	if len(b) < EventSize {
		return Event{}, fmt.Errorf("%w: short event (%d bytes)", ErrProtocol, len(b))
	}
	var e Event
	e.Type = EventType(binary.LittleEndian.Uint16(b[0:2]))
	e.Target = SurfaceID(binary.LittleEndian.Uint64(b[2:10]))
	copy(e.Raw[:], b[10:EventSize])
	return e, nil
}

// NewEvent builds an Event whose Raw payload is filled by enc.
func NewEvent(typ EventType, target SurfaceID, enc func([]byte)) Event {
	var e Event
	e.Type = typ
	e.Target = target
	if enc != nil {
		enc(e.Raw[:])
	}
	return e
}
