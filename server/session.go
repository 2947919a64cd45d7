package server

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/exp/slices"

	"patchwork/wire"
)

// recvBufferSize bounds how much unparsed command data a client
// connection may accumulate before it is considered misbehaving,
// mirroring client_t's fixed recvBuffer (client_receive_cmds returns
// EMSGSIZE once it fills up).
const recvBufferSize = 4 * (wire.MaxBufferData + 16)

// ErrRecvBufferFull is returned by ReceiveCommands when a client has
// accumulated more unparsed bytes than recvBufferSize without ever
// completing a frame.
var ErrRecvBufferFull = errors.New("server: client receive buffer full")

// Client is one connected client's session: its transport, the
// surfaces it owns (kept sorted by id, mirroring client_surface_find's
// sorted early-exit linear scan), and its event subscription mask.
type Client struct {
	conn io.ReadWriteCloser
	dwm  *DWM

	surfaces []*Surface // sorted by ID ascending
	sub      wire.Subscription
	recv     []byte
}

// NewClient wraps an already-accepted connection as a DWM client
// session, subscribed by default to every core event (spec §4.6).
// Mirrors client_new.
func NewClient(dwm *DWM, conn io.ReadWriteCloser) *Client {
	return &Client{conn: conn, dwm: dwm, sub: wire.DefaultSubscription()}
}

func compareSurfaceID(s *Surface, id wire.SurfaceID) int {
	switch {
	case s.ID < id:
		return -1
	case s.ID > id:
		return 1
	default:
		return 0
	}
}

// findSurface looks up one of this client's own surfaces by id.
// Mirrors client_surface_find.
func (c *Client) findSurface(id wire.SurfaceID) *Surface {
	i, ok := slices.BinarySearchFunc(c.surfaces, id, compareSurfaceID)
	if !ok {
		return nil
	}
	return c.surfaces[i]
}

func (c *Client) addSurface(s *Surface) {
	i, _ := slices.BinarySearchFunc(c.surfaces, s.ID, compareSurfaceID)
	c.surfaces = slices.Insert(c.surfaces, i, s)
}

func (c *Client) removeOwnSurface(s *Surface) {
	i, ok := slices.BinarySearchFunc(c.surfaces, s.ID, compareSurfaceID)
	if ok {
		c.surfaces = slices.Delete(c.surfaces, i, i+1)
	}
}

// SendEvent writes ev to the client's connection, but only if it is
// currently subscribed to ev.Type. Mirrors client_send_event's bitmask
// gate.
func (c *Client) SendEvent(ev wire.Event) error {
	if !c.sub.Has(ev.Type) {
		return nil
	}
	_, err := c.conn.Write(ev.Encode())
	return err
}

// Close releases the underlying connection. Surface teardown is the
// caller's responsibility via DWM.Disconnect, which must run first so
// the compositor still has a valid screen rect to invalidate.
func (c *Client) Close() error { return c.conn.Close() }

// ReceiveCommands drains whatever bytes are currently available on
// the connection and dispatches every complete command-buffer frame
// accumulated so far. A protocol-level error (bad magic, unknown
// type, size mismatch, amount mismatch) is fatal to the connection and
// is returned to the caller, which must disconnect the client; a
// semantic error from an individual command (no such surface, bad
// argument) is not fatal and is swallowed here exactly as
// client_process_cmds's actions[] table does for ENOENT-class races.
// Mirrors client_receive_cmds/client_process_cmds.
func (c *Client) ReceiveCommands() error {
	chunk := make([]byte, wire.MaxBufferData)
	n, err := c.conn.Read(chunk)
	if err != nil {
		return err
	}
	if n == 0 {
		return io.EOF
	}
	c.recv = append(c.recv, chunk[:n]...)

	for {
		size, have := wire.FrameLen(c.recv)
		if !have {
			if len(c.recv) > recvBufferSize {
				return ErrRecvBufferFull
			}
			break
		}
		if uint64(len(c.recv)) < size {
			if len(c.recv) > recvBufferSize {
				return ErrRecvBufferFull
			}
			break
		}

		frame := c.recv[:size]
		cmds, consumed, ok, ferr := wire.ParseBuffer(frame)
		if !ok {
			break
		}
		c.recv = c.recv[consumed:]
		if ferr != nil {
			return fmt.Errorf("server: %w", ferr)
		}
		for _, cmd := range cmds {
			dispatch(c, cmd)
		}
	}
	return nil
}
