package server

import (
	"golang.org/x/mobile/event/key"

	"patchwork/wire"
)

// dwmKeymap translates a subset of raw scancodes (the keycode_t values
// carried verbatim on the wire in EventKbdPayload.Code) to the
// golang.org/x/mobile key.Code vocabulary, purely so the modifier
// state machine below can name keys instead of comparing magic
// numbers; the wire protocol itself never carries a key.Code.
var dwmKeymap = map[uint16]key.Code{
	42:  key.CodeLeftShift,
	54:  key.CodeRightShift,
	29:  key.CodeLeftControl,
	97:  key.CodeRightControl,
	56:  key.CodeLeftAlt,
	100: key.CodeRightAlt,
	125: key.CodeLeftGUI,
	126: key.CodeRightGUI,
	58:  key.CodeCapsLock,
}

// asciiTable gives a best-effort ASCII rendering for the printable
// subset of scancodes, lowercase/uppercase chosen by shift xor caps.
// Keys outside the table (function keys, arrows, ...) report 0, the
// same "no ASCII" sentinel kbd_ascii uses for non-printables.
var asciiTable = map[uint16][2]byte{
	30: {'a', 'A'}, 48: {'b', 'B'}, 46: {'c', 'C'}, 32: {'d', 'D'},
	18: {'e', 'E'}, 33: {'f', 'F'}, 34: {'g', 'G'}, 35: {'h', 'H'},
	23: {'i', 'I'}, 36: {'j', 'J'}, 37: {'k', 'K'}, 38: {'l', 'L'},
	50: {'m', 'M'}, 49: {'n', 'N'}, 24: {'o', 'O'}, 25: {'p', 'P'},
	16: {'q', 'Q'}, 19: {'r', 'R'}, 31: {'s', 'S'}, 20: {'t', 'T'},
	22: {'u', 'U'}, 47: {'v', 'V'}, 17: {'w', 'W'}, 45: {'x', 'X'},
	21: {'y', 'Y'}, 44: {'z', 'Z'},
	57: {' ', ' '},
}

func asciiFor(code uint16, mods wire.Modifier) byte {
	pair, ok := asciiTable[code]
	if !ok {
		return 0
	}
	upper := (mods&wire.ModShift != 0) != (mods&wire.ModCaps != 0)
	if upper {
		return pair[1]
	}
	return pair[0]
}

func (d *DWM) setMod(m wire.Modifier, set bool) {
	if set {
		d.kbdMods |= m
	} else {
		d.kbdMods &^= m
	}
}

// HandleKbd processes one keyboard edge (a raw scancode and whether it
// was just pressed or released): it updates the tracked modifier
// state (shift/ctrl/alt/super latch on press/release, caps lock toggles
// on press only) and, while a surface holds focus, dispatches an
// EventKbd to it plus an EventGlobalKbd broadcast to everyone. Mirrors
// dwm_kbd_read, minus its raw-device text-protocol scanning — the
// caller (cmd/dwmd's poll loop) is responsible for decoding
// "<code><suffix>" device records into (code, pressed) edges.
func (d *DWM) HandleKbd(code uint16, pressed bool) {
	switch dwmKeymap[code] {
	case key.CodeLeftShift, key.CodeRightShift:
		d.setMod(wire.ModShift, pressed)
	case key.CodeLeftControl, key.CodeRightControl:
		d.setMod(wire.ModCtrl, pressed)
	case key.CodeLeftAlt, key.CodeRightAlt:
		d.setMod(wire.ModAlt, pressed)
	case key.CodeLeftGUI, key.CodeRightGUI:
		d.setMod(wire.ModSuper, pressed)
	case key.CodeCapsLock:
		if pressed {
			d.kbdMods ^= wire.ModCaps
		}
	}

	if d.focus == nil {
		return
	}
	typ := wire.KbdRelease
	if pressed {
		typ = wire.KbdPress
	}
	payload := wire.EventKbdPayload{Type: typ, Mods: d.kbdMods, Code: code, ASCII: asciiFor(code, d.kbdMods)}
	if d.focus.Client != nil {
		_ = d.focus.Client.SendEvent(wire.NewEvent(wire.EventKbd, d.focus.ID, payload.Encode))
	}
	d.broadcastEncoded(wire.EventGlobalKbd, payload.Encode)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// HandleMouse processes one pointer sample: relative motion (dx, dy)
// plus the currently held button set. It clamps the cursor surface to
// the screen, fires EventCursorEnter/EventCursorLeave when the
// hovered surface changes, sets focus on any new button press,
// and routes an EventMouse to whichever surface should receive it —
// the focused surface while any button is held, the hovered surface
// otherwise — plus a screen-relative EventGlobalMouse broadcast to
// everyone. Mirrors dwm_handle_mouse_event.
func (d *DWM) HandleMouse(dx, dy int, buttons wire.Button) {
	if d.cursor == nil {
		return
	}
	held := buttons
	pressed := buttons &^ d.prevHeld
	released := d.prevHeld &^ buttons

	oldX, oldY := d.cursor.X, d.cursor.Y
	d.cursor.X = clampInt(d.cursor.X+dx, 0, d.Screen.Width-1)
	d.cursor.Y = clampInt(d.cursor.Y+dy, 0, d.Screen.Height-1)
	delta := wire.Point{X: int64(d.cursor.X - oldX), Y: int64(d.cursor.Y - oldY)}
	screenPos := wire.Point{X: int64(d.cursor.X), Y: int64(d.cursor.Y)}

	target := d.surfaceUnderPoint(d.cursor.X, d.cursor.Y)
	if target != d.prevCursorTarget {
		if prev := d.prevCursorTarget; prev != nil && prev.Client != nil {
			leave := wire.EventMousePayload{
				Held:      held,
				Pos:       wire.Point{X: int64(d.cursor.X - prev.X), Y: int64(d.cursor.Y - prev.Y)},
				ScreenPos: screenPos,
				Delta:     delta,
			}
			_ = prev.Client.SendEvent(wire.NewEvent(wire.EventCursorLeave, prev.ID, leave.Encode))
		}
		if target != nil && target.Client != nil {
			enter := wire.EventMousePayload{
				Held:      held,
				Pos:       wire.Point{X: int64(d.cursor.X - target.X), Y: int64(d.cursor.Y - target.Y)},
				ScreenPos: screenPos,
				Delta:     delta,
			}
			_ = target.Client.SendEvent(wire.NewEvent(wire.EventCursorEnter, target.ID, enter.Encode))
		}
		d.prevCursorTarget = target
	}

	if pressed != 0 {
		d.FocusSet(target)
		if target != nil {
			d.Compositor.Invalidate(target.ScreenRect())
		}
	}

	dest := target
	if held != 0 && d.focus != nil {
		dest = d.focus
	}
	if dest != nil {
		payload := wire.EventMousePayload{
			Held:      held,
			Pressed:   pressed,
			Released:  released,
			Pos:       wire.Point{X: int64(d.cursor.X - dest.X), Y: int64(d.cursor.Y - dest.Y)},
			ScreenPos: screenPos,
			Delta:     delta,
		}
		if dest.Client != nil {
			_ = dest.Client.SendEvent(wire.NewEvent(wire.EventMouse, dest.ID, payload.Encode))
		}
		global := payload
		global.Pos = global.ScreenPos
		d.broadcastEncoded(wire.EventGlobalMouse, global.Encode)
	}

	d.prevHeld = held
}

// MouseBatcher coalesces a run of relative-motion device records into
// a single HandleMouse call, flushing immediately on any button edge
// so press/release timing against a specific cursor position is never
// lost. Mirrors dwm_mouse_read's accumulate-x/y-until-'_'-or-'^' loop;
// the caller (cmd/dwmd) feeds it raw device records and it calls back
// into the DWM.
type MouseBatcher struct {
	dx, dy  int
	buttons wire.Button
}

// Move accumulates relative motion without dispatching yet.
func (b *MouseBatcher) Move(dx, dy int) {
	b.dx += dx
	b.dy += dy
}

// Button flushes any pending motion, then applies a single button
// press (down=true) or release (down=false) edge.
func (b *MouseBatcher) Button(d *DWM, bit wire.Button, down bool) {
	b.flushMotion(d)
	if down {
		b.buttons |= bit
	} else {
		b.buttons &^= bit
	}
	d.HandleMouse(0, 0, b.buttons)
}

// Flush dispatches any accumulated motion that hasn't yet produced a
// button-edge sample, called once per poll cycle after draining all
// pending device records.
func (b *MouseBatcher) Flush(d *DWM) {
	b.flushMotion(d)
}

func (b *MouseBatcher) flushMotion(d *DWM) {
	if b.dx != 0 || b.dy != 0 {
		d.HandleMouse(b.dx, b.dy, b.buttons)
		b.dx, b.dy = 0, 0
	}
}
