package element

import (
	"testing"

	"patchwork/geom"
	"patchwork/wire"
)

func pressRelease(t *testing.T, btn *Element, owner *fakeOwner, x, y int64, pressed, released wire.Button) {
	t.Helper()
	owner.events = nil
	ev := wire.NewEvent(wire.EventMouse, owner.id, wire.EventMousePayload{
		Pos: wire.Point{X: x, Y: y}, Pressed: pressed, Released: released,
	}.Encode)
	if err := btn.Dispatch(ev); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
}

func actionsSent(owner *fakeOwner) []wire.ActionType {
	var out []wire.ActionType
	for _, ev := range owner.events {
		if ev.Type == wire.LEventAction {
			out = append(out, wire.DecodeLEventAction(ev.Raw[:]).Type)
		}
	}
	return out
}

func TestButtonPressReleaseCycle(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)
	owner.events = nil
	btn := NewButton(root, 2, geom.Rectangle(0, 0, 20, 20), "ok", FlagNone)

	pressRelease(t, btn, owner, 5, 5, wire.BtnLeft, 0)
	if acts := actionsSent(owner); len(acts) != 1 || acts[0] != wire.ActionPress {
		t.Fatalf("press actions = %v, want [ActionPress]", acts)
	}
	st := btn.Private().(*button)
	if !st.pressed || !st.focused || !st.hovered {
		t.Fatalf("state after press = %+v", st)
	}

	pressRelease(t, btn, owner, 5, 5, 0, wire.BtnLeft)
	if acts := actionsSent(owner); len(acts) != 1 || acts[0] != wire.ActionRelease {
		t.Fatalf("release actions = %v, want [ActionRelease]", acts)
	}
	if st.pressed {
		t.Fatal("expected pressed=false after release")
	}
}

func TestButtonCancelsOnMouseLeaveWhilePressed(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)
	btn := NewButton(root, 2, geom.Rectangle(0, 0, 20, 20), "ok", FlagNone)

	pressRelease(t, btn, owner, 5, 5, wire.BtnLeft, 0)
	pressRelease(t, btn, owner, 50, 50, 0, 0)

	if acts := actionsSent(owner); len(acts) != 1 || acts[0] != wire.ActionCancel {
		t.Fatalf("leave-while-pressed actions = %v, want [ActionCancel]", acts)
	}
	st := btn.Private().(*button)
	if st.pressed || st.hovered {
		t.Fatalf("state after leaving bounds = %+v", st)
	}
}

func TestButtonToggleFlips(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)
	btn := NewButton(root, 2, geom.Rectangle(0, 0, 20, 20), "mute", FlagToggle)

	pressRelease(t, btn, owner, 5, 5, wire.BtnLeft, 0)
	st := btn.Private().(*button)
	if !st.pressed {
		t.Fatal("expected toggle on after first press")
	}
	if acts := actionsSent(owner); len(acts) != 1 || acts[0] != wire.ActionPress {
		t.Fatalf("actions = %v, want [ActionPress]", acts)
	}

	pressRelease(t, btn, owner, 5, 5, wire.BtnLeft, 0)
	if st.pressed {
		t.Fatal("expected toggle off after second press")
	}
	if acts := actionsSent(owner); len(acts) != 1 || acts[0] != wire.ActionRelease {
		t.Fatalf("actions = %v, want [ActionRelease]", acts)
	}
}

func TestButtonCursorLeaveAndFocusOutClearState(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)
	btn := NewButton(root, 2, geom.Rectangle(0, 0, 20, 20), "ok", FlagNone)
	pressRelease(t, btn, owner, 5, 5, wire.BtnLeft, 0)

	if err := btn.Dispatch(wire.NewEvent(wire.EventCursorLeave, owner.id, nil)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	st := btn.Private().(*button)
	if st.hovered {
		t.Fatal("expected hovered=false after EventCursorLeave")
	}

	if err := btn.Dispatch(wire.NewEvent(wire.EventFocusOut, owner.id, nil)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if st.focused {
		t.Fatal("expected focused=false after EventFocusOut")
	}
}

func TestButtonForceAction(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)
	btn := NewButton(root, 2, geom.Rectangle(0, 0, 20, 20), "ok", FlagNone)

	ev := wire.NewEvent(wire.LEventForceAction, owner.id, wire.LEventForceActionPayload{Dest: btn.ID(), Action: wire.ActionPress}.Encode)
	if err := btn.Dispatch(ev); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	st := btn.Private().(*button)
	if !st.pressed || !st.focused {
		t.Fatalf("state after forced press = %+v", st)
	}

	ev = wire.NewEvent(wire.LEventForceAction, owner.id, wire.LEventForceActionPayload{Dest: btn.ID(), Action: wire.ActionRelease}.Encode)
	if err := btn.Dispatch(ev); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if st.pressed || st.focused {
		t.Fatalf("state after forced release = %+v", st)
	}
}

func TestButtonFreeClearsPrivate(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)
	btn := NewButton(root, 2, geom.Rectangle(0, 0, 20, 20), "ok", FlagNone)

	btn.Free()
	if btn.Private() != nil {
		t.Fatal("expected Private() to be nil after Free")
	}
}
