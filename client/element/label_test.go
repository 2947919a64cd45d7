package element

import (
	"testing"

	"patchwork/geom"
	"patchwork/wire"
)

func TestLabelRedrawsOnlyOnLEventRedraw(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)
	owner.invalided = nil

	label := NewLabel(root, 2, geom.Rectangle(0, 0, 30, 10), "hi", FlagNone)

	if err := label.Dispatch(wire.NewEvent(wire.EventFocusOut, owner.id, nil)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(owner.invalided) != 0 {
		t.Fatalf("label drew on an unrelated event: %v", owner.invalided)
	}

	if err := label.Dispatch(wire.NewEvent(wire.LEventRedraw, owner.id, wire.LEventRedrawPayload{ID: label.ID()}.Encode)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(owner.invalided) != 1 {
		t.Fatalf("expected exactly one draw-end invalidate, got %d", len(owner.invalided))
	}
}

func TestLabelHasNoPrivateState(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)
	label := NewLabel(root, 2, geom.Rectangle(0, 0, 30, 10), "hi", FlagNone)

	if label.Private() != nil {
		t.Fatalf("label private = %v, want nil", label.Private())
	}
}

func TestLabelFlatSkipsFrame(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)
	label := NewLabel(root, 2, geom.Rectangle(0, 0, 30, 10), "hi", FlagFlat)
	owner.invalided = nil

	if err := label.Dispatch(wire.NewEvent(wire.LEventRedraw, owner.id, wire.LEventRedrawPayload{ID: label.ID()}.Encode)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(owner.invalided) != 1 {
		t.Fatalf("expected a draw for the flat label, got %d invalidations", len(owner.invalided))
	}
}
