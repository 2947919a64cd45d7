package element

import (
	"testing"

	"patchwork/client/draw"
	"patchwork/client/theme"
	"patchwork/geom"
	"patchwork/wire"
)

type fakeOwner struct {
	id        wire.SurfaceID
	buffer    []geom.Pixel
	stride    int
	events    []wire.Event
	invalided []geom.Rect
}

func newFakeOwner(width, height int) *fakeOwner {
	return &fakeOwner{
		id:     42,
		buffer: make([]geom.Pixel, width*height),
		stride: width,
	}
}

func (o *fakeOwner) SurfaceID() wire.SurfaceID         { return o.id }
func (o *fakeOwner) PushEvent(ev wire.Event)           { o.events = append(o.events, ev) }
func (o *fakeOwner) Buffer() []geom.Pixel              { return o.buffer }
func (o *fakeOwner) Stride() int                       { return o.stride }
func (o *fakeOwner) Invalidate(r geom.Rect)             { o.invalided = append(o.invalided, r) }
func (o *fakeOwner) DefaultFont() draw.Font            { return theme.DefaultFont() }

func noopProc(owner Owner, elem *Element, event wire.Event) error { return nil }

func TestNewRootSendsInitAndRedraw(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)

	if len(owner.events) != 2 {
		t.Fatalf("got %d events, want 2 (init + redraw)", len(owner.events))
	}
	if owner.events[0].Type != wire.LEventInit {
		t.Fatalf("first event = %v, want LEventInit", owner.events[0].Type)
	}
	if owner.events[1].Type != wire.LEventRedraw {
		t.Fatalf("second event = %v, want LEventRedraw", owner.events[1].Type)
	}
	if root.ID() != 1 {
		t.Fatalf("ID() = %d, want 1", root.ID())
	}
}

func TestNewChildInheritsOwnerAndParent(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)
	owner.events = nil

	child := New(root, 2, geom.Rectangle(10, 10, 20, 20), "child", FlagNone, noopProc, nil)

	if child.Parent() != root {
		t.Fatal("child.Parent() != root")
	}
	if child.owner != owner {
		t.Fatal("child did not inherit parent's owner")
	}
	if len(owner.events) != 2 {
		t.Fatalf("got %d events for New, want 2", len(owner.events))
	}
}

func TestFindLocatesDescendant(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)
	child := New(root, 2, geom.Rectangle(0, 0, 10, 10), "c", FlagNone, noopProc, nil)
	grandchild := New(child, 3, geom.Rectangle(0, 0, 5, 5), "gc", FlagNone, noopProc, nil)

	if root.Find(3) != grandchild {
		t.Fatal("Find did not locate grandchild")
	}
	if root.Find(2) != child {
		t.Fatal("Find did not locate child")
	}
	if root.Find(NoID) != nil {
		t.Fatal("Find(NoID) should miss")
	}
}

func TestGlobalPointAccumulatesParentOffsets(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(5, 5, 100, 100), "root", FlagNone, noopProc, nil)
	child := New(root, 2, geom.Rectangle(10, 10, 20, 20), "c", FlagNone, noopProc, nil)
	grandchild := New(child, 3, geom.Rectangle(1, 1, 5, 5), "gc", FlagNone, noopProc, nil)

	p := grandchild.GlobalPoint()
	if p.X != 5+10+1 || p.Y != 5+10+1 {
		t.Fatalf("GlobalPoint() = %+v, want (16,16)", p)
	}
}

func TestRectConversionsRoundTrip(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(5, 5, 100, 100), "root", FlagNone, noopProc, nil)
	child := New(root, 2, geom.Rectangle(10, 10, 20, 20), "c", FlagNone, noopProc, nil)

	local := geom.Rectangle(1, 1, 3, 3)
	global := child.RectToGlobal(local)
	back := child.GlobalToRect(global)
	if back != local {
		t.Fatalf("round-trip rect = %+v, want %+v", back, local)
	}

	pLocal := draw.Point{X: 2, Y: 3}
	pGlobal := child.PointToGlobal(pLocal)
	pBack := child.GlobalToPoint(pGlobal)
	if pBack != pLocal {
		t.Fatalf("round-trip point = %+v, want %+v", pBack, pLocal)
	}
}

func TestFreeCallsProcDirectlyAndRecurses(t *testing.T) {
	owner := newFakeOwner(100, 100)
	var freed []ID
	proc := func(owner Owner, elem *Element, event wire.Event) error {
		if event.Type == wire.LEventFree {
			freed = append(freed, elem.ID())
		}
		return nil
	}
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, proc, nil)
	New(root, 2, geom.Rectangle(0, 0, 10, 10), "c", FlagNone, proc, nil)

	root.Free()

	if len(freed) != 2 || freed[0] != 1 || freed[1] != 2 {
		t.Fatalf("freed = %v, want [1 2]", freed)
	}
}

func TestDispatchRedrawPropagatesToChildren(t *testing.T) {
	owner := newFakeOwner(100, 100)
	var redrawn []ID
	proc := func(owner Owner, elem *Element, event wire.Event) error {
		if event.Type == wire.LEventRedraw {
			redrawn = append(redrawn, elem.ID())
		}
		return nil
	}
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, proc, nil)
	New(root, 2, geom.Rectangle(0, 0, 10, 10), "c", FlagNone, proc, nil)
	owner.events = nil
	redrawn = nil

	ev := wire.NewEvent(wire.LEventRedraw, owner.id, wire.LEventRedrawPayload{ID: 1, Propagate: true}.Encode)
	if err := root.Dispatch(ev); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(redrawn) != 1 || redrawn[0] != 1 {
		t.Fatalf("redrawn = %v, want [1] (child redraw queued, not yet dispatched)", redrawn)
	}
	if len(owner.events) != 1 || owner.events[0].Type != wire.LEventRedraw {
		t.Fatalf("expected one queued child redraw event, got %+v", owner.events)
	}
}

func TestDispatchMouseTranslatesPositionPerElement(t *testing.T) {
	owner := newFakeOwner(100, 100)
	var seen []wire.Point
	proc := func(owner Owner, elem *Element, event wire.Event) error {
		if event.Type == wire.EventMouse {
			seen = append(seen, wire.DecodeEventMouse(event.Raw[:]).Pos)
		}
		return nil
	}
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, proc, nil)
	New(root, 2, geom.Rectangle(10, 10, 20, 20), "c", FlagNone, proc, nil)

	ev := wire.NewEvent(wire.EventMouse, owner.id, wire.EventMousePayload{Pos: wire.Point{X: 15, Y: 15}}.Encode)
	if err := root.Dispatch(ev); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("got %d mouse deliveries, want 2", len(seen))
	}
	if seen[0] != (wire.Point{X: 15, Y: 15}) {
		t.Fatalf("root saw %+v, want (15,15)", seen[0])
	}
	if seen[1] != (wire.Point{X: 5, Y: 5}) {
		t.Fatalf("child saw %+v, want (5,5)", seen[1])
	}
}

func TestDrawBeginSlicesOwnerBuffer(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)
	child := New(root, 2, geom.Rectangle(10, 20, 30, 5), "c", FlagNone, noopProc, nil)

	d := child.DrawBegin()
	if d.Stride != 100 {
		t.Fatalf("Stride = %d, want 100", d.Stride)
	}
	wantStart := 10 + 20*100
	if len(owner.buffer)-len(d.Buffer) != wantStart {
		t.Fatalf("buffer slice starts at offset %d, want %d", len(owner.buffer)-len(d.Buffer), wantStart)
	}
	if d.ContentRect != geom.Rectangle(0, 0, 30, 5) {
		t.Fatalf("ContentRect = %+v, want local-origin 30x5", d.ContentRect)
	}
}

func TestDrawEndInvalidatesGloballyAndRedrawsOverlappingChildren(t *testing.T) {
	owner := newFakeOwner(100, 100)
	root := NewRoot(owner, 1, geom.Rectangle(0, 0, 100, 100), "root", FlagNone, noopProc, nil)
	child := New(root, 2, geom.Rectangle(0, 0, 10, 10), "c", FlagNone, noopProc, nil)
	outside := New(root, 3, geom.Rectangle(50, 50, 10, 10), "far", FlagNone, noopProc, nil)
	_ = outside
	owner.events = nil

	d := root.DrawBegin()
	d.Rect(geom.Rectangle(0, 0, 5, 5), geom.ARGB(255, 1, 2, 3))

	root.DrawEnd(d)

	if len(owner.invalided) != 1 {
		t.Fatalf("got %d Invalidate calls, want 1", len(owner.invalided))
	}
	if owner.invalided[0] != geom.Rectangle(0, 0, 5, 5) {
		t.Fatalf("invalidated = %+v, want (0,0,5,5)", owner.invalided[0])
	}

	var redrawTargets []uint64
	for _, ev := range owner.events {
		if ev.Type == wire.LEventRedraw {
			redrawTargets = append(redrawTargets, wire.DecodeLEventRedraw(ev.Raw[:]).ID)
		}
	}
	if len(redrawTargets) != 1 || redrawTargets[0] != child.ID() {
		t.Fatalf("redraw targets = %v, want only the overlapping child (%d)", redrawTargets, child.ID())
	}
}
