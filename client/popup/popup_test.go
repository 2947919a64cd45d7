package popup

import (
	"testing"

	"golang.org/x/sys/unix"

	"patchwork/client/display"
	"patchwork/client/draw"
	"patchwork/client/element"
	"patchwork/geom"
	"patchwork/wire"
)

type fakeOwner struct {
	id     wire.SurfaceID
	buffer []geom.Pixel
	stride int
}

func (o *fakeOwner) SurfaceID() wire.SurfaceID { return o.id }
func (o *fakeOwner) PushEvent(ev wire.Event)   {}
func (o *fakeOwner) Buffer() []geom.Pixel      { return o.buffer }
func (o *fakeOwner) Stride() int               { return o.stride }
func (o *fakeOwner) Invalidate(rect geom.Rect) {}
func (o *fakeOwner) DefaultFont() draw.Font    { return nil }

func newContentElement(t *testing.T, p *popup) *element.Element {
	t.Helper()
	owner := &fakeOwner{buffer: make([]geom.Pixel, 325*125), stride: 325}
	return element.NewRoot(owner, element.NoID, geom.Rectangle(0, 0, 325, 125), "popup", element.FlagNone,
		func(element.Owner, *element.Element, wire.Event) error { return nil }, p)
}

func buttonIDs(elem *element.Element) []element.ID {
	var ids []element.ID
	for _, id := range []element.ID{element.ElementOK, element.ElementRetry, element.ElementCancel, element.ElementYes, element.ElementNo} {
		if elem.Find(id) != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func TestPopupInitBuildsOkButtonForOkType(t *testing.T) {
	p := &popup{result: ResClose, text: "hi", typ: OK}
	elem := newContentElement(t, p)
	popupInit(elem, p)

	ids := buttonIDs(elem)
	if len(ids) != 1 || ids[0] != element.ElementOK {
		t.Fatalf("buttons = %v, want only ElementOK", ids)
	}
}

func TestPopupInitBuildsRetryAndCancelButtonsForRetryCancelType(t *testing.T) {
	p := &popup{result: ResClose, text: "hi", typ: RetryCancel}
	elem := newContentElement(t, p)
	popupInit(elem, p)

	if elem.Find(element.ElementRetry) == nil || elem.Find(element.ElementCancel) == nil {
		t.Fatal("expected both ElementRetry and ElementCancel buttons")
	}
	if elem.Find(element.ElementOK) != nil {
		t.Fatal("did not expect an ElementOK button for RetryCancel type")
	}
}

func TestPopupInitBuildsYesAndNoButtonsForYesNoType(t *testing.T) {
	p := &popup{result: ResClose, text: "hi", typ: YesNo}
	elem := newContentElement(t, p)
	popupInit(elem, p)

	if elem.Find(element.ElementYes) == nil || elem.Find(element.ElementNo) == nil {
		t.Fatal("expected both ElementYes and ElementNo buttons")
	}
}

func TestPopupButtonRectsAreOrderedLeftMiddleRight(t *testing.T) {
	p := &popup{result: ResClose, text: "hi", typ: YesNo}
	elem := newContentElement(t, p)

	middle, left, right := popupButtonRects(elem)
	if !(left.Left < middle.Left && middle.Left < right.Left) {
		t.Fatalf("button rects not left < middle < right: left=%+v middle=%+v right=%+v", left, middle, right)
	}
}

func TestPopupActionIgnoresNonReleaseActions(t *testing.T) {
	p := &popup{result: ResClose, text: "hi", typ: OK}
	d, peer := newTestDisplay(t)
	defer unix.Close(peer)

	popupAction(d, p, wire.LEventActionPayload{Source: uint64(element.ElementOK), Type: wire.ActionPress})

	if p.result != ResClose {
		t.Fatalf("result = %v after a press action, want unchanged ResClose", p.result)
	}
	if !d.IsConnected() {
		t.Fatal("display should still be connected after a press action")
	}
}

func TestPopupActionRecordsResultAndDisconnectsOnRelease(t *testing.T) {
	p := &popup{result: ResClose, text: "hi", typ: YesNo}
	d, peer := newTestDisplay(t)
	defer unix.Close(peer)

	popupAction(d, p, wire.LEventActionPayload{Source: uint64(element.ElementYes), Type: wire.ActionRelease})

	if p.result != ResYes {
		t.Fatalf("result = %v, want ResYes", p.result)
	}
	if d.IsConnected() {
		t.Fatal("display should be disconnected after a release action")
	}
}

// newTestDisplay dials a real AF_UNIX SOCK_SEQPACKET socket and
// returns a genuine *display.Display built through its exported New,
// plus the accepted peer fd standing in for the DWM server. Mirrors
// client/window's test helper of the same name, needed for the same
// reason: package popup has no access to Display's unexported fields.
func newTestDisplay(t *testing.T) (*display.Display, int) {
	t.Helper()

	path := t.TempDir() + "/dwm.sock"
	listenFd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		t.Fatalf("socket: %v", err)
	}
	if err := unix.Bind(listenFd, &unix.SockaddrUnix{Name: path}); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := unix.Listen(listenFd, 1); err != nil {
		t.Fatalf("listen: %v", err)
	}

	type acceptResult struct {
		fd  int
		err error
	}
	acceptCh := make(chan acceptResult, 1)
	go func() {
		fd, _, err := unix.Accept(listenFd)
		acceptCh <- acceptResult{fd, err}
	}()

	d, err := display.New(path)
	if err != nil {
		t.Fatalf("display.New: %v", err)
	}

	res := <-acceptCh
	unix.Close(listenFd)
	if res.err != nil {
		t.Fatalf("accept: %v", res.err)
	}

	t.Cleanup(func() { d.Close() })
	return d, res.fd
}
