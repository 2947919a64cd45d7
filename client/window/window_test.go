package window

import (
	"fmt"
	"os"
	"testing"

	"golang.org/x/sys/unix"

	"patchwork/client/display"
	"patchwork/client/draw"
	"patchwork/client/element"
	"patchwork/client/theme"
	"patchwork/geom"
	"patchwork/wire"
)

// newTestDisplay dials a real AF_UNIX SOCK_SEQPACKET socket and
// returns a genuine *display.Display built through its exported New,
// plus the accepted peer fd standing in for the DWM server. Needed
// because, unlike client/display's own package-internal socketpair
// helper, package window has no access to Display's unexported
// fields.
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

	t.Cleanup(func() {
		d.Close()
		unix.Close(res.fd)
	})
	return d, res.fd
}

// newShmem creates a /dev/shm-backed region sized for a rect and
// returns the key claimShmem should open.
func newShmem(t *testing.T, rect geom.Rect) string {
	t.Helper()
	key := fmt.Sprintf("dwmtest-%d", os.Getpid())
	path := "/dev/shm/" + key

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0600)
	if err != nil {
		t.Fatalf("open shmem: %v", err)
	}
	defer unix.Close(fd)

	size := int64(rect.Width() * rect.Height() * 4)
	if err := unix.Ftruncate(fd, size); err != nil {
		t.Fatalf("ftruncate: %v", err)
	}
	t.Cleanup(func() { os.Remove(path) })
	return key
}

// respondSurfaceNew writes one CMD_SURFACE_NEW response on peer: an
// EventSurfaceNew carrying shmemKey, targeting surface.
func respondSurfaceNew(t *testing.T, peer int, surface wire.SurfaceID, shmemKey string) {
	t.Helper()
	ev := wire.NewEvent(wire.EventSurfaceNew, surface, wire.EventSurfaceNewPayload{ShmemKey: shmemKey}.Encode)
	if _, err := unix.Write(peer, ev.Encode()); err != nil {
		t.Fatalf("write event: %v", err)
	}
}

func clientRootProc(owner element.Owner, elem *element.Element, event wire.Event) error { return nil }

func TestNewBareWindowClaimsSurfaceAndBuildsRoot(t *testing.T) {
	d, peer := newTestDisplay(t)

	rect := geom.Rectangle(0, 0, 20, 10)
	key := newShmem(t, rect)

	go respondSurfaceNew(t, peer, wire.SurfaceID(7), key)

	win, err := New(d, "app", rect, wire.SurfaceWindow, FlagNone, clientRootProc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if win.SurfaceID() != 7 {
		t.Fatalf("SurfaceID() = %d, want 7", win.SurfaceID())
	}
	if win.Rect() != rect {
		t.Fatalf("Rect() = %+v, want %+v", win.Rect(), rect)
	}
	if win.ClientElement() != win.root {
		t.Fatal("bare window's client element should be its root")
	}
	if len(win.Buffer()) != rect.Width()*rect.Height() {
		t.Fatalf("Buffer() len = %d, want %d", len(win.Buffer()), rect.Width()*rect.Height())
	}

	win.Free()
}

func TestNewDecoratedWindowExpandsRectAndNestsClient(t *testing.T) {
	d, peer := newTestDisplay(t)

	inner := geom.Rectangle(100, 100, 40, 20)
	// Overestimate generously: deco frame/titlebar sizes default to 1 each.
	outer := geom.Rectangle(
		inner.Left-8, inner.Top-8,
		inner.Width()+16, inner.Height()+16,
	)
	key := newShmem(t, outer)

	go respondSurfaceNew(t, peer, wire.SurfaceID(9), key)

	win, err := New(d, "deco-app", inner, wire.SurfaceWindow, FlagDeco, clientRootProc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer win.Free()

	if win.Rect().Width() <= inner.Width() || win.Rect().Height() <= inner.Height() {
		t.Fatalf("decorated rect %+v should be larger than content rect %+v", win.Rect(), inner)
	}
	if win.ClientElement() == win.root {
		t.Fatal("decorated window's client element should be nested under the deco root")
	}
	if win.root.ID() != windowDecoElemID {
		t.Fatalf("root id = %d, want windowDecoElemID", win.root.ID())
	}
	if win.ClientElement().ID() != windowClientElemID {
		t.Fatalf("client element id = %d, want windowClientElemID", win.ClientElement().ID())
	}
}

func TestMoveRejectsResizeWithoutFlagResizable(t *testing.T) {
	d, peer := newTestDisplay(t)

	rect := geom.Rectangle(0, 0, 20, 10)
	key := newShmem(t, rect)
	go respondSurfaceNew(t, peer, wire.SurfaceID(3), key)

	win, err := New(d, "app", rect, wire.SurfaceWindow, FlagNone, clientRootProc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer win.Free()

	if err := win.Move(geom.Rectangle(5, 5, 30, 30)); err != ErrNotResizable {
		t.Fatalf("Move with size change = %v, want ErrNotResizable", err)
	}

	// A pure translation (no size change) is always allowed.
	done := make(chan error, 1)
	go func() { done <- win.Move(geom.Rectangle(5, 5, 20, 10)) }()
	buf := make([]byte, 4096)
	if _, err := unix.Read(peer, buf); err != nil {
		t.Fatalf("read move command: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Move without size change: %v", err)
	}
}

func TestDispatchReportRectUpdatesWindowAndQueuesRedrawOnResize(t *testing.T) {
	d, peer := newTestDisplay(t)

	rect := geom.Rectangle(0, 0, 20, 10)
	key := newShmem(t, rect)
	go respondSurfaceNew(t, peer, wire.SurfaceID(11), key)

	win, err := New(d, "app", rect, wire.SurfaceWindow, FlagNone, clientRootProc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer win.Free()

	newRect := geom.Rectangle(0, 0, 40, 40)
	report := wire.EventReportPayload{
		Flags: wire.ReportRect,
		Info:  wire.SurfaceInfo{Type: wire.SurfaceWindow, ID: win.SurfaceID(), Rect: newRect},
	}
	ev := wire.NewEvent(wire.EventReport, win.SurfaceID(), report.Encode)

	if err := win.Dispatch(ev); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if win.Rect() != newRect {
		t.Fatalf("Rect() after report = %+v, want %+v", win.Rect(), newRect)
	}
}

func TestDecoTitlebarAndButtonRectsShrinkFromFrame(t *testing.T) {
	owner := &fakeWindowOwner{buffer: make([]geom.Pixel, 100*100), stride: 100, id: 1}
	root := element.NewRoot(owner, windowDecoElemID, geom.Rectangle(0, 0, 100, 50), "deco", element.FlagNone,
		func(element.Owner, *element.Element, wire.Event) error { return nil }, nil)
	// Without a vars.ini the theme's titlebar size defaults to 1, too
	// small to hold the buttons; give the titlebar a usable height.
	root.SetIntValue(theme.IntTitlebarSize, 20)

	titlebar := windowDecoTitlebarRect(root)
	if titlebar.Left <= 0 || titlebar.Top <= 0 {
		t.Fatalf("titlebar rect %+v should be inset from the frame", titlebar)
	}

	closeRect := windowDecoButtonRect(root, windowDecoCloseButtonIndex)
	minimizeRect := windowDecoButtonRect(root, windowDecoMinimizeButtonIndex)
	if closeRect.Left <= minimizeRect.Left {
		t.Fatalf("close button (index 0) should sit to the right of minimize (index 1): close=%+v minimize=%+v",
			closeRect, minimizeRect)
	}
}

type fakeWindowOwner struct {
	id     wire.SurfaceID
	buffer []geom.Pixel
	stride int
	events []wire.Event
}

func (o *fakeWindowOwner) SurfaceID() wire.SurfaceID { return o.id }
func (o *fakeWindowOwner) PushEvent(ev wire.Event)   { o.events = append(o.events, ev) }
func (o *fakeWindowOwner) Buffer() []geom.Pixel      { return o.buffer }
func (o *fakeWindowOwner) Stride() int               { return o.stride }
func (o *fakeWindowOwner) Invalidate(rect geom.Rect) {}
func (o *fakeWindowOwner) DefaultFont() draw.Font    { return nil }
