package wire

import (
	"testing"

	"patchwork/geom"
)

func encodeOne(t *testing.T, typ CmdType, payload any) []byte {
	t.Helper()
	b, err := EncodeCommand(typ, payload)
	if err != nil {
		t.Fatalf("EncodeCommand(%v): %v", typ, err)
	}
	return b
}

func TestFramingRoundTrip(t *testing.T) {
	c1 := encodeOne(t, CmdScreenInfo, CmdScreenInfoPayload{Index: 0})
	c2 := encodeOne(t, CmdSurfaceFree, CmdSurfaceFreePayload{Target: 42})
	buf, err := EncodeBuffer(2, c1, c2)
	if err != nil {
		t.Fatal(err)
	}
	cmds, consumed, ok, err := ParseBuffer(buf)
	if err != nil {
		t.Fatalf("ParseBuffer: %v", err)
	}
	if !ok || consumed != len(buf) {
		t.Fatalf("expected full frame consumed, got ok=%v consumed=%d len=%d", ok, consumed, len(buf))
	}
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(cmds))
	}
	if cmds[0].Header.Type != CmdScreenInfo || cmds[1].Header.Type != CmdSurfaceFree {
		t.Errorf("unexpected command types: %v, %v", cmds[0].Header.Type, cmds[1].Header.Type)
	}
	got := cmds[1].Payload.(CmdSurfaceFreePayload)
	if got.Target != 42 {
		t.Errorf("Target = %d, want 42", got.Target)
	}
}

func TestFramingPartialFrameWaits(t *testing.T) {
	c1 := encodeOne(t, CmdScreenInfo, CmdScreenInfoPayload{Index: 0})
	buf, _ := EncodeBuffer(1, c1)
	_, _, ok, err := ParseBuffer(buf[:len(buf)-1])
	if ok || err != nil {
		t.Fatalf("partial frame should neither be ok nor error, got ok=%v err=%v", ok, err)
	}
}

func TestFramingBadMagicIsProtocolError(t *testing.T) {
	c1 := encodeOne(t, CmdScreenInfo, CmdScreenInfoPayload{Index: 0})
	buf, _ := EncodeBuffer(1, c1)
	// Corrupt the magic of the one command in the buffer.
	buf[bufferHeaderSize] ^= 0xFF
	cmds, consumed, ok, err := ParseBuffer(buf)
	if err == nil {
		t.Fatal("expected protocol error for corrupt magic")
	}
	if !ok || consumed != len(buf) {
		t.Errorf("a corrupt-but-complete frame must still be reported as fully consumed")
	}
	if cmds != nil {
		t.Errorf("expected no commands returned from a corrupt buffer, got %v", cmds)
	}
}

func TestFramingAmountMismatchIsProtocolError(t *testing.T) {
	c1 := encodeOne(t, CmdScreenInfo, CmdScreenInfoPayload{Index: 0})
	c2 := encodeOne(t, CmdSurfaceFree, CmdSurfaceFreePayload{Target: 1})
	buf, _ := EncodeBuffer(1, c1, c2) // declares 1, actually walks 2
	cmds, _, ok, err := ParseBuffer(buf)
	if err == nil {
		t.Fatal("expected protocol error for amount/walk mismatch")
	}
	if !ok {
		t.Error("a complete, just invalid, frame should report ok=true")
	}
	if cmds != nil {
		t.Error("invalid buffer must not partially apply")
	}
}

func TestFramingOutOfRangeType(t *testing.T) {
	c1 := encodeOne(t, CmdScreenInfo, CmdScreenInfoPayload{Index: 0})
	buf, _ := EncodeBuffer(1, c1)
	// Overwrite the type field (bytes 4:8 of the one command) with an
	// out-of-range value.
	buf[bufferHeaderSize+4] = 0xFF
	buf[bufferHeaderSize+5] = 0xFF
	_, _, ok, err := ParseBuffer(buf)
	if err == nil || !ok {
		t.Fatalf("expected protocol error with ok=true, got ok=%v err=%v", ok, err)
	}
}

func TestEventRoundTrip(t *testing.T) {
	want := EventScreenInfoPayload{Width: 1024, Height: 768}
	e := NewEvent(EventScreenInfo, NoSurface, want.Encode)
	wire := e.Encode()
	got, err := DecodeEvent(wire)
	if err != nil {
		t.Fatal(err)
	}
	decoded := DecodeEventScreenInfo(got.Raw[:])
	if decoded != want {
		t.Errorf("got %+v, want %+v", decoded, want)
	}
}

func TestSubscriptionDefaultCoversCoreEvents(t *testing.T) {
	s := DefaultSubscription()
	for i := 0; i < CoreEventCount; i++ {
		if !s.Has(EventType(i)) {
			t.Errorf("default subscription missing core event %d", i)
		}
	}
	if s.Has(LEventInit) {
		t.Error("default subscription should not cover library events")
	}
}

func TestSubscriptionGating(t *testing.T) {
	var s Subscription
	if s.Has(EventKbd) {
		t.Fatal("fresh subscription should have nothing set")
	}
	s.Set(EventKbd)
	if !s.Has(EventKbd) {
		t.Fatal("expected EventKbd to be set")
	}
	s.Clear(EventKbd)
	if s.Has(EventKbd) {
		t.Fatal("expected EventKbd to be cleared")
	}
}

func TestSurfaceNewRoundTrip(t *testing.T) {
	p := CmdSurfaceNewPayload{Type: SurfaceWindow, Rect: geom.Rectangle(10, 20, 100, 100), Name: "w1"}
	b := encodeOne(t, CmdSurfaceNew, p)
	buf, _ := EncodeBuffer(1, b)
	decoded, _, ok, err := ParseBuffer(buf)
	if err != nil || !ok {
		t.Fatalf("ParseBuffer: ok=%v err=%v", ok, err)
	}
	got := decoded[0].Payload.(CmdSurfaceNewPayload)
	if got.Type != p.Type || got.Rect != p.Rect || got.Name != p.Name {
		t.Errorf("got %+v, want %+v", got, p)
	}
}
