package main

import (
	"log"

	"golang.org/x/sys/unix"

	"patchwork/server"
	"patchwork/wire"
)

// tokenReader accumulates raw bytes from a non-blocking input device fd
// and splits them into "<digits><suffix>" tokens, mirroring the
// scan(fd, "%lld%c", ...)/scan(fd, "%u%c", ...) reads dwm_kbd_read and
// dwm_mouse_read perform one token at a time in the original. A read
// returning EAGAIN means "no more tokens right now", not an error.
type tokenReader struct {
	fd     int
	buf    []byte
	value  int64
	suffix byte
}

func newTokenReader(fd int) *tokenReader { return &tokenReader{fd: fd} }

// fill reads whatever is currently available without blocking,
// appending it to buf. Returns false once EAGAIN is hit or nothing new
// arrived.
func (t *tokenReader) fill() bool {
	chunk := make([]byte, 256)
	n, err := unix.Read(t.fd, chunk)
	if n > 0 {
		t.buf = append(t.buf, chunk[:n]...)
		return true
	}
	return err == nil && n > 0
}

// next extracts one complete "<digits><suffix>" token from buf,
// reading more from the fd as needed. Returns ok=false once no
// complete token is available without blocking.
func (t *tokenReader) next() (value int64, suffix byte, ok bool) {
	for {
		if t.parseOne() {
			return t.value, t.suffix, true
		}
		if !t.fill() {
			return 0, 0, false
		}
	}
}

// parseOne scans buf for a leading optional '-' sign, a run of
// digits, and a single suffix byte, consuming them from buf and
// storing the result in t.value/t.suffix on success.
func (t *tokenReader) parseOne() bool {
	i := 0
	neg := false
	if i < len(t.buf) && t.buf[i] == '-' {
		neg = true
		i++
	}
	start := i
	for i < len(t.buf) && t.buf[i] >= '0' && t.buf[i] <= '9' {
		i++
	}
	if i == start || i >= len(t.buf) {
		return false
	}
	var v int64
	for _, b := range t.buf[start:i] {
		v = v*10 + int64(b-'0')
	}
	if neg {
		v = -v
	}
	t.value = v
	t.suffix = t.buf[i]
	t.buf = t.buf[i+1:]
	return true
}

// readKbd drains every complete token currently available on the
// keyboard device fd, translating each <code>_/<code>^ pair into a
// HandleKbd call. Mirrors dwm_kbd_read, minus its one-token-per-call
// shape (we drain everything poll just told us is readable).
func readKbd(d *server.DWM, r *tokenReader) {
	for {
		value, suffix, ok := r.next()
		if !ok {
			return
		}
		switch suffix {
		case '_':
			d.HandleKbd(uint16(value), true)
		case '^':
			d.HandleKbd(uint16(value), false)
		default:
			log.Printf("dwmd: kbd: unknown suffix %q", suffix)
		}
	}
}

// readMouse drains every complete token currently available on the
// mouse device fd through batcher, mirroring dwm_mouse_read's
// accumulate-x/y-until-button-edge loop.
func readMouse(d *server.DWM, r *tokenReader, batcher *server.MouseBatcher) {
	for {
		value, suffix, ok := r.next()
		if !ok {
			batcher.Flush(d)
			return
		}
		switch suffix {
		case 'x':
			batcher.Move(int(value), 0)
		case 'y':
			batcher.Move(0, int(value))
		case '_':
			batcher.Button(d, wire.Button(1<<uint(value)), true)
		case '^':
			batcher.Button(d, wire.Button(1<<uint(value)), false)
		default:
			log.Printf("dwmd: mouse: unknown suffix %q", suffix)
		}
	}
}
