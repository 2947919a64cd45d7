package main

import (
	"golang.org/x/sys/unix"
)

// fdConn adapts a raw accepted socket fd to io.ReadWriteCloser so it
// can be handed to server.NewClient without pulling in net.Conn's
// stream-socket assumptions (our listening socket is SOCK_SEQPACKET,
// matching spec §6's "local sequence-packet socket").
type fdConn struct {
	fd int
}

func (c *fdConn) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(c.fd, p)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func (c *fdConn) Write(p []byte) (int, error) {
	for {
		n, err := unix.Write(c.fd, p)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func (c *fdConn) Close() error { return unix.Close(c.fd) }
