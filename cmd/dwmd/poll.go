package main

import (
	"io"
	"log"
	"time"

	"golang.org/x/sys/unix"

	"patchwork/server"
)

// clientConn pairs an accepted client's raw fd with its server.Client
// session, kept in cmd/dwmd rather than inside the server package so
// server.Client stays transport-agnostic (any io.ReadWriteCloser).
type clientConn struct {
	fd     int
	client *server.Client
}

// runLoop is the Go-native dwm_loop: repeatedly compute the next
// timer deadline, poll every readable fd (listening socket, kbd,
// mouse, each client), react to whatever became ready, composite, and
// scan out. Mirrors dwm_loop/dwm_update/dwm_poll.
func runLoop(d *server.DWM, listenFd, kbdFd, mouseFd int, fb []byte) {
	var clients []clientConn
	kbdReader := newTokenReader(kbdFd)
	mouseReader := newTokenReader(mouseFd)
	var mouseBatch server.MouseBatcher

	for {
		timeout := pollTimeoutMillis(d.PollTimer())

		fds := make([]unix.PollFd, 0, 3+len(clients))
		fds = append(fds, unix.PollFd{Fd: int32(listenFd), Events: unix.POLLIN})
		if kbdFd >= 0 {
			fds = append(fds, unix.PollFd{Fd: int32(kbdFd), Events: unix.POLLIN})
		}
		if mouseFd >= 0 {
			fds = append(fds, unix.PollFd{Fd: int32(mouseFd), Events: unix.POLLIN})
		}
		for _, cc := range clients {
			fds = append(fds, unix.PollFd{Fd: int32(cc.fd), Events: unix.POLLIN})
		}

		_, err := unix.Poll(fds, timeout)
		if err != nil && err != unix.EINTR {
			log.Fatalf("dwmd: poll failed: %v", err)
		}

		// fire the timer if it became due while we were blocked
		d.PollTimer()

		i := 0
		if fds[i].Revents&unix.POLLIN != 0 {
			acceptClient(d, listenFd, &clients)
			continue // the clients slice/poll set is now stale
		}
		i++
		if kbdFd >= 0 {
			if fds[i].Revents&unix.POLLIN != 0 {
				readKbd(d, kbdReader)
			}
			i++
		}
		if mouseFd >= 0 {
			if fds[i].Revents&unix.POLLIN != 0 {
				readMouse(d, mouseReader, &mouseBatch)
			}
			i++
		}

		clients = serviceClients(d, clients, fds[i:])

		d.Compositor.Draw(d)
		if fb != nil {
			scanOut(fb, d.Screen.Front())
		}
	}
}

// pollTimeoutMillis converts PollTimer's duration hint into the
// millisecond timeout unix.Poll expects, -1 meaning "block forever".
func pollTimeoutMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return int(ms)
}

// acceptClient accepts one pending connection and registers it with
// the DWM core, mirroring dwm_client_accept.
func acceptClient(d *server.DWM, listenFd int, clients *[]clientConn) {
	nfd, _, err := unix.Accept(listenFd)
	if err != nil {
		log.Printf("dwmd: accept failed: %v", err)
		return
	}
	if err := unix.SetNonblock(nfd, true); err != nil {
		log.Printf("dwmd: failed to set client fd non-blocking: %v", err)
	}
	conn := &fdConn{fd: nfd}
	c := server.NewClient(d, conn)
	d.Connect(c)
	*clients = append(*clients, clientConn{fd: nfd, client: c})
}

// serviceClients handles POLLHUP/POLLERR/POLLIN on every client fd,
// disconnecting any client that hung up, errored, or failed to parse
// its pending commands. Mirrors dwm_update's client-list walk.
func serviceClients(d *server.DWM, clients []clientConn, fds []unix.PollFd) []clientConn {
	kept := clients[:0]
	for i, cc := range clients {
		revents := fds[i].Revents
		switch {
		case revents&unix.POLLHUP != 0:
			log.Printf("dwmd: client %d hung up", cc.fd)
			d.Disconnect(cc.client)
			_ = cc.client.Close()
		case revents&unix.POLLERR != 0:
			log.Printf("dwmd: client %d error", cc.fd)
			d.Disconnect(cc.client)
			_ = cc.client.Close()
		case revents&unix.POLLIN != 0:
			if err := cc.client.ReceiveCommands(); err != nil && err != io.EOF {
				log.Printf("dwmd: client %d receive commands failed: %v", cc.fd, err)
				d.Disconnect(cc.client)
				_ = cc.client.Close()
			} else if err == io.EOF {
				d.Disconnect(cc.client)
				_ = cc.client.Close()
			} else {
				kept = append(kept, cc)
			}
		default:
			kept = append(kept, cc)
		}
	}
	return kept
}
