// Command dwmd is the DWM core server binary: it owns the listening
// socket, the input devices, and the framebuffer, and drives
// server.DWM's accept/poll/composite loop. Grounded on
// dwm_init/dwm_loop/dwm_update/dwm_poll
// (original_source/src/boxes/core/dwm/dwm.c).
package main

import (
	"flag"
	"log"
	"os"

	"golang.org/x/sys/unix"

	"patchwork/geom"
	"patchwork/server"
)

var (
	socketPath = flag.String("socket", "/tmp/dwm", "path of the DWM listening socket (spec §6: bound at a fixed well-known name)")
	kbdPath    = flag.String("kbd", "/dev/kbd/0/events", "keyboard event device")
	mousePath  = flag.String("mouse", "/dev/mouse/0/events", "mouse event device")
	fbBuffer   = flag.String("fb-buffer", "", "framebuffer scan-out device; left empty runs with no real display output")
	width      = flag.Int("width", 1024, "screen width in pixels")
	height     = flag.Int("height", 768, "screen height in pixels")
)

func main() {
	flag.Parse()

	d := server.New(*width, *height)
	d.SetWall(*width, *height, geom.ARGB(255, 0, 0, 0))

	var fb []byte
	if *fbBuffer != "" {
		fb = openFramebuffer(*fbBuffer, *width, *height)
	}

	kbdFd := openDeviceNonblocking(*kbdPath)
	mouseFd := openDeviceNonblocking(*mousePath)

	listenFd := listenSocket(*socketPath)
	defer unix.Close(listenFd)

	runLoop(d, listenFd, kbdFd, mouseFd, fb)
}

// openDeviceNonblocking opens an input device for non-blocking reads,
// mirroring dwm_init's open(path, O_NONBLOCK)-equivalent calls. A
// missing device degrades to "no input of this kind" (logged, not
// fatal) rather than aborting the server — spec §7 only lists
// framebuffer and listening-socket failures as fatal.
func openDeviceNonblocking(path string) int {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		log.Printf("dwmd: failed to open input device %s: %v (continuing without it)", path, err)
		return -1
	}
	return fd
}

// listenSocket creates, binds and listens on the well-known
// sequence-packet local socket (spec §6). Bind failure is fatal,
// matching dwm_init's abort() on listening-socket setup failure.
func listenSocket(path string) int {
	_ = os.Remove(path)

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_SEQPACKET|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		log.Fatalf("dwmd: failed to create listening socket: %v", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		log.Fatalf("dwmd: failed to bind listening socket %s: %v", path, err)
	}
	if err := unix.Listen(fd, 16); err != nil {
		log.Fatalf("dwmd: failed to listen on %s: %v", path, err)
	}
	return fd
}
