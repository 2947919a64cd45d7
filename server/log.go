package server

import (
	"io"
	"log"
	"os"
)

// logger is the small leveled wrapper around stdlib log.Logger the
// daemon uses for its "log and ignore" / "log and disconnect" policy
// (spec §7), the same shape noisetorch-NoiseTorch wraps around its own
// daemon loop rather than reaching for a structured logging library.
type logger struct {
	*log.Logger
}

// defaultLogger writes to stderr with a time-stamped prefix, used by
// New; SetOutput redirects where it writes.
func defaultLogger() *logger {
	return &logger{log.New(os.Stderr, "dwm: ", log.LstdFlags)}
}

func (l *logger) Debugf(format string, args ...any) { l.Printf("debug: "+format, args...) }
func (l *logger) Infof(format string, args ...any)  { l.Printf("info: "+format, args...) }
func (l *logger) Warnf(format string, args ...any)  { l.Printf("warn: "+format, args...) }
func (l *logger) Errorf(format string, args ...any) { l.Printf("error: "+format, args...) }

// SetOutput redirects where the DWM's logger writes, mainly for tests
// that want to silence it.
func (d *DWM) SetOutput(w io.Writer) { d.log.SetOutput(w) }
