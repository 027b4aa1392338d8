// Package debug provides conditional debug logging and the always-on warning
// log used for failures the UI swallows.
//
// Debug logging is enabled by setting the ZTP_DEBUG environment variable:
//
//	ZTP_DEBUG=1 ztp
//
// Warnings are always written. While the TUI owns the terminal, cmd/ztp
// redirects both loggers to a file with SetOutput so nothing is drawn over
// the alternate screen.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  = log.New(os.Stderr, "[ZTP_DEBUG] ", log.Ltime|log.Lmicroseconds)
	warner  = log.New(os.Stderr, "[ZTP] ", log.LstdFlags)
)

func init() {
	if os.Getenv("ZTP_DEBUG") != "" {
		enabled = true
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	mu.Lock()
	enabled = e
	mu.Unlock()
}

// SetOutput redirects both the debug and the warning logger.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
	warner.SetOutput(w)
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !Enabled() {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !Enabled() {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogEnterExit logs function entry and exit with timing.
//
//	defer debug.LogEnterExit("mount")()
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Warn always writes a message. Used for errors that are handled by
// logging them and carrying on.
func Warn(format string, args ...any) {
	warner.Output(2, fmt.Sprintf(format, args...))
}
