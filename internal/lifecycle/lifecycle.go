// Package lifecycle implements a reentrant-safe shutdown signal for the
// long-running loops in the event driver and the process inventory scan.
// A polled atomic flag, rather than a one-shot blocking receive, lets a
// loop check it between ring-buffer polls rather than only at the very
// end.
package lifecycle

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// ShutdownFlag is a single atomic boolean set by the signal handler and
// polled by long-running loops. The zero value is ready to use (not
// requested).
type ShutdownFlag struct {
	requested atomic.Bool
}

// NewShutdownFlag returns a flag in the not-requested state.
func NewShutdownFlag() *ShutdownFlag {
	return &ShutdownFlag{}
}

// IsRequested reports whether shutdown has been requested. Safe to call
// from any goroutine at any rate; the long-running event-driver and
// inventory-scan loops must call this at least between each polling unit
// and between each per-PID scan step.
func (f *ShutdownFlag) IsRequested() bool {
	return f.requested.Load()
}

// Request sets the flag. Idempotent; safe to call more than once (a second
// SIGTERM while draining, for instance).
func (f *ShutdownFlag) Request() {
	f.requested.Store(true)
}

// Watch installs an OS signal handler for SIGINT and SIGTERM that does
// nothing but set f. The handler performs no allocation, I/O, or string
// formatting: os/signal's delivery goroutine only forwards the signal
// value over an already-allocated channel, and the receiving goroutine
// here does nothing but an atomic store. The returned stop function
// removes the handler and must be called once shutdown is complete.
func (f *ShutdownFlag) Watch() (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				f.Request()
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
