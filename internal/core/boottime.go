package core

import (
	"time"

	"golang.org/x/sys/unix"
)

// resolveBootTime returns the wall-clock instant corresponding to a
// CLOCK_BOOTTIME reading of zero, computed once at startup and handed to
// decode.Decode for every record in the run (see decode.go's clockToWall
// doc comment). A failure here is environmental (no such clock on this
// kernel) and falls back to treating "now" as the reference point, which
// degrades record timestamps but does not stop the agent from running.
func resolveBootTime() time.Time {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_BOOTTIME, &ts); err != nil {
		return time.Now()
	}
	uptime := time.Duration(ts.Sec)*time.Second + time.Duration(ts.Nsec)*time.Nanosecond
	return time.Now().Add(-uptime)
}
