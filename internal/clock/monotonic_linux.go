//go:build linux

package clock

import (
	"golang.org/x/sys/unix"
)

// Monotonic reads CLOCK_MONOTONIC, which is unaffected by wall-clock steps
// (GPS time sync, NTP) and keeps counting while the loop is busy.
type Monotonic struct {
	origin int64
}

// NewMonotonic returns a Clock whose first reading is close to zero.
func NewMonotonic() *Monotonic {
	m := &Monotonic{}
	m.origin = m.raw()
	return m
}

func (m *Monotonic) Millis() int64 {
	return m.raw() - m.origin
}

func (m *Monotonic) raw() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// CLOCK_MONOTONIC is always present on Linux; keep the last origin.
		return m.origin
	}
	return ts.Nano() / 1e6
}
