//go:build !linux

package clock

import "time"

// Monotonic falls back to the runtime's monotonic reading on non-Linux hosts.
type Monotonic struct {
	start time.Time
}

func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

func (m *Monotonic) Millis() int64 {
	return time.Since(m.start).Milliseconds()
}
