// Package clock provides the monotonic millisecond tick consumed by the
// traffic core.
package clock

import "sync"

// Clock returns milliseconds from an arbitrary, monotonically increasing
// origin. Only differences between two readings are meaningful.
type Clock interface {
	Millis() int64
}

// Manual is a Clock driven explicitly by tests and simulations.
type Manual struct {
	mu  sync.Mutex
	now int64
}

// NewManual returns a Manual clock reading startMs.
func NewManual(startMs int64) *Manual {
	return &Manual{now: startMs}
}

func (m *Manual) Millis() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to ms. Moving backwards is ignored.
func (m *Manual) Set(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ms > m.now {
		m.now = ms
	}
}

// Advance moves the clock forward by ms and returns the new reading.
func (m *Manual) Advance(ms int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ms > 0 {
		m.now += ms
	}
	return m.now
}
