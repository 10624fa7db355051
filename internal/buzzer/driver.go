package buzzer

// lineDriver is the minimal interface the buzzer needs from a GPIO backend.
//
// Close should be best-effort and leave the line low.
type lineDriver interface {
	SetValue(v int) error
	Close() error
}
