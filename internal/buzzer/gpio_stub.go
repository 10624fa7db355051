//go:build !linux || (!arm && !arm64)

package buzzer

import "fmt"

// Stub implementation for non-Linux and/or non-ARM platforms.
func openGPIO(pin int) (lineDriver, error) {
	return nil, fmt.Errorf("buzzer: gpio unsupported on this platform")
}

var openGPIOFn = openGPIO
