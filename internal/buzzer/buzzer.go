// Package buzzer drives a piezo buzzer on a GPIO line for audible alerts.
package buzzer

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"trafficalert/internal/logging"
)

var afterFuncFn = func(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

type stopper interface {
	Stop() bool
}

type Config struct {
	Enable bool

	// GPIOPin is BCM GPIO numbering.
	GPIOPin int
}

// Buzzer turns the line on for the requested duration without blocking the
// caller. A beep that arrives while one is sounding restarts the timer.
type Buzzer struct {
	cfg Config
	log *slog.Logger

	mu    sync.Mutex
	drv   lineDriver
	off   stopper
	on    bool
	beeps uint64
}

func New(cfg Config, log *slog.Logger) *Buzzer {
	if cfg.GPIOPin == 0 {
		cfg.GPIOPin = 17
	}
	return &Buzzer{cfg: cfg, log: logging.OrDiscard(log)}
}

// Start opens the GPIO line. It is a no-op when the buzzer is disabled.
func (b *Buzzer) Start() error {
	if b == nil {
		return fmt.Errorf("buzzer: nil")
	}
	if !b.cfg.Enable {
		return nil
	}
	drv, err := openGPIOFn(b.cfg.GPIOPin)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.drv = drv
	b.mu.Unlock()
	b.log.Info("buzzer ready", slog.Int("gpio", b.cfg.GPIOPin))
	return nil
}

// Beep sounds the buzzer for d.
func (b *Buzzer) Beep(d time.Duration) {
	if b == nil || d <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drv == nil {
		return
	}
	if b.off != nil {
		b.off.Stop()
	}
	if !b.on {
		if err := b.drv.SetValue(1); err != nil {
			b.log.Warn("buzzer on failed", slog.Any("err", err))
			return
		}
		b.on = true
	}
	b.beeps++
	b.off = afterFuncFn(d, b.silence)
}

func (b *Buzzer) silence() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.off = nil
	if b.drv == nil || !b.on {
		return
	}
	if err := b.drv.SetValue(0); err != nil {
		b.log.Warn("buzzer off failed", slog.Any("err", err))
	}
	b.on = false
}

// Beeps returns how many beeps were started.
func (b *Buzzer) Beeps() uint64 {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.beeps
}

// Close silences the buzzer and releases the line.
func (b *Buzzer) Close() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.off != nil {
		b.off.Stop()
		b.off = nil
	}
	drv := b.drv
	b.drv = nil
	b.on = false
	if drv == nil {
		return nil
	}
	return drv.Close()
}
