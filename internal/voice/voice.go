// Package voice speaks traffic announcements through an external
// text-to-speech command (espeak-ng, flite, piper wrapper, ...).
package voice

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"trafficalert/internal/logging"
	"trafficalert/internal/traffic"
)

var runFn = func(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", name, err, out)
	}
	return nil
}

type Config struct {
	Enable bool

	// Command is run once per phrase with Args followed by the phrase.
	// Empty means announcements are only logged.
	Command string
	Args    []string

	// QueueSize bounds pending phrases; further announcements are dropped.
	QueueSize int
	// Timeout bounds a single command run.
	Timeout time.Duration
}

// Speaker implements traffic.Voice. Announce never blocks; phrases are
// spoken in order by a single worker.
type Speaker struct {
	cfg Config
	log *slog.Logger

	queue chan string
	wg    sync.WaitGroup

	mu      sync.Mutex
	spoken  uint64
	dropped uint64
	started bool
}

func New(cfg Config, log *slog.Logger) *Speaker {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Speaker{
		cfg:   cfg,
		log:   logging.OrDiscard(log),
		queue: make(chan string, cfg.QueueSize),
	}
}

// Start runs the worker until ctx is done or Close is called.
func (s *Speaker) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

func (s *Speaker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case phrase, ok := <-s.queue:
			if !ok {
				return
			}
			s.say(ctx, phrase)
		}
	}
}

func (s *Speaker) say(ctx context.Context, phrase string) {
	defer func() {
		s.mu.Lock()
		s.spoken++
		s.mu.Unlock()
	}()
	if !s.cfg.Enable || s.cfg.Command == "" {
		s.log.Info("voice", slog.String("phrase", phrase))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	args := append(append([]string(nil), s.cfg.Args...), phrase)
	if err := runFn(ctx, s.cfg.Command, args...); err != nil {
		s.log.Warn("voice command failed", slog.String("phrase", phrase), slog.Any("err", err))
	}
}

// Announce queues the phrase for a. It drops the phrase when the queue is
// full.
func (s *Speaker) Announce(a traffic.Announcement) {
	phrase := a.Phrase()
	select {
	case s.queue <- phrase:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
		s.log.Warn("voice queue full, phrase dropped", slog.String("phrase", phrase))
	}
}

// Stats returns how many phrases were spoken and dropped.
func (s *Speaker) Stats() (spoken, dropped uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spoken, s.dropped
}

// Close stops accepting phrases and waits for the worker to drain the queue.
// Announce must not be called after Close.
func (s *Speaker) Close() {
	s.mu.Lock()
	started := s.started
	s.started = true
	s.mu.Unlock()
	close(s.queue)
	if started {
		s.wg.Wait()
	}
}
