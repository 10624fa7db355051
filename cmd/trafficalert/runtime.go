package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trafficalert/internal/buzzer"
	"trafficalert/internal/clock"
	"trafficalert/internal/config"
	"trafficalert/internal/logging"
	"trafficalert/internal/sim"
	"trafficalert/internal/traffic"
	"trafficalert/internal/udp"
	"trafficalert/internal/voice"
)

// tickPeriod is how often the device loop polls the engine. The engine
// itself decides when a full update cycle is due.
const tickPeriod = 100 * time.Millisecond

type runtime struct {
	cfg config.Config
	log *slog.Logger
	clk clock.Clock

	engine  *traffic.Engine
	speaker *voice.Speaker
	buzz    *buzzer.Buzzer
	bcast   *udp.Broadcaster

	feed        *sim.Feed
	reportEvery int64 // ms
	lastReport  int64
	reported    bool
}

func newRuntime(ctx context.Context, cfg config.Config, log *slog.Logger, clk clock.Clock) (*runtime, error) {
	log = logging.OrDiscard(log)
	rt := &runtime{cfg: cfg, log: log, clk: clk}

	rt.speaker = voice.New(voice.Config{Enable: cfg.Voice.Enable, Command: cfg.Voice.Command, Args: cfg.Voice.Args}, log)
	rt.speaker.Start(ctx)

	rt.buzz = buzzer.New(buzzer.Config{Enable: cfg.Buzzer.Enable, GPIOPin: cfg.Buzzer.GPIOPin}, log)
	if err := rt.buzz.Start(); err != nil {
		// Keep running without the buzzer; voice still announces.
		log.Warn("buzzer init failed", slog.Any("err", err))
	}

	opts := []traffic.Option{
		traffic.WithVoice(rt.speaker),
		traffic.WithBuzzer(rt.buzz),
		traffic.WithLogger(log),
	}

	if cfg.GDL90.Enable {
		b, err := udp.NewBroadcaster(cfg.GDL90.Dest)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("udp broadcaster init failed: %w", err)
		}
		rt.bcast = b
		ownID, err := cfg.OwnshipICAO()
		if err != nil {
			rt.Close()
			return nil, err
		}
		opts = append(opts, traffic.WithDisplay(udp.NewPicture(b, ownID, cfg.GDL90.Callsign, log)))
	}

	rt.engine = traffic.NewEngine(cfg.TrafficCore(), clk, opts...)

	if cfg.Sim.Scenario != "" {
		script, err := sim.LoadScenarioScript(cfg.Sim.Scenario)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("load scenario: %w", err)
		}
		scn, err := sim.NewScenario(script)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("scenario %s: %w", cfg.Sim.Scenario, err)
		}
		rt.feed = sim.NewFeed(scn, cfg.Sim.Loop)
		rt.reportEvery = cfg.Sim.ReportInterval.Milliseconds()
		log.Info("scenario loaded", slog.String("path", cfg.Sim.Scenario), slog.Duration("duration", scn.Duration()), slog.Bool("loop", cfg.Sim.Loop))
	}
	return rt, nil
}

// tick feeds due scenario reports and runs the engine loop. It reports
// whether an update cycle ran.
func (rt *runtime) tick() bool {
	now := rt.clk.Millis()
	if rt.feed != nil && (!rt.reported || now-rt.lastReport >= rt.reportEvery) {
		own, reports := rt.feed.Step(now)
		rt.engine.SetOwnship(own)
		for _, r := range reports {
			rt.engine.Ingest(r)
		}
		rt.lastReport = now
		rt.reported = true
	}
	return rt.engine.Loop()
}

// Run ticks until ctx is done or a non-looping scenario has finished.
func (rt *runtime) Run(ctx context.Context, period time.Duration) error {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			rt.tick()
			if rt.feedDone() {
				rt.log.Info("scenario finished")
				return nil
			}
		}
	}
}

func (rt *runtime) feedDone() bool {
	return rt.feed != nil && rt.feed.Done(rt.clk.Millis())
}

func (rt *runtime) Close() {
	if rt.speaker != nil {
		rt.speaker.Close()
	}
	if rt.buzz != nil {
		_ = rt.buzz.Close()
	}
	if rt.bcast != nil {
		_ = rt.bcast.Close()
	}
}
