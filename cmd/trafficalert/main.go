package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"trafficalert/internal/clock"
	"trafficalert/internal/config"
	"trafficalert/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code. Deferred cleanup, including the log
// file flush, happens before main exits.
func run(args []string) int {
	fs := flag.NewFlagSet("trafficalert", flag.ContinueOnError)
	configPath := fs.String("config", "./dev.yaml", "Path to YAML config")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("config load failed: %v", err)
		return 1
	}

	logger, closer, err := logging.New(cfg.LogOptions())
	if err != nil {
		log.Printf("logging init failed: %v", err)
		return 1
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := newRuntime(ctx, cfg, logger, clock.NewMonotonic())
	if err != nil {
		logger.Error("runtime init failed", slog.Any("err", err))
		return 1
	}
	defer rt.Close()

	logger.Info("trafficalert starting",
		slog.String("config", *configPath),
		slog.Duration("update_interval", cfg.Traffic.UpdateInterval),
		slog.Bool("gdl90", cfg.GDL90.Enable),
		slog.String("scenario", cfg.Sim.Scenario))

	if err := rt.Run(ctx, tickPeriod); err != nil && ctx.Err() == nil {
		logger.Error("runtime stopped", slog.Any("err", err))
		return 1
	}
	logger.Info("trafficalert stopping", slog.Uint64("cycles", rt.engine.Cycles()), slog.Uint64("alerts", rt.engine.AlertsFired()))
	return 0
}
