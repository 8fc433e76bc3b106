// Package main runs the headless simulation server: it plays the campaign at
// the configured tick rate and streams snapshots to spectators.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
)

func main() {
	start := time.Now()
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx := context.Background()
	lc, cleanup, err := initializeServer(ctx, &cfg)
	if err != nil {
		log.Fatalf("initializing server: %v", err)
	}
	defer cleanup()

	logger := lc.Logger()
	logger.Info("simulation server ready",
		zap.Int("tick_rate", cfg.Simulation.TickRate),
		zap.Int("start_level", cfg.Simulation.StartLevel),
		zap.Bool("spectator", cfg.Spectator.Enabled),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lc.Run(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		cleanup()
		log.Fatalf("server: %v", err)
	}
}
