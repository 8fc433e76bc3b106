// Package main plays the campaign locally in a desktop window.
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/frontend/desktop"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/level"
	"github.com/cory-johannsen/skirmish/internal/game/session"
	"github.com/cory-johannsen/skirmish/internal/gameserver"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/progress"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	startLevel := flag.Int("level", 0, "level to start at (0 = configured start level)")
	unlockAll := flag.Bool("unlock-all", false, "unlock every level before starting")
	logFile := flag.String("log", "skirmish-play.log", "log file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	cfg.Logging.File = *logFile
	if *startLevel > 0 {
		cfg.Simulation.StartLevel = *startLevel
	}
	// A window frame is one tick.
	cfg.Simulation.TickRate = ebiten.DefaultTPS

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat, err := level.LoadDir(ctx, cfg.Simulation.ContentDir)
	if err != nil {
		logger.Fatal("loading levels", zap.Error(err))
	}
	store := progress.NewMemoryStore()
	if *unlockAll {
		for _, n := range cat.Numbers() {
			if err := store.Unlock(ctx, n); err != nil {
				logger.Fatal("unlocking level", zap.Int("level", n), zap.Error(err))
			}
		}
	}

	scripts := scripting.NewManager(dice.NewCryptoSource(), logger, cfg.Simulation.InstructionLimit)
	defer scripts.Close()
	if err := gameserver.LoadScripts(scripts, cat, cfg.Simulation.ScriptDir); err != nil {
		logger.Fatal("loading scripts", zap.Error(err))
	}

	runner := gameserver.NewRunner(cfg.Simulation, cat, store, scripts, logger)
	frames := make(chan session.Snapshot, 4)
	runner.Subscribe(frames)
	done := make(chan error, 1)
	go func() { done <- runner.Start(ctx) }()

	ebiten.SetWindowSize(desktop.ScreenWidth, desktop.ScreenHeight)
	ebiten.SetWindowTitle("Skirmish")
	err = ebiten.RunGame(desktop.NewGame(runner, frames, done))
	runner.Stop()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("game ended with error", zap.Error(err))
		log.Fatalf("play: %v", err)
	}
}
