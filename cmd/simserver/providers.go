package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/level"
	"github.com/cory-johannsen/skirmish/internal/gameserver"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/progress"
	"github.com/cory-johannsen/skirmish/internal/scripting"
	"github.com/cory-johannsen/skirmish/internal/server"
	"github.com/cory-johannsen/skirmish/internal/spectator"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
)

// providerSet builds the server from a loaded configuration.
var providerSet = wire.NewSet(
	wire.FieldsOf(new(*config.Config), "Logging", "Database", "Simulation", "Spectator", "Progress"),
	observability.NewLogger,
	provideCatalog,
	provideStore,
	provideScripts,
	gameserver.NewRunner,
	provideHub,
	provideLifecycle,
)

func provideCatalog(ctx context.Context, sim config.SimulationConfig, logger *zap.Logger) (*level.Catalog, error) {
	start := time.Now()
	cat, err := level.LoadDir(ctx, sim.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("loading levels: %w", err)
	}
	logger.Info("levels loaded",
		zap.Ints("levels", cat.Numbers()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return cat, nil
}

func provideStore(ctx context.Context, pc config.ProgressConfig, db config.DatabaseConfig, logger *zap.Logger) (progress.Store, func(), error) {
	if pc.Backend != "postgres" {
		logger.Info("progress kept in memory")
		return progress.NewMemoryStore(), func() {}, nil
	}
	pool, err := postgres.NewPool(ctx, db, observability.Component(logger, "progress"))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to progress database: %w", err)
	}
	if err := pool.CheckSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool.Unlocks(), pool.Close, nil
}

func provideScripts(sim config.SimulationConfig, cat *level.Catalog, logger *zap.Logger) (*scripting.Manager, func(), error) {
	src := dice.NewCryptoSource()
	if sim.Seed != 0 {
		src = dice.NewSeededSource(sim.Seed)
	}
	m := scripting.NewManager(src, logger, sim.InstructionLimit)
	if err := gameserver.LoadScripts(m, cat, sim.ScriptDir); err != nil {
		m.Close()
		return nil, nil, fmt.Errorf("loading level scripts: %w", err)
	}
	return m, m.Close, nil
}

// provideHub returns nil when spectating is disabled.
func provideHub(sc config.SpectatorConfig, runner *gameserver.Runner, logger *zap.Logger) *spectator.Hub {
	if !sc.Enabled {
		return nil
	}
	hub := spectator.NewHub(sc, observability.Component(logger, "spectator"))
	runner.Subscribe(hub.Inbox())
	return hub
}

func provideLifecycle(logger *zap.Logger, runner *gameserver.Runner, hub *spectator.Hub) *server.Lifecycle {
	lc := server.NewLifecycle(logger)
	lc.Add("runner", runner)
	if hub != nil {
		lc.Add("spectator", hub)
	}
	return lc
}
