// Package main applies the level progress schema with golang-migrate.
package main

import (
	"errors"
	"flag"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	sourceDir := flag.String("path", "migrations", "directory holding the migration files")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = observability.Component(logger, "migrate")

	m, err := migrate.New("file://"+*sourceDir, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("creating migrator", zap.String("path", *sourceDir), zap.Error(err))
	}
	defer m.Close()

	if err := apply(m, *direction, *steps); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("migration failed", zap.String("direction", *direction), zap.Error(err))
		}
		version, dirty, _ := m.Version()
		logger.Info("no changes", zap.Uint("version", version), zap.Bool("dirty", dirty), zap.Duration("elapsed", time.Since(start)))
		return
	}

	version, dirty, _ := m.Version()
	logger.Info("migrated",
		zap.String("direction", *direction),
		zap.Int("steps", *steps),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// apply runs steps migrations in direction, or all of them when steps is 0.
func apply(m *migrate.Migrate, direction string, steps int) error {
	switch direction {
	case "up":
		if steps > 0 {
			return m.Steps(steps)
		}
		return m.Up()
	case "down":
		if steps > 0 {
			return m.Steps(-steps)
		}
		return m.Down()
	}
	return errors.New("invalid direction " + direction + ": must be 'up' or 'down'")
}
