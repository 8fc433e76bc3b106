// Package postgres persists level progress in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
)

// ErrSchemaMissing is returned by CheckSchema when the migrations have not
// been applied.
var ErrSchemaMissing = errors.New("progress schema missing: run cmd/migrate")

// Pool wraps the pgx connection pool that backs the progress store.
type Pool struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPool connects to the progress database.
//
// Precondition: cfg must contain valid database connection parameters; logger
// must be non-nil.
// Postcondition: Returns a pinged Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	start := time.Now()
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	logger.Info("progress database connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Int32("max_conns", cfg.MaxConns),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Pool{pool: pool, logger: logger}, nil
}

// CheckSchema verifies that the level_unlocks table exists.
//
// Postcondition: Returns ErrSchemaMissing when it does not.
func (p *Pool) CheckSchema(ctx context.Context) error {
	var present bool
	err := p.pool.QueryRow(ctx, `SELECT to_regclass('public.level_unlocks') IS NOT NULL`).Scan(&present)
	if err != nil {
		return fmt.Errorf("checking progress schema: %w", err)
	}
	if !present {
		return ErrSchemaMissing
	}
	return nil
}

// Unlocks returns the unlock repository on this pool.
func (p *Pool) Unlocks() *UnlockRepository { return NewUnlockRepository(p.pool) }

// Close releases all pool resources.
//
// Postcondition: The pool is no longer usable after calling Close.
func (p *Pool) Close() {
	p.pool.Close()
	p.logger.Debug("progress database closed")
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool { return p.pool }
