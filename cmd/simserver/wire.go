//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/server"
)

func initializeServer(ctx context.Context, cfg *config.Config) (*server.Lifecycle, func(), error) {
	wire.Build(providerSet)
	return nil, nil, nil
}
