//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/janhq/pm-assistant/internal/config"
	"github.com/janhq/pm-assistant/internal/infrastructure/logger"
)

var assistantSet = wire.NewSet(
	newStorage,
	newCoordination,
	newNotifications,
	newLLMProvider,
	newGateway,
	newToolRegistry,
	newChatService,
	newMCPServer,
	newAuthValidator,
	newHTTPServer,
)

// BuildApplication assembles the assistant with Wire. Cleanup of storage, Redis and the webhook pool is left to the caller.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		assistantSet,
		NewApplication,
	)
	return nil, nil
}
