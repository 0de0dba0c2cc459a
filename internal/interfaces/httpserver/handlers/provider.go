package handlers

import (
	"github.com/rs/zerolog"

	"github.com/janhq/pm-assistant/internal/domain/orchestrator"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Chat *ChatHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(chatService orchestrator.Chat, log zerolog.Logger) *Provider {
	return &Provider{
		Chat: NewChatHandler(chatService, log),
	}
}
