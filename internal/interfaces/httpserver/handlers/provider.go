package handlers

import (
	"github.com/google/wire"
)

// Provider holds all HTTP handlers.
type Provider struct {
	Chat      *ChatHandler
	Webhook   *WebhookHandler
	Directory *DirectoryHandler
	Activity  *ActivityHandler
	Realtime  *RealtimeHandler
}

// NewProvider creates a new handler provider.
func NewProvider(
	chat *ChatHandler,
	webhook *WebhookHandler,
	dir *DirectoryHandler,
	activity *ActivityHandler,
	realtime *RealtimeHandler,
) *Provider {
	return &Provider{
		Chat:      chat,
		Webhook:   webhook,
		Directory: dir,
		Activity:  activity,
		Realtime:  realtime,
	}
}

// HandlerProvider provides all handlers for wire.
var HandlerProvider = wire.NewSet(
	NewChatHandler,
	NewWebhookHandler,
	NewDirectoryHandler,
	NewActivityHandler,
	NewRealtimeHandler,
	NewProvider,
)
