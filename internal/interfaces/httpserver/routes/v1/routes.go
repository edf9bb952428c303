package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/handlers"
)

// Routes holds the v1 route configuration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes creates a new v1 routes instance.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register registers all v1 routes on the engine. Nil middlewares are skipped.
func (r *Routes) Register(engine *gin.Engine, authMiddleware, webhookMiddleware gin.HandlerFunc) {
	webhooks := engine.Group("/v1/webhooks")
	if webhookMiddleware != nil {
		webhooks.Use(webhookMiddleware)
	}
	RegisterWebhookRoutes(webhooks, r.handlers.Webhook)

	v1 := engine.Group("/v1")
	if authMiddleware != nil {
		v1.Use(authMiddleware)
	}
	RegisterChatRoutes(v1, r.handlers.Chat)
	RegisterDirectoryRoutes(v1, r.handlers.Directory)
	RegisterActivityRoutes(v1, r.handlers.Activity)
	RegisterRealtimeRoutes(v1, r.handlers.Realtime)
}
