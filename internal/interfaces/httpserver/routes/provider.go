package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Chibuzo15/crm-project-sub000/internal/config"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/auth"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/handlers"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/middlewares"
	v1 "github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/routes/v1"
)

// Provider holds all route providers.
type Provider struct {
	V1            *v1.Routes
	authValidator *auth.Validator
	webhookSecret string
}

// NewProvider creates a new route provider.
func NewProvider(cfg *config.Config, handlerProvider *handlers.Provider, authValidator *auth.Validator) *Provider {
	return &Provider{
		V1:            v1.NewRoutes(handlerProvider),
		authValidator: authValidator,
		webhookSecret: cfg.WebhookSecret,
	}
}

// Register registers all routes on the engine. Operator routes go through the
// auth middleware; adapter webhooks are guarded by the shared secret instead.
func (p *Provider) Register(engine *gin.Engine) {
	p.V1.Register(engine, p.authValidator.Middleware(), middlewares.WebhookSecret(p.webhookSecret))
}
