//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/Chibuzo15/crm-project-sub000/internal/config"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/handlers"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/routes"
	pkgobservability "github.com/Chibuzo15/crm-project-sub000/pkg/observability"
)

// ProviderSet is the wire provider set for the application.
var ProviderSet = wire.NewSet(
	// Infrastructure providers
	ProvideStorage,
	ProvideConversationRepository,
	ProvideActivityRepository,
	ProvideDirectoryRepository,
	ProvideReadiness,
	ProvideRedisClient,
	ProvideHub,
	ProvideFanout,
	ProvideBroadcaster,
	ProvideSweepLocker,
	ProvideAuthValidator,
	ProvideRetryHook,
	ProvideRecorder,
	ProvideSanitizer,
	ProvideMeter,
	ProvideInstrumenter,
	ProvideSweeper,

	// Domain providers; the directory comes seeded
	ProvideSeededDirectory,
	domain.ServiceProvider,

	// Interface providers
	handlers.HandlerProvider,
	routes.NewProvider,
	httpserver.New,

	// Application
	NewApplication,
)

// CreateApplication creates the application with all dependencies wired.
func CreateApplication(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
	telemetry *pkgobservability.Provider,
) (*Application, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
