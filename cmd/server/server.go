// @title           Unibox API
// @version         1.0
// @description     Recruiting CRM unibox: multi-platform candidate chats, follow-up tracking
// @description     and operator activity, with realtime delivery over websockets.

// @host      localhost:8190
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Chibuzo15/crm-project-sub000/internal/config"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/hub"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/logger"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/observability"
	redisinfra "github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/redis"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/worker"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/handlers"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/routes"
)

// Application holds the main application components.
type Application struct {
	httpServer *httpserver.HTTPServer
	sweeper    *worker.FollowUpSweeper
	fanout     *redisinfra.Broadcaster
	hub        *hub.Hub
	log        zerolog.Logger
}

// NewApplication creates a new application instance. fanout may be nil.
func NewApplication(
	httpServer *httpserver.HTTPServer,
	sweeper *worker.FollowUpSweeper,
	fanout *redisinfra.Broadcaster,
	h *hub.Hub,
	log zerolog.Logger,
) *Application {
	return &Application{
		httpServer: httpServer,
		sweeper:    sweeper,
		fanout:     fanout,
		hub:        h,
		log:        log,
	}
}

// Start runs the application until ctx is cancelled.
func (a *Application) Start(ctx context.Context) error {
	if a.fanout != nil {
		a.fanout.Start(ctx)
	}
	if err := a.sweeper.Start(ctx); err != nil {
		if a.fanout != nil {
			a.fanout.Stop()
		}
		a.hub.Close()
		return err
	}

	// Blocks until the context is cancelled
	err := a.httpServer.Run(ctx)

	a.sweeper.Stop()
	if a.fanout != nil {
		a.fanout.Stop()
	}
	a.hub.Close()

	return err
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup observability
	telemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	// Storage
	storage, closeStorage, err := ProvideStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer closeStorage()

	dir, err := ProvideSeededDirectory(ctx, cfg, storage.Directory, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize directory")
	}

	authValidator, err := ProvideAuthValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth validator")
	}

	// Realtime fan-out: local hub, mirrored over Redis when configured
	redisClient, closeRedis, err := ProvideRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer closeRedis()

	sessions := ProvideHub(cfg, log)
	fanout := ProvideFanout(cfg, redisClient, sessions, log)
	notifier := domain.ProvideNotifier(ProvideBroadcaster(sessions, fanout), log)

	// Domain services
	hook := ProvideRetryHook()
	conversations := domain.ProvideConversationService(storage.Conversations, cfg, hook, log)
	activitySvc := domain.ProvideActivityService(storage.Activity, cfg, hook, log)
	gateway := domain.ProvideGateway(conversations, dir, activitySvc, notifier, ProvideSanitizer(telemetry), ProvideRecorder(), log)

	// Background sweeper
	instrumenter, err := ProvideInstrumenter(cfg, telemetry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize job instruments")
	}
	sweeper := ProvideSweeper(cfg, conversations, notifier, ProvideSweepLocker(redisClient, log), instrumenter, log)

	// HTTP server
	handlerProvider := handlers.NewProvider(
		handlers.NewChatHandler(conversations, dir, gateway, notifier),
		handlers.NewWebhookHandler(gateway),
		handlers.NewDirectoryHandler(dir),
		handlers.NewActivityHandler(activitySvc),
		handlers.NewRealtimeHandler(sessions, conversations, gateway, notifier, log),
	)
	routeProvider := routes.NewProvider(cfg, handlerProvider, authValidator)
	httpServer := httpserver.New(cfg, log, routeProvider, storage.Ready, ProvideMeter(telemetry))

	app := NewApplication(httpServer, sweeper, fanout, sessions, log)

	log.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Str("storage", cfg.StorageDriver).
		Bool("redis", redisClient != nil).
		Msg("starting application")

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
