package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/Chibuzo15/crm-project-sub000/internal/config"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/ingest"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/auth"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/database"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/hub"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/metrics"
	redisinfra "github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/redis"
	activityrepo "github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/repository/activity"
	conversationrepo "github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/repository/conversation"
	directoryrepo "github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/repository/directory"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/seed"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/worker"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver"
	pkgobservability "github.com/Chibuzo15/crm-project-sub000/pkg/observability"
	obsworker "github.com/Chibuzo15/crm-project-sub000/pkg/observability/worker"
	"github.com/Chibuzo15/crm-project-sub000/pkg/telemetry"
)

// Storage groups the repositories of the configured driver.
type Storage struct {
	Conversations conversation.Repository
	Activity      activity.Repository
	Directory     directory.Repository
	Ready         httpserver.ReadinessCheck
}

// ProvideStorage opens the configured storage driver. The cleanup closes the
// database pool when one was opened.
func ProvideStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Storage, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return &Storage{
			Conversations: conversationrepo.NewInMemoryRepository(),
			Activity:      activityrepo.NewInMemoryRepository(),
			Directory:     directoryrepo.NewInMemoryRepository(),
			Ready:         func(context.Context) error { return nil },
		}, func() {}, nil
	case config.StorageDriverPostgres:
		db, err := database.Connect(ctx, database.Config{
			DSN:             cfg.DatabaseURL,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			ConnMaxLifetime: cfg.DBConnLifetime,
			ApplicationName: cfg.ServiceName,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		cleanup := func() {
			if err := database.Close(db); err != nil {
				log.Error().Err(err).Msg("failed to close database")
			}
		}
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		return &Storage{
			Conversations: conversationrepo.NewPostgresRepository(db),
			Activity:      activityrepo.NewPostgresRepository(db),
			Directory:     directoryrepo.NewPostgresRepository(db),
			Ready:         func(ctx context.Context) error { return database.Ping(ctx, db) },
		}, cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// ProvideConversationRepository provides the conversation repository.
func ProvideConversationRepository(s *Storage) conversation.Repository {
	return s.Conversations
}

// ProvideActivityRepository provides the activity repository.
func ProvideActivityRepository(s *Storage) activity.Repository {
	return s.Activity
}

// ProvideDirectoryRepository provides the directory repository.
func ProvideDirectoryRepository(s *Storage) directory.Repository {
	return s.Directory
}

// ProvideReadiness provides the readiness probe of the storage layer.
func ProvideReadiness(s *Storage) httpserver.ReadinessCheck {
	return s.Ready
}

// ProvideSeededDirectory provides the directory service, applying the seed
// file first when one is configured.
func ProvideSeededDirectory(
	ctx context.Context,
	cfg *config.Config,
	repo directory.Repository,
	log zerolog.Logger,
) (directory.Service, error) {
	svc := domain.ProvideDirectoryService(repo, log)
	if cfg.SeedFile == "" {
		return svc, nil
	}
	file, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	if err := seed.Apply(ctx, svc, file, log); err != nil {
		return nil, fmt.Errorf("apply seed %s: %w", cfg.SeedFile, err)
	}
	return svc, nil
}

// ProvideRedisClient connects to Redis, or returns nil when Redis is not
// configured.
func ProvideRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (goredis.UniversalClient, func(), error) {
	if !cfg.RedisEnabled() {
		return nil, func() {}, nil
	}
	client, err := redisinfra.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}, nil
}

// ProvideHub provides the websocket session hub.
func ProvideHub(cfg *config.Config, log zerolog.Logger) *hub.Hub {
	return hub.New(hub.Config{
		SendBuffer:      cfg.WSSendBuffer,
		MaxMessageBytes: cfg.WSMaxMessage,
		PongWait:        cfg.WSPongWait,
		AllowOrigins:    cfg.WSAllowOrigins,
	}, log)
}

// ProvideFanout provides the cross-instance broadcaster, nil without Redis.
func ProvideFanout(cfg *config.Config, client goredis.UniversalClient, h *hub.Hub, log zerolog.Logger) *redisinfra.Broadcaster {
	if client == nil {
		return nil
	}
	return redisinfra.NewBroadcaster(client, cfg.RedisEventChannel, h, log)
}

// ProvideBroadcaster picks the Redis fan-out when present, the local hub otherwise.
func ProvideBroadcaster(h *hub.Hub, fanout *redisinfra.Broadcaster) realtime.Broadcaster {
	if fanout != nil {
		return fanout
	}
	return h
}

// ProvideSweepLocker provides the sweep lease. Without Redis the interface is
// left nil so the sweeper always runs.
func ProvideSweepLocker(client goredis.UniversalClient, log zerolog.Logger) worker.Locker {
	if client == nil {
		return nil
	}
	return redisinfra.NewLocker(client, log)
}

// ProvideAuthValidator provides an auth validator.
func ProvideAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

// ProvideRetryHook reports conflict retries to prometheus.
func ProvideRetryHook() domain.RetryHook {
	return metrics.RecordConflictRetry
}

// ProvideRecorder provides the ingest metrics recorder.
func ProvideRecorder() ingest.Recorder {
	return metrics.NewRecorder()
}

// ProvideSanitizer provides the telemetry sanitizer.
func ProvideSanitizer(p *pkgobservability.Provider) *telemetry.Sanitizer {
	return p.Sanitizer
}

// ProvideMeter provides the OTEL meter used by HTTP middleware.
func ProvideMeter(p *pkgobservability.Provider) metric.Meter {
	return p.Meter
}

// ProvideInstrumenter provides the background job instrumenter.
func ProvideInstrumenter(cfg *config.Config, p *pkgobservability.Provider) (*obsworker.Instrumenter, error) {
	return obsworker.NewInstrumenter(p.Tracer, p.Meter, cfg.ServiceName)
}

// ProvideSweeper provides the follow-up sweeper.
func ProvideSweeper(
	cfg *config.Config,
	conversations conversation.Service,
	notifier *realtime.Notifier,
	locker worker.Locker,
	instrumenter *obsworker.Instrumenter,
	log zerolog.Logger,
) *worker.FollowUpSweeper {
	return worker.NewFollowUpSweeper(conversations, notifier, locker, instrumenter, cfg.FollowUpSweepCron, log)
}
