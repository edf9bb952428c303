package domain

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/Chibuzo15/crm-project-sub000/internal/config"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/ingest"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/retry"
	"github.com/Chibuzo15/crm-project-sub000/pkg/telemetry"
)

// RetryHook builds the OnRetry callback for a named operation.
type RetryHook func(operation string) func(attempt int, err error)

func conflictPolicy(cfg *config.Config, hook RetryHook, operation string) retry.Policy {
	policy := retry.ConflictPolicy(cfg.ConflictRetries, cfg.ConflictRetryBackoff)
	if hook != nil {
		policy.OnRetry = hook(operation)
	}
	return policy
}

// ProvideConversationService provides the conversation store.
func ProvideConversationService(
	repo conversation.Repository,
	cfg *config.Config,
	hook RetryHook,
	log zerolog.Logger,
) conversation.Service {
	return conversation.NewService(repo, conversation.Options{
		DefaultFollowUpDays: cfg.DefaultFollowUpDays,
		Retry:               conflictPolicy(cfg, hook, "conversation"),
	}, log)
}

// ProvideActivityService provides the activity aggregator.
func ProvideActivityService(
	repo activity.Repository,
	cfg *config.Config,
	hook RetryHook,
	log zerolog.Logger,
) activity.Service {
	return activity.NewService(repo, conflictPolicy(cfg, hook, "activity"), log)
}

// ProvideDirectoryService provides the platform and job directory.
func ProvideDirectoryService(repo directory.Repository, log zerolog.Logger) directory.Service {
	return directory.NewService(repo, log)
}

// ProvideNotifier provides the realtime notifier over the configured broadcaster.
func ProvideNotifier(broadcaster realtime.Broadcaster, log zerolog.Logger) *realtime.Notifier {
	return realtime.NewNotifier(broadcaster, log)
}

// ProvideGateway provides the ingestion gateway.
func ProvideGateway(
	conversations conversation.Service,
	dir directory.Service,
	activitySvc activity.Service,
	notifier *realtime.Notifier,
	sanitizer *telemetry.Sanitizer,
	recorder ingest.Recorder,
	log zerolog.Logger,
) ingest.Gateway {
	return ingest.NewGateway(conversations, dir, activitySvc, notifier, ingest.Options{
		Sanitizer: sanitizer,
		Recorder:  recorder,
	}, log)
}

// ServiceProvider provides the domain services except the directory, which
// callers provide so it can be seeded first.
var ServiceProvider = wire.NewSet(
	ProvideConversationService,
	ProvideActivityService,
	ProvideNotifier,
	ProvideGateway,
)
