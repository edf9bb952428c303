package observability

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Chibuzo15/crm-project-sub000/internal/config"
	pkgobservability "github.com/Chibuzo15/crm-project-sub000/pkg/observability"
)

// Setup configures OpenTelemetry from the service config. The returned
// provider's Shutdown flushes any exporters.
func Setup(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pkgobservability.Provider, error) {
	otelCfg := pkgobservability.DefaultConfig(cfg.ServiceName)
	otelCfg.ServiceVersion = cfg.ServiceVersion
	otelCfg.Environment = cfg.Environment
	otelCfg.TracingEnabled = cfg.EnableTracing
	otelCfg.MetricsEnabled = cfg.EnableMetrics
	otelCfg.OTLPEndpoint = cfg.OTLPEndpoint
	otelCfg.SamplingRate = cfg.SamplingRate
	otelCfg.PIILevel = cfg.PIILevel

	provider, err := pkgobservability.Init(ctx, otelCfg)
	if err != nil {
		return nil, err
	}

	if provider.Exporting {
		log.Info().
			Str("endpoint", cfg.OTLPEndpoint).
			Bool("tracing", cfg.EnableTracing).
			Bool("metrics", cfg.EnableMetrics).
			Msg("telemetry export enabled")
	} else {
		log.Info().Msg("telemetry export disabled, using local providers")
	}
	return provider, nil
}
