package observability

import (
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Config carries the monitoring settings for one service.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string // development, staging, production
	TracingEnabled bool
	MetricsEnabled bool
	OTLPEndpoint   string
	OTLPHeaders    map[string]string
	SamplingRate   float64 // 0.0 - 1.0
	PIILevel       string  // none|hashed|full

	TraceBatchTimeout time.Duration
	MetricInterval    time.Duration
	ResourceAttrs     []attribute.KeyValue
}

// DefaultConfig returns defaults with exporting disabled.
func DefaultConfig(serviceName string) Config {
	return Config{
		ServiceName:       serviceName,
		ServiceVersion:    "unknown",
		Environment:       "development",
		SamplingRate:      1.0,
		PIILevel:          "hashed",
		TraceBatchTimeout: 5 * time.Second,
		MetricInterval:    30 * time.Second,
	}
}

// exportEnabled reports whether any signal should leave the process.
func (c Config) exportEnabled() bool {
	return strings.TrimSpace(c.OTLPEndpoint) != "" && (c.TracingEnabled || c.MetricsEnabled)
}

// endpoint strips the scheme from OTLPEndpoint and reports whether the
// exporter should skip TLS.
func (c Config) endpoint() (string, bool) {
	endpoint := strings.TrimSpace(c.OTLPEndpoint)
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), false
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), true
	default:
		return endpoint, true
	}
}
