package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Chibuzo15/crm-project-sub000/internal/config"
)

// New creates the service logger on stdout.
func New(cfg *config.Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter builds the service logger on w. Development gets the console
// writer; every other environment emits one JSON object per line so log
// shippers can index the fields.
func NewWithWriter(cfg *config.Config, w io.Writer) zerolog.Logger {
	out := w
	if isDevelopment(cfg.Environment) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("version", cfg.ServiceVersion).
		Str("environment", cfg.Environment).
		Str("pii_level", cfg.PIILevel).
		Logger().
		Level(parseLevel(cfg.LogLevel))
}

func isDevelopment(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

func parseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
