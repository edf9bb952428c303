package middlewares

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CORSConfig holds CORS configuration options.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig returns a permissive CORS configuration.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type", "Authorization", "X-Request-ID", "X-Requested-With",
			"X-User-ID", "X-Operator-Name", WebhookSecretHeader,
		},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
}

// CORS middleware for handling cross-origin requests.
func CORS(allowOrigins []string) gin.HandlerFunc {
	cfg := DefaultCORSConfig()
	if len(allowOrigins) > 0 {
		cfg.AllowOrigins = allowOrigins
	}
	return CORSWithConfig(cfg)
}

// CORSWithConfig creates CORS middleware with custom configuration. The
// request origin is echoed when it is in the allow list.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	allowAll := len(cfg.AllowOrigins) == 0
	allowed := make(map[string]struct{}, len(cfg.AllowOrigins))
	for _, origin := range cfg.AllowOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	allowMethods := strings.Join(cfg.AllowMethods, ", ")
	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			if origin == "" || !cfg.AllowCredentials {
				origin = "*"
			}
		case origin != "":
			if _, ok := allowed[origin]; !ok {
				origin = ""
			}
		}

		header := c.Writer.Header()
		if origin != "" {
			header.Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				header.Add("Vary", "Origin")
			}
		}
		header.Set("Access-Control-Allow-Methods", allowMethods)
		header.Set("Access-Control-Allow-Headers", allowHeaders)
		header.Set("Access-Control-Expose-Headers", exposeHeaders)
		header.Set("Access-Control-Max-Age", maxAge)
		if cfg.AllowCredentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestLoggerWithLogger logs each completed request. The level follows the
// response status.
func RequestLoggerWithLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("route", c.FullPath()).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("request_id", GetRequestID(c)).
			Msg("request completed")
	}
}
