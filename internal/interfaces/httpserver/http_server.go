package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"

	_ "github.com/Chibuzo15/crm-project-sub000/docs/swagger"
	"github.com/Chibuzo15/crm-project-sub000/internal/config"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/middlewares"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/routes"
	obsmiddleware "github.com/Chibuzo15/crm-project-sub000/pkg/observability/middleware"
)

// ReadinessCheck reports whether backing stores are reachable.
type ReadinessCheck func(ctx context.Context) error

// HTTPServer is the HTTP server for the Unibox API.
type HTTPServer struct {
	cfg    *config.Config
	engine *gin.Engine
	log    zerolog.Logger
}

// New creates a new HTTP server. meter may be nil.
func New(
	cfg *config.Config,
	log zerolog.Logger,
	routeProvider *routes.Provider,
	ready ReadinessCheck,
	meter metric.Meter,
) *HTTPServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.Use(middlewares.RequestID())
	engine.Use(middlewares.Tracing(cfg.ServiceName))
	if meter != nil {
		engine.Use(obsmiddleware.HTTPMetrics(meter, cfg.ServiceName))
	}
	engine.Use(middlewares.CORS(cfg.WSAllowOrigins))
	engine.Use(middlewares.RequestLoggerWithLogger(log))

	registerCoreRoutes(engine, cfg, ready)
	routeProvider.Register(engine)

	return &HTTPServer{
		cfg:    cfg,
		engine: engine,
		log:    log,
	}
}

// Handler exposes the engine, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("HTTP server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("HTTP server error")
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerCoreRoutes(engine *gin.Engine, cfg *config.Config, ready ReadinessCheck) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": cfg.ServiceName,
			"version": cfg.ServiceVersion,
			"status":  "ok",
		})
	})

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	engine.GET("/readyz", func(c *gin.Context) {
		if ready != nil {
			if err := ready(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
