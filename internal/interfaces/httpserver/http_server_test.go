package httpserver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chibuzo15/crm-project-sub000/internal/config"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/handlers"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/middlewares"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/routes"
)

func newServer(t *testing.T, ready httpserver.ReadinessCheck) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{ServiceName: "unibox-api", ServiceVersion: "test"}
	routeProvider := routes.NewProvider(cfg, &handlers.Provider{}, nil)
	return httpserver.New(cfg, zerolog.Nop(), routeProvider, ready, nil).Handler()
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestCoreRoutes(t *testing.T) {
	handler := newServer(t, nil)

	for _, path := range []string{"/", "/healthz", "/readyz", "/metrics"} {
		w := get(t, handler, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get(middlewares.RequestIDHeader), path)
	}
}

func TestReadinessReportsStoreFailure(t *testing.T) {
	handler := newServer(t, func(context.Context) error { return errors.New("connection refused") })

	w := get(t, handler, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
