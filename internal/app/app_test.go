package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/riskibarqy/geoduel/internal/config"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		ServiceName:        "geoduel-api",
		HTTPAddr:           ":0",
		StorageBackend:     config.StorageMemory,
		EphemeralBackend:   config.EphemeralMemory,
		NotifierBackend:    config.NotifierLog,
		CacheEnabled:       true,
		CacheTTL:           time.Minute,
		CORSAllowedOrigins: []string{"*"},
	}
}

func startApp(t *testing.T, cfg config.Config) *App {
	t.Helper()

	a, err := New(t.Context(), cfg, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, a.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		assert.NoError(t, a.Shutdown(ctx))
	})
	return a
}

func TestNew_MemoryBackends(t *testing.T) {
	a := startApp(t, testConfig())

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/players", strings.NewReader(`{"display_name":"Ada"}`))
	req.Header.Set("Content-Type", "application/json")
	a.Server.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestNew_RedisBackends(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.EphemeralBackend = config.EphemeralRedis
	cfg.NotifierBackend = config.NotifierRedis
	cfg.RedisAddr = mr.Addr()
	cfg.RedisKeyPrefix = "test:"
	a := startApp(t, cfg)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/players", strings.NewReader(`{"display_name":"Grace"}`))
	req.Header.Set("Content-Type", "application/json")
	a.Server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, a.redis, "queue store and sink share one client")
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.EphemeralBackend = config.EphemeralRedis
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := New(t.Context(), cfg, logging.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}

func TestNew_RequiresHTTPAddr(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = ""

	_, err := New(t.Context(), cfg, logging.NewNop())
	require.Error(t, err)
}
