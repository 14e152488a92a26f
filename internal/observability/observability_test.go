package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/geoduel/internal/config"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "geoduel-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	shutdown, err := InitUptrace(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(t.Context()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{}, logging.NewNop())
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestStartPprofServer_DisabledReturnsNil(t *testing.T) {
	if srv := StartPprofServer(config.Config{}, logging.NewNop()); srv != nil {
		t.Fatalf("expected no pprof server when disabled")
	}
	if err := StopPprofServer(t.Context(), nil); err != nil {
		t.Fatalf("stop nil pprof server: %v", err)
	}
}

func TestPprofHandler_ServesIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	NewPprofHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from pprof index, got %d", rec.Code)
	}
}
