package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/go-posts/internal/config"
	"github.com/deppfellow/go-posts/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	logger := zerolog.Nop()
	return &server.Server{Config: config.DefaultConfig(), Logger: &logger}
}

func TestCheckHealth_DatabaseUnavailable(t *testing.T) {
	s := newTestServer(t)

	mr := miniredis.RunT(t)
	s.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = s.Redis.Close() })

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)

	if err := NewHealthHandler(s).CheckHealth(c); err != nil {
		t.Fatalf("CheckHealth() error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var body HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Status != statusUnhealthy {
		t.Errorf("expected unhealthy, got %q", body.Status)
	}
	if body.Checks[checkDatabase].Status != statusUnhealthy {
		t.Errorf("expected database check to fail, got %+v", body.Checks[checkDatabase])
	}
	if body.Checks[checkRedis].Status != statusHealthy {
		t.Errorf("expected redis check to pass, got %+v", body.Checks[checkRedis])
	}
}

func TestCheckHealth_ChecksDisabled(t *testing.T) {
	s := newTestServer(t)
	s.Config.Observability.HealthChecks.Enabled = false

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)

	if err := NewHealthHandler(s).CheckHealth(c); err != nil {
		t.Fatalf("CheckHealth() error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestServeOpenAPIUI(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, StaticDir), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, StaticDir, "openapi.html"), []byte("<html>docs</html>"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/docs", nil), rec)

	if err := NewOpenAPIHandler(newTestServer(t)).ServeOpenAPIUI(c); err != nil {
		t.Fatalf("ServeOpenAPIUI() error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "docs") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") != "no-cache" {
		t.Error("expected docs to be served uncached")
	}
}
