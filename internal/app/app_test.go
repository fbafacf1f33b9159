package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikepulse/internal/config"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/shared/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Paths.BaseDir = dir
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.ExportsDir = filepath.Join(dir, "data", "exports")
	cfg.Paths.LogsDir = filepath.Join(dir, "logs")
	cfg.Dataset.File = testutil.WriteDayCSV(t, dir, testutil.SampleDays(60))
	cfg.Security.RateLimit.Enabled = false
	// the prometheus exporter registers globally, once per process
	cfg.Telemetry.MetricsEnabled = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(app.WebSocketHub.Stop)
	return app
}

func loadedApp(t *testing.T) *Application {
	t.Helper()
	app := newTestApp(t, testConfig(t))
	_, err := app.DashboardService.Load(context.Background())
	require.NoError(t, err)
	return app
}

func serve(t *testing.T, app *Application, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	var body map[string]interface{}
	if strings.Contains(w.Header().Get("Content-Type"), "json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	}
	return w, body
}

func TestNewCreatesDirectories(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApp(t, cfg)

	assert.DirExists(t, cfg.Paths.ExportsDir)
	assert.DirExists(t, cfg.Paths.LogsDir)
	assert.NotNil(t, app.Router)
	assert.Equal(t, cfg.Server.Addr(), app.Server.Addr)
	assert.False(t, app.DashboardService.Ready())
}

func TestRoutesBeforeLoad(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	w, _ := serve(t, app, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = serve(t, app, http.MethodGet, "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, body := serve(t, app, http.MethodGet, "/api/dashboard/overview")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apierrors.TypeDatasetNotLoaded, body["type"])
}

func TestAPIRoutes(t *testing.T) {
	app := loadedApp(t)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, target: "/api/health", wantStatus: http.StatusOK},
		{name: "ready", method: http.MethodGet, target: "/api/health/ready", wantStatus: http.StatusOK},
		{name: "live", method: http.MethodGet, target: "/api/health/live", wantStatus: http.StatusOK},
		{name: "version", method: http.MethodGet, target: "/api/version", wantStatus: http.StatusOK},
		{name: "dataset", method: http.MethodGet, target: "/api/dataset", wantStatus: http.StatusOK},
		{name: "overview", method: http.MethodGet, target: "/api/dashboard/overview?year=2011", wantStatus: http.StatusOK},
		{name: "exploration", method: http.MethodGet, target: "/api/dashboard/exploration?k=3", wantStatus: http.StatusOK},
		{name: "series", method: http.MethodGet, target: "/api/dashboard/series", wantStatus: http.StatusOK},
		{name: "correlation", method: http.MethodGet, target: "/api/dashboard/correlation", wantStatus: http.StatusOK},
		{name: "top", method: http.MethodGet, target: "/api/dashboard/top?n=3", wantStatus: http.StatusOK},
		{name: "elbow", method: http.MethodGet, target: "/api/dashboard/elbow?kmin=2&kmax=4", wantStatus: http.StatusOK},
		{name: "bad season", method: http.MethodGet, target: "/api/dashboard/overview?season=Monsoon", wantStatus: http.StatusBadRequest},
		{name: "unknown route", method: http.MethodGet, target: "/api/nope", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, target: "/api/health", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := serve(t, app, tt.method, tt.target)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus >= http.StatusBadRequest {
				assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
				assert.NotEmpty(t, body["type"])
			}
		})
	}
}

func TestMalformedJSONRejected(t *testing.T) {
	app := loadedApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/cluster", strings.NewReader(`{"k":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_JSON")

	req = httptest.NewRequest(http.MethodPost, "/api/dashboard/cluster", strings.NewReader(`{"k":3,"seed":7}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestOverviewThroughRouter(t *testing.T) {
	app := loadedApp(t)

	w, body := serve(t, app, http.MethodGet, "/api/dashboard/overview?year=2011")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	kpis := data["kpis"].(map[string]interface{})
	assert.Equal(t, float64(60), kpis["count"])

	// an explicitly empty season list selects nothing
	w, body = serve(t, app, http.MethodGet, "/api/dashboard/overview?season=")
	require.Equal(t, http.StatusOK, w.Code)
	kpis = body["data"].(map[string]interface{})["kpis"].(map[string]interface{})
	assert.Equal(t, float64(0), kpis["count"])
}

func TestExportThroughRouter(t *testing.T) {
	app := loadedApp(t)

	w, _ := serve(t, app, http.MethodGet, "/api/export/csv?year=2011")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="bike_sharing_filtered.csv"`, w.Header().Get("Content-Disposition"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 61)

	w, body := serve(t, app, http.MethodGet, "/api/export/pdf")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotNil(t, body["supported"])
}

func TestMiddlewareHeaders(t *testing.T) {
	app := loadedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCORSPreflight(t *testing.T) {
	app := loadedApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard/overview", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:8080", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsDisabled(t *testing.T) {
	app := loadedApp(t)

	w, body := serve(t, app, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apierrors.TypeNotFound, body["type"])
}

func TestCheckOrigin(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{name: "no origin", origin: "", want: true},
		{name: "same host", origin: "http://example.com", want: true},
		{name: "configured origin", origin: "http://localhost:8080", want: true},
		{name: "foreign origin", origin: "http://evil.test", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GO_ENV", "")
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, app.checkOrigin(req))
		})
	}
}

func TestCheckOriginDevelopment(t *testing.T) {
	cfg := testConfig(t)
	cfg.Logging.Development = true
	app := newTestApp(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	assert.True(t, app.checkOrigin(req))
	assert.Contains(t, app.getCORSConfig().AllowedOrigins, "http://localhost:3000")
}

type wsMessage struct {
	Type      string          `json:"type"`
	Dashboard string          `json:"dashboard"`
	Data      json.RawMessage `json:"data"`
}

func TestWebSocketSessionAndReload(t *testing.T) {
	app := loadedApp(t)
	server := httptest.NewServer(app.Router)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "connection", msg.Type)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":      "selection",
		"dashboard": "overview",
		"selection": map[string]interface{}{"year": 2011, "season": []string{"Spring"}},
	}))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "view", msg.Type)
	assert.Equal(t, "overview", msg.Dashboard)

	resp, err := http.Post(server.URL+"/api/dataset/reload", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "dataset:reloaded", msg.Type)
}

func TestWebSocketForeignOriginRejected(t *testing.T) {
	t.Setenv("GO_ENV", "")
	app := loadedApp(t)
	server := httptest.NewServer(app.Router)
	defer server.Close()

	header := http.Header{}
	header.Set("Origin", "http://evil.test")
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStartAndStop(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	assert.True(t, app.DashboardService.Ready())
	require.NoError(t, app.Stop(context.Background()))
}

func TestStartFailsWithoutDataset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dataset.File = filepath.Join(t.TempDir(), "missing.csv")
	app := newTestApp(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := app.Start(ctx, cancel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load dataset")
}
