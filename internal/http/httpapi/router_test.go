package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vip7612-maker/monglemongle/internal/adapter/repo"
	"github.com/vip7612-maker/monglemongle/internal/http/handlers"
	"github.com/vip7612-maker/monglemongle/internal/infra"
	"github.com/vip7612-maker/monglemongle/internal/metrics"
	"github.com/vip7612-maker/monglemongle/internal/middleware"
	"github.com/vip7612-maker/monglemongle/internal/realtime"
	"github.com/vip7612-maker/monglemongle/internal/service"
)

func newTestServer(t *testing.T, staticDir string, rateLimit int) (*httptest.Server, *middleware.AdminAuth) {
	t.Helper()
	logger := infra.NopLogger()
	m := metrics.New("test")
	svc := service.NewSubmissions(service.Options{Store: repo.NewSubmissionRepositoryMemory(), Logger: logger, Metrics: m})
	auth := middleware.NewAdminAuth("secret", time.Hour)
	hub := realtime.NewHub(realtime.Options{Service: svc, Auth: auth, Logger: logger, Metrics: m, AllowedOrigins: []string{"*"}})
	app := handlers.NewApp(svc, hub, nil, auth, logger, m)

	srv := httptest.NewServer(NewRouter(Deps{
		App:             app,
		Hub:             hub,
		Auth:            auth,
		Metrics:         m,
		Logger:          logger,
		AllowedOrigins:  []string{"*"},
		RateLimitPerMin: rateLimit,
		StaticDir:       staticDir,
	}))
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return srv, auth
}

func request(t *testing.T, method, url, body string, header http.Header) (*http.Response, string) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestPublicRoutes(t *testing.T) {
	srv, _ := newTestServer(t, "", 0)

	resp, body := request(t, http.MethodGet, srv.URL+"/api/submissions", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "ko", resp.Header.Get("Content-Language"))

	resp, _ = request(t, http.MethodGet, srv.URL+"/v1/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = request(t, http.MethodGet, srv.URL+"/v1/openapi.json", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = request(t, http.MethodGet, srv.URL+"/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "monglemongle_http_requests_total")
}

func TestAdminRoutesRequireCredentials(t *testing.T) {
	srv, auth := newTestServer(t, "", 0)

	resp, body := request(t, http.MethodPost, srv.URL+"/api/submit", `{"name":"a","phone":"b","target":"c","type":"commitment"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	action := `{"type":"delete","id":1}`
	for _, path := range []string{"/api/admin_action", "/api/export-google-sheets"} {
		resp, _ = request(t, http.MethodPost, srv.URL+path, action, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
	resp, _ = request(t, http.MethodGet, srv.URL+"/api/admin/backup", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = request(t, http.MethodPost, srv.URL+"/api/admin_action", action, http.Header{middleware.AdminPassphraseHeader: {"secret"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	token, _, err := auth.IssueToken("secret")
	require.NoError(t, err)
	resp, _ = request(t, http.MethodGet, srv.URL+"/api/admin/backup", "", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))

	resp, body = request(t, http.MethodPost, srv.URL+"/api/export-google-sheets", "", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "not configured")
}

func TestSubmitIsRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, "", 1)

	payload := `{"name":"a","phone":"b","target":"c","type":"commitment"}`
	resp, _ := request(t, http.MethodPost, srv.URL+"/api/submit", payload, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = request(t, http.MethodPost, srv.URL+"/api/submit", payload, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = request(t, http.MethodGet, srv.URL+"/api/submissions", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	srv, _ := newTestServer(t, dir, 0)

	_, body := request(t, http.MethodGet, srv.URL+"/app.js", "", nil)
	assert.Equal(t, "console.log(1)", body)

	resp, body := request(t, http.MethodGet, srv.URL+"/admin", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>app</html>", body)
}

func TestPreflight(t *testing.T) {
	srv, _ := newTestServer(t, "", 0)
	resp, _ := request(t, http.MethodOptions, srv.URL+"/api/submit", "", http.Header{
		"Origin":                        {"https://example.org"},
		"Access-Control-Request-Method": {"POST"},
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
