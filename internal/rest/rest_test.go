package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"liftoff/internal/config"
	"liftoff/internal/framework"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testHandle(t *testing.T) *framework.Handle {
	t.Helper()
	cfg, err := config.Parse([]byte(`
general:
  name: Aurora
packages:
  - name: Aurora Core
    description: The main application.
    default: true
`))
	require.NoError(t, err)
	return framework.NewHandle(framework.New(cfg))
}

func TestGetAttrs(t *testing.T) {
	router := Router(testHandle(t), zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/attrs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Name     string `json:"name"`
		Packages []struct {
			Name    string `json:"name"`
			Default bool   `json:"default"`
		} `json:"packages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Aurora", resp.Name)
	require.Len(t, resp.Packages, 1)
	assert.True(t, resp.Packages[0].Default)
}

func TestInstallPath_RoundTrip(t *testing.T) {
	handle := testHandle(t)
	router := Router(handle, zaptest.NewLogger(t))

	body := bytes.NewBufferString(`{"path":"/opt/aurora"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/install-path", body))
	require.Equal(t, http.StatusOK, rec.Code)

	var path string
	handle.Read(func(f *framework.Framework) {
		path = f.Database.InstallPath
	})
	assert.Equal(t, "/opt/aurora", path)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/installation-status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		FreshInstall bool   `json:"fresh_install"`
		InstallPath  string `json:"install_path"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.FreshInstall)
	assert.Equal(t, "/opt/aurora", status.InstallPath)
}

func TestInstallPath_EmptyRejected(t *testing.T) {
	router := Router(testHandle(t), zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/install-path", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/install-path", bytes.NewBufferString(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServesBundledFrontend(t *testing.T) {
	router := Router(testHandle(t), zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "liftoffInvoke")
}

func TestPreflightGetsCORSHeaders(t *testing.T) {
	router := Router(testHandle(t), zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodOptions, "/api/install-path", nil)
	req.Header.Set("Origin", "http://localhost:9999")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300, "preflight must not be rejected")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestConcurrentReads(t *testing.T) {
	router := Router(testHandle(t), zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/installation-status", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()
}

func TestStartAll(t *testing.T) {
	handle := testHandle(t)
	logger := zaptest.NewLogger(t)

	addrs := []*net.TCPAddr{{IP: net.IPv4(127, 0, 0, 1), Port: 0}}
	servers, err := StartAll(handle, addrs, logger)
	require.NoError(t, err)
	defer http.DefaultClient.CloseIdleConnections()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, servers.Shutdown(ctx))
	}()

	bound := servers.instances[0].listener.Addr().(*net.TCPAddr)
	resp, err := http.Get(fmt.Sprintf("http://%s/api/attrs", bound))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStartAll_NoBindableCandidate(t *testing.T) {
	// Occupy a port, then offer it as the only candidate.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	taken := l.Addr().(*net.TCPAddr)

	_, err = StartAll(testHandle(t), []*net.TCPAddr{taken}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no bindable loopback address")
}
