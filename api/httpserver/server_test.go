package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shkulipa/auction-contract/testutil"
)

type pingRegistrar struct{}

func (pingRegistrar) RegisterRoutes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
}

func newBaseServer(t *testing.T) *BaseServer {
	t.Helper()

	srv, err := New(&HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      testutil.DiscardLogger(),
		DrainDuration:            10 * time.Millisecond,
		GracefulShutdownDuration: time.Second,
	}, pingRegistrar{})
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestBaseServer_HealthEndpoints(t *testing.T) {
	srv := newBaseServer(t)
	handler := srv.Handler()

	assert.Equal(t, http.StatusOK, get(t, handler, "/livez").Code)
	assert.Equal(t, http.StatusOK, get(t, handler, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(t, handler, "/ping").Code)
}

func TestBaseServer_DrainCycle(t *testing.T) {
	srv := newBaseServer(t)
	handler := srv.Handler()

	assert.Equal(t, http.StatusOK, get(t, handler, "/drain").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, handler, "/readyz").Code)

	// Draining twice is reported, not an error.
	rec := get(t, handler, "/drain")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already draining")

	assert.Equal(t, http.StatusOK, get(t, handler, "/undrain").Code)
	assert.Equal(t, http.StatusOK, get(t, handler, "/readyz").Code)
}

func TestBaseServer_MetricsRequiresCollectors(t *testing.T) {
	_, err := New(&HTTPServerConfig{
		ListenAddr:  "127.0.0.1:0",
		MetricsAddr: "127.0.0.1:0",
		Log:         testutil.DiscardLogger(),
	})
	require.Error(t, err)
}
