package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seace-engine/internal/config"
)

func TestHealthAndRoot(t *testing.T) {
	h := NewHandler(testDeps(t, nil))

	w := do(h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(h, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fecha_inicio")

	w = do(h, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	h := NewHandler(testDeps(t, nil))

	w := do(h, http.MethodGet, "/health", "", map[string]string{"X-Request-ID": "abc"})
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))

	w = do(h, http.MethodGet, "/health", "", nil)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestCorsPreflight(t *testing.T) {
	h := NewHandler(testDeps(t, nil))
	w := do(h, http.MethodOptions, "/scrape", "", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), Recover(nil), RequestID)
	w := do(h, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	var e APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.Equal(t, "internal_error", e.Error.Code)
}

func TestConfigEndpoints(t *testing.T) {
	d := testDeps(t, nil)
	h := NewHandler(d)

	w := do(h, http.MethodGet, "/config", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cfg config.Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, "America/Lima", cfg.Source.Timezone)

	w = do(h, http.MethodGet, "/config/path", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "config.yml")

	w = do(h, http.MethodGet, "/config/validate", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var vr config.Validation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vr))
	assert.Empty(t, vr.Errors)
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewHandler(testDeps(t, nil))
	w := do(h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "seace_")
}
