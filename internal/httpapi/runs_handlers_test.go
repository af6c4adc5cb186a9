package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seace-engine/internal/store"
)

func TestRuns_ListAndGet(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	ctx := context.Background()
	require.NoError(t, store.StartRun(ctx, db.Pool, store.Run{ID: "run-a", From: "01/01/2025", To: "31/01/2025", StartedAt: time.Now()}))
	require.NoError(t, store.FinishRun(ctx, db.Pool, "run-a", 3, 1, "exhausted", "", time.Second, nil))

	d := testDeps(t, nil)
	d.DB = db.Pool
	h := NewHandler(d)

	w := do(h, http.MethodGet, "/runs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Runs []store.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Runs, 1)
	assert.Equal(t, 3, list.Runs[0].Count)

	w = do(h, http.MethodGet, "/runs/run-a", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var run store.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, "run-a", run.ID)
	assert.Equal(t, "exhausted", run.StopReason)

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/runs/missing", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/runs/a/b", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/runs?limit=-1", "", nil).Code)
}

func TestRuns_NoStore(t *testing.T) {
	h := NewHandler(testDeps(t, nil))
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/runs", "", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/runs/x", "", nil).Code)
}
